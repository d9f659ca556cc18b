package darwinfetch

import (
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// hashBytes returns the hex BLAKE3 digest (32-byte output, no key) of data.
func hashBytes(data []byte) string {
	h := blake3.New(32, nil)
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// hashFile streams a file through BLAKE3 so large payloads are never held in memory.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
