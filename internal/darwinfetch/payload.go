package darwinfetch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// decodePayload returns the plain JSON bytes of a catalog document, undoing
// zstd, gzip or xz compression when the payload starts with the matching
// magic number. Anything else is returned as is.
func decodePayload(data []byte) ([]byte, error) {
	var r io.Reader
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		zst, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zst.Close()
		r = zst
	case bytes.HasPrefix(data, gzipMagic):
		gz, err := pgzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case bytes.HasPrefix(data, xzMagic):
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xr
	default:
		return data, nil
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress catalog: %w", err)
	}
	debugf("Decompressed catalog payload: %d -> %d bytes\n", len(data), len(out))
	return out, nil
}
