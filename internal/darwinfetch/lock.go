package darwinfetch

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// withExclusiveLock runs fn while holding an exclusive flock on base+".lock".
// This blocks if another process is writing the same catalog or preparing
// the same destination directory.
func withExclusiveLock(base string, fn func() error) error {
	lockPath := base + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", base, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn()
}
