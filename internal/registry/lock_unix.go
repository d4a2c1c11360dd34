//go:build unix

package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockFileName sits next to the mapping file. The zero-byte file is harmless
// if orphaned: the kernel releases the flock when the fd closes, including on
// process crash.
const lockFileName = "registry.lock"

// Lock holds a blocking exclusive flock on the registry lock file, serializing
// read-modify-write cycles across concurrent modkit processes.
type Lock struct {
	file *os.File
}

// Acquire opens (or creates) the lock file and blocks until the exclusive
// lock is available.
func (s *Store) Acquire() (*Lock, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating modules dir: %w", err)
	}

	path := filepath.Join(s.Dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &Lock{file: f}, nil
}

// Release unlocks and closes the lock file. Safe to call more than once.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
