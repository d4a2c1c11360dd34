//go:build !unix

package registry

// Lock is a no-op on platforms without flock. Single-operator use is still
// safe; concurrent automation sessions should run on a unix host.
type Lock struct{}

// Acquire returns a no-op lock.
func (s *Store) Acquire() (*Lock, error) {
	return &Lock{}, nil
}

// Release is a no-op.
func (l *Lock) Release() {}
