// Package fsops provides the scoped filesystem operations the engine
// delegates to: copy, move, delete, existence checks.
package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exists reports whether the path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether the path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CopyDir copies src into dest recursively, preserving file modes. dest must
// not already exist.
func CopyDir(src, dest string) error {
	if Exists(dest) {
		return fmt.Errorf("destination %s already exists", dest)
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// CopyInto copies the contents of src into dest, creating dest if needed and
// overwriting files that already exist. Used to seed a freshly linked mirror
// with extracted module files.
func CopyInto(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target, info.Mode())
	})
}

// Move renames src to dest, falling back to copy-and-delete across devices.
func Move(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := CopyDir(src, dest); err != nil {
		return err
	}
	return Delete(src)
}

// Delete removes the path and everything under it.
func Delete(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
