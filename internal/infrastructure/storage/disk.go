// Package storage owns the image bytes on disk. The core only ever deals in
// child reference strings (URLs); this collaborator maps uploaded files to
// names and names back to paths.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions are the upload types the product image filter accepts.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// Disk stores product images as flat files under a single directory.
type Disk struct {
	dir string
}

// NewDisk creates the directory if needed and returns the store.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Allowed reports whether the filename carries an accepted image extension.
func Allowed(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Save writes the upload under a fresh name that keeps the original
// extension, and returns that name.
func (d *Disk) Save(originalName string, src io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	dst, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return name, nil
}

// Path resolves a stored name to its absolute path. Names are flattened with
// filepath.Base so a crafted name cannot escape the directory. Returns
// os.ErrNotExist when no such file is stored.
func (d *Disk) Path(name string) (string, error) {
	path := filepath.Join(d.dir, filepath.Base(name))
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// Remove deletes a stored file. Removing a name that is already gone is not
// an error.
func (d *Disk) Remove(name string) error {
	err := os.Remove(filepath.Join(d.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}
