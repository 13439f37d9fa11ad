// Package filestore provides the blob sink for product images.
//
// Blobs live in a single directory, one file per upload, named
// {fileCode}-{originalName}. The fileCode is generated by the store and is
// opaque to callers; repeated uploads of the same original name always get
// distinct codes, so the store never overwrites.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is the contract the HTTP layer consumes.
type Store interface {
	// SaveFile writes src durably and returns the generated fileCode. After
	// a nil error the blob is readable under {fileCode}-{originalName}.
	SaveFile(originalName string, src io.Reader) (string, error)

	// Open returns the blob stored under the given {fileCode}-{originalName}.
	Open(storedName string) (io.ReadCloser, error)

	// Delete removes the blob stored under the given name.
	Delete(storedName string) error
}

// DiskStore is a filesystem-backed Store rooted at a single directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns the store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

// SaveFile streams src to a temporary file in the root directory and renames
// it into place, so a returned code always refers to a complete blob.
func (s *DiskStore) SaveFile(originalName string, src io.Reader) (string, error) {
	fileCode := uuid.New().String()
	// Strip any path the client sent along with the filename.
	storedName := fileCode + "-" + filepath.Base(originalName)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write upload %s: %w", storedName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close upload %s: %w", storedName, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, storedName)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store upload %s: %w", storedName, err)
	}
	return fileCode, nil
}

// Open returns the blob for reading; the caller closes it.
func (s *DiskStore) Open(storedName string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.Base(storedName)))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", storedName, err)
	}
	return f, nil
}

// Delete removes the blob. Used to compensate a failed save after upload.
func (s *DiskStore) Delete(storedName string) error {
	if err := os.Remove(filepath.Join(s.root, filepath.Base(storedName))); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", storedName, err)
	}
	return nil
}
