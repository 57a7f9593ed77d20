// Package filestore holds uploaded blob bytes on disk, keyed by the
// generated file identifier recorded on the owning post.
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by Delete when no blob exists under the given id.
var ErrNotExist = errors.New("blob does not exist")

// Store handles blob storage for uploaded files.
type Store interface {
	// Write stores data under id, replacing any previous content.
	Write(id string, data []byte) error

	// Delete removes the blob stored under id. Returns ErrNotExist when
	// there is nothing to remove.
	Delete(id string) error

	// Exists checks whether a blob is stored under id.
	Exists(id string) (bool, error)
}

// DiskStore is a Store backed by a single directory, one file per blob.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Path returns the on-disk location of the blob with the given id.
func (s *DiskStore) Path(id string) string {
	return filepath.Join(s.dir, id+".txt")
}

// Write stores data under id.
func (s *DiskStore) Write(id string, data []byte) error {
	return os.WriteFile(s.Path(id), data, 0644)
}

// Delete removes the blob stored under id.
func (s *DiskStore) Delete(id string) error {
	err := os.Remove(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return err
	}
	return nil
}

// Exists checks whether a blob is stored under id.
func (s *DiskStore) Exists(id string) (bool, error) {
	_, err := os.Stat(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListIDs returns the ids of every blob in the store. Used by the
// maintenance sweep to detect orphans.
func (s *DiskStore) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".txt" {
			continue
		}
		ids = append(ids, name[:len(name)-len(".txt")])
	}
	return ids, nil
}
