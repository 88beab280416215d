package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Locator resolves logical store names for the executor. The executor never
// touches the filesystem layout itself.
type Locator interface {
	// StorePath returns the filesystem path for a logical store name.
	StorePath(name string) (string, error)

	// StoreList returns the raw store names in the host's storage area,
	// shadow artifacts included.
	StoreList() ([]string, error)
}

// DirLocator serves stores out of a single flat data directory, the way a
// host application keeps its database files in one folder.
type DirLocator struct {
	dir string
}

// NewDirLocator creates a locator rooted at dir.
func NewDirLocator(dir string) *DirLocator {
	return &DirLocator{dir: dir}
}

// StorePath resolves name inside the data directory. Names containing path
// separators or parent references are rejected so a caller cannot escape
// the storage area.
func (l *DirLocator) StorePath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("store name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("invalid store name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}

// StoreList returns the raw filenames in the data directory. Subdirectories
// are skipped; tidying is the caller's concern.
func (l *DirLocator) StoreList() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
