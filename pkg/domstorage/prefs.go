package domstorage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Provider hands out the namespace backing a scope tag. The bridge never
// creates or destroys namespaces itself.
type Provider interface {
	Namespace(origin string) Namespace
}

// Namespace is a mutable typed key/value container.
type Namespace interface {
	// GetAll returns every entry in the namespace. A namespace that has
	// never been written is empty, not an error.
	GetAll() (map[string]Value, error)

	// Edit starts a batch of mutations. Nothing is persisted until Commit.
	Edit() Editor
}

// Editor accumulates mutations and persists them atomically on Commit.
type Editor interface {
	Put(key string, v Value) Editor
	Remove(key string) Editor
	Commit() error
}

// FileProvider keeps one YAML file per namespace under a single directory,
// the way a host application keeps its preference containers.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Namespace returns the file-backed namespace for origin. Origins map to
// filenames; separators are replaced so an origin cannot escape the
// preferences directory.
func (p *FileProvider) Namespace(origin string) Namespace {
	name := filepath.Base(origin)
	if name == "." || name == string(filepath.Separator) {
		name = "default"
	}
	return &fileNamespace{path: filepath.Join(p.dir, name+".yaml")}
}

type fileNamespace struct {
	path string
}

func (n *fileNamespace) GetAll() (map[string]Value, error) {
	data, err := os.ReadFile(n.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Value{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace file: %w", err)
	}

	entries := map[string]Value{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse namespace file %s: %w", n.path, err)
	}
	return entries, nil
}

func (n *fileNamespace) Edit() Editor {
	return &fileEditor{ns: n}
}

type mutation struct {
	key    string
	value  Value
	remove bool
}

type fileEditor struct {
	ns      *fileNamespace
	pending []mutation
}

func (e *fileEditor) Put(key string, v Value) Editor {
	e.pending = append(e.pending, mutation{key: key, value: v})
	return e
}

func (e *fileEditor) Remove(key string) Editor {
	e.pending = append(e.pending, mutation{key: key, remove: true})
	return e
}

// Commit loads the current entries, applies the pending mutations in order,
// and replaces the namespace file atomically. A failed commit leaves the
// file untouched.
func (e *fileEditor) Commit() error {
	entries, err := e.ns.GetAll()
	if err != nil {
		return err
	}

	for _, m := range e.pending {
		if m.remove {
			delete(entries, m.key)
		} else {
			entries[m.key] = m.value
		}
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode namespace: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.ns.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp := e.ns.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write namespace file: %w", err)
	}
	if err := os.Rename(tmp, e.ns.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace namespace file: %w", err)
	}
	return nil
}
