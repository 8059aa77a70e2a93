package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps one <name>.json file per document under Dir. It assumes a
// single writer process; versions are not tracked.
type FileBackend struct {
	Dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{Dir: abs}, nil
}

func (b *FileBackend) path(name string) string { return filepath.Join(b.Dir, name+".json") }

func (b *FileBackend) Locate(name string) string { return "file:" + b.path(name) }

func (b *FileBackend) Read(name string) (Snapshot, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Data: data}, nil
}

// Write goes through <path>.tmp, fsync and rename so the primary path never
// holds a partial document.
func (b *FileBackend) Write(name string, data []byte, _ int64) error {
	path := b.path(name)
	mu := lockFor("write:" + path)
	mu.Lock()
	defer mu.Unlock()

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	// Persist the rename itself; not every platform allows syncing a directory.
	if d, err := os.Open(b.Dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
