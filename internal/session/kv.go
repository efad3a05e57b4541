package session

import (
	"os"
	"path/filepath"
)

// KV is the durable key-value storage a Store persists its slots into.
// The web storefront used the browser's localStorage for this; the
// terminal client uses a directory of JSON files.
type KV interface {
	// Get returns the stored value and whether the key exists at all.
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// FileKV stores each key as one file inside a directory.
type FileKV struct {
	Dir string
}

// NewFileKV creates the backing directory if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileKV{Dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set writes via a temp file and rename so a crash mid-write cannot
// leave a half-serialized slot behind.
func (f *FileKV) Set(key string, value []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}
