package kvstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore — файловое KV-хранилище: каждый ключ лежит отдельным файлом
// в своей директории. Запись через tmp + rename, чтобы не оставлять
// обрезанных файлов.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	return data, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistenceError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
