package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File хранит все ключи в одном JSON-файле. Каждая запись переписывает
// файл целиком через временный файл и переименование.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile открывает файловое хранилище, создавая его при первом обращении.
func OpenFile(path string) (*File, error) {
	f := &File{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	if len(raw) == 0 {
		return f, nil
	}

	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("decode storage file %s: %w", path, err)
	}

	return f, nil
}

// Get возвращает значение ключа.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	return v, ok, nil
}

// Set сохраняет значение ключа и сбрасывает файл на диск.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.data[key]
	f.data[key] = value

	if err := f.flush(); err != nil {
		if existed {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// Remove удаляет ключ и сбрасывает файл на диск.
func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.data[key]
	if !existed {
		return nil
	}
	delete(f.data, key)

	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

// Close ничего не делает: данные сбрасываются на диск при каждой записи.
func (f *File) Close() error {
	return nil
}

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
