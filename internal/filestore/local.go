// Package filestore keeps uploaded document bytes on local disk.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when a file exceeds the configured limit. Nothing is kept on disk.
var ErrTooLarge = errors.New("file exceeds size limit")

// StoredFile describes a file written by Save.
type StoredFile struct {
	Path string
	Size int64
}

// LocalStore writes files under a single directory using generated names.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates dir if needed. maxBytes <= 0 disables the limit.
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save copies r to a new file named after a fresh uuid, keeping the original extension.
func (s *LocalStore) Save(originalName string, r io.Reader) (StoredFile, error) {
	name := uuid.NewString() + sanitizeExt(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case err != nil:
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("write file: %w", err)
	case closeErr != nil:
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("close file: %w", closeErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		os.Remove(path)
		return StoredFile{}, ErrTooLarge
	}
	return StoredFile{Path: path, Size: n}, nil
}

// Open returns a reader for a file previously written by Save.
func (s *LocalStore) Open(path string) (io.ReadCloser, error) {
	clean := filepath.Clean(path)
	if filepath.Dir(clean) != filepath.Clean(s.dir) {
		return nil, fmt.Errorf("path %q is outside the upload directory", path)
	}
	return os.Open(clean)
}

// Remove deletes a stored file; a missing file is not an error.
func (s *LocalStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		return ""
	}
	return ext
}
