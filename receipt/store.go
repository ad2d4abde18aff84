package receipt

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("receipt not found")
	ErrInvalidName = errors.New("invalid receipt name")
)

// Store persists rendered receipts and returns a location string
// (a file path or an object URI).
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create receipt dir %s", s.dir)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write receipt %s", path)
	}
	return path, nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "open receipt %s", name)
	}
	return f, nil
}
