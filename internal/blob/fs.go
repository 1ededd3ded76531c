package blob

import (
	"context"
	"errors"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FSStore keeps blobs in a billy.Filesystem. Production uses osfs rooted at
// BLOB_DIR; tests use memfs.
type FSStore struct {
	fs billy.Filesystem
}

// NewFSStore wraps an existing filesystem.
func NewFSStore(fs billy.Filesystem) *FSStore { return &FSStore{fs: fs} }

// NewOSStore roots the store at dir, creating it if needed.
func NewOSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{fs: osfs.New(dir)}, nil
}

// Save implements Store.
func (s *FSStore) Save(ctx context.Context, data []byte, logicalName, namespace string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(logicalName, namespace)
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", err
	}
	if err := util.WriteFile(s.fs, key, data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

// Delete implements Store.
func (s *FSStore) Delete(_ context.Context, ref string) (bool, error) {
	key, err := cleanRef(ref)
	if err != nil {
		return false, err
	}
	if err := s.fs.Remove(key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Exists implements Store.
func (s *FSStore) Exists(_ context.Context, ref string) (bool, error) {
	key, err := cleanRef(ref)
	if err != nil {
		return false, err
	}
	if _, err := s.fs.Stat(key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Read returns the blob's bytes.
func (s *FSStore) Read(ref string) ([]byte, error) {
	key, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}
	return util.ReadFile(s.fs, key)
}
