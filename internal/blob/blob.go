// Package blob stores raw upload bytes behind a small interface with a
// filesystem backend (go-billy) and an S3-compatible backend (MinIO).
//
// Refs are opaque to callers. Both backends lay objects out as
// "<namespace>/<uuid><ext>", namespace being the queue ID.
package blob

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store persists and removes blobs.
type Store interface {
	// Save writes data and returns a ref that can later be passed to
	// Delete or Exists.
	Save(ctx context.Context, data []byte, logicalName, namespace string) (string, error)
	// Delete removes the blob; it reports false when nothing was there.
	Delete(ctx context.Context, ref string) (bool, error)
	Exists(ctx context.Context, ref string) (bool, error)
}

// ErrInvalidRef is returned for refs that escape the store root.
var ErrInvalidRef = errors.New("blob: invalid ref")

// objectKey builds a fresh key under namespace keeping the logical name's
// extension so content types can be inferred later.
func objectKey(logicalName, namespace string) string {
	ext := strings.ToLower(path.Ext(logicalName))
	ns := strings.Trim(path.Clean("/"+namespace), "/")
	if ns == "" {
		ns = "default"
	}
	return path.Join(ns, uuid.NewString()+ext)
}

func cleanRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.Contains(ref, "..") {
		return "", ErrInvalidRef
	}
	return strings.TrimPrefix(path.Clean(ref), "/"), nil
}
