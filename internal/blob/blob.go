// Package blob stores uploaded photo bytes under relative keys such as
// "photos/<uuid>.jpg".
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
)

// ErrNotExist is returned by Open for a key with no stored object.
var ErrNotExist = errors.New("blob does not exist")

// Store is a flat key/value store for file bytes. Delete of a missing key
// is not an error.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

func validateKey(key string) error {
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
