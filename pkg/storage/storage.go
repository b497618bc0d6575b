// Package storage persists uploaded property images either in S3 or on the
// local disk, returning the public URL of each stored object.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Lala-Rental/lala-rental-backend/pkg/sanitizer"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("storage: invalid object key")

// Store is implemented by the S3 and local-disk backends.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// ObjectKey builds a collision-free key under folder that keeps the
// sanitized extension of the original file name.
func ObjectKey(folder, filename string) string {
	clean := sanitizer.SanitizeFilename(filename)
	ext := path.Ext(clean)
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
