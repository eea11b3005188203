// Package storage wraps the object store that holds asset image bytes.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a storage path has no object behind it
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the external object store. Records never share a blob:
// copying an asset always duplicates its object first.
type BlobStore interface {
	// Copy duplicates the object at sourcePath under destDir and returns the new path
	Copy(ctx context.Context, sourcePath, destDir string) (string, error)

	// Get reads an object
	Get(ctx context.Context, objectPath string) ([]byte, error)

	// Put writes an object
	Put(ctx context.Context, objectPath string, data []byte, contentType string) error

	// Delete removes an object; deleting a missing object is not an error
	Delete(ctx context.Context, objectPath string) error
}

// NewObjectPath builds a fresh storage path under dir keeping the source extension
func NewObjectPath(dir, sourcePath string) string {
	ext := path.Ext(sourcePath)
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return uuid.NewString() + ext
	}
	return dir + "/" + uuid.NewString() + ext
}
