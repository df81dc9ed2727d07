package filestorage

import (
	"context"
	"errors"
)

// ContentTypePDF is the content type of rendered offer letters
const ContentTypePDF = "application/pdf"

// ErrInvalidKey is returned for keys that would escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// Storage defines the interface for document storage operations.
// Keys are flat names such as "OL482913.pdf".
type Storage interface {
	// Put writes data under key, replacing any existing object, and returns
	// the publicly retrievable location.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public location for key without touching storage
	URL(key string) string
}
