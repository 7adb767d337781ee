// Package storage keeps job images in an object store.
package storage

import (
	"context"
	"io"
)

// ObjectStore is a named-blob store with durable public references.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(ref string) (string, bool)
	Ping(ctx context.Context) error
}
