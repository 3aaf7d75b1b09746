// Package storage abstracts the object storage where model artifacts live.
//
// Buckets are flat namespaces of keys like "fraud/v1/model.json".
// The interface is the smallest surface the platform consumes: list keys
// with basic metadata, stat one key, fetch bytes.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

// ObjectInfo is the metadata a bucket listing reports per object.
type ObjectInfo struct {
	Key        string
	Size       int64
	ModifiedAt time.Time

	// Owner identifies whoever wrote the object.
	// Empty when the storage layer does not surface it.
	Owner string
}

type Bucket interface {
	// Name identifies the storage container, e.g. "ml-models-dev".
	Name() string

	// List returns metadata for every object in the bucket.
	List(ctx context.Context) ([]ObjectInfo, error)

	// Stat returns metadata for one key, or ErrNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Get returns the object's bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
