// Package blobstore defines the key-value persistence used for whole-document
// state such as the collections list.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("blob not found")

// Store holds opaque values under string keys. Put replaces the whole value;
// there are no partial updates.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
