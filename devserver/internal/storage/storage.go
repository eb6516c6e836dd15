// Package storage keeps submission attachments.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned for a key that holds no object.
var ErrNotFound = errors.New("storage: object not found")

// Object is an attachment body. The caller closes Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// BlobStore stores attachment bytes by key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}
