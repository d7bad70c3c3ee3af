package storage

import (
	"context"
	"io"
	"time"
)

// Noop discards every upload. It backs STORAGE_BACKEND=none.
type Noop struct{}

func (Noop) Put(_ context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (Noop) Get(context.Context, string) (io.ReadCloser, ObjectInfo, error) {
	return nil, ObjectInfo{}, ErrNotFound
}

func (Noop) Delete(context.Context, string) error {
	return ErrNotFound
}
