package store

import (
	"context"
	"errors"
)

// ErrMiss is returned by KV.Get when the key does not exist.
var ErrMiss = errors.New("key not found")

// KV is the byte-value store behind session persistence.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
