// Package metadata is the client's local key/value store. The CLI keeps its
// session (email and token pair) here between runs.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// GetMany returns only the keys that exist.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	// SetMany upserts all pairs with a single statement.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
