// Package storage is the durable key-value state a browser session keeps
// between requests: the cart snapshot and the pending order handoff.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store defines the key-value operations the cart engine and checkout need.
// Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Scoped prefixes every key with the session namespace.
func Scoped(s Store, sessionID string) Store {
	return scopedStore{inner: s, prefix: fmt.Sprintf("session:%s:", sessionID)}
}

type scopedStore struct {
	inner  Store
	prefix string
}

func (s scopedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s scopedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s scopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
