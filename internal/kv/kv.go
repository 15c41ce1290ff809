package kv

import (
	"context"
	"errors"
)

// Store is the durable key-value mirror behind the cart and wishlist lists.
// Each list owner writes its own key; no key is shared between owners.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")
