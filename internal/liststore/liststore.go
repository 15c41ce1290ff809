package liststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/kv"
	"go.uber.org/zap"
)

// Store persists one entity list under one key of the durable mirror. The
// in-memory list owned by the caller is the source of truth; on any conflict
// the caller re-flushes and the mirror loses.
type Store[T any] struct {
	kv     kv.Store
	key    string
	logger *zap.Logger
}

func New[T any](store kv.Store, key string, logger *zap.Logger) *Store[T] {
	return &Store[T]{
		kv:     store,
		key:    key,
		logger: logger,
	}
}

// Load reads the persisted list. A missing key or a malformed payload loads
// as an empty list; corruption is logged and discarded, never surfaced to the
// list owner.
func (s *Store[T]) Load(ctx context.Context) []T {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []T{}
	}
	if err != nil {
		s.logger.Warn("list load failed, starting empty",
			zap.String("key", s.key),
			zap.Error(err))
		return []T{}
	}

	var list []T
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		s.logger.Warn("discarding malformed persisted list",
			zap.String("key", s.key),
			zap.Error(err))
		return []T{}
	}
	if list == nil {
		return []T{}
	}
	return list
}

// Save writes the full list, replacing whatever the mirror held.
func (s *Store[T]) Save(ctx context.Context, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal list %q: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("persist list %q: %w", s.key, err)
	}
	return nil
}

// Clear removes the key entirely.
func (s *Store[T]) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear list %q: %w", s.key, err)
	}
	return nil
}
