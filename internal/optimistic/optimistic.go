// Package optimistic provides apply-first remote mutation helpers: the local
// change lands immediately, the remote call runs after, and a failing remote
// call rolls the local change back with the exact inverse transform.
//
// Calls are independent of each other. Two concurrent operations against the
// same key are not ordered; callers that need ordering must serialize at the
// call site.
package optimistic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Update sets *value to next, runs op, and restores the snapshot when op
// fails. When op succeeds and returns a non-nil canonical value, that value
// replaces the optimistic one; a nil return keeps next.
func Update[T any](ctx context.Context, value *T, next T, op func(context.Context, T) (*T, error)) error {
	snapshot := *value
	*value = next

	canonical, err := op(ctx, next)
	if err != nil {
		*value = snapshot
		return err
	}
	if canonical != nil {
		*value = *canonical
	}
	return nil
}

// AddToList inserts item optimistically and calls create. The remote system
// owns identity for creates: when the item has no key yet, a generated
// placeholder key is used until create returns the canonical entity, which
// then replaces the placeholder entry (a key swap, not a key-preserving
// update). On failure the inserted entry is removed.
func AddToList[T any](
	ctx context.Context,
	list *[]T,
	item T,
	keyOf func(T) string,
	withKey func(T, string) T,
	create func(context.Context, T) (T, error),
) (T, error) {
	placeholder := keyOf(item)
	if placeholder == "" {
		placeholder = "pending-" + uuid.New().String()
		item = withKey(item, placeholder)
	}
	*list = append(*list, item)

	canonical, err := create(ctx, item)
	if err != nil {
		removeByKey(list, placeholder, keyOf)
		var zero T
		return zero, err
	}

	for i := range *list {
		if keyOf((*list)[i]) == placeholder {
			(*list)[i] = canonical
			return canonical, nil
		}
	}
	// The placeholder vanished while create was in flight (concurrent
	// removal); treat the remote entity as the surviving truth.
	*list = append(*list, canonical)
	return canonical, nil
}

// UpdateInList replaces the entry matching key with next, calls op, and
// restores the previous entry on failure. A non-nil canonical return from op
// wins over next.
func UpdateInList[T any](
	ctx context.Context,
	list *[]T,
	key string,
	next T,
	keyOf func(T) string,
	op func(context.Context, T) (*T, error),
) error {
	idx := indexOfKey(*list, key, keyOf)
	if idx < 0 {
		return fmt.Errorf("no entry with key %q", key)
	}
	snapshot := (*list)[idx]
	(*list)[idx] = next

	canonical, err := op(ctx, next)
	if err != nil {
		if j := indexOfKey(*list, keyOf(next), keyOf); j >= 0 {
			(*list)[j] = snapshot
		}
		return err
	}
	if canonical != nil {
		if j := indexOfKey(*list, keyOf(next), keyOf); j >= 0 {
			(*list)[j] = *canonical
		}
	}
	return nil
}

// RemoveFromList drops the entry matching key, calls op with the removed
// value, and re-inserts that exact value on failure. Removing an absent key
// is a no-op and op is not called.
func RemoveFromList[T any](
	ctx context.Context,
	list *[]T,
	key string,
	keyOf func(T) string,
	op func(context.Context, T) error,
) error {
	idx := indexOfKey(*list, key, keyOf)
	if idx < 0 {
		return nil
	}
	removed := (*list)[idx]
	*list = append((*list)[:idx], (*list)[idx+1:]...)

	if err := op(ctx, removed); err != nil {
		*list = append(*list, removed)
		return err
	}
	return nil
}

func indexOfKey[T any](list []T, key string, keyOf func(T) string) int {
	for i := range list {
		if keyOf(list[i]) == key {
			return i
		}
	}
	return -1
}

func removeByKey[T any](list *[]T, key string, keyOf func(T) string) {
	if idx := indexOfKey(*list, key, keyOf); idx >= 0 {
		*list = append((*list)[:idx], (*list)[idx+1:]...)
	}
}
