package optimistic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Key  string
	Name string
}

func keyOf(e entry) string            { return e.Key }
func withKey(e entry, k string) entry { e.Key = k; return e }

func TestUpdate_SuccessKeepsNext(t *testing.T) {
	value := "old"
	err := Update(context.Background(), &value, "new", func(_ context.Context, v string) (*string, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", value)
}

func TestUpdate_SuccessAdoptsCanonical(t *testing.T) {
	value := "old"
	canonical := "server-normalized"
	err := Update(context.Background(), &value, "new", func(_ context.Context, v string) (*string, error) {
		return &canonical, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "server-normalized", value)
}

func TestUpdate_FailureRestoresSnapshot(t *testing.T) {
	value := "old"
	boom := errors.New("remote down")
	err := Update(context.Background(), &value, "new", func(context.Context, string) (*string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "old", value)
}

func TestAddToList_PlaceholderSwappedForCanonicalKey(t *testing.T) {
	list := []entry{}
	var seenKey string

	got, err := AddToList(context.Background(), &list, entry{Name: "draft"}, keyOf, withKey,
		func(_ context.Context, e entry) (entry, error) {
			seenKey = e.Key
			return entry{Key: "srv-1", Name: e.Name}, nil
		})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(seenKey, "pending-"), "create must run against a placeholder key")
	assert.Equal(t, "srv-1", got.Key)
	require.Len(t, list, 1)
	assert.Equal(t, "srv-1", list[0].Key)
}

func TestAddToList_FailureRemovesOptimisticEntry(t *testing.T) {
	list := []entry{{Key: "a", Name: "kept"}}

	_, err := AddToList(context.Background(), &list, entry{Name: "doomed"}, keyOf, withKey,
		func(context.Context, entry) (entry, error) {
			return entry{}, errors.New("rejected")
		})
	assert.Error(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Key)
}

func TestAddToList_ExistingKeyIsKept(t *testing.T) {
	list := []entry{}

	_, err := AddToList(context.Background(), &list, entry{Key: "client-7", Name: "n"}, keyOf, withKey,
		func(_ context.Context, e entry) (entry, error) {
			assert.Equal(t, "client-7", e.Key)
			return e, nil
		})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "client-7", list[0].Key)
}

func TestUpdateInList_FailureRestoresEntry(t *testing.T) {
	list := []entry{{Key: "a", Name: "original"}}

	err := UpdateInList(context.Background(), &list, "a", entry{Key: "a", Name: "changed"}, keyOf,
		func(context.Context, entry) (*entry, error) {
			return nil, errors.New("no")
		})
	assert.Error(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "original", list[0].Name)
}

func TestUpdateInList_MissingKeyErrors(t *testing.T) {
	list := []entry{}
	err := UpdateInList(context.Background(), &list, "ghost", entry{Key: "ghost"}, keyOf,
		func(context.Context, entry) (*entry, error) { return nil, nil })
	assert.Error(t, err)
}

func TestRemoveFromList_SuccessDrops(t *testing.T) {
	list := []entry{{Key: "a"}, {Key: "b"}}

	err := RemoveFromList(context.Background(), &list, "a", keyOf,
		func(context.Context, entry) error { return nil })
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Key)
}

func TestRemoveFromList_FailureReinsertsRemovedValue(t *testing.T) {
	list := []entry{{Key: "a", Name: "precious"}}

	err := RemoveFromList(context.Background(), &list, "a", keyOf,
		func(context.Context, entry) error { return errors.New("offline") })
	assert.Error(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "precious", list[0].Name)
}

func TestRemoveFromList_AbsentKeySkipsRemote(t *testing.T) {
	list := []entry{{Key: "a"}}
	called := false

	err := RemoveFromList(context.Background(), &list, "ghost", keyOf,
		func(context.Context, entry) error { called = true; return nil })
	require.NoError(t, err)
	assert.False(t, called)
	assert.Len(t, list, 1)
}
