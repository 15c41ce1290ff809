package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_UnmarshalNormalizesAltID(t *testing.T) {
	payload := `{"_id":"doc-7","title":"API Guide","price":"$19.00","image":"u","category":"docs"}`

	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "doc-7", item.ID)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("19")))
}

func TestCartItem_UnmarshalPrefersID(t *testing.T) {
	payload := `{"id":"p-1","_id":"legacy","title":"Kit","price":49,"image":"","category":"templates"}`

	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "p-1", item.ID)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(49)))
}

func TestCartItem_RoundTrip(t *testing.T) {
	item := CartItem{
		ID:       "p-2",
		Title:    "Landing Page Template",
		Price:    decimal.RequireFromString("49.99"),
		Image:    "https://cdn.example.com/p-2.png",
		Category: "templates",
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var back CartItem
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, item.ID, back.ID)
	assert.Equal(t, item.Title, back.Title)
	assert.Equal(t, item.Image, back.Image)
	assert.Equal(t, item.Category, back.Category)
	assert.True(t, item.Price.Equal(back.Price))
}

func TestWishlistItem_DefaultsKindToProduct(t *testing.T) {
	payload := `{"id":"p-3","title":"Icon Pack","price":"9.00","image":"","category":"components"}`

	var item WishlistItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, ItemKindProduct, item.Kind)
}

func TestWishlistItem_KeepsRemoteID(t *testing.T) {
	payload := `{"id":"p-4","title":"T","price":"1","image":"","category":"c","type":"doc","wishlist_item_id":"w-99"}`

	var item WishlistItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, ItemKindDoc, item.Kind)
	assert.Equal(t, "w-99", item.RemoteID)

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var back WishlistItem
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, item.RemoteID, back.RemoteID)
}
