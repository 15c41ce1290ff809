package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ItemKind says which part of the catalog an item came from.
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindDoc     ItemKind = "doc"
)

// CartItem is a single entry in the shopping cart. Identity is the canonical
// ID; the cart never holds two entries with the same ID.
type CartItem struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Image    string
	Category string
}

// WishlistItem is a saved catalog item. RemoteID is assigned by the wishlist
// backend and is only set while the owning session is authenticated.
type WishlistItem struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Image    string
	Category string
	Kind     ItemKind
	RemoteID string
}

// itemWire is the external shape of both item types. Catalog records arrive
// keyed either "id" or "_id" depending on which backend produced them; the
// canonical ID is resolved here so nothing downstream branches on the field.
type itemWire struct {
	ID       string          `json:"id,omitempty"`
	AltID    string          `json:"_id,omitempty"`
	Title    string          `json:"title"`
	Price    json.RawMessage `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Kind     ItemKind        `json:"type,omitempty"`
	RemoteID string          `json:"wishlist_item_id,omitempty"`
}

func canonicalID(id, altID string) string {
	if id != "" {
		return id
	}
	return altID
}

func (c *CartItem) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	price, err := decodePriceJSON(w.Price)
	if err != nil {
		return err
	}
	*c = CartItem{
		ID:       canonicalID(w.ID, w.AltID),
		Title:    w.Title,
		Price:    price,
		Image:    w.Image,
		Category: w.Category,
	}
	return nil
}

func (c CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemWire{
		ID:       c.ID,
		Title:    c.Title,
		Price:    json.RawMessage(c.Price.String()),
		Image:    c.Image,
		Category: c.Category,
	})
}

func (i *WishlistItem) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	price, err := decodePriceJSON(w.Price)
	if err != nil {
		return err
	}
	kind := w.Kind
	if kind == "" {
		kind = ItemKindProduct
	}
	*i = WishlistItem{
		ID:       canonicalID(w.ID, w.AltID),
		Title:    w.Title,
		Price:    price,
		Image:    w.Image,
		Category: w.Category,
		Kind:     kind,
		RemoteID: w.RemoteID,
	}
	return nil
}

func (i WishlistItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemWire{
		ID:       i.ID,
		Title:    i.Title,
		Price:    json.RawMessage(i.Price.String()),
		Image:    i.Image,
		Category: i.Category,
		Kind:     i.Kind,
		RemoteID: i.RemoteID,
	})
}
