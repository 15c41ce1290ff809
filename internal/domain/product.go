package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record: a template, UI component, doc bundle or
// mobile-app asset.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    string
	Kind        ItemKind
	CreatedAt   time.Time
}

// CartItem converts a catalog record into a cart entry.
func (p Product) CartItem() CartItem {
	return CartItem{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	}
}

// WishlistItem converts a catalog record into a wishlist entry.
func (p Product) WishlistItem() WishlistItem {
	return WishlistItem{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Kind:     p.Kind,
	}
}
