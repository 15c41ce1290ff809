package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the storefront API surface.
func NewRouter(cart *CartHandler, wishlist *WishlistHandler, checkout *CheckoutHandler, catalog *CatalogHandler, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalog.ListProducts)
			r.Get("/{id}", catalog.GetProduct)
			r.Put("/{id}", catalog.UpsertProduct)
			r.Delete("/{id}", catalog.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Delete("/items/{id}", cart.RemoveItem)
			r.Put("/items/{id}/license", cart.SelectLicense)
			r.Get("/quote", cart.GetQuote)
			r.Post("/coupon", cart.ApplyCoupon)
			r.Delete("/coupon", cart.RemoveCoupon)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlist.GetWishlist)
			r.Delete("/", wishlist.ClearWishlist)
			r.Post("/items", wishlist.AddItem)
			r.Delete("/items/{id}", wishlist.RemoveItem)
		})

		r.Route("/session", func(r chi.Router) {
			r.Post("/login", wishlist.Login)
			r.Post("/logout", wishlist.Logout)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkout.Initiate)
			r.Get("/{id}", checkout.Status)
			r.Post("/{id}/confirm", checkout.Confirm)
		})
	})

	return r
}
