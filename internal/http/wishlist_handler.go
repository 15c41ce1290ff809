package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/wishlist"
)

// RemoteFactory builds a wishlist backend client bound to one session.
type RemoteFactory func(session domain.Session) wishlist.Remote

type WishlistHandler struct {
	sync      *wishlist.Synchronizer
	newRemote RemoteFactory
	logger    *zap.Logger
}

func NewWishlistHandler(sync *wishlist.Synchronizer, newRemote RemoteFactory, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{sync: sync, newRemote: newRemote, logger: logger}
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":  h.sync.Mode(),
		"items": h.sync.Items(),
	})
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if item.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "item id is required")
		return
	}

	if err := h.sync.Add(r.Context(), item); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"items": h.sync.Items()})
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sync.Remove(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": h.sync.Items()})
}

func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Clear(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": h.sync.Items()})
}

// Login switches the synchronizer to authenticated mode for the request's
// session and merges any guest-staged items into the server wishlist.
func (h *WishlistHandler) Login(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if !session.Authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	if err := h.sync.Login(r.Context(), session, h.newRemote(session)); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":  h.sync.Mode(),
		"items": h.sync.Items(),
	})
}

func (h *WishlistHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sync.Logout(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":  h.sync.Mode(),
		"items": h.sync.Items(),
	})
}
