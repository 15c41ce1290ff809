package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/catalog"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

type CatalogHandler struct {
	repo   catalog.RepoInterface
	logger *zap.Logger
}

func NewCatalogHandler(repo catalog.RepoInterface, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, logger: logger}
}

type ProductDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Kind        string `json:"kind"`
}

func productDTO(p *domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       domain.FormatPrice(p.Price),
		Image:       p.Image,
		Category:    p.Category,
		Kind:        string(p.Kind),
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	kind := domain.ItemKind(r.URL.Query().Get("kind"))

	products, err := h.repo.ListProducts(r.Context(), kind)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, productDTO(p))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": dtos})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, productDTO(product))
}

func (h *CatalogHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var dto ProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	price, err := domain.ParsePrice(dto.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be a currency amount")
		return
	}

	product := &domain.Product{
		ID:          chi.URLParam(r, "id"),
		Title:       dto.Title,
		Description: dto.Description,
		Price:       price,
		Image:       dto.Image,
		Category:    dto.Category,
		Kind:        domain.ItemKind(dto.Kind),
	}
	if product.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product id is required")
		return
	}

	if err := h.repo.UpsertProduct(r.Context(), product); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, productDTO(product))
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
