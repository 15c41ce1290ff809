package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations("./migrations"))
	return repo
}

func product(id string, kind domain.ItemKind, price string) *domain.Product {
	return &domain.Product{
		ID:       id,
		Title:    "Product " + id,
		Price:    decimal.RequireFromString(price),
		Category: "templates",
		Kind:     kind,
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpsertAndGetProduct(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertProduct(ctx, product("p-1", domain.ItemKindProduct, "49.00")))

	got, err := repo.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Product p-1", got.Title)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("49")))
	assert.Equal(t, domain.ItemKindProduct, got.Kind)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpsertProduct_UpdatesInPlace(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertProduct(ctx, product("p-1", domain.ItemKindProduct, "49.00")))

	updated := product("p-1", domain.ItemKindProduct, "59.00")
	updated.Title = "Renamed"
	require.NoError(t, repo.UpsertProduct(ctx, updated))

	got, err := repo.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("59")))

	all, err := repo.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListProducts_FilterByKind(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertProduct(ctx, product("p-1", domain.ItemKindProduct, "10")))
	require.NoError(t, repo.UpsertProduct(ctx, product("d-1", domain.ItemKindDoc, "5")))

	docs, err := repo.ListProducts(ctx, domain.ItemKindDoc)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d-1", docs[0].ID)

	all, err := repo.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteProduct(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertProduct(ctx, product("p-1", domain.ItemKindProduct, "10")))
	require.NoError(t, repo.DeleteProduct(ctx, "p-1"))

	_, err := repo.GetProduct(ctx, "p-1")
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, repo.DeleteProduct(ctx, "p-1"), ErrProductNotFound)
}
