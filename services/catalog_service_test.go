package services

import (
	"context"
	"net/http"
	"testing"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/database"
	"storefront-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var remoteOn = CatalogOptions{RemoteEnabled: true, AdminLocalFallback: true}

func TestLoad_RemoteMapsToCanonicalShape(t *testing.T) {
	f := newFixture(remoteOn)
	f.api.products = []models.RemoteProduct{
		{ID: "1", Title: "Tee", Price: 350, Stock: 2, ImageURL: "tee.jpg"},
		{ID: "2", Title: "Dress", Category: "Women", Price: 520},
	}

	products := f.catalog.Load(context.Background())

	require.Len(t, products, 2)
	assert.Equal(t, models.Product{ID: "1", Title: "Tee", Category: "General", Price: 350, Stock: 2, Image: "tee.jpg"}, products[0])
	assert.Equal(t, "Women", products[1].Category)
	assert.Empty(t, f.local.List(context.Background()), "remote success must not seed local")
}

func TestLoad_RemoteEmptyPrefersLocal(t *testing.T) {
	f := newFixture(remoteOn)
	ctx := context.Background()
	f.api.products = []models.RemoteProduct{}
	local := []models.Product{{ID: "L1", Title: "Cap"}, {ID: "L2", Title: "Scarf"}}
	require.NoError(t, f.local.Save(ctx, local))

	products := f.catalog.Load(ctx)

	assert.Equal(t, local, products)
	assert.Equal(t, local, f.catalog.Products())
}

func TestLoad_RemoteEmptyAndLocalEmpty(t *testing.T) {
	f := newFixture(remoteOn)

	assert.Empty(t, f.catalog.Load(context.Background()))
}

func TestLoad_RemoteFailureSeedsLocal(t *testing.T) {
	f := newFixture(remoteOn)
	f.api.listErr = &clients.StatusError{Method: "GET", Path: "/products", StatusCode: http.StatusInternalServerError}

	products := f.catalog.Load(context.Background())

	assert.Len(t, products, len(database.DefaultCatalog))
	assert.Len(t, f.local.List(context.Background()), len(database.DefaultCatalog))
}

func TestLoad_RemoteDisabledUsesLocal(t *testing.T) {
	f := newFixture(CatalogOptions{})
	f.api.products = []models.RemoteProduct{{ID: "1", Title: "Remote only"}}

	products := f.catalog.Load(context.Background())

	require.Len(t, products, len(database.DefaultCatalog))
	assert.Equal(t, models.ProductID("L1"), products[0].ID)
}

func TestCategoriesAndSearch(t *testing.T) {
	f := newFixture(CatalogOptions{})
	ctx := context.Background()
	require.NoError(t, f.local.Save(ctx, []models.Product{
		{ID: "1", Title: "Classic Tee", Category: "Men", Description: "cotton"},
		{ID: "2", Title: "Summer Dress", Category: "Women", Description: "light COTTON blend"},
		{ID: "3", Title: "Sneakers", Category: "Kids"},
		{ID: "4", Title: "Polo", Category: "Men"},
		{ID: "5", Title: "Mystery", Category: ""},
	}))
	f.catalog.Load(ctx)

	assert.Equal(t, []string{"Men", "Women", "Kids"}, f.catalog.Categories())

	ids := func(ps []models.Product) []models.ProductID {
		out := []models.ProductID{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Equal(t, []models.ProductID{"1", "2"}, ids(f.catalog.Search("Cotton", "")))
	assert.Equal(t, []models.ProductID{"1"}, ids(f.catalog.Search("cotton", "Men")))
	assert.Equal(t, []models.ProductID{"1", "4"}, ids(f.catalog.Search("", "Men")))
	assert.Equal(t, []models.ProductID{"3"}, ids(f.catalog.Search("KIDS", "")))
	assert.Empty(t, f.catalog.Search("cotton", "Kids"))
	assert.Len(t, f.catalog.Search("  ", ""), 5)

	p, ok := f.catalog.Get("4")
	assert.True(t, ok)
	assert.Equal(t, "Polo", p.Title)
	_, ok = f.catalog.Get("nope")
	assert.False(t, ok)
}

func TestAddProduct_Validation(t *testing.T) {
	f := newFixture(remoteOn)

	_, err := f.catalog.AddProduct(context.Background(), "s1", models.ProductPayload{Title: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.catalog.AddProduct(context.Background(), "s1", models.ProductPayload{Title: "Hat", Price: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, f.local.List(context.Background()))
}

func TestAddProduct_LocalWithoutLogin(t *testing.T) {
	f := newFixture(remoteOn)
	ctx := context.Background()

	res, err := f.catalog.AddProduct(ctx, "s1", models.ProductPayload{Title: "Hat", Price: 10})

	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, models.ProductID("L1700000000000"), res.Product.ID)
	assert.Equal(t, "General", res.Product.Category)
	assert.Empty(t, f.api.created)
	// remote is empty, so the new local item must show up in the cache
	_, ok := f.catalog.Get("L1700000000000")
	assert.True(t, ok)

	res, err = f.catalog.AddProduct(ctx, "s1", models.ProductPayload{Title: "Scarf"})
	require.NoError(t, err)
	assert.Equal(t, models.ProductID("L1700000000001"), res.Product.ID)
	assert.Equal(t, models.ProductID("L1700000000001"), f.local.List(ctx)[0].ID)
}

func TestAddProduct_RemoteWhenLoggedIn(t *testing.T) {
	f := newFixture(remoteOn)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, "s1", "opaque-token"))

	res, err := f.catalog.AddProduct(ctx, "s1", models.ProductPayload{Title: "Hat", Image: "hat.jpg"})

	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	require.Len(t, f.api.created, 1)
	assert.Equal(t, "hat.jpg", f.api.created[0].ImageURL)
	assert.Empty(t, f.local.List(ctx))
	_, ok := f.catalog.Get("100")
	assert.True(t, ok)
}

func TestAddProduct_RemoteFailureFallsBackLocal(t *testing.T) {
	f := newFixture(remoteOn)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, "s1", "opaque-token"))
	f.api.createErr = errNetwork

	res, err := f.catalog.AddProduct(ctx, "s1", models.ProductPayload{Title: "Hat"})

	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Len(t, f.local.List(ctx), 1)
	assert.True(t, f.auth.IsLoggedIn(ctx, "s1"))
}

func TestAddProduct_UnauthorizedLogsOut(t *testing.T) {
	f := newFixture(remoteOn)
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, "s1", "stale"))
	f.api.createErr = &clients.StatusError{StatusCode: http.StatusUnauthorized}

	res, err := f.catalog.AddProduct(ctx, "s1", models.ProductPayload{Title: "Hat"})

	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.False(t, f.auth.IsLoggedIn(ctx, "s1"))
}

func TestAddProduct_NoFallbackSignalsCaller(t *testing.T) {
	f := newFixture(CatalogOptions{RemoteEnabled: true, AdminLocalFallback: false})
	ctx := context.Background()
	require.NoError(t, f.tokens.Set(ctx, "s1", "opaque-token"))
	f.api.createErr = errNetwork

	_, err := f.catalog.AddProduct(ctx, "s1", models.ProductPayload{Title: "Hat"})

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Empty(t, f.local.List(ctx))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(remoteOn)
	ctx := context.Background()
	require.NoError(t, f.local.Save(ctx, []models.Product{{ID: "L1", Title: "Cap"}, {ID: "L2", Title: "Scarf"}}))
	f.catalog.Load(ctx)

	res, err := f.catalog.DeleteProduct(ctx, "s1", "L1")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Len(t, f.catalog.Products(), 1)

	_, err = f.catalog.DeleteProduct(ctx, "s1", "L1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.tokens.Set(ctx, "s1", "opaque-token"))
	res, err = f.catalog.DeleteProduct(ctx, "s1", "7")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, []models.ProductID{"7"}, f.api.deleted)

	f.api.deleteErr = errNetwork
	res, err = f.catalog.DeleteProduct(ctx, "s1", "L2")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Empty(t, f.local.List(ctx))
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	f := newFixture(remoteOn)
	_, err := f.catalog.UpdateProduct(ctx, "s1", "L1", models.ProductPayload{Title: "X"})
	assert.ErrorIs(t, err, apperrors.ErrEditDisabled)

	f = newFixture(CatalogOptions{RemoteEnabled: true, EditSupport: true, AdminLocalFallback: true})
	require.NoError(t, f.local.Save(ctx, []models.Product{{ID: "L1", Title: "Cap", Category: "Men"}}))

	res, err := f.catalog.UpdateProduct(ctx, "s1", "L1", models.ProductPayload{Title: "Wool Cap", Price: 40})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, "Wool Cap", f.local.List(ctx)[0].Title)
	assert.Equal(t, "General", f.local.List(ctx)[0].Category)

	_, err = f.catalog.UpdateProduct(ctx, "s1", "missing", models.ProductPayload{Title: "X"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.tokens.Set(ctx, "s1", "opaque-token"))
	res, err = f.catalog.UpdateProduct(ctx, "s1", "5", models.ProductPayload{Title: "Remote"})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, []models.ProductID{"5"}, f.api.updated)
}

func TestClearLocal(t *testing.T) {
	f := newFixture(CatalogOptions{})
	ctx := context.Background()
	require.NoError(t, f.local.Save(ctx, []models.Product{{ID: "L9", Title: "Custom"}}))

	products, err := f.catalog.ClearLocal(ctx)

	require.NoError(t, err)
	// remote disabled: clearing re-seeds the default catalog on reload
	assert.Len(t, products, len(database.DefaultCatalog))
}
