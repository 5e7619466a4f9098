package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/auth"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
)

func TestOwns(t *testing.T) {
	product := &domain.Listing{ID: "p-1", Kind: domain.KindProduct, VendorID: "v-1"}
	storefront := &domain.Listing{ID: "v-1", Kind: domain.KindVendor}

	assert.True(t, owns(middleware.Claims{Role: auth.RoleAdmin}, product))
	assert.True(t, owns(middleware.Claims{Role: auth.RoleVendor, VendorID: "v-1"}, product))
	assert.True(t, owns(middleware.Claims{Role: auth.RoleVendor, VendorID: "v-1"}, storefront))
	assert.False(t, owns(middleware.Claims{Role: auth.RoleVendor, VendorID: "v-2"}, product))
	assert.False(t, owns(middleware.Claims{Role: auth.RoleVendor}, &domain.Listing{Kind: domain.KindProduct}))
}

func TestIndexListing_Auth(t *testing.T) {
	ts := newTestServer(t, true)
	body := domain.Listing{ID: "p-9", Kind: domain.KindProduct, VendorID: "v-1", Name: "Lace Agbada", Price: 65000}

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/listings", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/listings", body, ts.token(t, "shopper", ""))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = ts.do(t, http.MethodPost, "/api/v1/catalog/listings", body, ts.token(t, auth.RoleVendor, "v-2"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "listing belongs to another vendor", env.Error.Message)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/listings", body, ts.token(t, auth.RoleVendor, "v-1"))
	assert.Equal(t, http.StatusCreated, w.Code)

	got, err := ts.engine.Get(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, "lace-agbada", got.Slug)
}

func TestIndexListing_CannotTakeOverAnotherVendorsListing(t *testing.T) {
	ts := newTestServer(t, true)
	body := domain.Listing{ID: "p-1", Kind: domain.KindProduct, VendorID: "v-2", Name: "Hijacked", Price: 1}

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/listings", body, ts.token(t, auth.RoleVendor, "v-2"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	got, err := ts.engine.Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "v-1", got.VendorID)
	assert.Equal(t, "Ankara Gown", got.Name)

	store := domain.Listing{ID: "v-1", Kind: domain.KindVendor, Name: "Hijacked"}
	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/listings", store, ts.token(t, auth.RoleVendor, "v-1"))
	assert.Equal(t, http.StatusCreated, w.Code, "owners may still update their storefront")

	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/listings", body, ts.token(t, auth.RoleAdmin, ""))
	assert.Equal(t, http.StatusCreated, w.Code, "admins may reassign listings")
}

func TestIndexListing_Validation(t *testing.T) {
	ts := newTestServer(t, true)
	admin := ts.token(t, auth.RoleAdmin, "")

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/listings", domain.Listing{ID: "x", Kind: domain.KindVendor, Name: "X", Rating: 7}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "rating")

	w, env = ts.do(t, http.MethodPost, "/api/v1/catalog/listings", domain.Listing{ID: "x", Kind: domain.KindVendor, Name: "  "}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "name")
}

func TestBulkIndex_AdminOnly(t *testing.T) {
	ts := newTestServer(t, true)
	body := BulkIndexRequest{Listings: []domain.Listing{
		{ID: "p-10", Kind: domain.KindProduct, VendorID: "v-1", Name: "Gele Headtie", Price: 7000},
		{Kind: domain.KindProduct, Name: "no id"},
	}}

	w, _ := ts.do(t, http.MethodPost, "/api/v1/catalog/listings/bulk", body, ts.token(t, auth.RoleVendor, "v-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/listings/bulk", body, ts.token(t, auth.RoleAdmin, ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"indexed":1,"skipped":1}`, string(env.Data))

	w, _ = ts.do(t, http.MethodPost, "/api/v1/catalog/listings/bulk", BulkIndexRequest{}, ts.token(t, auth.RoleAdmin, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteListing(t *testing.T) {
	ts := newTestServer(t, true)

	w, _ := ts.do(t, http.MethodDelete, "/api/v1/catalog/listings/p-2", nil, ts.token(t, auth.RoleVendor, "v-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = ts.do(t, http.MethodDelete, "/api/v1/catalog/listings/p-2", nil, ts.token(t, auth.RoleVendor, "v-2"))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = ts.do(t, http.MethodDelete, "/api/v1/catalog/listings/p-2", nil, ts.token(t, auth.RoleAdmin, ""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(t, http.MethodDelete, "/api/v1/catalog/listings/p-2", nil, ts.token(t, auth.RoleVendor, "v-2"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReindex_WithoutSource(t *testing.T) {
	ts := newTestServer(t, true)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/catalog/reindex", nil, ts.token(t, auth.RoleVendor, "v-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := ts.do(t, http.MethodPost, "/api/v1/catalog/reindex", nil, ts.token(t, auth.RoleAdmin, ""))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
}
