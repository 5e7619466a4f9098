package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"id": "v-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"id":"v-1"}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		logged bool
	}{
		{"app not found", apperrors.NotFound("listing", "v-1"), http.StatusNotFound, "NOT_FOUND", false},
		{"app unavailable", apperrors.Unavailable("feed down", nil), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", true},
		{"sentinel not found", fmt.Errorf("get: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND", false},
		{"sentinel exists", apperrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", false},
		{"sentinel conflict", apperrors.ErrConflict, http.StatusConflict, "CONFLICT", false},
		{"sentinel invalid", apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", false},
		{"sentinel unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", false},
		{"sentinel forbidden", apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN", false},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/listings", nil)

			WriteError(rec, req, tt.err, testLogger(&logs))

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.logged, logs.Len() > 0)
		})
	}
}

func TestWriteError_InternalMessageHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rec, req, fmt.Errorf("pgx: connection refused"), testLogger(&bytes.Buffer{}))

	resp := decode(t, rec)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}

func TestWriteError_PrefersRequestLogger(t *testing.T) {
	var scoped, fallback bytes.Buffer
	ctx := logger.NewContext(context.Background(), testLogger(&scoped))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	WriteError(httptest.NewRecorder(), req, fmt.Errorf("boom"), testLogger(&fallback))

	assert.NotZero(t, scoped.Len())
	assert.Zero(t, fallback.Len())
}

func TestWriteError_RequestID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.NotFound("listing", "x"), nil)
	assert.Equal(t, "corr-123", decode(t, rec).Error.RequestID)

	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperrors.ErrNotFound, nil)
	assert.NotContains(t, rec.Body.String(), "request_id")
}

func TestWriteValidationError(t *testing.T) {
	type body struct {
		Name string `json:"name" validate:"required"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	rec := httptest.NewRecorder()
	WriteValidationError(rec, req, validator.Validate(body{}))
	resp := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, map[string]string{"name": "is required"}, resp.Error.Fields)

	rec = httptest.NewRecorder()
	WriteValidationError(rec, req, fmt.Errorf("decode request body: EOF"))
	resp = decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestWriteInvalidParam(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteInvalidParam(rec, httptest.NewRequest(http.MethodGet, "/", nil), "min_price", "must be a whole number")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	assert.Equal(t, "must be a whole number", resp.Error.Fields["min_price"])
}

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		perPage   int
		wantPages int
		wantNext  bool
	}{
		{"partial last page", 25, 1, 10, 3, true},
		{"on last page", 21, 3, 10, 3, false},
		{"exact division", 30, 2, 10, 3, true},
		{"empty", 0, 1, 20, 0, false},
		{"zero per page", 5, 1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPaginatedResponse([]string{"a"}, tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantNext, resp.HasNext)
		})
	}
}

func TestNewPaginatedResponse_NilDataBecomesEmptySlice(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, NewPaginatedResponse[string](nil, 0, 1, 20))
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
