package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httputil"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

// CatalogHandler serves the public catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// CompareRequest is the body of POST /api/v1/catalog/compare.
type CompareRequest struct {
	IDs []string `json:"ids" validate:"required,min=2,max=4,dive,required,max=64"`
}

// SuggestResponse wraps suggestion names.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// writeFailure sends validation failures as field errors and everything
// else through the error envelope.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, l *slog.Logger) {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		httputil.WriteValidationError(w, r, err)
		return
	}
	httputil.WriteError(w, r, err, l)
}

// Search handles GET /api/v1/catalog/listings
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, perr := parseSearchQuery(r)
	if perr != nil {
		httputil.WriteInvalidParam(w, r, perr.param, perr.message)
		return
	}

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// GetListing handles GET /api/v1/catalog/listings/{id}
func (h *CatalogHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, l)
}

// Facets handles GET /api/v1/catalog/facets
func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		httputil.WriteInvalidParam(w, r, "kind", "kind must be one of: vendor, product")
		return
	}

	summary, err := h.service.Facets(r.Context(), kind)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary)
}

// Suggest handles GET /api/v1/catalog/suggest
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, perr := intParam(r.URL.Query().Get("limit"), "limit", 0)
	if perr != nil {
		httputil.WriteInvalidParam(w, r, perr.param, perr.message)
		return
	}

	names, err := h.service.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, SuggestResponse{Suggestions: names})
}

// Compare handles POST /api/v1/catalog/compare
func (h *CatalogHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	cmp, err := h.service.Compare(r.Context(), req.IDs)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cmp)
}

// Assistant handles POST /api/v1/catalog/assistant
func (h *CatalogHandler) Assistant(w http.ResponseWriter, r *http.Request) {
	var req service.AssistRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	resp, err := h.service.Assist(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, resp)
}

// GetSessionFilters handles GET /api/v1/catalog/sessions/{session_id}/filters
func (h *CatalogHandler) GetSessionFilters(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.SessionFilters(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, f)
}

// SaveSessionFilters handles PUT /api/v1/catalog/sessions/{session_id}/filters
func (h *CatalogHandler) SaveSessionFilters(w http.ResponseWriter, r *http.Request) {
	var f domain.FilterState
	if err := validator.DecodeAndValidate(r, &f); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	saved, err := h.service.SaveSessionFilters(r.Context(), chi.URLParam(r, "session_id"), f)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, saved)
}

// ClearSessionFilters handles DELETE /api/v1/catalog/sessions/{session_id}/filters
// and answers with the defaults the session reverts to.
func (h *CatalogHandler) ClearSessionFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearSessionFilters(r.Context(), chi.URLParam(r, "session_id")); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, domain.Defaults())
}
