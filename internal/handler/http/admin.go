package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/auth"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httputil"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

// AdminHandler serves the authenticated listing write endpoints.
type AdminHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(svc *service.CatalogService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// BulkIndexRequest is the body of POST /api/v1/catalog/listings/bulk.
type BulkIndexRequest struct {
	Listings []domain.Listing `json:"listings" validate:"required,min=1"`
}

// owns reports whether the caller may write l. Admins may write anything;
// vendors only their own storefront and its products.
func owns(c middleware.Claims, l *domain.Listing) bool {
	if c.Role == auth.RoleAdmin {
		return true
	}
	if c.VendorID == "" {
		return false
	}
	if l.Kind == domain.KindVendor {
		return l.ID == c.VendorID
	}
	return l.VendorID == c.VendorID
}

func writeForbidden(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:      "FORBIDDEN",
			Message:   "listing belongs to another vendor",
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

// IndexListing handles POST /api/v1/catalog/listings
func (h *AdminHandler) IndexListing(w http.ResponseWriter, r *http.Request) {
	var l domain.Listing
	if err := validator.DecodeAndValidate(r, &l); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if !owns(claims, &l) {
		writeForbidden(w, r)
		return
	}
	// An upsert must not move a listing out of another vendor's storefront.
	if claims.Role != auth.RoleAdmin {
		existing, err := h.service.GetListing(r.Context(), l.ID)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
		case err != nil:
			writeFailure(w, r, err, h.logger)
			return
		case !owns(claims, existing):
			writeForbidden(w, r)
			return
		}
	}

	if err := h.service.IndexListing(r.Context(), &l); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, l)
}

// BulkIndex handles POST /api/v1/catalog/listings/bulk
func (h *AdminHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	var req BulkIndexRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	res, err := h.service.BulkIndex(r.Context(), req.Listings)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// DeleteListing handles DELETE /api/v1/catalog/listings/{id}
func (h *AdminHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims := middleware.ClaimsFromContext(r.Context())
	if claims.Role != auth.RoleAdmin {
		existing, err := h.service.GetListing(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err, h.logger)
			return
		}
		if !owns(claims, existing) {
			writeForbidden(w, r)
			return
		}
	}

	if err := h.service.DeleteListing(r.Context(), id); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reindex handles POST /api/v1/catalog/reindex. The run continues in the
// background after the 202.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.service.StartReindex(); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}

	logger.FromContext(r.Context()).InfoContext(r.Context(), "reindex started",
		slog.String("requested_by", middleware.ClaimsFromContext(r.Context()).Subject),
	)
	httputil.WriteData(w, http.StatusAccepted, map[string]string{"status": "started"})
}
