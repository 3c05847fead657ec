package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// CatalogService is the shopper view of the catalog.
type CatalogService interface {
	ListCatalogs(ctx context.Context, page pagination.Params) (pagination.Page[domain.Catalog], error)
	GetCatalog(ctx context.Context, id string) (*domain.Catalog, error)
	ListItems(ctx context.Context, catalogID string, featuredOnly bool, page pagination.Params) (pagination.Page[domain.Item], error)
	ResolveItem(ctx context.Context, itemID string) (domain.Item, domain.CatalogRef, error)
}

// CatalogHandler serves catalog browsing.
type CatalogHandler struct {
	catalogs CatalogService
	logger   *slog.Logger
}

// NewCatalogHandler creates a catalog HTTP handler.
func NewCatalogHandler(catalogs CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs, logger: logger}
}

// ListCatalogs handles GET /api/v1/catalogs
func (h *CatalogHandler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalogs.ListCatalogs(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, page)
}

// GetCatalog handles GET /api/v1/catalogs/{catalogId}
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalogs.GetCatalog(r.Context(), chi.URLParam(r, "catalogId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, c)
}

// ListItems handles GET /api/v1/catalogs/{catalogId}/items?featured=true
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	featured := false
	if v := r.URL.Query().Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteBadRequest(w, "featured must be true or false")
			return
		}
		featured = b
	}

	page, err := h.catalogs.ListItems(r.Context(), chi.URLParam(r, "catalogId"), featured, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, page)
}
