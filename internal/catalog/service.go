package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// Service is the shopper view of the catalog: hidden catalogs and items
// do not exist for it.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a Service over repo.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListCatalogs returns visible catalogs.
func (s *Service) ListCatalogs(ctx context.Context, page pagination.Params) (pagination.Page[domain.Catalog], error) {
	catalogs, total, err := s.repo.ListCatalogs(ctx, true, page)
	if err != nil {
		return pagination.Page[domain.Catalog]{}, s.unavailable(ctx, "list catalogs", err)
	}
	return pagination.NewPage(catalogs, total, page), nil
}

// GetCatalog returns a visible catalog.
func (s *Service) GetCatalog(ctx context.Context, id string) (*domain.Catalog, error) {
	c, err := s.repo.GetCatalog(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("catalog", id)
		}
		return nil, s.unavailable(ctx, "get catalog", err)
	}
	if !c.IsVisible {
		return nil, apperrors.NotFound("catalog", id)
	}
	return c, nil
}

// ListItems returns the visible items of a visible catalog.
func (s *Service) ListItems(ctx context.Context, catalogID string, featuredOnly bool, page pagination.Params) (pagination.Page[domain.Item], error) {
	if _, err := s.GetCatalog(ctx, catalogID); err != nil {
		return pagination.Page[domain.Item]{}, err
	}
	items, total, err := s.repo.ListItems(ctx, ItemFilter{
		CatalogID:    catalogID,
		FeaturedOnly: featuredOnly,
		VisibleOnly:  true,
	}, page)
	if err != nil {
		return pagination.Page[domain.Item]{}, s.unavailable(ctx, "list items", err)
	}
	return pagination.NewPage(items, total, page), nil
}

// ResolveItem returns a visible item together with the reference of its
// visible catalog, ready for the cart.
func (s *Service) ResolveItem(ctx context.Context, itemID string) (domain.Item, domain.CatalogRef, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Item{}, domain.CatalogRef{}, apperrors.NotFound("item", itemID)
		}
		return domain.Item{}, domain.CatalogRef{}, s.unavailable(ctx, "get item", err)
	}
	if !item.IsVisible {
		return domain.Item{}, domain.CatalogRef{}, apperrors.NotFound("item", itemID)
	}

	c, err := s.GetCatalog(ctx, item.CatalogID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Item{}, domain.CatalogRef{}, apperrors.NotFound("item", itemID)
		}
		return domain.Item{}, domain.CatalogRef{}, err
	}
	return *item, c.Ref(), nil
}

// Ping reports whether the catalog store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) unavailable(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "catalog store failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	e := apperrors.ServiceUnavailable("catalog is temporarily unavailable")
	e.Err = errors.Join(apperrors.ErrServiceUnavail, err)
	return e
}
