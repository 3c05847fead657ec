// Package catalog is the read side of the shop's catalogs and items.
package catalog

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ItemFilter narrows ListItems.
type ItemFilter struct {
	CatalogID    string
	FeaturedOnly bool
	VisibleOnly  bool
}

// Repository reads catalogs and items from the catalog store. Records that
// fail domain validation are dropped by implementations, never returned.
type Repository interface {
	// ListCatalogs returns one page of catalogs and the total count.
	ListCatalogs(ctx context.Context, visibleOnly bool, page pagination.Params) ([]domain.Catalog, int, error)

	// GetCatalog returns apperrors.ErrNotFound when id is unknown.
	GetCatalog(ctx context.Context, id string) (*domain.Catalog, error)

	// ListItems returns one page of items and the total count.
	ListItems(ctx context.Context, filter ItemFilter, page pagination.Params) ([]domain.Item, int, error)

	// GetItem returns apperrors.ErrNotFound when id is unknown or the
	// record is not sellable.
	GetItem(ctx context.Context, id string) (*domain.Item, error)

	Ping(ctx context.Context) error
}
