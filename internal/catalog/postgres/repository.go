// Package postgres implements catalog.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

var droppedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "storefront",
	Name:      "catalog_invalid_records_total",
	Help:      "Catalog rows dropped at the read boundary",
}, []string{"kind"})

const (
	catalogColumns = `id, name, COALESCE(description, ''), is_visible`
	itemColumns    = `i.id, i.catalog_id, i.name, COALESCE(i.description, ''), i.price,
		COALESCE(i.image_ref, ''), i.tags, i.is_featured, i.is_visible`
)

// Repository reads catalogs and items.
type Repository struct {
	db     database.DBTX
	logger *slog.Logger
}

var _ catalog.Repository = (*Repository)(nil)

// NewRepository creates a Repository over db.
func NewRepository(db database.DBTX, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Migrate creates or upgrades the catalog schema.
func (r *Repository) Migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open catalog migrations: %w", err)
	}
	return database.Migrate(ctx, r.db, sub, r.logger)
}

// Ping runs a trivial query.
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// ListCatalogs returns catalogs ordered by name.
func (r *Repository) ListCatalogs(ctx context.Context, visibleOnly bool, page pagination.Params) (_ []domain.Catalog, _ int, err error) {
	where := ""
	if visibleOnly {
		where = "WHERE is_visible"
	}
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM catalogs
		%s
		ORDER BY name, id
		LIMIT $1 OFFSET $2`, catalogColumns, where)

	ctx, done := database.TraceQuery(ctx, "list_catalogs", query)
	defer func() { done(err) }()

	rows, err := r.db.Query(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var (
		catalogs []domain.Catalog
		total    int
	)
	for rows.Next() {
		var c domain.Catalog
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsVisible, &total); err != nil {
			return nil, 0, fmt.Errorf("scan catalog row: %w", err)
		}
		if c.ID == "" || c.Name == "" {
			r.drop(ctx, "catalog", c.ID, "missing id or name")
			total--
			continue
		}
		catalogs = append(catalogs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate catalog rows: %w", err)
	}
	if catalogs == nil {
		catalogs = []domain.Catalog{}
	}
	return catalogs, total, nil
}

// GetCatalog returns one catalog regardless of visibility.
func (r *Repository) GetCatalog(ctx context.Context, id string) (_ *domain.Catalog, err error) {
	query := fmt.Sprintf(`SELECT %s FROM catalogs WHERE id = $1`, catalogColumns)

	ctx, done := database.TraceQuery(ctx, "get_catalog", query)
	defer func() { done(err) }()

	var c domain.Catalog
	if err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.IsVisible); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("catalog", id)
		}
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	return &c, nil
}

// ListItems returns items ordered featured first, then by name.
func (r *Repository) ListItems(ctx context.Context, filter catalog.ItemFilter, page pagination.Params) (_ []domain.Item, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)
	if filter.CatalogID != "" {
		conditions = append(conditions, fmt.Sprintf("i.catalog_id = $%d", argIndex))
		args = append(args, filter.CatalogID)
		argIndex++
	}
	if filter.FeaturedOnly {
		conditions = append(conditions, "i.is_featured")
	}
	if filter.VisibleOnly {
		conditions = append(conditions, "i.is_visible", "c.is_visible")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM items i
		JOIN catalogs c ON c.id = i.catalog_id
		%s
		ORDER BY i.is_featured DESC, i.name, i.id
		LIMIT $%d OFFSET $%d`, itemColumns, where, argIndex, argIndex+1)
	args = append(args, page.Limit(), page.Offset())

	ctx, done := database.TraceQuery(ctx, "list_items", query)
	defer func() { done(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var (
		items []domain.Item
		total int
	)
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(itemDest(&it, &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan item row: %w", err)
		}
		if verr := it.Validate(); verr != nil {
			r.drop(ctx, "item", it.ID, verr.Error())
			total--
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate item rows: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, total, nil
}

// GetItem returns one sellable item regardless of visibility.
func (r *Repository) GetItem(ctx context.Context, id string) (_ *domain.Item, err error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM items i
		WHERE i.id = $1`, itemColumns)

	ctx, done := database.TraceQuery(ctx, "get_item", query)
	defer func() { done(err) }()

	var it domain.Item
	if err := r.db.QueryRow(ctx, query, id).Scan(itemDest(&it, nil)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("item", id)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if verr := it.Validate(); verr != nil {
		r.drop(ctx, "item", id, verr.Error())
		return nil, apperrors.NotFound("item", id)
	}
	return &it, nil
}

func itemDest(it *domain.Item, total *int) []any {
	dest := []any{
		&it.ID, &it.CatalogID, &it.Name, &it.Description, &it.Price,
		&it.ImageRef, &it.Tags, &it.IsFeatured, &it.IsVisible,
	}
	if total != nil {
		dest = append(dest, total)
	}
	return dest
}

func (r *Repository) drop(ctx context.Context, kind, id, reason string) {
	droppedRecords.WithLabelValues(kind).Inc()
	r.logger.WarnContext(ctx, "dropping invalid catalog record",
		slog.String("kind", kind),
		slog.String("id", id),
		slog.String("reason", reason),
	)
}
