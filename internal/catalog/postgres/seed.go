package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
)

const (
	upsertCatalog = `
		INSERT INTO catalogs (id, name, description, is_visible)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_visible = EXCLUDED.is_visible`

	upsertItem = `
		INSERT INTO items (id, catalog_id, name, description, price, image_ref, tags, is_featured, is_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			catalog_id = EXCLUDED.catalog_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image_ref = EXCLUDED.image_ref,
			tags = EXCLUDED.tags,
			is_featured = EXCLUDED.is_featured,
			is_visible = EXCLUDED.is_visible`
)

// Seed upserts catalogs and items in one transaction. Re-running with the
// same ids updates rows in place.
func (r *Repository) Seed(ctx context.Context, catalogs []domain.Catalog, items []domain.Item) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, c := range catalogs {
		if _, err := tx.Exec(ctx, upsertCatalog, c.ID, c.Name, nullable(c.Description), c.IsVisible); err != nil {
			return fmt.Errorf("seed catalog %s: %w", c.ID, err)
		}
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("seed item %q: %w", it.ID, err)
		}
		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := tx.Exec(ctx, upsertItem,
			it.ID, it.CatalogID, it.Name, nullable(it.Description), it.Price,
			nullable(it.ImageRef), tags, it.IsFeatured, it.IsVisible,
		); err != nil {
			return fmt.Errorf("seed item %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	r.logger.InfoContext(ctx, "catalog seeded",
		slog.Int("catalogs", len(catalogs)),
		slog.Int("items", len(items)),
	)
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
