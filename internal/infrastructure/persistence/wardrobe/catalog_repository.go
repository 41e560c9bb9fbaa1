package wardrobe

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/oklog/ulid/v2"
)

// CatalogRepository handles the shared category and style-tag tables.
type CatalogRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewCatalogRepository creates a catalog repository over an open database handle.
func NewCatalogRepository(db *sql.DB, logger *logging.ChanneledLogger) *CatalogRepository {
	return &CatalogRepository{db: db, logger: logger}
}

// ListCategories returns every clothing category, alphabetically.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*wardrobe.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slot FROM categories ORDER BY name`)
	if err != nil {
		r.logger.Database().Error("Failed to query categories", "error", err.Error())
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*wardrobe.Category
	for rows.Next() {
		var c wardrobe.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slot); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// ListStyleTags returns every style tag, alphabetically.
func (r *CatalogRepository) ListStyleTags(ctx context.Context) ([]*wardrobe.StyleTag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM style_tags ORDER BY name`)
	if err != nil {
		r.logger.Database().Error("Failed to query style tags", "error", err.Error())
		return nil, fmt.Errorf("failed to query style tags: %w", err)
	}
	defer rows.Close()

	var tags []*wardrobe.StyleTag
	for rows.Next() {
		var t wardrobe.StyleTag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan style tag: %w", err)
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

// SeedDefaults inserts the built-in categories and style tags if missing.
func (r *CatalogRepository) SeedDefaults(ctx context.Context) error {
	defaults := map[string]string{
		"Tops": "top", "Bottoms": "bottom", "Dresses": "top",
		"Outerwear": "outerwear", "Footwear": "footwear", "Accessories": "accessory",
	}
	for name, slot := range defaults {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (id, name, slot) VALUES (?, ?, ?)`,
			ulid.Make().String(), name, slot)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	tags := []string{"casual", "formal", "streetwear", "minimalist", "vintage", "sporty", "bohemian"}
	for _, name := range tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO style_tags (id, name) VALUES (?, ?)`,
			ulid.Make().String(), name)
		if err != nil {
			return fmt.Errorf("failed to seed style tag %s: %w", name, err)
		}
	}
	return nil
}
