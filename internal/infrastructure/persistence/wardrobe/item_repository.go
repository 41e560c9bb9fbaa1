// Package wardrobe provides SQL repositories for clothing items and the
// shared category/style-tag catalog.
package wardrobe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
	"github.com/oklog/ulid/v2"
)

const itemColumns = `id, user_id, name, category, color, brand, style_tags, image_path, thumb_paths, created_at, updated_at`

// ItemRepository handles clothing item persistence.
type ItemRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewItemRepository creates an item repository over an open database handle.
func NewItemRepository(db *sql.DB, logger *logging.ChanneledLogger) *ItemRepository {
	return &ItemRepository{db: db, logger: logger}
}

// Create inserts a new clothing item, assigning a ULID id.
func (r *ItemRepository) Create(ctx context.Context, item *wardrobe.ClothingItem) error {
	if item.ID == "" {
		item.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	tags, err := marshalStrings(item.StyleTags)
	if err != nil {
		return fmt.Errorf("failed to marshal style tags: %w", err)
	}
	thumbs, err := marshalStrings(item.ThumbPaths)
	if err != nil {
		return fmt.Errorf("failed to marshal thumbnail paths: %w", err)
	}

	query := `INSERT INTO clothing_items (` + itemColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err = r.db.ExecContext(ctx, query, item.ID, item.UserID, item.Name, item.Category,
		item.Color, item.Brand, tags, item.ImagePath, thumbs, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to create clothing item", "error", err.Error(), "userId", item.UserID)
		return fmt.Errorf("failed to create clothing item: %w", err)
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, item.UserID)
	}
	return nil
}

// Update rewrites the mutable fields of an existing item owned by the user.
func (r *ItemRepository) Update(ctx context.Context, item *wardrobe.ClothingItem) error {
	item.UpdatedAt = time.Now().UTC()

	tags, err := marshalStrings(item.StyleTags)
	if err != nil {
		return fmt.Errorf("failed to marshal style tags: %w", err)
	}
	thumbs, err := marshalStrings(item.ThumbPaths)
	if err != nil {
		return fmt.Errorf("failed to marshal thumbnail paths: %w", err)
	}

	query := `UPDATE clothing_items
	          SET name = ?, category = ?, color = ?, brand = ?, style_tags = ?,
	              image_path = ?, thumb_paths = ?, updated_at = ?
	          WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, item.Name, item.Category, item.Color, item.Brand,
		tags, item.ImagePath, thumbs, item.UpdatedAt, item.ID, item.UserID)
	if err != nil {
		r.logger.Database().Error("Failed to update clothing item", "error", err.Error(), "itemId", item.ID)
		return fmt.Errorf("failed to update clothing item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check clothing item update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("clothing item %s not found", item.ID)
	}
	return nil
}

// Delete removes an item owned by the user.
func (r *ItemRepository) Delete(ctx context.Context, userID, itemID string) error {
	query := `DELETE FROM clothing_items WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, itemID, userID); err != nil {
		r.logger.Database().Error("Failed to delete clothing item", "error", err.Error(), "itemId", itemID)
		return fmt.Errorf("failed to delete clothing item: %w", err)
	}
	return nil
}

// FindByID returns a single item owned by the user, or (nil, nil) when
// none exists.
func (r *ItemRepository) FindByID(ctx context.Context, userID, itemID string) (*wardrobe.ClothingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM clothing_items WHERE id = ? AND user_id = ?`

	row := r.db.QueryRowContext(ctx, query, itemID, userID)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan clothing item", "error", err.Error(), "itemId", itemID)
		return nil, fmt.Errorf("failed to scan clothing item: %w", err)
	}
	return item, nil
}

// FindByUser returns every item in a user's wardrobe, newest first.
func (r *ItemRepository) FindByUser(ctx context.Context, userID string) ([]*wardrobe.ClothingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM clothing_items
	          WHERE user_id = ? ORDER BY created_at DESC`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Database().Error("Failed to query wardrobe", "error", err.Error(), "userId", userID)
		return nil, fmt.Errorf("failed to query wardrobe: %w", err)
	}
	defer rows.Close()

	var items []*wardrobe.ClothingItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clothing item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wardrobe rows: %w", err)
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, userID)
	}
	return items, nil
}

// FindCreatedSince returns item ids added after the given time, used to
// build the recent-additions signal for AI requests.
func (r *ItemRepository) FindCreatedSince(ctx context.Context, userID string, since time.Time) ([]string, error) {
	query := `SELECT id FROM clothing_items
	          WHERE user_id = ? AND created_at > ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent additions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recent addition: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByUser returns the wardrobe size for a user.
func (r *ItemRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clothing_items WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count wardrobe items: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*wardrobe.ClothingItem, error) {
	var item wardrobe.ClothingItem
	var tags, thumbs string
	err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Category, &item.Color, &item.Brand,
		&tags, &item.ImagePath, &thumbs, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &item.StyleTags); err != nil {
		return nil, fmt.Errorf("malformed style tags for item %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(thumbs), &item.ThumbPaths); err != nil {
		return nil, fmt.Errorf("malformed thumbnail paths for item %s: %w", item.ID, err)
	}
	return &item, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
