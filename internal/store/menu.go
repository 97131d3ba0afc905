// ABOUTME: Menu item persistence for the restaurant backend
// ABOUTME: Provides listing, upsert, and seeding of the default menu

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ListMenuItems returns every menu item ordered by category, then name
func (s *SQLiteStore) ListMenuItems(ctx context.Context) ([]*MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, is_best_selling,
		       image_url, ingredients, created_at, updated_at
		FROM menu_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	items := []*MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu items: %w", err)
	}
	return items, nil
}

// UpsertMenuItem inserts item or replaces the row with the same ID.
// Timestamps default to now when zero.
func (s *SQLiteStore) UpsertMenuItem(ctx context.Context, item *MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item ID is required")
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	if item.Ingredients == nil {
		item.Ingredients = []string{}
	}

	ingredients, err := json.Marshal(item.Ingredients)
	if err != nil {
		return fmt.Errorf("encoding ingredients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, price, category, is_best_selling,
		                        image_url, ingredients, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			category = excluded.category,
			is_best_selling = excluded.is_best_selling,
			image_url = excluded.image_url,
			ingredients = excluded.ingredients,
			updated_at = excluded.updated_at
	`, item.ID, item.Name, item.Description, item.Price, item.Category, boolToInt(item.IsBestSelling),
		item.ImageURL, string(ingredients), formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting menu item %s: %w", item.ID, err)
	}
	return nil
}

// SeedMenu inserts items only when the menu is empty.
// Returns the number of items inserted.
func (s *SQLiteStore) SeedMenu(ctx context.Context, items []*MenuItem) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting menu items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, item := range items {
		if err := s.UpsertMenuItem(ctx, item); err != nil {
			return 0, err
		}
	}
	s.logger.Info("seeded menu", "items", len(items))
	return len(items), nil
}

func scanMenuItem(rows *sql.Rows) (*MenuItem, error) {
	var (
		item        MenuItem
		bestSelling int
		ingredients string
		createdAt   string
		updatedAt   string
	)
	if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Category,
		&bestSelling, &item.ImageURL, &ingredients, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning menu item: %w", err)
	}
	item.IsBestSelling = bestSelling != 0

	if err := json.Unmarshal([]byte(ingredients), &item.Ingredients); err != nil {
		return nil, fmt.Errorf("decoding ingredients for %s: %w", item.ID, err)
	}

	var err error
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
