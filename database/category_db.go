package database

import (
	"database/sql"
	"errors"
	"fmt"

	"guild-metrics/models"
)

// GetCategory fetches a category row by its canonical id.
func GetCategory(q DBTX, id string) (*models.Category, error) {
	var cat models.Category
	err := q.QueryRow(
		`SELECT id, name, deleted FROM categories WHERE id = ?`, id,
	).Scan(&cat.ID, &cat.Name, &cat.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %s: %w", id, err)
	}
	return &cat, nil
}

// UpsertCategory inserts a category or, if the row already exists, updates
// its name only. The deleted flag is owned by the mark-deleted step of the
// topology sync.
func UpsertCategory(q DBTX, id, name string) error {
	_, err := q.Exec(
		`INSERT INTO categories (id, name, deleted) VALUES (?, ?, 0)
         ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert category %s: %w", id, err)
	}
	return nil
}

// MarkCategoriesDeletedExcept soft-deletes every category whose id is not in
// the keep set. Rows are never removed; historical messages keep resolving.
func MarkCategoriesDeletedExcept(q DBTX, keepIDs []string) error {
	var err error
	if len(keepIDs) == 0 {
		_, err = q.Exec(`UPDATE categories SET deleted = 1`)
	} else {
		query := fmt.Sprintf(
			`UPDATE categories SET deleted = 1 WHERE id NOT IN (%s)`,
			placeholders(len(keepIDs)),
		)
		_, err = q.Exec(query, toAnySlice(keepIDs)...)
	}
	if err != nil {
		return fmt.Errorf("failed to mark deleted categories: %w", err)
	}
	return nil
}
