package database

import (
	"database/sql"
	"errors"
	"fmt"

	"guild-metrics/models"
)

// GetChannel fetches a channel row by its canonical id.
func GetChannel(q DBTX, id string) (*models.Channel, error) {
	var ch models.Channel
	err := q.QueryRow(
		`SELECT id, name, category_id, is_staff, deleted FROM channels WHERE id = ?`, id,
	).Scan(&ch.ID, &ch.Name, &ch.CategoryID, &ch.IsStaff, &ch.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", id, err)
	}
	return &ch, nil
}

// UpsertChannel inserts a channel or updates the name, category linkage and
// staff derivation of an existing row. The deleted flag is owned by the
// mark-deleted step of the topology sync.
func UpsertChannel(q DBTX, ch models.Channel) error {
	_, err := q.Exec(
		`INSERT INTO channels (id, name, category_id, is_staff, deleted)
         VALUES (?, ?, ?, ?, 0)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             category_id = excluded.category_id,
             is_staff = excluded.is_staff`,
		ch.ID, ch.Name, ch.CategoryID, ch.IsStaff,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert channel %s: %w", ch.ID, err)
	}
	return nil
}

// MarkChannelsDeletedExcept soft-deletes every channel whose id is not in
// the keep set.
func MarkChannelsDeletedExcept(q DBTX, keepIDs []string) error {
	var err error
	if len(keepIDs) == 0 {
		_, err = q.Exec(`UPDATE channels SET deleted = 1`)
	} else {
		query := fmt.Sprintf(
			`UPDATE channels SET deleted = 1 WHERE id NOT IN (%s)`,
			placeholders(len(keepIDs)),
		)
		_, err = q.Exec(query, toAnySlice(keepIDs)...)
	}
	if err != nil {
		return fmt.Errorf("failed to mark deleted channels: %w", err)
	}
	return nil
}
