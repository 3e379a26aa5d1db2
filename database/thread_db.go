package database

import (
	"database/sql"
	"errors"
	"fmt"

	"guild-metrics/models"
	"guild-metrics/utils"
)

// GetThread fetches a thread row by its canonical id.
func GetThread(q DBTX, id string) (*models.Thread, error) {
	var (
		th        models.Thread
		createdAt string
	)
	err := q.QueryRow(
		`SELECT id, parent_channel_id, name, archived, auto_archive_duration,
                locked, type, created_at
         FROM threads WHERE id = ?`, id,
	).Scan(&th.ID, &th.ParentChannelID, &th.Name, &th.Archived,
		&th.AutoArchiveDuration, &th.Locked, &th.Type, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", id, err)
	}

	if th.CreatedAt, err = utils.ParseUTC(createdAt); err != nil {
		return nil, err
	}
	return &th, nil
}

// UpsertThread inserts a thread or updates the mutable fields of an existing
// row. The parent channel and creation time are snowflake-derived and never
// change after first insert.
func UpsertThread(q DBTX, th models.Thread) error {
	createdAt, err := utils.NormalizeUTC(th.CreatedAt)
	if err != nil {
		return fmt.Errorf("thread %s: %w", th.ID, err)
	}

	_, err = q.Exec(
		`INSERT INTO threads (id, parent_channel_id, name, archived,
                              auto_archive_duration, locked, type, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             archived = excluded.archived,
             auto_archive_duration = excluded.auto_archive_duration,
             locked = excluded.locked,
             type = excluded.type`,
		th.ID, th.ParentChannelID, th.Name, th.Archived,
		th.AutoArchiveDuration, th.Locked, th.Type, utils.FormatUTC(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert thread %s: %w", th.ID, err)
	}
	return nil
}

// ReconcileThreadArchiveState marks every thread in the live set as
// unarchived and every stored thread absent from it as archived. This is the
// authoritative archive signal; the per-event archived field may race.
func ReconcileThreadArchiveState(q DBTX, liveIDs []string) error {
	if len(liveIDs) == 0 {
		if _, err := q.Exec(`UPDATE threads SET archived = 1`); err != nil {
			return fmt.Errorf("failed to archive threads: %w", err)
		}
		return nil
	}

	args := toAnySlice(liveIDs)
	unarchive := fmt.Sprintf(
		`UPDATE threads SET archived = 0 WHERE id IN (%s)`, placeholders(len(liveIDs)))
	if _, err := q.Exec(unarchive, args...); err != nil {
		return fmt.Errorf("failed to unarchive live threads: %w", err)
	}

	archive := fmt.Sprintf(
		`UPDATE threads SET archived = 1 WHERE id NOT IN (%s)`, placeholders(len(liveIDs)))
	if _, err := q.Exec(archive, args...); err != nil {
		return fmt.Errorf("failed to archive absent threads: %w", err)
	}
	return nil
}
