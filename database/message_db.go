package database

import (
	"database/sql"
	"errors"
	"fmt"

	"guild-metrics/models"
	"guild-metrics/utils"
)

// GetMessage fetches a message row by its canonical id.
func GetMessage(q DBTX, id string) (*models.Message, error) {
	var (
		m         models.Message
		createdAt *string
	)
	err := q.QueryRow(
		`SELECT id, channel_id, thread_id, author_id, created_at, is_deleted, content_hash
         FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.ChannelID, &m.ThreadID, &m.AuthorID, &createdAt,
		&m.IsDeleted, &m.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	if createdAt != nil {
		t, err := utils.ParseUTC(*createdAt)
		if err != nil {
			return nil, err
		}
		m.CreatedAt = &t
	}
	return &m, nil
}

// MessageExists reports whether a message row with the given id exists.
func MessageExists(q DBTX, id string) (bool, error) {
	var one int
	err := q.QueryRow(`SELECT 1 FROM messages WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check message %s: %w", id, err)
	}
	return true, nil
}

// InsertMessage inserts a new message row. A primary key conflict is
// returned as-is so callers can detect duplicate delivery with
// IsKeyConflict.
func InsertMessage(q DBTX, m models.Message) error {
	var createdAt *string
	if m.CreatedAt != nil {
		t, err := utils.NormalizeUTC(*m.CreatedAt)
		if err != nil {
			return fmt.Errorf("message %s: %w", m.ID, err)
		}
		s := utils.FormatUTC(t)
		createdAt = &s
	}

	_, err := q.Exec(
		`INSERT INTO messages (id, channel_id, thread_id, author_id, created_at, is_deleted, content_hash)
         VALUES (?, ?, ?, ?, ?, 0, ?)`,
		m.ID, m.ChannelID, m.ThreadID, m.AuthorID, createdAt, m.ContentHash,
	)
	return err
}

// MarkMessageDeleted flips the is_deleted flag for one message. Ids with no
// matching row are a no-op.
func MarkMessageDeleted(q DBTX, id string) error {
	if _, err := q.Exec(`UPDATE messages SET is_deleted = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark message %s deleted: %w", id, err)
	}
	return nil
}

// MarkMessagesDeleted flips the is_deleted flag for every referenced id
// that exists, silently ignoring the rest.
func MarkMessagesDeleted(q DBTX, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE messages SET is_deleted = 1 WHERE id IN (%s)`, placeholders(len(ids)))
	if _, err := q.Exec(query, toAnySlice(ids)...); err != nil {
		return fmt.Errorf("failed to mark messages deleted: %w", err)
	}
	return nil
}
