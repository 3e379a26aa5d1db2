package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"guild-metrics/models"
	"guild-metrics/utils"
)

const userColumns = `id, name, avatar_hash, guild_avatar_hash, joined_at,
    created_at, is_staff, bot, in_guild, public_flags, pending`

// GetUser fetches a user row by its canonical id.
func GetUser(q DBTX, id string) (*models.User, error) {
	var (
		u         models.User
		joinedAt  string
		createdAt string
		flagsJSON string
	)
	err := q.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.AvatarHash, &u.GuildAvatarHash, &joinedAt,
		&createdAt, &u.IsStaff, &u.Bot, &u.InGuild, &flagsJSON, &u.Pending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	if u.JoinedAt, err = utils.ParseUTC(joinedAt); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = utils.ParseUTC(createdAt); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(flagsJSON), &u.PublicFlags); err != nil {
		return nil, fmt.Errorf("failed to decode public flags for user %s: %w", id, err)
	}
	return &u, nil
}

// userArgs validates a user's timestamps and returns the row values in
// userColumns order.
func userArgs(u models.User) ([]any, error) {
	joinedAt, err := utils.NormalizeUTC(u.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s joined_at: %w", u.ID, err)
	}
	createdAt, err := utils.NormalizeUTC(u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s created_at: %w", u.ID, err)
	}
	flags := u.PublicFlags
	if flags == nil {
		flags = map[string]bool{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public flags for user %s: %w", u.ID, err)
	}

	return []any{
		u.ID, u.Name, u.AvatarHash, u.GuildAvatarHash,
		utils.FormatUTC(joinedAt), utils.FormatUTC(createdAt),
		u.IsStaff, u.Bot, u.InGuild, string(flagsJSON), u.Pending,
	}, nil
}

// InsertUser inserts a new user row. A primary key conflict is returned
// as-is so callers can detect the race with IsKeyConflict.
func InsertUser(q DBTX, u models.User) error {
	args, err := userArgs(u)
	if err != nil {
		return err
	}
	_, err = q.Exec(
		`INSERT INTO users (`+userColumns+`) VALUES (`+placeholders(len(args))+`)`,
		args...,
	)
	return err
}

// UpdateUser overwrites every mutable field of an existing user row. The
// creation time is snowflake-derived and left untouched.
func UpdateUser(q DBTX, u models.User) error {
	args, err := userArgs(u)
	if err != nil {
		return err
	}
	// Drop id and created_at from the column order, re-append id for WHERE.
	_, err = q.Exec(
		`UPDATE users SET name = ?, avatar_hash = ?, guild_avatar_hash = ?,
             joined_at = ?, is_staff = ?, bot = ?, in_guild = ?,
             public_flags = ?, pending = ?
         WHERE id = ?`,
		args[1], args[2], args[3], args[4], args[6], args[7], args[8],
		args[9], args[10], u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", u.ID, err)
	}
	return nil
}

// BulkUpsertUsers performs a single multi-row insert for the batch, updating
// every field except created_at when a row already exists.
func BulkUpsertUsers(q DBTX, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([]string, 0, len(users))
	args := make([]any, 0, len(users)*11)
	for _, u := range users {
		rowArgs, err := userArgs(u)
		if err != nil {
			return err
		}
		rows = append(rows, "("+placeholders(len(rowArgs))+")")
		args = append(args, rowArgs...)
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES ` +
		strings.Join(rows, ",") + `
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            avatar_hash = excluded.avatar_hash,
            guild_avatar_hash = excluded.guild_avatar_hash,
            joined_at = excluded.joined_at,
            is_staff = excluded.is_staff,
            bot = excluded.bot,
            in_guild = excluded.in_guild,
            public_flags = excluded.public_flags,
            pending = excluded.pending`

	if _, err := q.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to bulk upsert %d users: %w", len(users), err)
	}
	return nil
}

// ExistingUserIDs returns which of the given ids already have a user row.
func ExistingUserIDs(q DBTX, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(ids) == 0 {
		return existing, nil
	}

	query := fmt.Sprintf(`SELECT id FROM users WHERE id IN (%s)`, placeholders(len(ids)))
	rows, err := q.Query(query, toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing user ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// PresentUserIDs returns the ids of all users currently flagged in_guild.
func PresentUserIDs(q DBTX) ([]string, error) {
	rows, err := q.Query(`SELECT id FROM users WHERE in_guild = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query present users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkAllUsersAbsent clears the in_guild flag on every user row.
func MarkAllUsersAbsent(q DBTX) error {
	if _, err := q.Exec(`UPDATE users SET in_guild = 0`); err != nil {
		return fmt.Errorf("failed to mark users absent: %w", err)
	}
	return nil
}

// SetUsersAbsent clears the in_guild flag for the given user ids.
func SetUsersAbsent(q DBTX, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE users SET in_guild = 0 WHERE id IN (%s)`, placeholders(len(ids)))
	if _, err := q.Exec(query, toAnySlice(ids)...); err != nil {
		return fmt.Errorf("failed to set users absent: %w", err)
	}
	return nil
}

// SetUserAbsent clears the in_guild flag for one user. Unknown ids are a
// no-op.
func SetUserAbsent(q DBTX, id string) error {
	if _, err := q.Exec(`UPDATE users SET in_guild = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to set user %s absent: %w", id, err)
	}
	return nil
}
