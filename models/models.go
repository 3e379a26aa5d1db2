package models

import "time"

// Category represents a Discord category channel as persisted for analytics.
// Categories are never hard-deleted; Deleted is flipped when a category
// disappears from the guild topology.
type Category struct {
	ID      string
	Name    string
	Deleted bool
}

// Channel represents a Discord channel. CategoryID is nil for channels that
// sit outside any category. IsStaff is derived from the configured staff
// channel and staff category sets.
type Channel struct {
	ID         string
	Name       string
	CategoryID *string
	IsStaff    bool
	Deleted    bool
}

// Thread represents a thread channel. ParentChannelID references the text
// channel the thread was opened in.
type Thread struct {
	ID                  string
	ParentChannelID     string
	Name                string
	Archived            bool
	AutoArchiveDuration int
	Locked              bool
	Type                string
	CreatedAt           time.Time
}

// User represents a guild member past or present. Rows are append-only:
// InGuild is the only membership-transition flag and no row is ever removed
// on departure.
type User struct {
	ID              string
	Name            string
	AvatarHash      *string
	GuildAvatarHash *string
	JoinedAt        time.Time
	CreatedAt       time.Time
	IsStaff         bool
	Bot             bool
	InGuild         bool
	PublicFlags     map[string]bool
	Pending         bool
}

// Message represents a recorded message. For thread messages ChannelID holds
// the parent channel id and ThreadID the thread id. ContentHash is a one-way
// fingerprint; raw content is never stored.
type Message struct {
	ID          string
	ChannelID   string
	ThreadID    *string
	AuthorID    string
	CreatedAt   *time.Time
	IsDeleted   bool
	ContentHash *string
}
