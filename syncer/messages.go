package syncer

import (
	"database/sql"
	"errors"

	"guild-metrics/database"
	"guild-metrics/models"
	"guild-metrics/utils"

	"github.com/bwmarrin/discordgo"
)

// Discord message type 24 (auto moderation action); discordgo has no named
// constant for it yet.
const messageTypeAutoModeration discordgo.MessageType = 24

// RecordMessage applies a message-created event. ch is the resolved channel
// the message was sent in; for thread messages parent is the thread's
// parent channel, otherwise nil.
//
// The message is silently dropped when: it has no guild context, the author
// is a bot, it belongs to another guild, it is a synthetic thread-creation
// or auto-moderation marker, the author has no user row (only synchronized
// users have their messages recorded), or the resolved category is on the
// ignore list. Duplicate delivery of an already-recorded id is a no-op.
func (s *Syncer) RecordMessage(m *discordgo.Message, ch *discordgo.Channel, parent *discordgo.Channel) error {
	if m.GuildID == "" {
		return nil
	}
	if m.Author == nil || m.Author.Bot {
		return nil
	}
	if utils.CanonicalID(m.GuildID) != s.Cfg.GuildID {
		return nil
	}
	if m.Type == discordgo.MessageTypeThreadCreated || m.Type == messageTypeAutoModeration {
		return nil
	}
	if ch == nil {
		return nil
	}

	fromThread := ch.IsThread()
	if fromThread && parent == nil {
		// Parent channel is unresolvable; leave the message unrecorded.
		return nil
	}

	var categoryID *string
	if fromThread {
		categoryID = optionalID(parent.ParentID)
	} else {
		categoryID = optionalID(ch.ParentID)
	}
	if s.Cfg.IsIgnoredCategory(categoryID) {
		return nil
	}

	row := models.Message{
		ID:          utils.CanonicalID(m.ID),
		ChannelID:   utils.CanonicalID(ch.ID),
		AuthorID:    utils.CanonicalID(m.Author.ID),
		ContentHash: optionalString(utils.Fingerprint(m.Content)),
	}
	if fromThread {
		// Thread messages are attributed to the parent channel, with the
		// thread recorded alongside.
		row.ChannelID = utils.CanonicalID(parent.ID)
		row.ThreadID = optionalID(ch.ID)
	}
	if !m.Timestamp.IsZero() {
		ts := m.Timestamp
		row.CreatedAt = &ts
	}

	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		if _, err := database.GetUser(tx, row.AuthorID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			return err
		}

		exists, err := database.MessageExists(tx, row.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if err := database.InsertMessage(tx, row); err != nil {
			if database.IsKeyConflict(err) {
				return nil
			}
			return err
		}
		return nil
	})
}

// MarkMessageDeleted applies a message-deleted event; unknown ids are
// silently ignored.
func (s *Syncer) MarkMessageDeleted(messageID string) error {
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.MarkMessageDeleted(tx, utils.CanonicalID(messageID))
	})
}

// MarkMessagesDeleted applies a bulk-delete event; ids with no matching row
// are silently ignored.
func (s *Syncer) MarkMessagesDeleted(messageIDs []string) error {
	ids := make([]string, len(messageIDs))
	for i, id := range messageIDs {
		ids[i] = utils.CanonicalID(id)
	}
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.MarkMessagesDeleted(tx, ids)
	})
}
