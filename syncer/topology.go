package syncer

import (
	"database/sql"
	"log"

	"guild-metrics/database"
	"guild-metrics/models"
	"guild-metrics/utils"

	"github.com/bwmarrin/discordgo"
)

// SyncTopology walks the live guild structure and brings the category,
// channel and thread tables into agreement. It runs as three independently
// committed phases in strict order: categories before channels (staff and
// category linkage depend on them), channels before threads (parent
// resolution depends on them). Entities that vanished from the guild are
// soft-deleted, never removed. The topology-ready signal is cleared for the
// whole run and set only after archive-state reconciliation.
func (s *Syncer) SyncTopology(guild *discordgo.Guild) error {
	s.Gate.TopologyReady.Clear()

	log.Println("Beginning category synchronisation process")

	var categoryIDs []string
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, ch := range guild.Channels {
			if ch.Type != discordgo.ChannelTypeGuildCategory {
				continue
			}
			id := utils.CanonicalID(ch.ID)
			categoryIDs = append(categoryIDs, id)
			if err := database.UpsertCategory(tx, id, ch.Name); err != nil {
				log.Printf("Skipping category %s: %v", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Category synchronisation process complete, synchronising deleted categories")

	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.MarkCategoriesDeletedExcept(tx, categoryIDs)
	})
	if err != nil {
		return err
	}

	log.Println("Deleted category synchronisation process complete, synchronising channels")

	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, ch := range guild.Channels {
			if ch.Type == discordgo.ChannelTypeGuildCategory {
				continue
			}

			categoryID := optionalID(ch.ParentID)
			if s.Cfg.IsIgnoredCategory(categoryID) {
				continue
			}

			row := models.Channel{
				ID:         utils.CanonicalID(ch.ID),
				Name:       ch.Name,
				CategoryID: categoryID,
				IsStaff:    s.Cfg.IsStaffChannel(ch.ID, categoryID),
			}
			if err := database.UpsertChannel(tx, row); err != nil {
				log.Printf("Skipping channel %s: %v", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Channel synchronisation process complete, synchronising deleted channels")

	// The keep set is the full current channel set: an ignore-listed channel
	// is protected from creation and update above, not from deletion-marking.
	var allChannelIDs []string
	for _, ch := range guild.Channels {
		allChannelIDs = append(allChannelIDs, utils.CanonicalID(ch.ID))
	}
	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.MarkChannelsDeletedExcept(tx, allChannelIDs)
	})
	if err != nil {
		return err
	}

	log.Println("Deleted channel synchronisation process complete, synchronising threads")

	channelsByID := make(map[string]*discordgo.Channel, len(guild.Channels))
	for _, ch := range guild.Channels {
		channelsByID[ch.ID] = ch
	}

	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, thread := range guild.Threads {
			row, ok := s.projectThread(thread, channelsByID)
			if !ok {
				continue
			}
			if err := database.UpsertThread(tx, row); err != nil {
				log.Printf("Skipping thread %s: %v", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Thread synchronisation process complete, synchronising thread archive state")

	var liveThreadIDs []string
	for _, thread := range guild.Threads {
		liveThreadIDs = append(liveThreadIDs, utils.CanonicalID(thread.ID))
	}
	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.ReconcileThreadArchiveState(tx, liveThreadIDs)
	})
	if err != nil {
		return err
	}

	log.Println("Thread archive state synchronisation complete, finished synchronising guild topology")
	s.Gate.TopologyReady.Set()
	return nil
}

// projectThread maps a live thread onto its table row. Threads whose parent
// channel cannot be resolved, or whose parent sits in an ignored category,
// are skipped entirely: not persisted, not deleted.
func (s *Syncer) projectThread(
	thread *discordgo.Channel,
	channelsByID map[string]*discordgo.Channel,
) (models.Thread, bool) {
	parent, ok := channelsByID[thread.ParentID]
	if !ok {
		return models.Thread{}, false
	}
	if s.Cfg.IsIgnoredCategory(optionalID(parent.ParentID)) {
		return models.Thread{}, false
	}

	createdAt, err := discordgo.SnowflakeTimestamp(thread.ID)
	if err != nil {
		log.Printf("Skipping thread %s: bad snowflake: %v", thread.ID, err)
		return models.Thread{}, false
	}

	row := models.Thread{
		ID:              utils.CanonicalID(thread.ID),
		ParentChannelID: utils.CanonicalID(thread.ParentID),
		Name:            thread.Name,
		Type:            models.ThreadTypeName(thread.Type),
		CreatedAt:       createdAt,
	}
	if meta := thread.ThreadMetadata; meta != nil {
		row.Archived = meta.Archived
		row.AutoArchiveDuration = meta.AutoArchiveDuration
		row.Locked = meta.Locked
	}
	return row, true
}

// optionalID converts a possibly-empty id string to a nullable canonical id.
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	canonical := utils.CanonicalID(id)
	return &canonical
}
