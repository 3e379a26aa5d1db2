package handlers

import (
	"context"
	"log"

	"guild-metrics/bot"

	"github.com/bwmarrin/discordgo"
)

// MessageCreateHandler records a newly sent message. It waits for the bulk
// member reconciliation and any in-flight topology sync before evaluating
// the message, so an author is never dropped as "unknown" merely because
// reconciliation had not reached their row yet.
func MessageCreateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.GuildID == "" {
			return
		}
		if m.Author == nil || m.Author.Bot {
			return
		}

		if err := b.Syncer.Gate.WaitReady(context.Background()); err != nil {
			return
		}

		channel, err := s.State.Channel(m.ChannelID)
		if err != nil {
			log.Printf("Cannot resolve channel %s for message %s: %v", m.ChannelID, m.ID, err)
			return
		}

		var parent *discordgo.Channel
		if channel.IsThread() {
			if parent, err = s.State.Channel(channel.ParentID); err != nil {
				parent = nil
			}
		}

		if err := b.Syncer.RecordMessage(m.Message, channel, parent); err != nil {
			log.Printf("Failed to record message %s: %v", m.ID, err)
		}
	}
}

// MessageDeleteHandler marks a deleted message; unknown ids are ignored.
func MessageDeleteHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.MessageDelete) {
	return func(s *discordgo.Session, m *discordgo.MessageDelete) {
		if err := b.Syncer.MarkMessageDeleted(m.ID); err != nil {
			log.Printf("Failed to mark message %s deleted: %v", m.ID, err)
		}
	}
}

// MessageDeleteBulkHandler marks every message in a bulk deletion; ids with
// no stored row are ignored.
func MessageDeleteBulkHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.MessageDeleteBulk) {
	return func(s *discordgo.Session, m *discordgo.MessageDeleteBulk) {
		if err := b.Syncer.MarkMessagesDeleted(m.Messages); err != nil {
			log.Printf("Failed to mark bulk-deleted messages: %v", err)
		}
	}
}
