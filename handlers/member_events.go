package handlers

import (
	"context"
	"log"

	"guild-metrics/bot"
	"guild-metrics/utils"

	"github.com/bwmarrin/discordgo"
)

// MemberAddHandler records a member joining the guild. It waits for the
// bulk reconciliation to finish first so the incremental write never races
// a half-populated mirror.
func MemberAddHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if err := b.Syncer.Gate.SyncComplete.Wait(context.Background()); err != nil {
			return
		}
		if utils.CanonicalID(m.GuildID) != b.Cfg.GuildID {
			return
		}

		if err := b.Syncer.MemberJoin(m.Member); err != nil {
			log.Printf("Failed to record member join for %s: %v", m.User.ID, err)
		}
	}
}

// MemberUpdateHandler applies a member profile update.
func MemberUpdateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildMemberUpdate) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		if err := b.Syncer.Gate.SyncComplete.Wait(context.Background()); err != nil {
			return
		}
		if utils.CanonicalID(m.GuildID) != b.Cfg.GuildID {
			return
		}

		if err := b.Syncer.MemberUpdate(m.Member); err != nil {
			log.Printf("Failed to record member update for %s: %v", m.User.ID, err)
		}
	}
}

// MemberRemoveHandler marks a departing member as no longer in the guild.
// The user row itself is retained for historical attribution.
func MemberRemoveHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if err := b.Syncer.Gate.SyncComplete.Wait(context.Background()); err != nil {
			return
		}
		if utils.CanonicalID(m.GuildID) != b.Cfg.GuildID {
			return
		}

		if err := b.Syncer.MemberRemove(m.User.ID); err != nil {
			log.Printf("Failed to record member departure for %s: %v", m.User.ID, err)
		}
	}
}
