package handlers

import (
	"log"

	"guild-metrics/bot"
	"guild-metrics/utils"

	"github.com/bwmarrin/discordgo"
)

// GuildCreateHandler runs a full guild sync whenever the configured guild
// becomes available: at startup and again on every gateway reconnect.
func GuildCreateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildCreate) {
	return func(s *discordgo.Session, g *discordgo.GuildCreate) {
		log.Printf("Received guild available for %s", g.ID)

		if utils.CanonicalID(g.ID) != b.Cfg.GuildID {
			log.Println("Guild was not the configured guild, discarding event")
			return
		}

		if err := b.Syncer.SyncGuild(g.Guild); err != nil {
			log.Printf("Guild sync failed: %v", err)
			utils.ReportError("guild sync", err.Error())
		}
	}
}

// resyncTopology re-runs the full topology sync from the session state.
// Channel and thread events delegate to the whole pass rather than a
// single-row patch so derived fields (is_staff, category linkage) stay
// correct.
func resyncTopology(b *bot.Bot, s *discordgo.Session, guildID string) {
	if utils.CanonicalID(guildID) != b.Cfg.GuildID {
		return
	}

	guild, err := s.State.Guild(b.Cfg.GuildID)
	if err != nil {
		log.Printf("Cannot resync topology, guild %s not in state: %v", b.Cfg.GuildID, err)
		return
	}

	if err := b.Syncer.SyncTopology(guild); err != nil {
		log.Printf("Topology sync failed: %v", err)
	}
}

// ChannelCreateHandler syncs the topology when a channel is created.
func ChannelCreateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.ChannelCreate) {
	return func(s *discordgo.Session, c *discordgo.ChannelCreate) {
		resyncTopology(b, s, c.GuildID)
	}
}

// ChannelUpdateHandler syncs the topology when a channel is updated.
func ChannelUpdateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.ChannelUpdate) {
	return func(s *discordgo.Session, c *discordgo.ChannelUpdate) {
		resyncTopology(b, s, c.GuildID)
	}
}

// ChannelDeleteHandler syncs the topology when a channel is deleted; the
// mark-deleted step flips the soft-delete flag on the stored row.
func ChannelDeleteHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.ChannelDelete) {
	return func(s *discordgo.Session, c *discordgo.ChannelDelete) {
		resyncTopology(b, s, c.GuildID)
	}
}

// ThreadCreateHandler syncs the topology when a thread is created.
func ThreadCreateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.ThreadCreate) {
	return func(s *discordgo.Session, t *discordgo.ThreadCreate) {
		resyncTopology(b, s, t.GuildID)
	}
}

// ThreadUpdateHandler syncs the topology when a thread is updated.
func ThreadUpdateHandler(b *bot.Bot) func(*discordgo.Session, *discordgo.ThreadUpdate) {
	return func(s *discordgo.Session, t *discordgo.ThreadUpdate) {
		resyncTopology(b, s, t.GuildID)
	}
}
