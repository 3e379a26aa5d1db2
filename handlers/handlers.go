package handlers

import (
	"log"

	"guild-metrics/bot"

	"github.com/bwmarrin/discordgo"
)

// Register wires all gateway event handlers to the bot.
func Register(b *bot.Bot) {
	// Guild lifecycle and topology events.
	b.Session.AddHandler(GuildCreateHandler(b))
	b.Session.AddHandler(ChannelCreateHandler(b))
	b.Session.AddHandler(ChannelUpdateHandler(b))
	b.Session.AddHandler(ChannelDeleteHandler(b))
	b.Session.AddHandler(ThreadCreateHandler(b))
	b.Session.AddHandler(ThreadUpdateHandler(b))

	// Member events.
	b.Session.AddHandler(MemberAddHandler(b))
	b.Session.AddHandler(MemberUpdateHandler(b))
	b.Session.AddHandler(MemberRemoveHandler(b))

	// Message events.
	b.Session.AddHandler(MessageCreateHandler(b))
	b.Session.AddHandler(MessageDeleteHandler(b))
	b.Session.AddHandler(MessageDeleteBulkHandler(b))

	// Log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
