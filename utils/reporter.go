package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	session   *discordgo.Session
	channelID string
)

// InitReporter initializes the sync reporter with a Discord session.
func InitReporter(s *discordgo.Session) {
	session = s
	if v := viper.Get("bot.adminChannelId"); v != nil {
		channelID = CanonicalID(v)
	}
	if channelID == "" {
		log.Println("bot.adminChannelId is not set; sync reports will only be written to the log.")
	}
}

// Report sends a sync pass summary to the admin channel, falling back to the
// process log when no channel is configured.
func Report(level, pass, details string) {
	if session == nil || channelID == "" {
		log.Printf("[%s] Pass: %s, Details: %s", level, pass, details)
		return
	}

	var color int
	switch level {
	case "WARN":
		color = ColorWarn
	case "ERROR":
		color = ColorError
	default:
		color = ColorInfo
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Sync report: %s", pass),
		Color:     color,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Details",
				Value: details,
			},
		},
	}

	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Error sending sync report to Discord: %v", err)
	}
}

// ReportInfo sends an informational sync report.
func ReportInfo(pass, details string) {
	Report("INFO", pass, details)
}

// ReportError sends an error sync report.
func ReportError(pass, details string) {
	Report("ERROR", pass, details)
}
