package models

import "github.com/bwmarrin/discordgo"

// userFlagNames maps each public user flag bit to the name it is stored
// under in the users.public_flags mapping.
var userFlagNames = map[discordgo.UserFlags]string{
	discordgo.UserFlagDiscordEmployee:           "staff",
	discordgo.UserFlagDiscordPartner:            "partner",
	discordgo.UserFlagHypeSquadEvents:           "hypesquad",
	discordgo.UserFlagBugHunterLevel1:           "bug_hunter",
	discordgo.UserFlagHouseBravery:              "hypesquad_bravery",
	discordgo.UserFlagHouseBrilliance:           "hypesquad_brilliance",
	discordgo.UserFlagHouseBalance:              "hypesquad_balance",
	discordgo.UserFlagEarlySupporter:            "early_supporter",
	discordgo.UserFlagTeamUser:                  "team_user",
	discordgo.UserFlagSystem:                    "system",
	discordgo.UserFlagBugHunterLevel2:           "bug_hunter_level_2",
	discordgo.UserFlagVerifiedBot:               "verified_bot",
	discordgo.UserFlagVerifiedBotDeveloper:      "verified_bot_developer",
	discordgo.UserFlagDiscordCertifiedModerator: "discord_certified_moderator",
}

// PublicFlagsMap expands a public-flags bitfield into the name -> bool
// mapping persisted on the user row.
func PublicFlagsMap(flags discordgo.UserFlags) map[string]bool {
	out := make(map[string]bool, len(userFlagNames))
	for bit, name := range userFlagNames {
		out[name] = flags&bit != 0
	}
	return out
}

// threadTypeNames maps thread channel types to the string stored in the
// threads.type column.
var threadTypeNames = map[discordgo.ChannelType]string{
	discordgo.ChannelTypeGuildNewsThread:    "news_thread",
	discordgo.ChannelTypeGuildPublicThread:  "public_thread",
	discordgo.ChannelTypeGuildPrivateThread: "private_thread",
}

// ThreadTypeName returns the storage name for a thread channel type.
func ThreadTypeName(t discordgo.ChannelType) string {
	if name, ok := threadTypeNames[t]; ok {
		return name
	}
	return "unknown"
}
