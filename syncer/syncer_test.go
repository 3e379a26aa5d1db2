package syncer

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"guild-metrics/config"
	"guild-metrics/database"
)

func testConfig() *config.Config {
	return &config.Config{
		GuildID:          "1",
		StaffRoleID:      "900",
		StaffCategories:  map[string]bool{"12": true},
		StaffChannels:    map[string]bool{"23": true},
		IgnoreCategories: map[string]bool{"13": true},
		BatchSize:        500,
	}
}

func newTestSyncer(t *testing.T) *Syncer {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, testConfig())
}

// testGuild builds a guild snapshot with three categories (10 plain, 12
// staff, 13 ignored), channels 20-24 and threads 30-32.
func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID: "1",
		Channels: []*discordgo.Channel{
			{ID: "10", Name: "general-cat", Type: discordgo.ChannelTypeGuildCategory},
			{ID: "12", Name: "staff-cat", Type: discordgo.ChannelTypeGuildCategory},
			{ID: "13", Name: "ignored-cat", Type: discordgo.ChannelTypeGuildCategory},
			{ID: "20", Name: "general", Type: discordgo.ChannelTypeGuildText, ParentID: "10"},
			{ID: "21", Name: "lobby", Type: discordgo.ChannelTypeGuildText},
			{ID: "22", Name: "staff-room", Type: discordgo.ChannelTypeGuildText, ParentID: "12"},
			{ID: "23", Name: "mod-log", Type: discordgo.ChannelTypeGuildText, ParentID: "10"},
			{ID: "24", Name: "hidden", Type: discordgo.ChannelTypeGuildText, ParentID: "13"},
		},
		Threads: []*discordgo.Channel{
			{
				ID: "30", Name: "help-thread", Type: discordgo.ChannelTypeGuildPublicThread,
				ParentID:       "20",
				ThreadMetadata: &discordgo.ThreadMetadata{AutoArchiveDuration: 1440},
			},
			{
				ID: "31", Name: "hidden-thread", Type: discordgo.ChannelTypeGuildPublicThread,
				ParentID:       "24",
				ThreadMetadata: &discordgo.ThreadMetadata{AutoArchiveDuration: 60},
			},
			{
				ID: "32", Name: "orphan-thread", Type: discordgo.ChannelTypeGuildPublicThread,
				ParentID: "99",
			},
		},
	}
}

func testMember(id, name string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		GuildID:  "1",
		JoinedAt: time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC),
		Roles:    roles,
		User: &discordgo.User{
			ID:       id,
			Username: name,
		},
	}
}

// snapshotTable renders every row of a table so two sync runs can be
// compared for net mutations.
func snapshotTable(t *testing.T, db *sql.DB, table string) string {
	t.Helper()
	rows, err := db.Query("SELECT * FROM " + table + " ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var b strings.Builder
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		for _, v := range vals {
			if bs, ok := v.([]byte); ok {
				v = string(bs)
			}
			fmt.Fprintf(&b, "%v|", v)
		}
		b.WriteString("\n")
	}
	require.NoError(t, rows.Err())
	return b.String()
}
