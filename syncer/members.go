package syncer

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"slices"

	"guild-metrics/database"
	"guild-metrics/models"
	"guild-metrics/utils"

	"github.com/bwmarrin/discordgo"
)

// MemberSyncStats reports the outcome of one bulk member reconciliation.
type MemberSyncStats struct {
	Total    int
	Inserted int
	Updated  int
	Batches  int
}

// SyncMembers runs the full bulk member reconciliation: every known user is
// marked absent, the live member list is re-upserted in bounded batches
// with insert/update accounting, and an absence sweep catches members the
// bulk path missed. The sync-complete signal fires only after every step.
func (s *Syncer) SyncMembers(guild *discordgo.Guild) (MemberSyncStats, error) {
	var stats MemberSyncStats

	log.Println("Beginning user synchronisation process")

	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.MarkAllUsersAbsent(tx)
	})
	if err != nil {
		return stats, err
	}

	users := make([]models.User, 0, len(guild.Members))
	seen := make(map[string]bool, len(guild.Members))
	for _, member := range guild.Members {
		u, err := s.projectMember(member)
		if err != nil {
			log.Printf("Skipping member: %v", err)
			continue
		}
		users = append(users, u)
		seen[u.ID] = true
	}

	total := len(users)
	batchSize := s.Cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	numBatches := (total + batchSize - 1) / batchSize

	log.Printf("Performing bulk upsert of %d rows in %d batches", total, numBatches)

	inserted := 0
	updated := 0
	for start := 0; start < total; start += batchSize {
		batch := users[start:min(start+batchSize, total)]
		stats.Batches++

		err := database.WithTx(s.DB, func(tx *sql.Tx) error {
			ids := make([]string, len(batch))
			for i, u := range batch {
				ids[i] = u.ID
			}
			// SQLite has no tuple-visibility signal, so new-vs-existing is
			// decided by a pre-check read inside the same transaction.
			existing, err := database.ExistingUserIDs(tx, ids)
			if err != nil {
				return err
			}
			if err := database.BulkUpsertUsers(tx, batch); err != nil {
				return err
			}
			inserted += len(batch) - len(existing)
			updated += len(existing)
			return nil
		})
		if err != nil {
			return stats, err
		}

		log.Printf("User upsert: inserted %d rows, updated %d rows, done %d rows, %d rows remaining",
			inserted, updated, inserted+updated, total-(inserted+updated))
	}

	// Absence sweep: the plain upsert pass can miss members that raced the
	// source-side enumeration, so diff the stored in-guild set against what
	// was just seen and flip any stragglers.
	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		present, err := database.PresentUserIDs(tx)
		if err != nil {
			return err
		}
		var stragglers []string
		for _, id := range present {
			if !seen[id] {
				stragglers = append(stragglers, id)
			}
		}
		if len(stragglers) > 0 {
			log.Printf("Absence sweep: marking %d stragglers as departed", len(stragglers))
		}
		return database.SetUsersAbsent(tx, stragglers)
	})
	if err != nil {
		return stats, err
	}

	log.Println("User upsert complete")
	utils.ReportInfo("member reconciliation",
		fmt.Sprintf("Upserted %d members: %d inserted, %d updated", total, inserted, updated))

	s.Gate.SyncComplete.Set()

	stats.Total = total
	stats.Inserted = inserted
	stats.Updated = updated
	return stats, nil
}

// projectMember maps a live member onto its user row, deriving creation
// time from the id snowflake and staff status from role membership.
func (s *Syncer) projectMember(member *discordgo.Member) (models.User, error) {
	if member.User == nil {
		return models.User{}, fmt.Errorf("member descriptor has no user")
	}

	createdAt, err := discordgo.SnowflakeTimestamp(member.User.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("member %s: bad snowflake: %w", member.User.ID, err)
	}

	return models.User{
		ID:              utils.CanonicalID(member.User.ID),
		Name:            member.User.Username,
		AvatarHash:      optionalString(member.User.Avatar),
		GuildAvatarHash: optionalString(member.Avatar),
		JoinedAt:        member.JoinedAt,
		CreatedAt:       createdAt,
		IsStaff:         slices.Contains(member.Roles, s.Cfg.StaffRoleID),
		Bot:             member.User.Bot,
		InGuild:         true,
		PublicFlags:     models.PublicFlagsMap(member.User.PublicFlags),
		Pending:         member.Pending,
	}, nil
}

// MemberJoin applies a member-joined event: the row is inserted, or fully
// updated if one already exists. A primary key conflict means a concurrent
// bulk reconciliation created the row first, which is the desired outcome.
func (s *Syncer) MemberJoin(member *discordgo.Member) error {
	u, err := s.projectMember(member)
	if err != nil {
		log.Printf("Skipping member join: %v", err)
		return nil
	}

	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		_, err := database.GetUser(tx, u.ID)
		switch {
		case err == nil:
			return database.UpdateUser(tx, u)
		case errors.Is(err, database.ErrNotFound):
			if insErr := database.InsertUser(tx, u); insErr != nil {
				if database.IsKeyConflict(insErr) {
					return nil
				}
				return insErr
			}
			return nil
		default:
			return err
		}
	})
}

// MemberUpdate applies a member-updated event. The write is gated on an
// actual difference in the tracked profile fields; events that change
// nothing tracked leave the row untouched.
func (s *Syncer) MemberUpdate(member *discordgo.Member) error {
	// joined_at is missing while the gateway is still priming its cache.
	if member.JoinedAt.IsZero() {
		return nil
	}

	u, err := s.projectMember(member)
	if err != nil {
		log.Printf("Skipping member update: %v", err)
		return nil
	}

	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		stored, err := database.GetUser(tx, u.ID)
		switch {
		case err == nil:
			if memberDiffers(stored, u) {
				return database.UpdateUser(tx, u)
			}
			return nil
		case errors.Is(err, database.ErrNotFound):
			if insErr := database.InsertUser(tx, u); insErr != nil {
				if database.IsKeyConflict(insErr) {
					return nil
				}
				return insErr
			}
			return nil
		default:
			return err
		}
	})
}

// memberDiffers reports whether any tracked profile field changed.
func memberDiffers(stored *models.User, u models.User) bool {
	return stored.Name != u.Name ||
		!stringPtrEqual(stored.AvatarHash, u.AvatarHash) ||
		!stringPtrEqual(stored.GuildAvatarHash, u.GuildAvatarHash) ||
		stored.IsStaff != u.IsStaff ||
		stored.Pending != u.Pending
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// optionalString converts a possibly-empty string to a nullable column value.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MemberRemove applies a member-removed event by clearing in_guild. The row
// itself is retained; unknown members are a no-op.
func (s *Syncer) MemberRemove(userID string) error {
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		return database.SetUserAbsent(tx, utils.CanonicalID(userID))
	})
}
