// Package syncer implements the reconciliation core: idempotent
// synchronization routines that keep the database mirror of a single
// guild's members, topology and messages consistent with the live gateway
// state.
package syncer

import (
	"database/sql"
	"fmt"

	"guild-metrics/config"

	"github.com/bwmarrin/discordgo"
)

// Syncer coordinates every reconciliation pass against one store and owns
// the readiness gate the incremental handlers wait on.
type Syncer struct {
	DB   *sql.DB
	Cfg  *config.Config
	Gate *Gate
}

// New creates a Syncer with an unset readiness gate.
func New(db *sql.DB, cfg *config.Config) *Syncer {
	return &Syncer{
		DB:   db,
		Cfg:  cfg,
		Gate: NewGate(),
	}
}

// SyncGuild runs a full reconciliation of the guild: topology first (member
// staff derivation and message attribution depend on it), then the bulk
// member pass. Invoked at startup, on guild-available and on the resync
// schedule; every phase is idempotent and safe to re-run in full.
func (s *Syncer) SyncGuild(guild *discordgo.Guild) error {
	if err := s.SyncTopology(guild); err != nil {
		return fmt.Errorf("topology sync: %w", err)
	}
	if _, err := s.SyncMembers(guild); err != nil {
		return fmt.Errorf("member sync: %w", err)
	}
	return nil
}
