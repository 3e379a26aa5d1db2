package bot

import (
	"log"

	"github.com/robfig/cron/v3"
)

var c *cron.Cron

// startScheduler starts the periodic full-guild resync. The schedule is a
// backstop against gateway events lost during disconnects; every pass is
// idempotent.
func startScheduler(b *Bot) {
	log.Println("Initializing scheduler...")
	c = cron.New()
	_, err := c.AddFunc(b.Cfg.ResyncSchedule, func() {
		log.Println("Running scheduled guild resync...")
		resync(b)
	})
	if err != nil {
		log.Fatalf("Could not set up cron job: %v", err)
	}
	c.Start()
	log.Printf("Guild resync scheduled (%s).", b.Cfg.ResyncSchedule)

	if b.Cfg.SyncAtStartup {
		go func() {
			log.Println("Performing initial resync on startup...")
			resync(b)
		}()
	} else {
		log.Println("Skipping initial resync on startup as per configuration.")
	}
}

// resync runs a full guild sync from the session state snapshot.
func resync(b *Bot) {
	guild, err := b.Session.State.Guild(b.Cfg.GuildID)
	if err != nil {
		log.Printf("Cannot resync, guild %s not in state yet: %v", b.Cfg.GuildID, err)
		return
	}
	if err := b.Syncer.SyncGuild(guild); err != nil {
		log.Printf("Scheduled resync failed: %v", err)
	}
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}
