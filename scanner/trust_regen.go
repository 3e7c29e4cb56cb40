package scanner

import (
	"log"
	"time"

	"trust-bot/model"
	"trust-bot/trust"
	trust_db "trust-bot/utils/database/trust"

	"github.com/jmoiron/sqlx"
)

// SweepTrustRegen walks every trust record and applies the policy's
// regeneration for the whole days elapsed since the record's last
// activity. A record that fails to update is left for the next sweep.
func SweepTrustRegen(db *sqlx.DB, policy trust.Policy) {
	if !policy.Enabled() {
		return
	}

	guilds, err := trust_db.GetAllGuilds(db)
	if err != nil {
		log.Printf("Error listing guilds for regen sweep: %v", err)
		return
	}

	now := time.Now()
	updated := 0
	for _, guildID := range guilds {
		records, err := trust_db.GetAll(db, guildID)
		if err != nil {
			log.Printf("Error loading trust records for guild %s: %v", guildID, err)
			continue
		}

		for _, record := range records {
			days := int(now.Sub(record.LastActivity()).Hours() / 24)
			if days <= 0 {
				continue
			}
			if regenerate(db, policy, record, days) {
				updated++
			}
		}
	}

	if updated > 0 {
		log.Printf("Trust regeneration sweep updated %d records", updated)
	}
}

// regenerate grants one record's regeneration as a delta through the
// atomic update, so a warn or mute that committed after the record was
// read is never erased by the sweep. The update also touches updated_at,
// keeping the granted days from being granted again by the next sweep.
func regenerate(db *sqlx.DB, policy trust.Policy, record model.TrustRecord, days int) bool {
	delta := policy.OnRegenTick(record, days) - record.Trust
	if delta == 0 {
		return false
	}

	cfg := policy.Config()
	if _, err := trust_db.ApplyDelta(db, record.GuildID, record.UserID, delta, 0, cfg.Min, cfg.Max); err != nil {
		log.Printf("Error regenerating trust for user %s in guild %s: %v", record.UserID, record.GuildID, err)
		return false
	}
	return true
}
