package trust_db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trust-bot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the trust database and ensures the table exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to trust database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS trust_records (
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          trust INTEGER NOT NULL,
	          warnings INTEGER NOT NULL DEFAULT 0,
	          updated_at INTEGER NOT NULL,
	          PRIMARY KEY (guild_id, user_id)
	      );`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create trust_records table: %w", err)
	}

	return db, nil
}

// GetOrCreate returns the trust record for a user, creating it with the
// given base trust if it does not exist. The insert is a no-op on conflict,
// so concurrent creation for the same key cannot produce duplicates.
func GetOrCreate(db *sqlx.DB, guildID, userID string, base int) (model.TrustRecord, error) {
	insert := `INSERT INTO trust_records (guild_id, user_id, trust, warnings, updated_at)
	           VALUES (?, ?, ?, 0, ?) ON CONFLICT(guild_id, user_id) DO NOTHING`
	if _, err := db.Exec(insert, guildID, userID, base, time.Now().Unix()); err != nil {
		return model.TrustRecord{}, fmt.Errorf("failed to upsert trust record for user %s: %w", userID, err)
	}

	return get(db, guildID, userID)
}

// ApplyDelta atomically adds the deltas to a record, clamping trust to
// [min, max] and warnings to >= 0, in a single UPDATE so interleaved
// readers never observe a half-applied delta.
func ApplyDelta(db *sqlx.DB, guildID, userID string, trustDelta, warningsDelta, min, max int) (model.TrustRecord, error) {
	query := `UPDATE trust_records
	          SET trust = MAX(?, MIN(?, trust + ?)),
	              warnings = MAX(0, warnings + ?),
	              updated_at = ?
	          WHERE guild_id = ? AND user_id = ?`
	res, err := db.Exec(query, min, max, trustDelta, warningsDelta, time.Now().Unix(), guildID, userID)
	if err != nil {
		return model.TrustRecord{}, fmt.Errorf("failed to apply trust delta for user %s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.TrustRecord{}, fmt.Errorf("failed to check rows affected for user %s: %w", userID, err)
	}
	if affected == 0 {
		return model.TrustRecord{}, fmt.Errorf("no trust record found for user %s in guild %s", userID, guildID)
	}

	return get(db, guildID, userID)
}

// ResetWarnings sets the warning counter back to zero without touching trust.
func ResetWarnings(db *sqlx.DB, guildID, userID string) error {
	query := `UPDATE trust_records SET warnings = 0, updated_at = ? WHERE guild_id = ? AND user_id = ?`
	if _, err := db.Exec(query, time.Now().Unix(), guildID, userID); err != nil {
		return fmt.Errorf("failed to reset warnings for user %s: %w", userID, err)
	}
	return nil
}

// Reset restores a record to its defaults: trust back to base, warnings to 0.
// The infraction ledger is not touched.
func Reset(db *sqlx.DB, guildID, userID string, base int) (model.TrustRecord, error) {
	query := `UPDATE trust_records SET trust = ?, warnings = 0, updated_at = ? WHERE guild_id = ? AND user_id = ?`
	res, err := db.Exec(query, base, time.Now().Unix(), guildID, userID)
	if err != nil {
		return model.TrustRecord{}, fmt.Errorf("failed to reset trust record for user %s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.TrustRecord{}, fmt.Errorf("failed to check rows affected for user %s: %w", userID, err)
	}
	if affected == 0 {
		// Resetting a never-seen user just materializes the defaults.
		return GetOrCreate(db, guildID, userID, base)
	}

	return get(db, guildID, userID)
}

// GetAll retrieves every trust record for a guild, used by the
// regeneration sweep and the dashboard overview.
func GetAll(db *sqlx.DB, guildID string) ([]model.TrustRecord, error) {
	var records []model.TrustRecord
	query := "SELECT * FROM trust_records WHERE guild_id = ?"
	if err := db.Select(&records, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to get trust records for guild %s: %w", guildID, err)
	}
	return records, nil
}

// GetAllGuilds returns the distinct guild ids present in the table.
func GetAllGuilds(db *sqlx.DB) ([]string, error) {
	var guilds []string
	if err := db.Select(&guilds, "SELECT DISTINCT guild_id FROM trust_records"); err != nil {
		return nil, fmt.Errorf("failed to list guilds with trust records: %w", err)
	}
	return guilds, nil
}

// Find returns the trust record for a user, or nil if the pair has never
// been seen. Reads never create records.
func Find(db *sqlx.DB, guildID, userID string) (*model.TrustRecord, error) {
	var record model.TrustRecord
	query := "SELECT * FROM trust_records WHERE guild_id = ? AND user_id = ?"
	err := db.Get(&record, query, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find trust record for user %s in guild %s: %w", userID, guildID, err)
	}
	return &record, nil
}

func get(db *sqlx.DB, guildID, userID string) (model.TrustRecord, error) {
	var record model.TrustRecord
	query := "SELECT * FROM trust_records WHERE guild_id = ? AND user_id = ?"
	if err := db.Get(&record, query, guildID, userID); err != nil {
		return model.TrustRecord{}, fmt.Errorf("failed to get trust record for user %s in guild %s: %w", userID, guildID, err)
	}
	return record, nil
}
