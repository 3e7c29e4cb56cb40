package infractions_db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trust-bot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// MaxRecentLimit caps the page size of Recent to bound response size.
const MaxRecentLimit = 50

// Init initializes the infraction database and ensures the table exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to infraction database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS infractions (
	          infraction_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          moderator_id TEXT NOT NULL,
	          type TEXT NOT NULL,
	          reason TEXT NOT NULL,
	          duration_ms INTEGER NOT NULL DEFAULT 0,
	          created_at INTEGER NOT NULL
	      );`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create infractions table: %w", err)
	}

	return db, nil
}

// Add appends a new infraction and returns it with its server-assigned
// id and timestamp.
func Add(db *sqlx.DB, input model.InfractionInput) (model.Infraction, error) {
	record := model.Infraction{
		GuildID:     input.GuildID,
		UserID:      input.UserID,
		ModeratorID: input.ModeratorID,
		Type:        input.Type,
		Reason:      input.Reason,
		DurationMs:  input.DurationMs,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if record.Reason == "" {
		record.Reason = model.DefaultReason
	}

	query := `INSERT INTO infractions (guild_id, user_id, moderator_id, type, reason, duration_ms, created_at)
	          VALUES (:guild_id, :user_id, :moderator_id, :type, :reason, :duration_ms, :created_at)`
	result, err := db.NamedExec(query, record)
	if err != nil {
		return model.Infraction{}, fmt.Errorf("failed to insert infraction record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Infraction{}, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	record.ID = id

	return record, nil
}

// Recent retrieves a user's infractions, newest first. The limit is capped
// at MaxRecentLimit; non-positive limits fall back to the cap.
func Recent(db *sqlx.DB, guildID, userID string, limit int) ([]model.Infraction, error) {
	if limit <= 0 || limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var records []model.Infraction
	query := `SELECT * FROM infractions WHERE guild_id = ? AND user_id = ?
	          ORDER BY created_at DESC, infraction_id DESC LIMIT ?`
	if err := db.Select(&records, query, guildID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get infractions for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// CountsByType retrieves the infraction count per type for a user.
func CountsByType(db *sqlx.DB, guildID, userID string) (map[string]int, error) {
	query := `SELECT type, COUNT(*) as count FROM infractions
	          WHERE guild_id = ? AND user_id = ? GROUP BY type`
	rows, err := db.Query(query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count infractions for user %s: %w", userID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var infractionType string
		var count int
		if err := rows.Scan(&infractionType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan infraction count row: %w", err)
		}
		counts[infractionType] = count
	}
	return counts, nil
}

// RemoveByID deletes exactly one infraction scoped to the given user and
// guild. Ownership is enforced by the WHERE clause so a forged id
// belonging to another user deletes nothing. Returns the removed record,
// or nil if no owned record matched.
func RemoveByID(db *sqlx.DB, guildID, userID string, infractionID int64) (*model.Infraction, error) {
	var record model.Infraction
	query := "SELECT * FROM infractions WHERE infraction_id = ? AND guild_id = ? AND user_id = ?"
	err := db.Get(&record, query, infractionID, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up infraction %d: %w", infractionID, err)
	}

	del := "DELETE FROM infractions WHERE infraction_id = ? AND guild_id = ? AND user_id = ?"
	result, err := db.Exec(del, infractionID, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete infraction %d: %w", infractionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected for infraction %d: %w", infractionID, err)
	}
	if affected == 0 {
		return nil, nil
	}

	return &record, nil
}

// ClearForUser removes every infraction of a user in a guild and returns
// how many were deleted.
func ClearForUser(db *sqlx.DB, guildID, userID string) (int64, error) {
	result, err := db.Exec("DELETE FROM infractions WHERE guild_id = ? AND user_id = ?", guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear infractions for user %s in guild %s: %w", userID, guildID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected clearing infractions for user %s: %w", userID, err)
	}
	return affected, nil
}

// CountForGuild retrieves the total number of infractions in a guild since
// the given time, used by the periodic stats report.
func CountForGuild(db *sqlx.DB, guildID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM infractions WHERE guild_id = ? AND created_at >= ?`
	if err := db.Get(&count, query, guildID, since.UnixMilli()); err != nil {
		return 0, fmt.Errorf("failed to get infraction count for guild %s: %w", guildID, err)
	}
	return count, nil
}

// ModeratorStats retrieves the infraction count per moderator in a guild
// within the given time range.
func ModeratorStats(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	query := `SELECT moderator_id, COUNT(*) as count FROM infractions
	          WHERE guild_id = ? AND created_at >= ? GROUP BY moderator_id ORDER BY count DESC`
	rows, err := db.Query(query, guildID, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to get moderator stats for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var moderatorID string
		var count int
		if err := rows.Scan(&moderatorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan moderator stats row: %w", err)
		}
		stats[moderatorID] = count
	}
	return stats, nil
}
