package model

// Infraction types stored in the ledger. Unmute and reset are
// coordinator-level actions and are only audit-logged.
const (
	InfractionWarn = "WARN"
	InfractionMute = "MUTE"
	InfractionKick = "KICK"
	InfractionBan  = "BAN"
)

// DefaultReason is recorded when a moderator gives no reason.
const DefaultReason = "no reason provided"

// SystemActorID marks infractions issued by the automated filter
// rather than a staff member.
const SystemActorID = "system"

// Infraction represents a single punitive record in the database.
// The database table will be named 'infractions'.
type Infraction struct {
	ID          int64  `db:"infraction_id"` // Primary Key, Auto-increment
	GuildID     string `db:"guild_id"`
	UserID      string `db:"user_id"`
	ModeratorID string `db:"moderator_id"` // staff id, or SystemActorID
	Type        string `db:"type"`
	Reason      string `db:"reason"`
	DurationMs  int64  `db:"duration_ms"` // only meaningful for MUTE, 0 otherwise
	CreatedAt   int64  `db:"created_at"`  // unix milliseconds, server-assigned
}

// InfractionInput is the caller-supplied part of an Infraction; id and
// timestamp are assigned on append.
type InfractionInput struct {
	GuildID     string
	UserID      string
	ModeratorID string
	Type        string
	Reason      string
	DurationMs  int64
}
