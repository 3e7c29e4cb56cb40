package model

// AuditEvent describes a moderation action for the audit log channel.
type AuditEvent struct {
	Title         string
	GuildID       string
	SubjectUserID string
	ActorID       string
	Description   string
	Timestamp     int64 // unix seconds
}
