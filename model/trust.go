package model

import "time"

// Classification buckets derived from the trust score.
const (
	TrustLow    = "LOW"
	TrustMedium = "MEDIUM"
	TrustHigh   = "HIGH"
)

// TrustRecord represents the per-(guild,user) trust state.
// The database table will be named 'trust_records'.
type TrustRecord struct {
	GuildID   string `db:"guild_id"`
	UserID    string `db:"user_id"`
	Trust     int    `db:"trust"`
	Warnings  int    `db:"warnings"`
	UpdatedAt int64  `db:"updated_at"` // unix seconds, last mutation or regen
}

// LastActivity returns the record's last mutation time.
func (r TrustRecord) LastActivity() time.Time {
	return time.Unix(r.UpdatedAt, 0)
}
