package trust

import "trust-bot/model"

// Error codes returned to coordinator callers. The coordinator never
// panics across its public boundary; every failure resolves to one of
// these on an ActionResult.
const (
	ErrCodeStorage    = "storage"
	ErrCodeValidation = "validation"
)

// ActionResult is the structured outcome of one coordinator operation.
type ActionResult struct {
	OK             bool   `json:"ok"`
	Trust          int    `json:"trust"`
	Warnings       int    `json:"warnings"`
	Muted          bool   `json:"muted,omitempty"`
	MuteDurationMs int64  `json:"muteDurationMs,omitempty"`
	// EnforcementFailed is set when state was recorded but the platform
	// refused the timeout call (role hierarchy, permissions, rate limit).
	EnforcementFailed bool   `json:"enforcementFailed,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Snapshot is the read-only view served to the dashboard and info commands.
type Snapshot struct {
	GuildID           string             `json:"guildId"`
	UserID            string             `json:"userId"`
	Trust             int                `json:"trust"`
	Warnings          int                `json:"warnings"`
	Classification    string             `json:"classification"`
	RecentInfractions []model.Infraction `json:"recentInfractions"`
	InfractionCounts  map[string]int     `json:"infractionCounts"`
	NextPenalty       *PenaltyEstimate   `json:"nextPenalty,omitempty"`
}

func storageFailure() ActionResult {
	return ActionResult{Error: ErrCodeStorage}
}

func validationFailure() ActionResult {
	return ActionResult{Error: ErrCodeValidation}
}
