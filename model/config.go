package model

// ServerConfig holds the per-guild moderation settings.
type ServerConfig struct {
	Name         string   `json:"name"`
	GuildID      string   `json:"guild_id"`
	Enable       bool     `json:"enable"`
	AdminRoleIDs []string `json:"admin_role_ids"`
	BannedWords  []string `json:"banned_words"`
	// Messages within BurstWindowSeconds before a burst counts as spam.
	BurstLimit         int `json:"burst_limit"`
	BurstWindowSeconds int `json:"burst_window_seconds"`
}

// TrustPolicyConfig holds the process-wide escalation thresholds.
// It is loaded once at startup and swapped wholesale on reload.
type TrustPolicyConfig struct {
	Enabled                 bool    `mapstructure:"enabled"`
	Base                    int     `mapstructure:"base"`
	Min                     int     `mapstructure:"min"`
	Max                     int     `mapstructure:"max"`
	WarnPenalty             int     `mapstructure:"warn_penalty"`
	MutePenalty             int     `mapstructure:"mute_penalty"`
	RegenPerDay             int     `mapstructure:"regen_per_day"`
	RegenMaxDays            int     `mapstructure:"regen_max_days"`
	LowThreshold            int     `mapstructure:"low_threshold"`
	HighThreshold           int     `mapstructure:"high_threshold"`
	LowTrustMuteMultiplier  float64 `mapstructure:"low_trust_mute_multiplier"`
	HighTrustMuteMultiplier float64 `mapstructure:"high_trust_mute_multiplier"`
	MaxWarnings             int     `mapstructure:"max_warnings"`
	MuteBaseDurationMs      int64   `mapstructure:"mute_base_duration_ms"`
}

// Config stores the application configuration.
type Config struct {
	BotToken          string
	AppID             string
	LogChannelID      string
	DashboardAddr     string
	DashboardToken    string
	TrustDBPath       string
	DeveloperUserIDs  []string
	SuperAdminRoleIDs []string
	TrustPolicy       TrustPolicyConfig
	ServerConfigs     map[string]ServerConfig
}
