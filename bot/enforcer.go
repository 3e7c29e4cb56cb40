package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DiscordEnforcer applies and lifts timeouts through the Discord API.
// Errors (role hierarchy, missing permission, rate limits) are returned
// to the coordinator, which treats them as non-fatal to trust state.
type DiscordEnforcer struct {
	session *discordgo.Session
}

func NewDiscordEnforcer(s *discordgo.Session) *DiscordEnforcer {
	return &DiscordEnforcer{session: s}
}

func (e *DiscordEnforcer) ApplyTimeout(guildID, userID string, duration time.Duration, reason string) error {
	until := time.Now().Add(duration)
	if err := e.session.GuildMemberTimeout(guildID, userID, &until); err != nil {
		return fmt.Errorf("failed to time out user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

func (e *DiscordEnforcer) ClearTimeout(guildID, userID string, reason string) error {
	if err := e.session.GuildMemberTimeout(guildID, userID, nil); err != nil {
		return fmt.Errorf("failed to clear timeout for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}
