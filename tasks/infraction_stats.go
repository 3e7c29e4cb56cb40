package tasks

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"trust-bot/model"
	infractions_db "trust-bot/utils/database/infractions"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// GenerateInfractionStatsEmbed builds the per-guild moderation summary
// for the given lookback window.
func GenerateInfractionStatsEmbed(db *sqlx.DB, guildID string, duration time.Duration) (*discordgo.MessageEmbed, error) {
	since := time.Now().Add(-duration)

	total, err := infractions_db.CountForGuild(db, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get infraction count for guild %s: %v", guildID, err)
	}
	stats, err := infractions_db.ModeratorStats(db, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get moderator stats for guild %s: %v", guildID, err)
	}

	var sortedModerators []string
	for moderatorID := range stats {
		sortedModerators = append(sortedModerators, moderatorID)
	}
	sort.Slice(sortedModerators, func(i, j int) bool {
		return stats[sortedModerators[i]] > stats[sortedModerators[j]]
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### Infractions in the last %s\n", duration.String()))
	builder.WriteString(fmt.Sprintf("**Total: %d**\n\n", total))
	builder.WriteString("**By moderator:**\n")
	for i, moderatorID := range sortedModerators {
		builder.WriteString(fmt.Sprintf("%d. %s: %d\n", i+1, moderatorMention(moderatorID), stats[moderatorID]))
	}

	return &discordgo.MessageEmbed{
		Title:       "Moderation Activity",
		Description: builder.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
		Color:       0x00ff00,
	}, nil
}

// PostInfractionStats posts the summary embed to the stats channel.
func PostInfractionStats(s *discordgo.Session, db *sqlx.DB, guildID, channelID string, duration time.Duration) {
	embed, err := GenerateInfractionStatsEmbed(db, guildID, duration)
	if err != nil {
		log.Printf("Failed to generate infraction stats embed: %v", err)
		return
	}

	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Failed to send infraction stats message to channel %s: %v", channelID, err)
	}
}

func moderatorMention(moderatorID string) string {
	if moderatorID == model.SystemActorID {
		return "automated filter"
	}
	return fmt.Sprintf("<@%s>", moderatorID)
}
