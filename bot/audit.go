package bot

import (
	"fmt"
	"log"
	"time"

	"trust-bot/model"

	"github.com/bwmarrin/discordgo"
)

// ChannelAuditSink posts moderation events as embeds to the configured
// log channel. Emit never blocks the caller and failures only hit the
// local log.
type ChannelAuditSink struct {
	session   *discordgo.Session
	channelID string
}

func NewChannelAuditSink(s *discordgo.Session, channelID string) *ChannelAuditSink {
	return &ChannelAuditSink{session: s, channelID: channelID}
}

func (a *ChannelAuditSink) Emit(event model.AuditEvent) {
	if a.channelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: event.Title,
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", event.SubjectUserID), Inline: true},
			{Name: "Actor", Value: actorMention(event.ActorID), Inline: true},
			{Name: "Details", Value: event.Description},
		},
		Timestamp: time.Unix(event.Timestamp, 0).Format(time.RFC3339),
	}

	go func() {
		if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
			log.Printf("Failed to send audit event %q to channel %s: %v", event.Title, a.channelID, err)
		}
	}()
}

func actorMention(actorID string) string {
	if actorID == model.SystemActorID {
		return "automated filter"
	}
	return fmt.Sprintf("<@%s>", actorID)
}
