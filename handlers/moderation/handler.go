package moderation

import (
	"fmt"
	"log"
	"strings"
	"time"

	"trust-bot/bot"
	"trust-bot/model"
	"trust-bot/trust"
	"trust-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleWarnCommand processes /warn: same escalation path as the word
// filter, with the moderator recorded as actor.
func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := parseOptions(i)
	targetUser := opts.user(s)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "No target user given.")
		return
	}

	result := b.Coordinator.HandleManualWarn(i.GuildID, targetUser.ID, i.Member.User.ID, opts.str("reason"))
	if !result.OK {
		utils.SendFollowUpError(s, i.Interaction, "Could not complete the action.")
		return
	}

	msg := fmt.Sprintf("⚠️ Warned <@%s>. Trust is now %d, warnings %d.", targetUser.ID, result.Trust, result.Warnings)
	if result.Muted {
		msg = fmt.Sprintf("⚠️ Warned <@%s>: warning limit reached, auto-muted for %s. Trust is now %d.",
			targetUser.ID, time.Duration(result.MuteDurationMs)*time.Millisecond, result.Trust)
	}
	if result.EnforcementFailed {
		msg += "\n⚠️ Recorded, but the timeout could not be applied (check role hierarchy and permissions)."
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}

// HandleMuteCommand processes /mute with an explicit duration.
func HandleMuteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := parseOptions(i)
	targetUser := opts.user(s)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "No target user given.")
		return
	}

	duration, err := utils.ParseDuration(opts.str("duration"))
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Invalid duration: %v", err))
		return
	}

	result := b.Coordinator.HandleManualMute(i.GuildID, targetUser.ID, i.Member.User.ID, duration.Milliseconds(), opts.str("reason"))
	if !result.OK {
		utils.SendFollowUpError(s, i.Interaction, "Could not complete the action.")
		return
	}

	msg := fmt.Sprintf("🔇 Muted <@%s> for %s. Trust is now %d.", targetUser.ID, duration, result.Trust)
	if result.EnforcementFailed {
		msg += "\n⚠️ Recorded, but the timeout could not be applied (check role hierarchy and permissions)."
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}

// HandleUnmuteCommand processes /unmute. Trust is untouched.
func HandleUnmuteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := parseOptions(i)
	targetUser := opts.user(s)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "No target user given.")
		return
	}

	result := b.Coordinator.HandleUnmute(i.GuildID, targetUser.ID, i.Member.User.ID, opts.str("reason"))
	if !result.OK {
		utils.SendFollowUpError(s, i.Interaction, "Could not complete the action.")
		return
	}

	msg := fmt.Sprintf("🔊 Timeout lifted for <@%s>.", targetUser.ID)
	if result.EnforcementFailed {
		msg = fmt.Sprintf("⚠️ Logged the unmute for <@%s>, but the timeout could not be cleared (check permissions).", targetUser.ID)
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}

// HandleTrustCommand processes /trust: a read-only snapshot embed.
func HandleTrustCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := parseOptions(i)
	targetUser := opts.user(s)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "No target user given.")
		return
	}

	snapshot, err := b.Coordinator.GetUserSnapshot(i.GuildID, targetUser.ID)
	if err != nil {
		log.Printf("Failed to build trust snapshot: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not load the trust record.")
		return
	}

	embed := buildSnapshotEmbed(targetUser, snapshot)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		log.Printf("Failed to send trust snapshot: %v", err)
	}
}

func buildSnapshotEmbed(user *discordgo.User, snapshot *trust.Snapshot) *discordgo.MessageEmbed {
	var history strings.Builder
	if len(snapshot.RecentInfractions) == 0 {
		history.WriteString("none")
	}
	for _, inf := range snapshot.RecentInfractions {
		line := fmt.Sprintf("`#%d` **%s** by %s: %s (<t:%d:R>)\n",
			inf.ID, inf.Type, actorDisplay(inf.ModeratorID), inf.Reason, inf.CreatedAt/1000)
		if history.Len()+len(line) > 1000 {
			break
		}
		history.WriteString(line)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Trust", Value: fmt.Sprintf("%d (%s)", snapshot.Trust, snapshot.Classification), Inline: true},
		{Name: "Warnings", Value: fmt.Sprintf("%d", snapshot.Warnings), Inline: true},
		{Name: "Infractions", Value: countsDisplay(snapshot.InfractionCounts), Inline: true},
		{Name: "Recent history", Value: history.String()},
	}
	if snapshot.NextPenalty != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Next penalty",
			Value: fmt.Sprintf("%d more warn(s) until an automatic mute of ~%d minutes",
				snapshot.NextPenalty.RemainingWarnsUntilMute, snapshot.NextPenalty.EstimatedMuteMinutes),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Trust report: %s", user.Username),
		Color:  classificationColor(snapshot.Classification),
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("User ID: %s", user.ID)},
	}
}

func countsDisplay(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	var parts []string
	for _, t := range []string{model.InfractionWarn, model.InfractionMute, model.InfractionKick, model.InfractionBan} {
		if n, ok := counts[t]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", t, n))
		}
	}
	return strings.Join(parts, ", ")
}

func classificationColor(classification string) int {
	switch classification {
	case model.TrustLow:
		return 15158332 // Red
	case model.TrustHigh:
		return 3066993 // Green
	default:
		return 15105570 // Orange
	}
}

func actorDisplay(actorID string) string {
	if actorID == model.SystemActorID {
		return "filter"
	}
	return fmt.Sprintf("<@%s>", actorID)
}
