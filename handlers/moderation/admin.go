package moderation

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"trust-bot/bot"
	"trust-bot/trust"
	"trust-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleTrustAdminCommand processes /trust_admin. History wipes are
// destructive, so that path only presents a confirmation prompt; the
// actual wipe happens in the component handler below.
func HandleTrustAdminCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := parseOptions(i)
	targetUser := opts.user(s)
	if targetUser == nil {
		utils.SendErrorResponse(s, i, "No target user given.")
		return
	}

	switch opts.str("action") {
	case "reset_trust":
		if err := utils.DeferResponse(s, i, true); err != nil {
			log.Printf("Failed to defer interaction: %v", err)
			return
		}
		result := b.Coordinator.HandleResetTrust(i.GuildID, targetUser.ID, i.Member.User.ID, opts.str("reason"))
		if !result.OK {
			utils.SendFollowUpError(s, i.Interaction, "Could not complete the action.")
			return
		}
		utils.SendFollowUp(s, i.Interaction,
			fmt.Sprintf("✅ Trust for <@%s> reset to %d, warnings cleared. Infraction history kept.", targetUser.ID, result.Trust))

	case "reset_history":
		promptHistoryReset(s, i, targetUser)

	case "remove_infraction":
		if err := utils.DeferResponse(s, i, true); err != nil {
			log.Printf("Failed to defer interaction: %v", err)
			return
		}
		idStr := opts.str("infraction_id")
		infractionID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			utils.SendFollowUpError(s, i.Interaction, "Invalid infraction id.")
			return
		}
		result := b.Coordinator.HandleRemoveInfraction(i.GuildID, targetUser.ID, i.Member.User.ID, infractionID)
		if !result.OK {
			if result.Error == trust.ErrCodeValidation {
				utils.SendFollowUpError(s, i.Interaction, "No such infraction for that user.")
			} else {
				utils.SendFollowUpError(s, i.Interaction, "Could not complete the action.")
			}
			return
		}
		utils.SendFollowUp(s, i.Interaction,
			fmt.Sprintf("✅ Removed infraction #%d. Trust is now %d, warnings %d.", infractionID, result.Trust, result.Warnings))

	default:
		utils.SendErrorResponse(s, i, "Unknown action.")
	}
}

func promptHistoryReset(s *discordgo.Session, i *discordgo.InteractionCreate, targetUser *discordgo.User) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("This will permanently delete the entire infraction history of <@%s> and reset their trust. This cannot be undone.", targetUser.ID),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Wipe history",
							Style:    discordgo.DangerButton,
							CustomID: "confirm_history_reset:" + targetUser.ID,
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
							CustomID: "cancel_history_reset:" + targetUser.ID,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Failed to send history reset prompt: %v", err)
	}
}

// HandleHistoryResetComponent handles the confirm/cancel buttons of the
// history wipe prompt.
func HandleHistoryResetComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	customID := i.MessageComponentData().CustomID
	parts := strings.SplitN(customID, ":", 2)
	if len(parts) != 2 {
		return
	}
	action, targetUserID := parts[0], parts[1]

	var content string
	if action == "confirm_history_reset" {
		result := b.Coordinator.HandleResetHistory(i.GuildID, targetUserID, i.Member.User.ID, "history wipe confirmed by staff")
		if result.OK {
			content = fmt.Sprintf("🗑️ Infraction history of <@%s> deleted, trust reset to %d.", targetUserID, result.Trust)
		} else {
			content = "❌ Could not complete the action."
		}
	} else {
		content = "Cancelled, nothing was deleted."
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Failed to update history reset prompt: %v", err)
	}
}
