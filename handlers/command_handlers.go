package handlers

import (
	"log"

	"trust-bot/bot"
	"trust-bot/handlers/moderation"
	"trust-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// commandHandlers builds the static name-to-handler registry. Every
// moderation command is gated on at least admin permission for the
// guild before its handler runs.
func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleWarnCommand(s, i, b)
		}),
		"mute": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleMuteCommand(s, i, b)
		}),
		"unmute": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleUnmuteCommand(s, i, b)
		}),
		"trust": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTrustCommand(s, i, b)
		}),
		"trust_admin": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTrustAdminCommand(s, i, b)
		}),
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func requireAdmin(b *bot.Bot, h func(s *discordgo.Session, i *discordgo.InteractionCreate)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		cfg := b.GetConfig()
		serverConfig, ok := cfg.ServerConfigs[i.GuildID]
		if !ok {
			log.Printf("Could not find server config for guild: %s", i.GuildID)
			return
		}
		permissionLevel := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, serverConfig.AdminRoleIDs, cfg.DeveloperUserIDs, cfg.SuperAdminRoleIDs)
		if !utils.IsStaff(permissionLevel) {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		h(s, i)
	}
}
