package handlers

import (
	"strings"

	"trust-bot/bot"
	"trust-bot/handlers/moderation"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		serverCfg, ok := b.GetConfig().ServerConfigs[m.GuildID]
		if !ok || !serverCfg.Enable {
			return
		}
		b.Filter.HandleMessage(s, m, serverCfg)
	})
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if strings.HasPrefix(customID, "confirm_history_reset:") || strings.HasPrefix(customID, "cancel_history_reset:") {
			moderation.HandleHistoryResetComponent(s, i, b)
		}
	}
}
