package moderation

import (
	"github.com/bwmarrin/discordgo"
)

type commandOptions struct {
	m map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func parseOptions(i *discordgo.InteractionCreate) commandOptions {
	options := i.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return commandOptions{m: optionMap}
}

func (o commandOptions) str(name string) string {
	if opt, ok := o.m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o commandOptions) user(s *discordgo.Session) *discordgo.User {
	if opt, ok := o.m["user"]; ok {
		return opt.UserValue(s)
	}
	return nil
}
