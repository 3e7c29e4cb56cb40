package commands

import (
	"trust-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the full static command list. Handlers are
// looked up by name in the registry built at startup.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.Mute,
		defs.Unmute,
		defs.Trust,
		defs.TrustAdmin,
		defs.Status,
	}
}
