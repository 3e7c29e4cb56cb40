package bot

import (
	"log"
	"sync/atomic"

	"trust-bot/commands"
	"trust-bot/config"
	"trust-bot/handlers/wordfilter"
	"trust-bot/model"
	"trust-bot/trust"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	Coordinator        *trust.Coordinator
	Filter             *wordfilter.Handler
	Tracker            *wordfilter.BurstTracker
	TrustDB            *sqlx.DB
	LedgerDB           *sqlx.DB
	config             atomic.Value // *model.Config
	done               chan struct{}
}

func New(cfg *model.Config, trustDB, ledgerDB *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = true

	b := &Bot{
		Session:  dg,
		TrustDB:  trustDB,
		LedgerDB: ledgerDB,
		done:     make(chan struct{}),
	}
	b.config.Store(cfg)

	enforcer := NewDiscordEnforcer(dg)
	audit := NewChannelAuditSink(dg, cfg.LogChannelID)
	b.Coordinator = trust.NewCoordinator(trustDB, ledgerDB, cfg.TrustPolicy, enforcer, audit)
	b.Tracker = wordfilter.NewBurstTracker()
	b.Filter = wordfilter.New(b.Coordinator, b.Tracker)

	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetCoordinator() *trust.Coordinator {
	return b.Coordinator
}

func (b *Bot) Done() <-chan struct{} {
	return b.done
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done)
	b.Session.Close()
}

func (b *Bot) RefreshCommands(guildID string) {
	serverCfg, ok := b.GetConfig().ServerConfigs[guildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", guildID)
		return
	}
	log.Printf("Updating commands for guild %s", serverCfg.GuildID)

	cmds := commands.GenerateCommands()
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, serverCfg.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", serverCfg.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

// ReloadConfig re-reads configuration from disk and swaps the snapshot.
// The coordinator picks up the new policy; in-flight operations finish
// with the snapshot they started with.
func (b *Bot) ReloadConfig() error {
	log.Println("Reloading configuration...")
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Error reloading config: %v", err)
		return err
	}

	b.config.Store(newCfg)
	b.Coordinator.SetPolicy(newCfg.TrustPolicy)
	log.Println("Configuration reloaded successfully.")

	for _, serverCfg := range newCfg.ServerConfigs {
		if serverCfg.Enable {
			go b.RefreshCommands(serverCfg.GuildID)
		}
	}

	return nil
}
