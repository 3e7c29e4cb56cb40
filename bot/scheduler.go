package bot

import (
	"log"
	"sync"
	"time"

	"trust-bot/scanner"
	"trust-bot/tasks"
)

// Scheduler manages the background sweeps: trust regeneration and the
// daily moderation stats report. Request-driven escalation never goes
// through here.
type Scheduler struct {
	bot           *Bot
	done          chan struct{}
	wg            sync.WaitGroup
	regenTicker   *time.Ticker
	statsTicker   *time.Ticker
	cleanupTicker *time.Ticker
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runTickers()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runTickers() {
	defer s.wg.Done()

	// The regen sweep grants whole elapsed days, so running it a few
	// times a day only changes how promptly a day boundary is noticed.
	s.regenTicker = time.NewTicker(6 * time.Hour)
	s.statsTicker = time.NewTicker(24 * time.Hour)
	s.cleanupTicker = time.NewTicker(1 * time.Hour)
	defer s.regenTicker.Stop()
	defer s.statsTicker.Stop()
	defer s.cleanupTicker.Stop()

	for {
		select {
		case <-s.regenTicker.C:
			log.Println("Running trust regeneration sweep...")
			scanner.SweepTrustRegen(s.bot.TrustDB, s.bot.Coordinator.Policy())
		case <-s.statsTicker.C:
			log.Println("Posting daily moderation stats...")
			s.postDailyStats()
		case <-s.cleanupTicker.C:
			s.bot.Filter.CleanupLocks()
			s.bot.Tracker.Cleanup(time.Now(), 1*time.Hour)
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) postDailyStats() {
	cfg := s.bot.GetConfig()
	if cfg.LogChannelID == "" {
		return
	}
	for guildID, serverCfg := range cfg.ServerConfigs {
		if !serverCfg.Enable {
			continue
		}
		go tasks.PostInfractionStats(s.bot.Session, s.bot.LedgerDB, guildID, cfg.LogChannelID, 24*time.Hour)
	}
}
