package wordfilter

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"trust-bot/model"
	"trust-bot/trust"

	"github.com/bwmarrin/discordgo"
)

// hitLockDuration debounces filter hits so a burst of messages from the
// same user yields one escalation, not one per message.
const hitLockDuration = 5 * time.Minute

// Handler watches guild messages for banned words and spam bursts and
// funnels both into the coordinator's word-hit path.
type Handler struct {
	coordinator *trust.Coordinator
	tracker     *BurstTracker

	mu       sync.Mutex
	hitLocks map[string]time.Time
}

func New(coordinator *trust.Coordinator, tracker *BurstTracker) *Handler {
	return &Handler{
		coordinator: coordinator,
		tracker:     tracker,
		hitLocks:    make(map[string]time.Time),
	}
}

// HandleMessage inspects one inbound guild message.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate, serverCfg model.ServerConfig) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	if word := matchBannedWord(m.Content, serverCfg.BannedWords); word != "" {
		if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
			log.Printf("Failed to delete filtered message %s: %v", m.ID, err)
		}
		h.signal(m.GuildID, m.Author.ID, fmt.Sprintf("banned word: %s", word))
		return
	}

	window := time.Duration(serverCfg.BurstWindowSeconds) * time.Second
	if h.tracker.Record(m.GuildID, m.Author.ID, time.Now(), serverCfg.BurstLimit, window) {
		h.signal(m.GuildID, m.Author.ID, fmt.Sprintf("spam burst: %d messages in %s", serverCfg.BurstLimit, window))
	}
}

func (h *Handler) signal(guildID, userID, reason string) {
	if !h.checkAndSetHitLock(guildID, userID) {
		return
	}

	result := h.coordinator.HandleWordHit(guildID, userID, reason)
	if !result.OK {
		log.Printf("Word hit for user %s in guild %s failed: %s", userID, guildID, result.Error)
	}
}

// checkAndSetHitLock reports whether the user may be escalated again and
// sets a fresh lock if so.
func (h *Handler) checkAndSetHitLock(guildID, userID string) bool {
	key := guildID + ":" + userID

	h.mu.Lock()
	defer h.mu.Unlock()

	if last, ok := h.hitLocks[key]; ok && time.Since(last) < hitLockDuration {
		return false
	}
	h.hitLocks[key] = time.Now()
	return true
}

// CleanupLocks drops expired hit locks, called by the scheduler.
func (h *Handler) CleanupLocks() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, t := range h.hitLocks {
		if time.Since(t) > hitLockDuration {
			delete(h.hitLocks, key)
		}
	}
}

func matchBannedWord(content string, bannedWords []string) string {
	if content == "" || len(bannedWords) == 0 {
		return ""
	}
	lower := strings.ToLower(content)
	for _, word := range bannedWords {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return word
		}
	}
	return ""
}
