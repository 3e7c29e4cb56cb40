package trust

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"trust-bot/model"
	infractions_db "trust-bot/utils/database/infractions"
	trust_db "trust-bot/utils/database/trust"

	"github.com/jmoiron/sqlx"
)

// Enforcer is the external capability that actually applies or removes a
// timeout on the chat platform. Failures are non-fatal to trust state.
type Enforcer interface {
	ApplyTimeout(guildID, userID string, duration time.Duration, reason string) error
	ClearTimeout(guildID, userID string, reason string) error
}

// AuditSink receives moderation events for the audit log. Emit is
// fire-and-forget; implementations log their own failures.
type AuditSink interface {
	Emit(event model.AuditEvent)
}

// Coordinator is the single decision path for every moderation signal:
// word-filter hits, spam bursts and staff quick-actions all funnel
// through it, so policy is applied exactly one way.
type Coordinator struct {
	trustDB  *sqlx.DB
	ledgerDB *sqlx.DB
	enforcer Enforcer
	audit    AuditSink
	policy   atomic.Value // Policy
	locks    *keyLocks
}

// NewCoordinator wires the coordinator to its storage handles and
// collaborators. The policy config must already be validated.
func NewCoordinator(trustDB, ledgerDB *sqlx.DB, cfg model.TrustPolicyConfig, enforcer Enforcer, audit AuditSink) *Coordinator {
	c := &Coordinator{
		trustDB:  trustDB,
		ledgerDB: ledgerDB,
		enforcer: enforcer,
		audit:    audit,
		locks:    newKeyLocks(),
	}
	c.policy.Store(NewPolicy(cfg))
	return c
}

// SetPolicy swaps the policy snapshot wholesale. In-flight operations
// keep the snapshot they started with.
func (c *Coordinator) SetPolicy(cfg model.TrustPolicyConfig) {
	c.policy.Store(NewPolicy(cfg))
}

// Policy returns the current policy snapshot.
func (c *Coordinator) Policy() Policy {
	return c.policy.Load().(Policy)
}

// HandleWordHit processes an automated signal from the word filter or
// burst tracker. Short-circuits silently when automation is disabled.
func (c *Coordinator) HandleWordHit(guildID, userID, reason string) ActionResult {
	policy := c.Policy()
	if !policy.Enabled() {
		log.Printf("Trust automation disabled, ignoring word hit for user %s in guild %s", userID, guildID)
		return ActionResult{OK: true}
	}
	return c.warn(policy, guildID, userID, model.SystemActorID, reason)
}

// HandleManualWarn processes a staff-issued warn. It runs the identical
// policy path as a word hit with the moderator recorded as actor, and
// works even when automation is disabled.
func (c *Coordinator) HandleManualWarn(guildID, userID, moderatorID, reason string) ActionResult {
	if guildID == "" || userID == "" || moderatorID == "" {
		return validationFailure()
	}
	return c.warn(c.Policy(), guildID, userID, moderatorID, reason)
}

// HandleManualMute applies a mute of the given duration directly,
// bypassing the warn counter entirely.
func (c *Coordinator) HandleManualMute(guildID, userID, moderatorID string, durationMs int64, reason string) ActionResult {
	if guildID == "" || userID == "" || moderatorID == "" || durationMs <= 0 {
		return validationFailure()
	}
	policy := c.Policy()
	cfg := policy.Config()

	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	record, err := trust_db.GetOrCreate(c.trustDB, guildID, userID, cfg.Base)
	if err != nil {
		log.Printf("Storage error loading trust record for mute: %v", err)
		return storageFailure()
	}

	if _, err := infractions_db.Add(c.ledgerDB, model.InfractionInput{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Type:        model.InfractionMute,
		Reason:      reason,
		DurationMs:  durationMs,
	}); err != nil {
		log.Printf("Storage error appending mute infraction: %v", err)
		return storageFailure()
	}

	delta := policy.OnMute(record) - record.Trust
	record, err = trust_db.ApplyDelta(c.trustDB, guildID, userID, delta, 0, cfg.Min, cfg.Max)
	if err != nil {
		log.Printf("Storage error applying mute penalty: %v", err)
		return storageFailure()
	}

	result := ActionResult{OK: true, Trust: record.Trust, Warnings: record.Warnings, Muted: true, MuteDurationMs: durationMs}
	if err := c.enforcer.ApplyTimeout(guildID, userID, time.Duration(durationMs)*time.Millisecond, reason); err != nil {
		log.Printf("Failed to apply timeout for user %s in guild %s: %v", userID, guildID, err)
		result.EnforcementFailed = true
	}

	c.emitAudit(guildID, userID, moderatorID, "Manual Mute",
		fmt.Sprintf("Muted for %s. Trust %d -> %d. Reason: %s",
			time.Duration(durationMs)*time.Millisecond, record.Trust-delta, record.Trust, reasonOrDefault(reason)))
	return result
}

// HandleUnmute lifts a timeout. Unmute is administrative relief, not a
// trust reward: no record field changes and nothing is appended to the
// ledger, only the audit log sees it. The key lock is still taken so the
// reported values are a committed state, never a mid-escalation read.
func (c *Coordinator) HandleUnmute(guildID, userID, moderatorID, reason string) ActionResult {
	if guildID == "" || userID == "" || moderatorID == "" {
		return validationFailure()
	}

	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	record, err := trust_db.Find(c.trustDB, guildID, userID)
	if err != nil {
		log.Printf("Storage error loading trust record for unmute: %v", err)
		return storageFailure()
	}

	result := ActionResult{OK: true}
	if record != nil {
		result.Trust = record.Trust
		result.Warnings = record.Warnings
	}
	if err := c.enforcer.ClearTimeout(guildID, userID, reason); err != nil {
		log.Printf("Failed to clear timeout for user %s in guild %s: %v", userID, guildID, err)
		result.EnforcementFailed = true
	}

	c.emitAudit(guildID, userID, moderatorID, "Unmute",
		fmt.Sprintf("Timeout lifted. Reason: %s", reasonOrDefault(reason)))
	return result
}

// HandleResetTrust restores trust to base and warnings to zero. The
// infraction ledger keeps its history.
func (c *Coordinator) HandleResetTrust(guildID, userID, moderatorID, reason string) ActionResult {
	if guildID == "" || userID == "" || moderatorID == "" {
		return validationFailure()
	}
	cfg := c.Policy().Config()

	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	record, err := trust_db.Reset(c.trustDB, guildID, userID, cfg.Base)
	if err != nil {
		log.Printf("Storage error resetting trust for user %s: %v", userID, err)
		return storageFailure()
	}

	c.emitAudit(guildID, userID, moderatorID, "Trust Reset",
		fmt.Sprintf("Trust restored to base %d, warnings cleared. Reason: %s", cfg.Base, reasonOrDefault(reason)))
	return ActionResult{OK: true, Trust: record.Trust, Warnings: record.Warnings}
}

// HandleResetHistory wipes the user's ledger entries for the guild and
// resets the trust record. Destructive and irreversible; the boundary
// layer is responsible for asking the staff member to confirm.
func (c *Coordinator) HandleResetHistory(guildID, userID, moderatorID, reason string) ActionResult {
	if guildID == "" || userID == "" || moderatorID == "" {
		return validationFailure()
	}
	cfg := c.Policy().Config()

	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	removed, err := infractions_db.ClearForUser(c.ledgerDB, guildID, userID)
	if err != nil {
		log.Printf("Storage error clearing infractions for user %s: %v", userID, err)
		return storageFailure()
	}
	record, err := trust_db.Reset(c.trustDB, guildID, userID, cfg.Base)
	if err != nil {
		log.Printf("Storage error resetting trust after history wipe for user %s: %v", userID, err)
		return storageFailure()
	}

	c.emitAudit(guildID, userID, moderatorID, "History Reset",
		fmt.Sprintf("Deleted %d infractions and reset trust to base. Reason: %s", removed, reasonOrDefault(reason)))
	return ActionResult{OK: true, Trust: record.Trust, Warnings: record.Warnings}
}

// HandleRemoveInfraction deletes a single ledger entry scoped to the user
// and applies the policy's compensation deltas. A forged or foreign id
// is a validation failure and mutates nothing.
func (c *Coordinator) HandleRemoveInfraction(guildID, userID, moderatorID string, infractionID int64) ActionResult {
	if guildID == "" || userID == "" || moderatorID == "" {
		return validationFailure()
	}
	policy := c.Policy()
	cfg := policy.Config()

	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	removed, err := infractions_db.RemoveByID(c.ledgerDB, guildID, userID, infractionID)
	if err != nil {
		log.Printf("Storage error removing infraction %d: %v", infractionID, err)
		return storageFailure()
	}
	if removed == nil {
		return validationFailure()
	}

	comp := policy.RemovalCompensation(*removed)
	record, err := trust_db.GetOrCreate(c.trustDB, guildID, userID, cfg.Base)
	if err != nil {
		log.Printf("Storage error loading trust record for compensation: %v", err)
		return storageFailure()
	}
	if comp.TrustDelta != 0 || comp.WarningsDelta != 0 {
		record, err = trust_db.ApplyDelta(c.trustDB, guildID, userID, comp.TrustDelta, comp.WarningsDelta, cfg.Min, cfg.Max)
		if err != nil {
			log.Printf("Storage error applying removal compensation: %v", err)
			return storageFailure()
		}
	}

	c.emitAudit(guildID, userID, moderatorID, "Infraction Removed",
		fmt.Sprintf("Removed %s infraction #%d (%s). Compensation: trust %+d, warnings %+d",
			removed.Type, removed.ID, removed.Reason, comp.TrustDelta, comp.WarningsDelta))
	return ActionResult{OK: true, Trust: record.Trust, Warnings: record.Warnings}
}

// GetUserSnapshot assembles the read-only view used by the dashboard and
// the in-chat info command. Reading never creates a record.
func (c *Coordinator) GetUserSnapshot(guildID, userID string) (*Snapshot, error) {
	if guildID == "" || userID == "" {
		return nil, fmt.Errorf("guild and user ids are required")
	}
	policy := c.Policy()
	cfg := policy.Config()

	record, err := trust_db.Find(c.trustDB, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trust record: %w", err)
	}
	if record == nil {
		record = &model.TrustRecord{GuildID: guildID, UserID: userID, Trust: cfg.Base}
	}

	recent, err := infractions_db.Recent(c.ledgerDB, guildID, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent infractions: %w", err)
	}
	counts, err := infractions_db.CountsByType(c.ledgerDB, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count infractions: %w", err)
	}

	return &Snapshot{
		GuildID:           guildID,
		UserID:            userID,
		Trust:             record.Trust,
		Warnings:          record.Warnings,
		Classification:    policy.Classify(record.Trust),
		RecentInfractions: recent,
		InfractionCounts:  counts,
		NextPenalty:       policy.NextPenaltyEstimate(*record),
	}, nil
}

// warn is the shared escalation path for automated hits and manual warns.
// Ledger entries are appended before the matching trust mutation: a
// ledger entry without a delta reconciles on the next read, a delta
// without a ledger entry would be silent punishment.
func (c *Coordinator) warn(policy Policy, guildID, userID, actorID, reason string) ActionResult {
	cfg := policy.Config()

	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	record, err := trust_db.GetOrCreate(c.trustDB, guildID, userID, cfg.Base)
	if err != nil {
		log.Printf("Storage error loading trust record for warn: %v", err)
		return storageFailure()
	}

	trustBefore := record.Trust
	outcome := policy.OnWarn(record)

	if _, err := infractions_db.Add(c.ledgerDB, model.InfractionInput{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: actorID,
		Type:        model.InfractionWarn,
		Reason:      reason,
	}); err != nil {
		log.Printf("Storage error appending warn infraction: %v", err)
		return storageFailure()
	}

	record, err = trust_db.ApplyDelta(c.trustDB, guildID, userID, outcome.NewTrust-record.Trust, 1, cfg.Min, cfg.Max)
	if err != nil {
		log.Printf("Storage error applying warn penalty: %v", err)
		return storageFailure()
	}

	result := ActionResult{OK: true, Trust: record.Trust, Warnings: record.Warnings}

	if outcome.ShouldMute {
		if _, err := infractions_db.Add(c.ledgerDB, model.InfractionInput{
			GuildID:     guildID,
			UserID:      userID,
			ModeratorID: actorID,
			Type:        model.InfractionMute,
			Reason:      fmt.Sprintf("automatic mute after %d warnings", outcome.NewWarnings),
			DurationMs:  outcome.MuteDurationMs,
		}); err != nil {
			log.Printf("Storage error appending automatic mute infraction: %v", err)
			return storageFailure()
		}

		muteDelta := policy.OnMute(record) - record.Trust
		record, err = trust_db.ApplyDelta(c.trustDB, guildID, userID, muteDelta, 0, cfg.Min, cfg.Max)
		if err != nil {
			log.Printf("Storage error applying mute penalty: %v", err)
			return storageFailure()
		}
		// The warning counter is per mute-cycle, not cumulative forever.
		if err := trust_db.ResetWarnings(c.trustDB, guildID, userID); err != nil {
			log.Printf("Storage error resetting warnings after mute: %v", err)
			return storageFailure()
		}

		result.Trust = record.Trust
		result.Warnings = 0
		result.Muted = true
		result.MuteDurationMs = outcome.MuteDurationMs

		if err := c.enforcer.ApplyTimeout(guildID, userID, time.Duration(outcome.MuteDurationMs)*time.Millisecond, reasonOrDefault(reason)); err != nil {
			log.Printf("Failed to apply automatic timeout for user %s in guild %s: %v", userID, guildID, err)
			result.EnforcementFailed = true
		}
	}

	action := "warned"
	if result.Muted {
		action = fmt.Sprintf("warned and auto-muted for %s", time.Duration(result.MuteDurationMs)*time.Millisecond)
	}
	c.emitAudit(guildID, userID, actorID, "Warn",
		fmt.Sprintf("User %s. Trust %d -> %d, warnings %d. Reason: %s",
			action, trustBefore, result.Trust, result.Warnings, reasonOrDefault(reason)))
	return result
}

func (c *Coordinator) emitAudit(guildID, userID, actorID, title, description string) {
	c.audit.Emit(model.AuditEvent{
		Title:         title,
		GuildID:       guildID,
		SubjectUserID: userID,
		ActorID:       actorID,
		Description:   description,
		Timestamp:     time.Now().Unix(),
	})
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return model.DefaultReason
	}
	return reason
}
