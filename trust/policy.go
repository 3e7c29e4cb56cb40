package trust

import (
	"fmt"

	"trust-bot/model"
)

// WarnOutcome is the decision computed for a single warn event.
type WarnOutcome struct {
	NewTrust       int
	NewWarnings    int
	ShouldMute     bool
	MuteDurationMs int64
}

// PenaltyEstimate describes what further warns would lead to, for display.
type PenaltyEstimate struct {
	RemainingWarnsUntilMute int
	EstimatedMuteMinutes    int64
}

// Compensation is the partial reversal applied when a stored infraction
// is deleted by staff. It is policy-defined, not a strict inverse.
type Compensation struct {
	TrustDelta    int
	WarningsDelta int
}

// Policy computes trust transitions from moderation events. It is pure:
// no I/O, no clock, everything derived from the config snapshot it wraps.
type Policy struct {
	cfg model.TrustPolicyConfig
}

// NewPolicy wraps a validated config snapshot. Call ValidatePolicyConfig
// at load time; Policy itself assumes the invariants hold.
func NewPolicy(cfg model.TrustPolicyConfig) Policy {
	return Policy{cfg: cfg}
}

// Config returns the snapshot this policy was built from.
func (p Policy) Config() model.TrustPolicyConfig {
	return p.cfg
}

// Enabled reports whether automatic escalation is active.
func (p Policy) Enabled() bool {
	return p.cfg.Enabled
}

// ValidatePolicyConfig checks the config invariants. A config violating
// them is a deployment error, not a runtime condition.
func ValidatePolicyConfig(cfg model.TrustPolicyConfig) error {
	if cfg.Min > cfg.Base || cfg.Base > cfg.Max {
		return fmt.Errorf("trust policy requires min <= base <= max, got min=%d base=%d max=%d", cfg.Min, cfg.Base, cfg.Max)
	}
	if cfg.LowThreshold >= cfg.HighThreshold {
		return fmt.Errorf("trust policy requires low_threshold < high_threshold, got %d >= %d", cfg.LowThreshold, cfg.HighThreshold)
	}
	if cfg.MaxWarnings <= 0 {
		return fmt.Errorf("trust policy requires max_warnings > 0, got %d", cfg.MaxWarnings)
	}
	return nil
}

// Classify buckets a trust value: below the low threshold is LOW, above
// the high threshold is HIGH, both thresholds themselves are MEDIUM.
func (p Policy) Classify(trust int) string {
	switch {
	case trust < p.cfg.LowThreshold:
		return model.TrustLow
	case trust > p.cfg.HighThreshold:
		return model.TrustHigh
	default:
		return model.TrustMedium
	}
}

// OnWarn computes the outcome of one warn event: the warning counter goes
// up, trust goes down by the warn penalty, and once the counter reaches
// max_warnings an automatic mute fires. The mute duration is the base
// duration scaled by the multiplier of the post-penalty classification,
// so low-trust users sit out longer for the same warn count.
func (p Policy) OnWarn(current model.TrustRecord) WarnOutcome {
	outcome := WarnOutcome{
		NewTrust:    clamp(current.Trust-p.cfg.WarnPenalty, p.cfg.Min, p.cfg.Max),
		NewWarnings: current.Warnings + 1,
	}
	outcome.ShouldMute = outcome.NewWarnings >= p.cfg.MaxWarnings
	if outcome.ShouldMute {
		outcome.MuteDurationMs = p.muteDuration(outcome.NewTrust)
	}
	return outcome
}

// OnMute returns the trust value after a mute penalty, applied for both
// automatic and manually-issued mutes.
func (p Policy) OnMute(current model.TrustRecord) int {
	return clamp(current.Trust-p.cfg.MutePenalty, p.cfg.Min, p.cfg.Max)
}

// OnRegenTick returns the trust value after regeneration for the given
// number of elapsed days. Accumulation is capped at regen_max_days per
// application so a long-dormant user does not snap straight to max.
func (p Policy) OnRegenTick(current model.TrustRecord, daysSinceLastActivity int) int {
	if daysSinceLastActivity <= 0 {
		return current.Trust
	}
	days := daysSinceLastActivity
	if p.cfg.RegenMaxDays > 0 && days > p.cfg.RegenMaxDays {
		days = p.cfg.RegenMaxDays
	}
	return clamp(current.Trust+days*p.cfg.RegenPerDay, p.cfg.Min, p.cfg.Max)
}

// NextPenaltyEstimate simulates OnWarn forward without persisting to show
// how many more warns remain until an automatic mute and how long that
// mute would be. Returns nil when automation is disabled.
func (p Policy) NextPenaltyEstimate(current model.TrustRecord) *PenaltyEstimate {
	if !p.cfg.Enabled {
		return nil
	}

	simulated := current
	warns := 0
	for {
		warns++
		outcome := p.OnWarn(simulated)
		if outcome.ShouldMute {
			return &PenaltyEstimate{
				RemainingWarnsUntilMute: warns,
				EstimatedMuteMinutes:    outcome.MuteDurationMs / 60000,
			}
		}
		simulated.Trust = outcome.NewTrust
		simulated.Warnings = outcome.NewWarnings
	}
}

// RemovalCompensation decides the partial reversal when staff deletes a
// stored infraction: a removed WARN restores the warn penalty and
// decrements the counter, a removed MUTE restores the mute penalty only.
// Kicks and bans carry no trust arithmetic to reverse.
func (p Policy) RemovalCompensation(removed model.Infraction) Compensation {
	switch removed.Type {
	case model.InfractionWarn:
		return Compensation{TrustDelta: p.cfg.WarnPenalty, WarningsDelta: -1}
	case model.InfractionMute:
		return Compensation{TrustDelta: p.cfg.MutePenalty}
	default:
		return Compensation{}
	}
}

func (p Policy) muteDuration(trust int) int64 {
	duration := p.cfg.MuteBaseDurationMs
	switch p.Classify(trust) {
	case model.TrustLow:
		if p.cfg.LowTrustMuteMultiplier > 0 {
			duration = int64(float64(duration) * p.cfg.LowTrustMuteMultiplier)
		}
	case model.TrustHigh:
		if p.cfg.HighTrustMuteMultiplier > 0 {
			duration = int64(float64(duration) * p.cfg.HighTrustMuteMultiplier)
		}
	}
	return duration
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
