package trust

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"trust-bot/model"
)

func testPolicyConfig() model.TrustPolicyConfig {
	return model.TrustPolicyConfig{
		Enabled:                 true,
		Base:                    30,
		Min:                     0,
		Max:                     100,
		WarnPenalty:             5,
		MutePenalty:             15,
		RegenPerDay:             1,
		RegenMaxDays:            7,
		LowThreshold:            10,
		HighThreshold:           60,
		LowTrustMuteMultiplier:  2,
		HighTrustMuteMultiplier: 0.5,
		MaxWarnings:             3,
		MuteBaseDurationMs:      600000,
	}
}

func TestClassifyBoundaries(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	cases := []struct {
		trust int
		want  string
	}{
		{9, model.TrustLow},
		{10, model.TrustMedium},
		{60, model.TrustMedium},
		{61, model.TrustHigh},
		{0, model.TrustLow},
		{100, model.TrustHigh},
	}
	for _, tc := range cases {
		if got := p.Classify(tc.trust); got != tc.want {
			t.Errorf("Classify(%d) = %s, want %s", tc.trust, got, tc.want)
		}
	}
}

func TestOnWarn(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	got := p.OnWarn(model.TrustRecord{Trust: 30, Warnings: 0})
	want := WarnOutcome{NewTrust: 25, NewWarnings: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OnWarn mismatch (-want +got):\n%s", diff)
	}
}

func TestOnWarnTriggersMuteAtThreshold(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	got := p.OnWarn(model.TrustRecord{Trust: 20, Warnings: 2})
	if !got.ShouldMute {
		t.Fatal("expected third warn to trigger a mute")
	}
	if got.NewTrust != 15 {
		t.Errorf("NewTrust = %d, want 15", got.NewTrust)
	}
	// Post-penalty trust 15 classifies MEDIUM, so the duration stays
	// unscaled.
	if p.Classify(got.NewTrust) != model.TrustMedium {
		t.Fatalf("expected trust %d to classify MEDIUM", got.NewTrust)
	}
	if got.MuteDurationMs != 600000 {
		t.Errorf("MuteDurationMs = %d, want 600000", got.MuteDurationMs)
	}
}

func TestOnWarnMuteDurationScaling(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	cases := []struct {
		name  string
		trust int
		want  int64
	}{
		{"low trust doubles", 10, 1200000},   // 10-5=5 -> LOW
		{"medium trust unscaled", 30, 600000}, // 30-5=25 -> MEDIUM
		{"high trust halves", 90, 300000},     // 90-5=85 -> HIGH
	}
	for _, tc := range cases {
		got := p.OnWarn(model.TrustRecord{Trust: tc.trust, Warnings: 2})
		if !got.ShouldMute {
			t.Fatalf("%s: expected mute", tc.name)
		}
		if got.MuteDurationMs != tc.want {
			t.Errorf("%s: MuteDurationMs = %d, want %d", tc.name, got.MuteDurationMs, tc.want)
		}
	}
}

func TestOnMuteClampsAtMin(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	if got := p.OnMute(model.TrustRecord{Trust: 5}); got != 0 {
		t.Errorf("OnMute(5) = %d, want 0", got)
	}
	if got := p.OnMute(model.TrustRecord{Trust: 50}); got != 35 {
		t.Errorf("OnMute(50) = %d, want 35", got)
	}
}

func TestOnRegenTick(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	cases := []struct {
		name  string
		trust int
		days  int
		want  int
	}{
		{"no elapsed days", 20, 0, 20},
		{"one day", 20, 1, 21},
		{"capped at regen_max_days", 20, 30, 27},
		{"never exceeds max", 98, 7, 100},
	}
	for _, tc := range cases {
		if got := p.OnRegenTick(model.TrustRecord{Trust: tc.trust}, tc.days); got != tc.want {
			t.Errorf("%s: OnRegenTick(%d, %d) = %d, want %d", tc.name, tc.trust, tc.days, got, tc.want)
		}
	}
}

func TestNextPenaltyEstimate(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	got := p.NextPenaltyEstimate(model.TrustRecord{Trust: 30, Warnings: 0})
	want := &PenaltyEstimate{RemainingWarnsUntilMute: 3, EstimatedMuteMinutes: 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("estimate mismatch (-want +got):\n%s", diff)
	}

	got = p.NextPenaltyEstimate(model.TrustRecord{Trust: 20, Warnings: 2})
	want = &PenaltyEstimate{RemainingWarnsUntilMute: 1, EstimatedMuteMinutes: 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("estimate mismatch (-want +got):\n%s", diff)
	}
}

func TestNextPenaltyEstimateDisabled(t *testing.T) {
	cfg := testPolicyConfig()
	cfg.Enabled = false
	p := NewPolicy(cfg)

	if got := p.NextPenaltyEstimate(model.TrustRecord{Trust: 30}); got != nil {
		t.Errorf("expected nil estimate when automation is disabled, got %+v", got)
	}
}

func TestRemovalCompensation(t *testing.T) {
	p := NewPolicy(testPolicyConfig())

	cases := []struct {
		infractionType string
		want           Compensation
	}{
		{model.InfractionWarn, Compensation{TrustDelta: 5, WarningsDelta: -1}},
		{model.InfractionMute, Compensation{TrustDelta: 15}},
		{model.InfractionKick, Compensation{}},
		{model.InfractionBan, Compensation{}},
	}
	for _, tc := range cases {
		got := p.RemovalCompensation(model.Infraction{Type: tc.infractionType})
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("RemovalCompensation(%s) mismatch (-want +got):\n%s", tc.infractionType, diff)
		}
	}
}

func TestValidatePolicyConfig(t *testing.T) {
	if err := ValidatePolicyConfig(testPolicyConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	bad := testPolicyConfig()
	bad.Base = 200
	if err := ValidatePolicyConfig(bad); err == nil {
		t.Error("expected error for base above max")
	}

	bad = testPolicyConfig()
	bad.LowThreshold = 60
	if err := ValidatePolicyConfig(bad); err == nil {
		t.Error("expected error for low_threshold >= high_threshold")
	}

	bad = testPolicyConfig()
	bad.MaxWarnings = 0
	if err := ValidatePolicyConfig(bad); err == nil {
		t.Error("expected error for max_warnings = 0")
	}
}
