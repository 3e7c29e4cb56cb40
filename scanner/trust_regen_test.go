package scanner

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"trust-bot/model"
	"trust-bot/trust"
	trust_db "trust-bot/utils/database/trust"
)

func regenTestConfig() model.TrustPolicyConfig {
	return model.TrustPolicyConfig{
		Enabled:            true,
		Base:               30,
		Min:                0,
		Max:                100,
		WarnPenalty:        5,
		MutePenalty:        15,
		RegenPerDay:        1,
		RegenMaxDays:       7,
		LowThreshold:       10,
		HighThreshold:      60,
		MaxWarnings:        3,
		MuteBaseDurationMs: 600000,
	}
}

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := trust_db.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to init test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func backdate(t *testing.T, db *sqlx.DB, guildID, userID string, days int) {
	t.Helper()
	ts := time.Now().AddDate(0, 0, -days).Unix()
	if _, err := db.Exec("UPDATE trust_records SET updated_at = ? WHERE guild_id = ? AND user_id = ?", ts, guildID, userID); err != nil {
		t.Fatalf("Failed to backdate record: %v", err)
	}
}

func TestSweepTrustRegen(t *testing.T) {
	db := openTestDB(t)
	policy := trust.NewPolicy(regenTestConfig())

	if _, err := trust_db.GetOrCreate(db, "g1", "dormant", 20); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	backdate(t, db, "g1", "dormant", 3)

	if _, err := trust_db.GetOrCreate(db, "g1", "recent", 20); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := trust_db.GetOrCreate(db, "g1", "longgone", 20); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	backdate(t, db, "g1", "longgone", 30)

	SweepTrustRegen(db, policy)

	cases := []struct {
		userID string
		want   int
	}{
		{"dormant", 23},  // 3 days at 1/day
		{"recent", 20},   // active today, nothing to grant
		{"longgone", 27}, // 30 days capped at 7
	}
	for _, tc := range cases {
		record, err := trust_db.Find(db, "g1", tc.userID)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if record == nil {
			t.Fatalf("%s: record disappeared", tc.userID)
		}
		if record.Trust != tc.want {
			t.Errorf("%s: trust = %d, want %d", tc.userID, record.Trust, tc.want)
		}
	}
}

func TestSweepTouchesUpdatedAt(t *testing.T) {
	db := openTestDB(t)
	policy := trust.NewPolicy(regenTestConfig())

	if _, err := trust_db.GetOrCreate(db, "g1", "u1", 20); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	backdate(t, db, "g1", "u1", 3)

	// Two back-to-back sweeps must not grant the same days twice.
	SweepTrustRegen(db, policy)
	SweepTrustRegen(db, policy)

	record, err := trust_db.Find(db, "g1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if record.Trust != 23 {
		t.Errorf("trust = %d, want 23 (days granted once)", record.Trust)
	}
}

func TestRegenPreservesInterleavedPenalty(t *testing.T) {
	db := openTestDB(t)
	policy := trust.NewPolicy(regenTestConfig())

	if _, err := trust_db.GetOrCreate(db, "g1", "u1", 20); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	backdate(t, db, "g1", "u1", 3)

	// The snapshot the sweep works from.
	stale, err := trust_db.Find(db, "g1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// A warn commits between the sweep's read and its write.
	if _, err := trust_db.ApplyDelta(db, "g1", "u1", -5, 1, 0, 100); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !regenerate(db, policy, *stale, 3) {
		t.Fatal("expected the grant to apply")
	}

	record, err := trust_db.Find(db, "g1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if record.Trust != 18 {
		t.Errorf("trust = %d, want 18 (warn penalty kept, 3 regen days granted)", record.Trust)
	}
	if record.Warnings != 1 {
		t.Errorf("warnings = %d, want 1 (untouched by the sweep)", record.Warnings)
	}
}

func TestSweepDisabledPolicy(t *testing.T) {
	db := openTestDB(t)
	cfg := regenTestConfig()
	cfg.Enabled = false
	policy := trust.NewPolicy(cfg)

	if _, err := trust_db.GetOrCreate(db, "g1", "u1", 20); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	backdate(t, db, "g1", "u1", 3)

	SweepTrustRegen(db, policy)

	record, err := trust_db.Find(db, "g1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if record.Trust != 20 {
		t.Errorf("trust = %d, want unchanged 20", record.Trust)
	}
}
