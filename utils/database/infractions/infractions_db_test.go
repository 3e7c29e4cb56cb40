package infractions_db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"trust-bot/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to init test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addWarn(t *testing.T, db *sqlx.DB, guildID, userID, reason string) model.Infraction {
	t.Helper()
	record, err := Add(db, model.InfractionInput{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: "mod1",
		Type:        model.InfractionWarn,
		Reason:      reason,
	})
	if err != nil {
		t.Fatalf("Failed to add infraction: %v", err)
	}
	return record
}

func TestAddAssignsIDAndDefaultReason(t *testing.T) {
	db := openTestDB(t)

	record := addWarn(t, db, "g1", "u1", "")
	if record.ID == 0 {
		t.Error("expected a server-assigned id")
	}
	if record.Reason != model.DefaultReason {
		t.Errorf("reason = %q, want %q", record.Reason, model.DefaultReason)
	}
	if record.CreatedAt == 0 {
		t.Error("expected a creation timestamp")
	}
}

func TestRecentOrdersNewestFirstAndCapsLimit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < MaxRecentLimit+10; i++ {
		addWarn(t, db, "g1", "u1", fmt.Sprintf("warn %d", i))
	}

	records, err := Recent(db, "g1", "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(records) != MaxRecentLimit {
		t.Fatalf("got %d records, want the cap %d", len(records), MaxRecentLimit)
	}
	for i := 1; i < len(records); i++ {
		if records[i].ID > records[i-1].ID {
			t.Fatalf("records out of order at index %d: %d after %d", i, records[i].ID, records[i-1].ID)
		}
	}

	page, err := Recent(db, "g1", "u1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(page) != 3 {
		t.Errorf("got %d records, want 3", len(page))
	}
}

func TestCountsByType(t *testing.T) {
	db := openTestDB(t)

	addWarn(t, db, "g1", "u1", "spam")
	addWarn(t, db, "g1", "u1", "spam")
	if _, err := Add(db, model.InfractionInput{
		GuildID: "g1", UserID: "u1", ModeratorID: "mod1",
		Type: model.InfractionMute, Reason: "escalated", DurationMs: 600000,
	}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	counts, err := CountsByType(db, "g1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if counts[model.InfractionWarn] != 2 || counts[model.InfractionMute] != 1 {
		t.Errorf("counts = %v, want 2 warns and 1 mute", counts)
	}
}

func TestRemoveByIDEnforcesOwnership(t *testing.T) {
	db := openTestDB(t)

	record := addWarn(t, db, "g1", "owner", "spam")

	// A forged id scoped to another user must delete nothing.
	removed, err := RemoveByID(db, "g1", "other", record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if removed != nil {
		t.Fatalf("removed %+v, want nil for a foreign id", removed)
	}

	removed, err = RemoveByID(db, "g1", "owner", record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if removed == nil || removed.ID != record.ID {
		t.Fatalf("removed = %+v, want the owned record", removed)
	}

	remaining, err := Recent(db, "g1", "owner", 0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(remaining) != 0 {
		t.Errorf("got %d records after removal, want 0", len(remaining))
	}
}

func TestClearForUserLeavesOthersAlone(t *testing.T) {
	db := openTestDB(t)

	addWarn(t, db, "g1", "u1", "spam")
	addWarn(t, db, "g1", "u1", "spam again")
	addWarn(t, db, "g1", "u2", "unrelated")

	removed, err := ClearForUser(db, "g1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	others, err := Recent(db, "g1", "u2", 0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(others) != 1 {
		t.Errorf("u2 has %d records, want 1", len(others))
	}
}

func TestGuildStats(t *testing.T) {
	db := openTestDB(t)

	addWarn(t, db, "g1", "u1", "spam")
	addWarn(t, db, "g1", "u2", "spam")
	if _, err := Add(db, model.InfractionInput{
		GuildID: "g1", UserID: "u3", ModeratorID: "mod2",
		Type: model.InfractionMute, Reason: "spam", DurationMs: 600000,
	}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	since := time.Now().Add(-time.Hour)
	count, err := CountForGuild(db, "g1", since)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	stats, err := ModeratorStats(db, "g1", since)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stats["mod1"] != 2 || stats["mod2"] != 1 {
		t.Errorf("stats = %v, want mod1=2 mod2=1", stats)
	}

	// Nothing lies in the future window.
	count, err = CountForGuild(db, "g1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if count != 0 {
		t.Errorf("future window count = %d, want 0", count)
	}
}
