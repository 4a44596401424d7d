package store

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestGetPosition_Empty(t *testing.T) {
	m := newTestManager(t)

	rec, err := m.GetPosition("unknown")
	if err != nil {
		t.Fatalf("GetPosition() error = %v", err)
	}
	if rec != nil {
		t.Errorf("GetPosition() = %+v, want nil for unknown episode", rec)
	}
}

func TestSaveAndGetPosition(t *testing.T) {
	m := newTestManager(t)

	if err := m.SavePosition("ep1", 42*time.Second); err != nil {
		t.Fatalf("SavePosition() error = %v", err)
	}

	rec, err := m.GetPosition("ep1")
	if err != nil {
		t.Fatalf("GetPosition() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetPosition() = nil after save")
	}
	if rec.Position != 42*time.Second {
		t.Errorf("Position = %v, want 42s", rec.Position)
	}
	// Seconds in the database, milliseconds at remote-control boundaries.
	if ms := rec.Position.Milliseconds(); ms != 42000 {
		t.Errorf("Position.Milliseconds() = %d, want 42000", ms)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestSavePosition_LastWriteWins(t *testing.T) {
	m := newTestManager(t)

	if err := m.SavePosition("ep1", 10*time.Second); err != nil {
		t.Fatalf("SavePosition() error = %v", err)
	}
	if err := m.SavePosition("ep1", 99*time.Second); err != nil {
		t.Fatalf("SavePosition() error = %v", err)
	}

	rec, err := m.GetPosition("ep1")
	if err != nil || rec == nil {
		t.Fatalf("GetPosition() = %v, %v", rec, err)
	}
	if rec.Position != 99*time.Second {
		t.Errorf("Position = %v, want 99s (last write wins)", rec.Position)
	}

	// Still exactly one row for the id.
	var count int
	if err := m.DB().QueryRow(
		`SELECT COUNT(*) FROM positions WHERE episode_id = ?`, "ep1").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows for ep1 = %d, want 1", count)
	}
}

func TestSavePosition_SubSecondPrecision(t *testing.T) {
	m := newTestManager(t)

	if err := m.SavePosition("ep1", 42500*time.Millisecond); err != nil {
		t.Fatalf("SavePosition() error = %v", err)
	}

	rec, err := m.GetPosition("ep1")
	if err != nil || rec == nil {
		t.Fatalf("GetPosition() = %v, %v", rec, err)
	}
	if rec.Position != 42500*time.Millisecond {
		t.Errorf("Position = %v, want 42.5s", rec.Position)
	}
}

func TestDeletePosition(t *testing.T) {
	m := newTestManager(t)

	_ = m.SavePosition("ep1", 10*time.Second)
	if err := m.DeletePosition("ep1"); err != nil {
		t.Fatalf("DeletePosition() error = %v", err)
	}

	rec, _ := m.GetPosition("ep1")
	if rec != nil {
		t.Errorf("GetPosition() = %+v after delete, want nil", rec)
	}
}

func TestCurrentEpisode(t *testing.T) {
	m := newTestManager(t)

	id, err := m.CurrentEpisode()
	if err != nil {
		t.Fatalf("CurrentEpisode() error = %v", err)
	}
	if id != "" {
		t.Errorf("CurrentEpisode() = %q on empty db, want empty", id)
	}

	if err := m.SetCurrentEpisode("ep1"); err != nil {
		t.Fatalf("SetCurrentEpisode() error = %v", err)
	}
	id, _ = m.CurrentEpisode()
	if id != "ep1" {
		t.Errorf("CurrentEpisode() = %q, want ep1", id)
	}

	if err := m.ClearCurrentEpisode(); err != nil {
		t.Fatalf("ClearCurrentEpisode() error = %v", err)
	}
	id, _ = m.CurrentEpisode()
	if id != "" {
		t.Errorf("CurrentEpisode() = %q after clear, want empty", id)
	}
}

func TestSaveSnapshot(t *testing.T) {
	m := newTestManager(t)

	if err := m.SaveSnapshot("ep1", 90*time.Second, true); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	rec, err := m.GetPosition("ep1")
	if err != nil || rec == nil {
		t.Fatalf("GetPosition() = %v, %v", rec, err)
	}
	if rec.Position != 90*time.Second {
		t.Errorf("Position = %v, want 90s", rec.Position)
	}

	lp, err := m.GetLastPlayed()
	if err != nil {
		t.Fatalf("GetLastPlayed() error = %v", err)
	}
	if lp == nil {
		t.Fatal("GetLastPlayed() = nil after snapshot")
	}
	if lp.EpisodeID != "ep1" || lp.Position != 90*time.Second || !lp.Playing {
		t.Errorf("GetLastPlayed() = %+v, want ep1/90s/playing", lp)
	}
}

func TestGetLastPlayed_Empty(t *testing.T) {
	m := newTestManager(t)

	lp, err := m.GetLastPlayed()
	if err != nil {
		t.Fatalf("GetLastPlayed() error = %v", err)
	}
	if lp != nil {
		t.Errorf("GetLastPlayed() = %+v on empty db, want nil", lp)
	}
}

func TestPushToken(t *testing.T) {
	m := newTestManager(t)

	if err := m.SetPushToken("tok-123"); err != nil {
		t.Fatalf("SetPushToken() error = %v", err)
	}
	tok, err := m.PushToken()
	if err != nil {
		t.Fatalf("PushToken() error = %v", err)
	}
	if tok != "tok-123" {
		t.Errorf("PushToken() = %q, want tok-123", tok)
	}
}

func TestDeviceID_StableAcrossCalls(t *testing.T) {
	m := newTestManager(t)

	first, err := m.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID() error = %v", err)
	}
	if first == "" {
		t.Fatal("DeviceID() = empty")
	}

	second, err := m.DeviceID()
	if err != nil {
		t.Fatalf("DeviceID() error = %v", err)
	}
	if second != first {
		t.Errorf("DeviceID() = %q on second call, want %q", second, first)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	m := newTestManager(t)

	if err := initSchema(m.DB()); err != nil {
		t.Fatalf("second initSchema() error = %v", err)
	}
}
