package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func saveSession(t *testing.T, store *Store, pool string, score int, ended time.Time) Session {
	t.Helper()
	sess := NewSession(pool)
	sess.Score = score
	sess.HighScore = score
	sess.Ticks = uint64(score) * 100
	sess.EndedAt = ended
	if err := store.SaveSession(sess); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	return sess
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNewSession(t *testing.T) {
	sess := NewSession("game.pool")

	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("NewSession().ID = %q is not a UUID: %v", sess.ID, err)
	}
	if !filepath.IsAbs(sess.PoolPath) {
		t.Errorf("NewSession().PoolPath = %q, expected an absolute path", sess.PoolPath)
	}
	if sess.StartedAt.IsZero() {
		t.Error("NewSession().StartedAt is zero")
	}
	if other := NewSession("game.pool"); other.ID == sess.ID {
		t.Error("NewSession() returned the same ID twice")
	}
}

func TestStoreSaveAndTopSessions(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	saveSession(t, store, "a.pool", 100, now)
	saveSession(t, store, "a.pool", 50, now)
	saveSession(t, store, "b.pool", 200, now)

	sessions, err := store.TopSessions(10)
	if err != nil {
		t.Fatalf("TopSessions() failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}

	// Should be sorted descending
	want := []int{200, 100, 50}
	for i, w := range want {
		if sessions[i].Score != w {
			t.Errorf("sessions[%d].Score = %d, expected %d", i, sessions[i].Score, w)
		}
	}
	if sessions[0].Ticks != 20000 {
		t.Errorf("sessions[0].Ticks = %d, expected 20000", sessions[0].Ticks)
	}
	if sessions[0].EndedAt.Unix() != now.Truncate(time.Second).Unix() {
		t.Errorf("sessions[0].EndedAt = %v, expected %v", sessions[0].EndedAt, now.Truncate(time.Second))
	}
}

func TestStoreTopSessionsLimit(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	for i := 1; i <= 15; i++ {
		saveSession(t, store, "a.pool", i*10, now)
	}

	sessions, err := store.TopSessions(5)
	if err != nil {
		t.Fatalf("TopSessions() failed: %v", err)
	}
	if len(sessions) != 5 {
		t.Errorf("Expected 5 sessions, got %d", len(sessions))
	}
	if sessions[0].Score != 150 {
		t.Errorf("Expected top score 150, got %d", sessions[0].Score)
	}

	// Default limit
	sessions, err = store.TopSessions(0)
	if err != nil {
		t.Fatalf("TopSessions() failed: %v", err)
	}
	if len(sessions) != 10 {
		t.Errorf("Expected 10 sessions with default limit, got %d", len(sessions))
	}
}

func TestStoreSaveSessionUpdates(t *testing.T) {
	store := openTestStore(t)

	sess := saveSession(t, store, "a.pool", 5, time.Now().UTC())
	sess.Score = 9
	sess.HighScore = 12
	sess.Ticks = 4242
	sess.EndedAt = time.Time{}
	if err := store.SaveSession(sess); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	sessions, err := store.PoolSessions("a.pool", 10)
	if err != nil {
		t.Fatalf("PoolSessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session after update, got %d", len(sessions))
	}
	got := sessions[0]
	if got.ID != sess.ID || got.Score != 9 || got.HighScore != 12 || got.Ticks != 4242 {
		t.Errorf("PoolSessions()[0] = %+v, expected updated session %s", got, sess.ID)
	}
	if got.EndedAt.IsZero() {
		t.Error("EndedAt was not stamped")
	}
}

func TestStoreSaveSessionWithoutID(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveSession(Session{PoolPath: "a.pool"}); err == nil {
		t.Error("SaveSession() without ID should fail")
	}
}

func TestStorePoolSessions(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	saveSession(t, store, "a.pool", 1, base)
	saveSession(t, store, "a.pool", 2, base.Add(time.Hour))
	saveSession(t, store, "b.pool", 3, base.Add(2*time.Hour))

	sessions, err := store.PoolSessions("a.pool", 10)
	if err != nil {
		t.Fatalf("PoolSessions() failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions for a.pool, got %d", len(sessions))
	}
	// Most recent first
	if sessions[0].Score != 2 || sessions[1].Score != 1 {
		t.Errorf("PoolSessions() scores = %d, %d, expected 2, 1", sessions[0].Score, sessions[1].Score)
	}
	if !sessions[0].EndedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("sessions[0].EndedAt = %v, expected %v", sessions[0].EndedAt, base.Add(time.Hour))
	}
}

func TestStorePoolStats(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// No sessions
	stats, err := store.PoolStats("a.pool")
	if err != nil {
		t.Fatalf("PoolStats() failed: %v", err)
	}
	if stats.Sessions != 0 || stats.BestScore != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("PoolStats() on empty store = %+v, expected zero values", stats)
	}

	saveSession(t, store, "a.pool", 4, base)
	saveSession(t, store, "a.pool", 7, base.Add(time.Minute))
	saveSession(t, store, "b.pool", 99, base.Add(time.Hour))

	stats, err = store.PoolStats("a.pool")
	if err != nil {
		t.Fatalf("PoolStats() failed: %v", err)
	}
	if stats.Sessions != 2 {
		t.Errorf("Sessions = %d, expected 2", stats.Sessions)
	}
	if stats.BestScore != 7 {
		t.Errorf("BestScore = %d, expected 7", stats.BestScore)
	}
	if stats.TotalTicks != 1100 {
		t.Errorf("TotalTicks = %d, expected 1100", stats.TotalTicks)
	}
	if !stats.LastPlayed.Equal(base.Add(time.Minute)) {
		t.Errorf("LastPlayed = %v, expected %v", stats.LastPlayed, base.Add(time.Minute))
	}
}

func TestStoreClearSessions(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	saveSession(t, store, "a.pool", 1, now)
	saveSession(t, store, "b.pool", 2, now)

	if err := store.ClearSessions("a.pool"); err != nil {
		t.Fatalf("ClearSessions() failed: %v", err)
	}

	sessions, err := store.TopSessions(10)
	if err != nil {
		t.Fatalf("TopSessions() failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Score != 2 {
		t.Errorf("TopSessions() after clear = %+v, expected only b.pool", sessions)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
