package session

import (
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()

	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestBadgerStoreSessionLifecycle(t *testing.T) {
	store := openTestStore(t)

	id := store.GetOrCreateSession()
	if !strings.HasPrefix(id, "session_") {
		t.Errorf("Expected session_ prefix, got %s", id)
	}

	// Same id on repeat lookups
	if again := store.GetOrCreateSession(); again != id {
		t.Errorf("Expected stable session id %s, got %s", id, again)
	}

	info := store.Info()
	if info == nil {
		t.Fatal("Expected session info after creation")
	}
	if info.SessionID != id {
		t.Errorf("Expected info for %s, got %s", id, info.SessionID)
	}
	if info.MessageCount != 0 {
		t.Errorf("Expected fresh session to have 0 messages, got %d", info.MessageCount)
	}
	if info.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestBadgerStoreMessageCount(t *testing.T) {
	store := openTestStore(t)
	store.GetOrCreateSession()

	store.IncrementMessageCount()
	store.IncrementMessageCount()
	store.IncrementMessageCount()

	info := store.Info()
	if info == nil {
		t.Fatal("Expected session info")
	}
	if info.MessageCount != 3 {
		t.Errorf("Expected 3 messages, got %d", info.MessageCount)
	}
	if info.LastMessageAt == nil {
		t.Error("Expected LastMessageAt to be set after increments")
	}
}

func TestBadgerStoreClearSession(t *testing.T) {
	store := openTestStore(t)

	first := store.GetOrCreateSession()
	store.IncrementMessageCount()
	store.ClearSession()

	if info := store.Info(); info != nil {
		t.Errorf("Expected no info after clear, got %+v", info)
	}

	second := store.GetOrCreateSession()
	if second == first {
		t.Errorf("Expected a fresh session id after clear, got %s again", second)
	}

	info := store.Info()
	if info == nil {
		t.Fatal("Expected info for the new session")
	}
	if info.MessageCount != 0 {
		t.Errorf("Expected new session counter to start at 0, got %d", info.MessageCount)
	}
}

func TestBadgerStoreCreateNewSessionReplacesCurrent(t *testing.T) {
	store := openTestStore(t)

	first := store.GetOrCreateSession()
	second := store.CreateNewSession()

	if second == first {
		t.Error("Expected CreateNewSession to mint a distinct id")
	}
	if got := store.GetOrCreateSession(); got != second {
		t.Errorf("Expected current session %s, got %s", second, got)
	}
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	id := store.GetOrCreateSession()
	store.IncrementMessageCount()
	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	reopened, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	if got := reopened.GetOrCreateSession(); got != id {
		t.Errorf("Expected persisted session %s, got %s", id, got)
	}
	info := reopened.Info()
	if info == nil {
		t.Fatal("Expected persisted session info")
	}
	if info.MessageCount != 1 {
		t.Errorf("Expected persisted message count 1, got %d", info.MessageCount)
	}
}

func TestNewStoreFallsBackToMemory(t *testing.T) {
	// An unusable path forces the in-memory fallback
	store := NewStore("/dev/null/not-a-directory")
	defer store.Close()

	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("Expected in-memory fallback, got %T", store)
	}

	id := store.GetOrCreateSession()
	if !strings.HasPrefix(id, "session_") {
		t.Errorf("Expected session_ prefix, got %s", id)
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()

	id := store.GetOrCreateSession()
	if id == "" {
		t.Fatal("Expected a session id")
	}
	if again := store.GetOrCreateSession(); again != id {
		t.Errorf("Expected stable id, got %s then %s", id, again)
	}

	store.IncrementMessageCount()
	info := store.Info()
	if info == nil || info.MessageCount != 1 {
		t.Fatalf("Expected message count 1, got %+v", info)
	}

	store.ClearSession()
	if store.Info() != nil {
		t.Error("Expected no info after clear")
	}

	if next := store.CreateNewSession(); next == id {
		t.Error("Expected a fresh id after clear")
	}
}
