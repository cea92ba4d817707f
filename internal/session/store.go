package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"news-chat/internal/logging"
)

// SessionInfo is the lightweight per-session record kept alongside the
// current session id.
type SessionInfo struct {
	SessionID     string     `json:"sessionId"`
	CreatedAt     time.Time  `json:"createdAt"`
	MessageCount  int        `json:"messageCount"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// Store persists the current session id and its counters. Persistence
// failures are logged and absorbed: a session id is always returned, even
// if it only lives for this process.
type Store interface {
	// GetOrCreateSession returns the persisted session id, creating one
	// if none exists.
	GetOrCreateSession() string

	// CreateNewSession creates and persists a fresh session id.
	CreateNewSession() string

	// ClearSession removes the current session and its info record.
	ClearSession()

	// IncrementMessageCount bumps the session's message counter.
	IncrementMessageCount()

	// Info returns the current session's record, or nil if there is none.
	Info() *SessionInfo

	Close() error
}

// NewStore opens the badger-backed store at dbPath, falling back to an
// ephemeral in-memory store when the database cannot be opened.
func NewStore(dbPath string) Store {
	store, err := NewBadgerStore(dbPath)
	if err != nil {
		logging.Error("failed to open session store, using in-memory session: %v", err)
		return NewMemoryStore()
	}
	return store
}

func newSessionID() string {
	return "session_" + uuid.NewString()
}

// MemoryStore keeps the session in process memory only. Used when the
// on-disk store is unavailable; the session lasts for this run.
type MemoryStore struct {
	mu   sync.Mutex
	id   string
	info *SessionInfo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetOrCreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" {
		return s.id
	}
	return s.createLocked()
}

func (s *MemoryStore) CreateNewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *MemoryStore) createLocked() string {
	s.id = newSessionID()
	s.info = &SessionInfo{
		SessionID: s.id,
		CreatedAt: time.Now(),
	}
	return s.id
}

func (s *MemoryStore) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.info = nil
}

func (s *MemoryStore) IncrementMessageCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return
	}
	now := time.Now()
	s.info.MessageCount++
	s.info.LastMessageAt = &now
}

func (s *MemoryStore) Info() *SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil
	}
	info := *s.info
	return &info
}

func (s *MemoryStore) Close() error {
	return nil
}
