package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"news-chat/internal/logging"
)

const currentSessionKey = "session:current"

func infoKey(sessionID string) []byte {
	return []byte(fmt.Sprintf("session:info:%s", sessionID))
}

// BadgerStore persists the session across runs in a badger database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) GetOrCreateSession() string {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentSessionKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err == nil && id != "" {
		return id
	}
	if err != nil && err != badger.ErrKeyNotFound {
		logging.Error("failed to read current session: %v", err)
	}

	return s.CreateNewSession()
}

func (s *BadgerStore) CreateNewSession() string {
	id := newSessionID()
	info := SessionInfo{
		SessionID: id,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(info)
	if err != nil {
		logging.Error("failed to marshal session info: %v", err)
		return id
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(currentSessionKey), []byte(id)); err != nil {
			return err
		}
		return txn.Set(infoKey(id), data)
	})
	if err != nil {
		// The id is still usable for this run even if persistence failed.
		logging.Error("failed to persist session %s: %v", id, err)
	}

	return id
}

func (s *BadgerStore) ClearSession() {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentSessionKey))
		if err == nil {
			var id string
			if verr := item.Value(func(val []byte) error {
				id = string(val)
				return nil
			}); verr == nil && id != "" {
				if derr := txn.Delete(infoKey(id)); derr != nil && derr != badger.ErrKeyNotFound {
					return derr
				}
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Delete([]byte(currentSessionKey)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return nil
	})
	if err != nil {
		logging.Error("failed to clear session: %v", err)
	}
}

func (s *BadgerStore) IncrementMessageCount() {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentSessionKey))
		if err != nil {
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		infoItem, err := txn.Get(infoKey(id))
		if err != nil {
			return err
		}
		var info SessionInfo
		if err := infoItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &info)
		}); err != nil {
			return err
		}

		now := time.Now()
		info.MessageCount++
		info.LastMessageAt = &now

		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		return txn.Set(infoKey(id), data)
	})
	if err != nil && err != badger.ErrKeyNotFound {
		logging.Error("failed to update message count: %v", err)
	}
}

func (s *BadgerStore) Info() *SessionInfo {
	var info *SessionInfo
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentSessionKey))
		if err != nil {
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		infoItem, err := txn.Get(infoKey(id))
		if err != nil {
			return err
		}
		return infoItem.Value(func(val []byte) error {
			var decoded SessionInfo
			if err := json.Unmarshal(val, &decoded); err != nil {
				return err
			}
			info = &decoded
			return nil
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			logging.Error("failed to read session info: %v", err)
		}
		return nil
	}
	return info
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
