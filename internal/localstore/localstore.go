// Package localstore is the string-keyed persistent cache backing the
// offline-first data path. Snapshots of each user's items and history live
// here, scoped by email, and are read back whenever the remote store is
// unavailable.
package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rfduarte/feira/internal/model"
)

// Key families, scoped by user email where a suffix is present.
const (
	keyUser          = "user"
	keyItemsPrefix   = "items_"
	keyHistoryPrefix = "historico_"
	keySheetPrefix   = "spreadsheetId_"
	keyTokenPrefix   = "token_"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key, or "" if the key is absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get cache entry: %w", err)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

// --- Typed helpers over the key families ---

// SaveItems writes the full item snapshot for the given user.
func (s *Store) SaveItems(email string, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	return s.Set(keyItemsPrefix+email, string(data))
}

// LoadItems returns the cached item snapshot for the user, or an empty slice
// if none was ever saved.
func (s *Store) LoadItems(email string) ([]model.Item, error) {
	raw, err := s.Get(keyItemsPrefix + email)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []model.Item{}, nil
	}
	var items []model.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// SaveHistory writes the full history snapshot for the given user.
func (s *Store) SaveHistory(email string, history []model.HistoryEntry) error {
	if history == nil {
		history = []model.HistoryEntry{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return s.Set(keyHistoryPrefix+email, string(data))
}

// LoadHistory returns the cached history snapshot for the user, or an empty
// slice if none was ever saved.
func (s *Store) LoadHistory(email string) ([]model.HistoryEntry, error) {
	raw, err := s.Get(keyHistoryPrefix + email)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []model.HistoryEntry{}, nil
	}
	var history []model.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return history, nil
}

// SaveUser records the most recent authenticated session.
func (s *Store) SaveUser(session model.UserSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.Set(keyUser, string(data))
}

// LoadUser returns the recorded session, or nil if none is stored.
func (s *Store) LoadUser() (*model.UserSession, error) {
	raw, err := s.Get(keyUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var session model.UserSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &session, nil
}

func (s *Store) RemoveUser() error {
	return s.Remove(keyUser)
}

func (s *Store) SaveSpreadsheetID(email, id string) error {
	return s.Set(keySheetPrefix+email, id)
}

func (s *Store) SpreadsheetID(email string) (string, error) {
	return s.Get(keySheetPrefix + email)
}

func (s *Store) RemoveSpreadsheetID(email string) error {
	return s.Remove(keySheetPrefix + email)
}

func (s *Store) SaveToken(email, token string) error {
	return s.Set(keyTokenPrefix+email, token)
}

func (s *Store) Token(email string) (string, error) {
	return s.Get(keyTokenPrefix + email)
}

func (s *Store) RemoveToken(email string) error {
	return s.Remove(keyTokenPrefix + email)
}
