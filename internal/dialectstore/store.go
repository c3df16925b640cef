// Package dialectstore remembers column-role mappings per statement dialect.
// Entries are keyed by a fingerprint of normalized header names only, never
// cell content, so the cache file holds no statement data. The store is a
// re-detection hint: a stale or missing entry only costs a fresh
// classification pass.
package dialectstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

// entry is one remembered dialect.
type entry struct {
	Roles    map[string]models.ColumnRole `json:"roles"` // column index -> role
	LastSeen time.Time                    `json:"last_seen"`
}

// Store is a JSON-file-backed fingerprint cache. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]entry
}

// Open loads the store at path, creating parent directories as needed. A
// missing or unreadable file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]entry)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		// A corrupt cache is discarded, not fatal.
		s.entries = make(map[string]entry)
	}
	return s, nil
}

// Lookup returns remembered role hints for a header fingerprint.
func (s *Store) Lookup(fingerprint string) (map[int]models.ColumnRole, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[fingerprint]
	if !ok {
		return nil, false
	}
	hints := make(map[int]models.ColumnRole, len(e.Roles))
	for k, role := range e.Roles {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		hints[idx] = role
	}
	return hints, true
}

// Remember stores the resolved roles for a fingerprint and persists the file.
func (s *Store) Remember(fingerprint string, analyses []models.ColumnAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := make(map[string]models.ColumnRole, len(analyses))
	for _, a := range analyses {
		if a.Role == models.RoleUnknown {
			continue
		}
		roles[strconv.Itoa(a.Index)] = a.Role
	}
	s.entries[fingerprint] = entry{Roles: roles, LastSeen: time.Now().UTC()}
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
