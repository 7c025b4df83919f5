// Package session owns the client-side session state: the persisted
// credential record, the store that holds it, and the timer that expires it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is the persisted session. A Record with an empty Token means no
// session.
//
// TimeoutMinutes of 0 disables client-side expiry. LoginAt may be zero for
// records written by older versions; the timer initializes it on the first
// check instead of treating the session as expired.
type Record struct {
	Token             string    `json:"token"`
	Username          string    `json:"username"`
	LoginAt           time.Time `json:"login_at,omitzero"`
	TimeoutMinutes    int       `json:"timeout_minutes"`
	RequiresTOTPSetup bool      `json:"requires_totp_setup"`
}

// Store persists at most one session record. Read returns (nil, nil) when no
// session is stored. Writers overwrite unconditionally; the last write wins.
//
// The onboarding flag lives beside the record and is not touched by Clear, so
// the first-use tour is shown once per machine rather than once per login.
type Store interface {
	Read() (*Record, error)
	Save(*Record) error
	Clear() error
	OnboardingCompleted() bool
	MarkOnboardingCompleted() error
}

// FileStore keeps the record in a JSON file with owner-only permissions.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store at path. An empty path selects
// ~/.tacpanel/session.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		path = filepath.Join(home, ".tacpanel", "session.json")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Read() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt file is treated as no session rather than a hard error.
		return nil, nil
	}
	if rec.Token == "" {
		return nil, nil
	}
	return &rec, nil
}

func (s *FileStore) Save(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// OnboardingCompleted reports whether the first-use tour was already shown.
// A missing or unreadable flag file reads as false.
func (s *FileStore) OnboardingCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.onboardingPath())
	return err == nil
}

func (s *FileStore) MarkOnboardingCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(s.onboardingPath(), []byte("true\n"), 0o600); err != nil {
		return fmt.Errorf("writing onboarding flag: %w", err)
	}
	return nil
}

func (s *FileStore) onboardingPath() string {
	return filepath.Join(filepath.Dir(s.path), "onboarding_completed")
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu         sync.Mutex
	rec        *Record
	onboarding bool
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Read() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	cp := *s.rec
	return &cp, nil
}

func (s *MemStore) Save(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.rec = &cp
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}

func (s *MemStore) OnboardingCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboarding
}

func (s *MemStore) MarkOnboardingCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboarding = true
	return nil
}
