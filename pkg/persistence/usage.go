package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// UsageVersion is the current version of the usage file format.
const UsageVersion = 1

// UsageLog contains the completed usage sessions of one or more devices.
type UsageLog struct {
	// Version is the file format version.
	Version int `json:"version"`

	// SavedAt is when the log was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Sessions are the completed sessions, oldest first.
	Sessions []SessionRecord `json:"sessions,omitempty"`
}

// SessionRecord is one completed usage session.
type SessionRecord struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`

	// DeviceKey is the codec the session was recorded on.
	DeviceKey string `json:"device_key"`

	// Start and End bound the session.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Duration is End minus Start.
	Duration time.Duration `json:"duration"`
}

// UsageStore manages persistence of usage sessions to a JSON file.
type UsageStore struct {
	mu   sync.Mutex
	path string
}

// NewUsageStore creates a usage store backed by the file at path.
func NewUsageStore(path string) *UsageStore {
	return &UsageStore{path: path}
}

// Path returns the backing file path.
func (s *UsageStore) Path() string {
	return s.path
}

// Save replaces the stored log.
func (s *UsageStore) Save(log *UsageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(log)
}

func (s *UsageStore) save(log *UsageLog) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	log.Version = UsageVersion
	log.SavedAt = time.Now()

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}

	// Write to a sibling and rename so a crash never leaves a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the stored log.
// Returns nil, nil if the file doesn't exist (empty log).
func (s *UsageStore) Load() (*UsageLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *UsageStore) load() (*UsageLog, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	log := &UsageLog{}
	if err := json.Unmarshal(data, log); err != nil {
		return nil, err
	}
	return log, nil
}

// Append adds a completed session to the stored log.
func (s *UsageStore) Append(rec SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load()
	if err != nil {
		return err
	}
	if log == nil {
		log = &UsageLog{}
	}
	log.Sessions = append(log.Sessions, rec)
	return s.save(log)
}

// Sessions returns the stored sessions for deviceKey. An empty key
// returns every session.
func (s *UsageStore) Sessions(deviceKey string) ([]SessionRecord, error) {
	log, err := s.Load()
	if err != nil || log == nil {
		return nil, err
	}

	var out []SessionRecord
	for _, rec := range log.Sessions {
		if deviceKey == "" || rec.DeviceKey == deviceKey {
			out = append(out, rec)
		}
	}
	return out, nil
}

// TotalDuration sums the stored session durations for deviceKey.
func (s *UsageStore) TotalDuration(deviceKey string) (time.Duration, error) {
	sessions, err := s.Sessions(deviceKey)
	if err != nil {
		return 0, err
	}

	var total time.Duration
	for _, rec := range sessions {
		total += rec.Duration
	}
	return total, nil
}

// Clear removes the usage file.
func (s *UsageStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
