package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/content"
)

// DefaultMaxSnapshots bounds the snapshot history.
const DefaultMaxSnapshots = 10

// Snapshot is a labelled copy of the site. IDs are Unix milliseconds and
// strictly increase from one snapshot to the next.
type Snapshot struct {
	ID        int64        `json:"id"`
	Timestamp string       `json:"timestamp"`
	Label     string       `json:"label"`
	Data      content.Site `json:"data"`
}

// Time returns the creation time encoded in the snapshot ID.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.ID)
}

// Draft is an unsaved editor state.
type Draft struct {
	Data    content.Site `json:"data"`
	SavedAt time.Time    `json:"savedAt"`
}

// Manager persists the live site and keeps its snapshot history and drafts.
type Manager struct {
	state   *State
	backend Backend
	logger  echo.Logger
	max     int
	now     func() time.Time

	// mu serializes read-modify-write cycles on the stored documents.
	mu     sync.Mutex
	lastID int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxSnapshots sets the snapshot history length (default 10).
func WithMaxSnapshots(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a Manager for state backed by backend.
func NewManager(state *State, backend Backend, logger echo.Logger, opts ...Option) *Manager {
	m := &Manager{
		state:   state,
		backend: backend,
		logger:  logger,
		max:     DefaultMaxSnapshots,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the live application state.
func (m *Manager) State() *State {
	return m.state
}

// Load replaces the live state with the stored site. When nothing is stored
// yet, seed is stored and used instead.
func (m *Manager) Load(seed content.Site) error {
	b, err := m.backend.GetDocument(KeySite)
	if errors.Is(err, ErrNotFound) {
		return m.Commit(seed)
	}
	if err != nil {
		return fmt.Errorf("site: load: %w", err)
	}
	s, err := content.Unmarshal(b)
	if err != nil {
		return fmt.Errorf("site: load: %w", err)
	}
	m.state.Replace(s)
	return nil
}

// Commit persists s and makes it the live site.
func (m *Manager) Commit(s content.Site) error {
	b, err := content.Marshal(s)
	if err != nil {
		return err
	}
	if err := m.backend.PutDocument(KeySite, b); err != nil {
		m.logger.Errorf("site: save: %v", err)
		return fmt.Errorf("site: save: %w", err)
	}
	m.state.Replace(s)
	return nil
}

// Import snapshots the current site and then replaces it with s.
func (m *Manager) Import(s content.Site) error {
	if _, err := m.CreateSnapshot("Before import"); err != nil {
		return err
	}
	return m.Commit(s)
}

// CreateSnapshot stores a copy of the live site at the front of the
// history, dropping the oldest entries beyond the limit. An empty label is
// replaced with a timestamped one.
func (m *Manager) CreateSnapshot(label string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps, err := m.loadSnapshots()
	if err != nil {
		return Snapshot{}, err
	}

	now := m.now()
	id := now.UnixMilli()
	if len(snaps) > 0 && snaps[0].ID > m.lastID {
		m.lastID = snaps[0].ID
	}
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id

	if label == "" {
		label = "Snapshot - " + now.Format("2006-01-02 15:04:05")
	}
	snap := Snapshot{
		ID:        id,
		Timestamp: time.UnixMilli(id).UTC().Format("2006-01-02T15:04:05.000Z"),
		Label:     label,
		Data:      m.state.Current(),
	}

	snaps = append([]Snapshot{snap}, snaps...)
	if len(snaps) > m.max {
		snaps = snaps[:m.max]
	}
	if err := m.saveSnapshots(snaps); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Snapshots returns the history, newest first.
func (m *Manager) Snapshots() ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadSnapshots()
}

// Snapshot returns the snapshot with the given id.
func (m *Manager) Snapshot(id int64) (Snapshot, error) {
	snaps, err := m.Snapshots()
	if err != nil {
		return Snapshot{}, err
	}
	for _, s := range snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return Snapshot{}, ErrNotFound
}

// RestoreSnapshot snapshots the live site as "Before restore: <label>" and
// then replaces it entirely with the snapshot's data.
func (m *Manager) RestoreSnapshot(id int64) (Snapshot, error) {
	snap, err := m.Snapshot(id)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := m.CreateSnapshot("Before restore: " + snap.Label); err != nil {
		return Snapshot{}, err
	}
	if err := m.Commit(snap.Data); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// DeleteSnapshot removes one snapshot from the history.
func (m *Manager) DeleteSnapshot(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps, err := m.loadSnapshots()
	if err != nil {
		return err
	}
	kept := snaps[:0]
	for _, s := range snaps {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(snaps) {
		return ErrNotFound
	}
	return m.saveSnapshots(kept)
}

// ClearSnapshots removes the whole history.
func (m *Manager) ClearSnapshots() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveSnapshots([]Snapshot{})
}

func (m *Manager) loadSnapshots() ([]Snapshot, error) {
	b, err := m.backend.GetDocument(KeySnapshots)
	if errors.Is(err, ErrNotFound) {
		return []Snapshot{}, nil
	}
	if err != nil {
		m.logger.Errorf("site: load snapshots: %v", err)
		return nil, fmt.Errorf("site: load snapshots: %w", err)
	}
	var snaps []Snapshot
	if err := json.Unmarshal(b, &snaps); err != nil {
		// A corrupt history is dropped rather than blocking new snapshots.
		m.logger.Warnf("site: discarding unreadable snapshot history: %v", err)
		return []Snapshot{}, nil
	}
	for i := range snaps {
		snaps[i].Data.Normalize()
	}
	return snaps, nil
}

func (m *Manager) saveSnapshots(snaps []Snapshot) error {
	b, err := json.Marshal(snaps)
	if err != nil {
		return err
	}
	if err := m.backend.PutDocument(KeySnapshots, b); err != nil {
		m.logger.Errorf("site: save snapshots: %v", err)
		return fmt.Errorf("site: save snapshots: %w", err)
	}
	return nil
}

// SaveDraft stores s as the pending editor draft. Failures are logged and
// returned; callers on the autosave path ignore them.
func (m *Manager) SaveDraft(s content.Site) error {
	b, err := json.Marshal(Draft{Data: s, SavedAt: m.now()})
	if err != nil {
		return err
	}
	if err := m.backend.PutDocument(KeyDraft, b); err != nil {
		m.logger.Errorf("site: save draft: %v", err)
		return fmt.Errorf("site: save draft: %w", err)
	}
	return nil
}

// PendingDraft returns the stored draft when it differs from the live site.
func (m *Manager) PendingDraft() (Draft, bool) {
	b, err := m.backend.GetDocument(KeyDraft)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Errorf("site: load draft: %v", err)
		}
		return Draft{}, false
	}
	var d Draft
	if err := json.Unmarshal(b, &d); err != nil {
		m.logger.Warnf("site: discarding unreadable draft: %v", err)
		return Draft{}, false
	}
	d.Data.Normalize()
	if content.Equal(d.Data, m.state.Current()) {
		return Draft{}, false
	}
	return d, true
}

// DiscardDraft deletes the stored draft.
func (m *Manager) DiscardDraft() error {
	if err := m.backend.DeleteDocument(KeyDraft); err != nil && !errors.Is(err, ErrNotFound) {
		m.logger.Errorf("site: discard draft: %v", err)
		return fmt.Errorf("site: discard draft: %w", err)
	}
	return nil
}

// Statistics summarizes the live site and the history length.
func (m *Manager) Statistics() content.Statistics {
	st := content.Stats(m.state.Current())
	if snaps, err := m.Snapshots(); err == nil {
		st.Versions = len(snaps)
	}
	st.LastUpdated = m.now().UTC().Format(time.RFC3339)
	return st
}
