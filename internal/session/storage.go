package session

import (
	"context"
	"sync"
	"time"

	"trialdash/domain/core"
	"trialdash/domain/dataset"
	"trialdash/internal"
	procdata "trialdash/internal/dataset"
	"trialdash/internal/errors"
	"trialdash/internal/metrics"
	"trialdash/internal/validation"
)

// Store maps session IDs to their state behind a single lock
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *internal.Logger
}

// NewStore creates an empty store. Sessions idle longer than ttl are evicted
// by Sweep; a zero ttl disables eviction.
func NewStore(ttl time.Duration, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{
		sessions: make(map[core.SessionID]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With("Session"),
	}
}

// Create opens a new empty session
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{ID: core.NewSessionID(), LastSeen: now}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	s.logger.Debug("created session %s", sess.ID)
	copied := *sess
	return &copied
}

// Get returns a snapshot of the session and marks it as seen
func (s *Store) Get(id core.SessionID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.LastSeen = s.now()
	copied := *sess
	return &copied, true
}

// Load validates, preprocesses and summarizes raw, then makes the result the
// session's dataset. On any failure the previous dataset is left in place.
func (s *Store) Load(id core.SessionID, raw *dataset.Dataset) (*Session, error) {
	if id == "" {
		return nil, errors.InvalidInput("session ID cannot be empty")
	}
	if raw == nil {
		return nil, errors.InvalidInput("no dataset supplied")
	}
	if err := validation.Check(raw); err != nil {
		metrics.ObserveLoad(errors.GetCode(err))
		return nil, err
	}
	clean, err := procdata.Preprocess(raw)
	if err != nil {
		metrics.ObserveLoad(errors.GetCode(err))
		return nil, err
	}
	summary, err := procdata.Summarize(clean)
	if err != nil {
		metrics.ObserveLoad(errors.GetCode(err))
		return nil, err
	}

	now := s.now()
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	sess.Dataset = clean
	sess.Summary = summary
	sess.LoadedAt = now
	sess.LastSeen = now
	copied := *sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ObserveLoad("ok")
	metrics.SetActiveSessions(n)
	s.logger.Info("session %s loaded %q (%d rows, %d columns)", id, clean.Name, clean.Rows(), len(clean.Columns))
	return &copied, nil
}

// Clear drops the session's dataset but keeps the session itself
func (s *Store) Clear(id core.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Dataset == nil {
		return false
	}
	sess.Dataset = nil
	sess.Summary = nil
	sess.LoadedAt = time.Time{}
	sess.LastSeen = s.now()
	s.logger.Info("session %s cleared", id)
	return true
}

// Sweep evicts sessions idle for longer than the TTL as of now and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	if removed > 0 {
		s.logger.Info("evicted %d idle sessions, %d remain", removed, n)
	}
	return removed
}

// Len returns the number of held sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunSweeper calls Sweep every interval until ctx is cancelled
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Debug("sweeper started: ttl=%s interval=%s", s.ttl, interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sweeper stopped")
			return nil
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}
