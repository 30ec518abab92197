// Package session tracks live focus sessions and auto-ends idle ones.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/focusforge/pkg/models"
)

// DefaultSweepInterval is how often Run looks for idle sessions.
const DefaultSweepInterval = time.Minute

// Ender closes a session. Implemented by the gorm session store.
type Ender interface {
	EndSession(ctx context.Context, id string, endedAt int64, status models.SessionStatus) (*models.Session, error)
}

// ActiveSession is a running session with its most recent activity.
type ActiveSession struct {
	ID           string
	LastActivity int64 // epoch ms
}

// Manager keeps the set of running sessions in memory.
type Manager struct {
	store       Ender
	sessions    map[string]*ActiveSession
	onEnded     func(*models.Session)
	now         func() time.Time
	idleTimeout time.Duration
	mu          sync.RWMutex
}

// NewManager creates a manager. An idleTimeout of zero disables auto-ending.
func NewManager(store Ender, idleTimeout time.Duration) *Manager {
	return &Manager{
		store:       store,
		sessions:    make(map[string]*ActiveSession),
		now:         time.Now,
		idleTimeout: idleTimeout,
	}
}

// OnEnded registers a callback for sessions the manager auto-ends.
func (m *Manager) OnEnded(fn func(*models.Session)) {
	m.mu.Lock()
	m.onEnded = fn
	m.mu.Unlock()
}

// Touch records activity at ts (epoch ms), tracking the session if needed.
// Older timestamps never move LastActivity backwards.
func (m *Manager) Touch(id string, ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		m.sessions[id] = &ActiveSession{ID: id, LastActivity: ts}
		return
	}
	if ts > sess.LastActivity {
		sess.LastActivity = ts
	}
}

// Forget stops tracking a session.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// GetActiveSession returns a copy of the tracked session, if any.
func (m *Manager) GetActiveSession(id string) (ActiveSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return ActiveSession{}, false
	}
	return *sess, true
}

// GetActiveSessionCount returns the number of tracked sessions.
func (m *Manager) GetActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep auto-ends every session idle for longer than the timeout and returns
// their ids. The recorded end time is the last activity, not the sweep time.
func (m *Manager) Sweep(ctx context.Context) []string {
	if m.idleTimeout <= 0 {
		return nil
	}
	cutoff := m.now().Add(-m.idleTimeout).UnixMilli()

	m.mu.RLock()
	var idle []ActiveSession
	for _, sess := range m.sessions {
		if sess.LastActivity < cutoff {
			idle = append(idle, *sess)
		}
	}
	onEnded := m.onEnded
	m.mu.RUnlock()

	ended := make([]string, 0, len(idle))
	for _, candidate := range idle {
		sess, ok := m.claimIdle(candidate.ID, cutoff)
		if !ok {
			continue
		}
		closed, err := m.store.EndSession(ctx, sess.ID, sess.LastActivity, models.SessionStatusAutoEnded)
		if err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("Failed to auto-end idle session")
			m.Touch(sess.ID, sess.LastActivity)
			continue
		}
		ended = append(ended, sess.ID)

		log.Info().
			Str("session", sess.ID).
			Int64("lastActivity", sess.LastActivity).
			Msg("Auto-ended idle session")

		if onEnded != nil {
			onEnded(closed)
		}
	}
	return ended
}

// claimIdle untracks id if it is still idle before cutoff. Activity that
// arrived since the sweep snapshot keeps the session alive.
func (m *Manager) claimIdle(id string, cutoff int64) (ActiveSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok || sess.LastActivity >= cutoff {
		return ActiveSession{}, false
	}
	delete(m.sessions, id)
	return *sess, true
}

// Run sweeps on every interval tick until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if m.idleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
