package autofill

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Session is one open form kept alive for operator review after a run.
type Session struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionRecord struct {
	meta Session
	form Form
}

// SessionManager tracks open forms so a run can leave the browser up for a
// human to inspect or finish. Nothing here ever submits.
type SessionManager struct {
	browser *Browser

	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

// NewSessionManager wraps a connected browser.
func NewSessionManager(browser *Browser) *SessionManager {
	return &SessionManager{browser: browser, sessions: make(map[string]*sessionRecord)}
}

// Open navigates a new page and tracks it as a session.
func (m *SessionManager) Open(ctx context.Context, url string) (Session, Form, error) {
	form, err := m.browser.Open(ctx, url)
	if err != nil {
		return Session{}, nil, err
	}
	meta := Session{ID: uuid.NewString(), URL: url, CreatedAt: time.Now()}

	m.mu.Lock()
	m.sessions[meta.ID] = &sessionRecord{meta: meta, form: form}
	m.mu.Unlock()

	zap.L().Info("autofill session opened", zap.String("session", meta.ID), zap.String("url", url))
	return meta, form, nil
}

// Form returns the live form for a session.
func (m *SessionManager) Form(id string) (Form, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return rec.form, true
}

// List returns the tracked sessions.
func (m *SessionManager) List() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.sessions))
	for _, rec := range m.sessions {
		out = append(out, rec.meta)
	}
	return out
}

// Close releases one session's page.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	rec, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return eris.Errorf("autofill: unknown session %s", id)
	}
	if closer, ok := rec.form.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Shutdown closes every session and the browser itself.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	for id, rec := range m.sessions {
		if closer, ok := rec.form.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	return m.browser.Close()
}
