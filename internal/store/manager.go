package store

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/theme"
)

// Session is one shell session: its store and the API client bound to its token
type Session struct {
	ID    string
	Store *Store
	API   *api.Client
}

// SessionConfig describes how NewSession wires a session
type SessionConfig struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Persister   Persister
	Tokens      api.TokenStore
	Logger      logrus.FieldLogger
	OnTheme     func(theme.Theme)
	MaxQuantity int
}

// NewSession builds a client and a store that share the session token.
// A 401 from the client is routed to Store.HandleUnauthorized.
func NewSession(id string, cfg SessionConfig) *Session {
	log := cfg.Logger
	if log != nil {
		log = log.WithField("session_id", id)
	}

	client := api.NewClient(api.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
		Tokens:     cfg.Tokens,
		Logger:     log,
	})

	s := New(Deps{
		Backend:     client,
		Persister:   cfg.Persister,
		Tokens:      client.Tokens(),
		Logger:      log,
		OnTheme:     cfg.OnTheme,
		MaxQuantity: cfg.MaxQuantity,
	})
	client.SetOnUnauthorized(s.HandleUnauthorized)

	return &Session{ID: id, Store: s, API: client}
}

// Factory creates a session for an id seen for the first time
type Factory func(ctx context.Context, id string) (*Session, error)

type managed struct {
	session  *Session
	lastSeen time.Time
}

// Manager keeps one Session per shell session id
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed
	factory  Factory
	now      func() time.Time
}

// NewManager creates a session manager
func NewManager(factory Factory) *Manager {
	return &Manager{
		sessions: make(map[string]*managed),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it and restoring its persisted
// state on first use. Creation runs outside the manager lock; when two
// requests race for a new id the first one stored wins.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if session, ok := m.lookup(id); ok {
		return session, nil
	}

	session, err := m.factory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := session.Store.Restore(ctx); err != nil {
		session.Store.log.WithError(err).Warn("Failed to restore persisted state")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.sessions[id]; ok {
		entry.lastSeen = m.now()
		return entry.session, nil
	}
	m.sessions[id] = &managed{session: session, lastSeen: m.now()}
	return session, nil
}

func (m *Manager) lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = m.now()
	return entry.session, true
}

// Prune forgets sessions idle for longer than maxIdle and returns how many were dropped.
// Their persisted state stays in the persister.
func (m *Manager) Prune(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	dropped := 0
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
