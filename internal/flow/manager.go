package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/request"
)

// Manager keeps the live sessions of the payment pages served by this instance.
type Manager struct {
	deps        Deps
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewManager(deps Deps, idleTimeout time.Duration) *Manager {
	if deps.Store == nil {
		panic("flow manager store is uninitialized")
	}

	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Manager{
		deps:        deps,
		idleTimeout: idleTimeout,
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Create normalizes the inputs and starts a session. A session that fails to start is not kept.
func (m *Manager) Create(ctx context.Context, in request.Inputs) (*Session, error) {
	intent, err := request.Normalize(in)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	s := NewSession(id, intent, m.deps)

	if err := s.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.InfoContext(ctx, "payment session started", "session_id", id, "mode", intent.Mode, "origin", intent.InitiatorOrigin)

	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, entity.ErrNotFound)
	}

	return s, nil
}

func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// ExpireIdle drops sessions untouched for longer than the idle timeout.
func (m *Manager) ExpireIdle(ctx context.Context) error {
	deadline := m.deps.Now().Add(-m.idleTimeout)

	m.mu.RLock()

	idle := make([]uuid.UUID, 0)

	for id, s := range m.sessions {
		if s.idleSince().Before(deadline) {
			idle = append(idle, id)
		}
	}

	m.mu.RUnlock()

	if len(idle) == 0 {
		return nil
	}

	expired := 0

	m.mu.Lock()

	for _, id := range idle {
		s, ok := m.sessions[id]
		// touched again since the scan
		if !ok || !s.idleSince().Before(deadline) {
			continue
		}

		delete(m.sessions, id)
		expired++
	}

	m.mu.Unlock()

	if expired > 0 {
		slog.InfoContext(ctx, "idle payment sessions expired", "count", expired)
	}

	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
