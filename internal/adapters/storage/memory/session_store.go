package memory

import (
	"context"
	"sync"

	"github.com/hikari-dev/pjsk-card/internal/domain"
)

// SessionStore keeps per-session render configurations in a plain map. It
// is authoritative only for the current process lifetime; the durable tier
// rehydrates it after a restart.
type SessionStore struct {
	mu     sync.RWMutex
	states map[domain.SessionKey]*domain.RenderConfig
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		states: make(map[domain.SessionKey]*domain.RenderConfig),
	}
}

// Get returns the stored configuration, or nil when the session has no
// state. A miss is not an error.
func (s *SessionStore) Get(ctx context.Context, key domain.SessionKey) (*domain.RenderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.states[key]
	if !ok {
		return nil, nil
	}
	return cfg.Clone(), nil
}

func (s *SessionStore) Set(ctx context.Context, key domain.SessionKey, cfg *domain.RenderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[key] = cfg.Clone()
	return nil
}

func (s *SessionStore) Exists(ctx context.Context, key domain.SessionKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.states[key]
	return ok, nil
}
