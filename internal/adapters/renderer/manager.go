package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hikari-dev/pjsk-card/internal/domain"
	"github.com/hikari-dev/pjsk-card/internal/observability"
)

// ErrClosed is returned when a renderer is requested after Close.
var ErrClosed = errors.New("renderer manager closed")

type managerState int

const (
	stateUninitialized managerState = iota
	stateReady
	stateClosed
)

// Factory creates and initializes a renderer instance.
type Factory func(ctx context.Context) (domain.Renderer, error)

// Manager owns the renderer lifecycle: uninitialized -> ready -> closed.
// The long-lived host process owns the manager; individual command
// invocations only borrow the renderer through Acquire. Closed is terminal.
type Manager struct {
	mu       sync.Mutex
	state    managerState
	factory  Factory
	renderer domain.Renderer
}

// NewManager builds a manager around the given factory. A nil factory
// yields the built-in mock.
func NewManager(factory Factory) *Manager {
	if factory == nil {
		factory = func(ctx context.Context) (domain.Renderer, error) {
			return NewMock(), nil
		}
	}
	return &Manager{factory: factory}
}

// Acquire returns the ready renderer, initializing it on first use.
func (m *Manager) Acquire(ctx context.Context) (domain.Renderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateClosed:
		return nil, ErrClosed
	case stateReady:
		return m.renderer, nil
	}

	r, err := m.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}
	m.renderer = r
	m.state = stateReady
	observability.Logger().Info("renderer initialized")
	return r, nil
}

// Close releases the renderer. It is idempotent and transitions the manager
// to its terminal state; renderers implementing io.Closer are closed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateClosed {
		return nil
	}
	m.state = stateClosed

	if closer, ok := m.renderer.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing renderer: %w", err)
		}
	}
	m.renderer = nil
	observability.Logger().Info("renderer closed")
	return nil
}
