package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/hikari-dev/pjsk-card/internal/domain"
)

// pngMagic makes mock output recognizable as image bytes downstream.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Mock simulates the external card renderer. It produces deterministic
// pseudo-image bytes describing the request, which is enough for the state
// engine and boundary tests.
type Mock struct {
	mu          sync.Mutex
	renderCount int
	failWith    error
}

func NewMock() *Mock {
	return &Mock{}
}

// FailWith makes every subsequent render fail, for exercising the
// render-failure boundary path.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// RenderCount reports how many renders completed.
func (m *Mock) RenderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderCount
}

func (m *Mock) Render(ctx context.Context, req domain.RenderRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.renderCount++
	payload := fmt.Sprintf(
		"card role=%s font=%d spacing=%.2f curve=%t offset=%d,%d intensity=%.2f shadow=%t emoji=%s text=%q",
		req.Role, req.FontSize, req.LineSpacing, req.CurveEnabled,
		req.OffsetX, req.OffsetY, req.CurveIntensity, req.ShadowEnabled, req.EmojiSet, req.Text,
	)
	return append(append([]byte(nil), pngMagic...), payload...), nil
}
