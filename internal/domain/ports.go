package domain

import (
	"context"
	"time"
)

// SessionStore keeps the current RenderConfig per session for the lifetime
// of the process. A nil config with a nil error means "no state" (miss), it
// is not an error condition.
type SessionStore interface {
	Get(ctx context.Context, key SessionKey) (*RenderConfig, error)
	Set(ctx context.Context, key SessionKey, cfg *RenderConfig) error
	Exists(ctx context.Context, key SessionKey) (bool, error)
}

// DurableStore persists RenderConfig snapshots across restarts. Entries
// older than the ttl are treated as absent and evicted lazily on read.
// A corrupt or missing backing document reads as empty, never as an error.
type DurableStore interface {
	Get(ctx context.Context, key SessionKey, ttl time.Duration) (*RenderConfig, error)
	Set(ctx context.Context, key SessionKey, cfg *RenderConfig) error
	Delete(ctx context.Context, key SessionKey) (bool, error)
	CleanupExpired(ctx context.Context, ttl time.Duration) (int, error)
	All(ctx context.Context) (map[string]*RenderConfig, error)
}

// RenderRequest is the full parameter set handed to the external renderer.
type RenderRequest struct {
	Text           string
	Role           string
	FontSize       int
	LineSpacing    float64
	CurveEnabled   bool
	OffsetX        int
	OffsetY        int
	CurveIntensity float64
	ShadowEnabled  bool
	EmojiSet       string
}

// Renderer produces the binary card image for a finished configuration.
// It is an external collaborator: it may block and it may fail, and a
// failure must never corrupt already-persisted state.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}
