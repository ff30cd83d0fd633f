// Package file implements the durable render-state tier: one JSON document
// holding a map from "channel:identity" to a config snapshot plus a
// saved-at timestamp. Expiry is lazy: entries older than the TTL are
// deleted when read. The document is accessed through viant/afs, so tests
// and embedded hosts can point it at mem:// while production uses file://.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/viant/afs"

	"github.com/hikari-dev/pjsk-card/internal/domain"
	"github.com/hikari-dev/pjsk-card/internal/observability"
)

// Store persists RenderConfig snapshots in a single JSON document.
type Store struct {
	fs  afs.Service
	url string
	now func() time.Time

	// serializes the load-modify-rewrite cycle inside one process; two
	// processes sharing a document still race (last writer wins).
	mu sync.Mutex
}

// Option adjusts store construction.
type Option func(*Store)

// WithClock injects the time source, used by expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a durable store backed by the document at url.
func NewStore(url string, opts ...Option) *Store {
	s := &Store{
		fs:  afs.New(),
		url: url,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document layout. Entries stay raw so one corrupt entry never poisons the
// rest of the document.
type stateDoc struct {
	States      map[string]json.RawMessage `json:"states"`
	LastUpdated float64                    `json:"last_updated"`
}

type stateEntry struct {
	State     *domain.RenderConfig `json:"config"`
	Timestamp float64              `json:"timestamp"`
}

// load reads the whole document. Missing or corrupt documents read as
// empty; the durable tier never surfaces storage noise to the caller.
func (s *Store) load(ctx context.Context) map[string]json.RawMessage {
	data, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		return map[string]json.RawMessage{}
	}
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		observability.Logger().Warn("state document corrupt, treating as empty", "url", s.url, "error", err)
		return map[string]json.RawMessage{}
	}
	if doc.States == nil {
		return map[string]json.RawMessage{}
	}
	return doc.States
}

func (s *Store) save(ctx context.Context, states map[string]json.RawMessage) error {
	doc := stateDoc{
		States:      states,
		LastUpdated: float64(s.now().UnixNano()) / float64(time.Second),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return s.fs.Upload(ctx, s.url, 0644, bytes.NewReader(data))
}

func (s *Store) decode(raw json.RawMessage) (*stateEntry, bool) {
	var entry stateEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.State == nil {
		return nil, false
	}
	return &entry, true
}

// Get returns the stored snapshot for the key, or nil when absent. An entry
// older than ttl counts as absent and is evicted from the document on the
// spot.
func (s *Store) Get(ctx context.Context, key domain.SessionKey, ttl time.Duration) (*domain.RenderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.load(ctx)
	raw, ok := states[key.String()]
	if !ok {
		return nil, nil
	}

	entry, ok := s.decode(raw)
	if !ok {
		return nil, nil
	}

	if ttl > 0 {
		savedAt := time.Unix(0, int64(entry.Timestamp*float64(time.Second)))
		if s.now().Sub(savedAt) > ttl {
			delete(states, key.String())
			if err := s.save(ctx, states); err != nil {
				observability.Logger().Warn("failed to evict expired state", "key", key.String(), "error", err)
			}
			return nil, nil
		}
	}

	return entry.State, nil
}

// Set stores a snapshot with the current timestamp, rewriting the whole
// document.
func (s *Store) Set(ctx context.Context, key domain.SessionKey, cfg *domain.RenderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.load(ctx)
	entry := stateEntry{
		State:     cfg,
		Timestamp: float64(s.now().UnixNano()) / float64(time.Second),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	states[key.String()] = raw
	return s.save(ctx, states)
}

// Delete removes the entry if present, rewriting only when something was
// actually removed.
func (s *Store) Delete(ctx context.Context, key domain.SessionKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.load(ctx)
	if _, ok := states[key.String()]; !ok {
		return false, nil
	}
	delete(states, key.String())
	if err := s.save(ctx, states); err != nil {
		return false, err
	}
	return true, nil
}

// CleanupExpired removes every entry older than ttl in one pass and returns
// how many were removed. The document is rewritten at most once.
func (s *Store) CleanupExpired(ctx context.Context, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.load(ctx)
	cutoff := s.now().Add(-ttl)

	var expired []string
	for key, raw := range states {
		entry, ok := s.decode(raw)
		if !ok {
			continue
		}
		savedAt := time.Unix(0, int64(entry.Timestamp*float64(time.Second)))
		if savedAt.Before(cutoff) {
			expired = append(expired, key)
		}
	}

	for _, key := range expired {
		delete(states, key)
	}

	if len(expired) > 0 {
		if err := s.save(ctx, states); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// All returns every structurally valid entry for diagnostics, skipping
// entries that fail to deserialize. No TTL filtering is applied.
func (s *Store) All(ctx context.Context) (map[string]*domain.RenderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.load(ctx)
	out := make(map[string]*domain.RenderConfig, len(states))
	for key, raw := range states {
		entry, ok := s.decode(raw)
		if !ok {
			continue
		}
		out[key] = entry.State
	}
	return out, nil
}
