package chat

import "github.com/hikari-dev/pjsk-card/internal/domain"

// Event is the capability surface the host chat framework exposes per
// inbound message. It replaces duck-typed attribute probing with an
// explicit contract: the channel is mandatory, the three identity
// capabilities are optional and consulted in a fixed fallback order.
type Event interface {
	// Channel names the originating surface (platform).
	Channel() string
	// SessionID returns the platform session id, when the platform has one.
	SessionID() (string, bool)
	// SenderID returns the stable sender id, when known.
	SenderID() (string, bool)
	// SenderName returns the sender display name, when known.
	SenderName() (string, bool)
	// Message is the raw command text.
	Message() string
}

// Replier is the outbound sink the host framework supplies.
type Replier interface {
	Reply(text string, image []byte) error
}

// SessionKeyFor derives the session key for an event: explicit session id
// first, then sender id, then sender display name. Pure; the "unknown"
// placeholders keep the key well-formed for anonymous surfaces.
func SessionKeyFor(ev Event) domain.SessionKey {
	channel := ev.Channel()
	if channel == "" {
		channel = "unknown"
	}

	if id, ok := ev.SessionID(); ok && id != "" {
		return domain.NewSessionKey(domain.Channel(channel), domain.Identity(id))
	}
	if id, ok := ev.SenderID(); ok && id != "" {
		return domain.NewSessionKey(domain.Channel(channel), domain.Identity(id))
	}
	if name, ok := ev.SenderName(); ok && name != "" {
		return domain.NewSessionKey(domain.Channel(channel), domain.Identity(name))
	}
	return domain.NewSessionKey(domain.Channel(channel), domain.Identity("unknown"))
}
