package domain

import "fmt"

// Channel identifies the originating chat surface (platform) of a command.
type Channel string

// Identity is the best available stable identifier for a requester on a
// channel: an explicit session id when the platform provides one, otherwise
// a sender id, otherwise a sender display name.
type Identity string

// SessionKey addresses one independent render-configuration stream.
type SessionKey struct {
	Channel  Channel
	Identity Identity
}

// NewSessionKey builds a session key from its two parts. Empty parts are a
// programming error at the boundary, not user input, so this fails fast.
func NewSessionKey(channel Channel, identity Identity) SessionKey {
	if channel == "" || identity == "" {
		panic(fmt.Sprintf("domain: malformed session key (channel=%q identity=%q)", channel, identity))
	}
	return SessionKey{Channel: channel, Identity: identity}
}

// String renders the derived storage key used by the durable tier.
func (k SessionKey) String() string {
	return string(k.Channel) + ":" + string(k.Identity)
}
