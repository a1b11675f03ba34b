package bus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wakeupnow/wakeup/internal/session"
)

var (
	// ErrUntrustedOrigin is returned for payloads from a sender outside the allow-list
	ErrUntrustedOrigin = errors.New("message from untrusted origin")
	// ErrUnknownKind is returned for payloads whose kind is not part of the protocol
	ErrUnknownKind = errors.New("unknown message kind")
	// ErrMalformedMessage is returned for payloads that fail shape validation
	ErrMalformedMessage = errors.New("malformed message")
)

// inboundEnvelope is the raw wire shape of an externally-received message
type inboundEnvelope struct {
	Kind    string        `json:"kind"`
	User    *session.User `json:"user,omitempty"`
	Token   string        `json:"token,omitempty"`
	Target  string        `json:"target,omitempty"`
	Prefill *Prefill      `json:"prefill,omitempty"`
}

// Decoder validates externally-received payloads before they enter the
// typed bus. The underlying transport is origin-unrestricted, so the sender
// origin and the message shape are both checked here; a spoofed or
// malformed payload must never be able to force a privileged navigation or
// a session mutation.
type Decoder struct {
	allowedOrigins map[string]struct{}
	bus            *Bus
	logger         zerolog.Logger
}

// NewDecoder creates a boundary decoder feeding the given bus
func NewDecoder(b *Bus, allowedOrigins []string, logger zerolog.Logger) *Decoder {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Decoder{allowedOrigins: allowed, bus: b, logger: logger}
}

// Parse validates origin and shape and returns the typed message
func (d *Decoder) Parse(origin string, payload []byte) (Message, error) {
	if _, ok := d.allowedOrigins[origin]; !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUntrustedOrigin, origin)
	}

	var env inboundEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch Kind(env.Kind) {
	case KindLoginSucceeded:
		if env.User == nil || env.User.ID == "" || env.Token == "" {
			return Message{}, fmt.Errorf("%w: login message requires user and token", ErrMalformedMessage)
		}
		return Message{Kind: KindLoginSucceeded, User: *env.User, Token: env.Token}, nil

	case KindRegistrationSucceeded:
		return Message{Kind: KindRegistrationSucceeded}, nil

	case KindLogoutRequested:
		return Message{Kind: KindLogoutRequested}, nil

	case KindNavigateTo:
		if env.Target == "" {
			return Message{}, fmt.Errorf("%w: navigate message requires a target", ErrMalformedMessage)
		}
		return Message{Kind: KindNavigateTo, Target: env.Target}, nil

	case KindPrefillRegistration:
		if env.Prefill == nil || env.Prefill.Email == "" {
			return Message{}, fmt.Errorf("%w: prefill message requires an email", ErrMalformedMessage)
		}
		return Message{Kind: KindPrefillRegistration, Prefill: *env.Prefill}, nil

	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
}

// Deliver parses an external payload and forwards it to the bus. Invalid
// payloads are dropped; the channel carries notifications, so a bad message
// is logged and discarded rather than surfaced to the sender.
func (d *Decoder) Deliver(origin string, payload []byte) {
	msg, err := d.Parse(origin, payload)
	if err != nil {
		d.logger.Warn().Err(err).Str("origin", origin).Msg("Dropping inbound message")
		return
	}
	d.bus.Send(msg)
}
