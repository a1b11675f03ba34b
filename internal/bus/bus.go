// Package bus is the notification channel between isolated views and the
// application shell controller. Views send navigation and auth events
// without holding a reference to the controller; delivery is synchronous,
// in order, fire-and-forget. A message whose kind has no registered handler
// is dropped silently, this is not a request/response protocol.
package bus

import (
	"github.com/rs/zerolog"

	"github.com/wakeupnow/wakeup/internal/session"
)

// Kind identifies the message type
type Kind string

const (
	KindLoginSucceeded        Kind = "LOGIN_SUCCEEDED"
	KindRegistrationSucceeded Kind = "REGISTRATION_SUCCEEDED"
	KindLogoutRequested       Kind = "LOGOUT_REQUESTED"
	KindNavigateTo            Kind = "NAVIGATE_TO"
	KindPrefillRegistration   Kind = "PREFILL_REGISTRATION"
)

// Prefill carries fields used to pre-populate the registration form
type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Message is a tagged union over the navigation/auth event kinds.
// Messages are ephemeral: constructed, sent once, consumed once.
type Message struct {
	Kind Kind

	// LoginSucceeded
	User  session.User
	Token string

	// NavigateTo
	Target string

	// PrefillRegistration
	Prefill Prefill
}

// Handler consumes a delivered message
type Handler func(Message)

// Bus dispatches messages to the single listening controller
type Bus struct {
	handlers map[Kind]Handler
	logger   zerolog.Logger
}

// New creates an empty bus
func New(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Kind]Handler),
		logger:   logger,
	}
}

// Receive registers the handler for a message kind. There is exactly one
// handler per kind; registering again replaces the previous one.
func (b *Bus) Receive(kind Kind, h Handler) {
	b.handlers[kind] = h
}

// Unsubscribe removes the handler for a kind. Controllers must call this on
// teardown so a replaced controller never acts on late messages.
func (b *Bus) Unsubscribe(kind Kind) {
	delete(b.handlers, kind)
}

// Send dispatches a message to the registered handler, synchronously with
// respect to the caller. Messages without a handler are dropped.
func (b *Bus) Send(msg Message) {
	h, ok := b.handlers[msg.Kind]
	if !ok {
		b.logger.Debug().Str("kind", string(msg.Kind)).Msg("Dropping message with no registered handler")
		return
	}
	h(msg)
}
