// Package shell owns the application shell: which view is active and how
// navigation/auth events mutate the session and the active route. Views
// never switch routes themselves; they send messages on the bus and the
// controller applies the transition.
package shell

import (
	"github.com/rs/zerolog"

	"github.com/wakeupnow/wakeup/internal/bus"
	"github.com/wakeupnow/wakeup/internal/gate"
	"github.com/wakeupnow/wakeup/internal/session"
)

// Route identifiers for the views the controller can land on
const (
	RouteHome       = "home"
	RouteLogin      = "login"
	RouteRegister   = "register"
	RouteRestricted = "restricted" // access-restricted view for privilege denials
)

// Controller is the single listener on the message bus. It runs for the
// lifetime of the application shell; there is no terminal state.
type Controller struct {
	sessions *session.Store
	routes   *gate.Registry
	events   *bus.Bus
	logger   zerolog.Logger

	route   string
	prefill bus.Prefill
}

// New creates the controller on the default public route and registers its
// handlers on the bus.
func New(sessions *session.Store, routes *gate.Registry, events *bus.Bus, logger zerolog.Logger) *Controller {
	c := &Controller{
		sessions: sessions,
		routes:   routes,
		events:   events,
		logger:   logger,
		route:    RouteHome,
	}

	events.Receive(bus.KindLoginSucceeded, c.onLoginSucceeded)
	events.Receive(bus.KindRegistrationSucceeded, c.onRegistrationSucceeded)
	events.Receive(bus.KindLogoutRequested, c.onLogoutRequested)
	events.Receive(bus.KindNavigateTo, c.onNavigateTo)
	events.Receive(bus.KindPrefillRegistration, c.onPrefillRegistration)

	return c
}

// Close unregisters all handlers. Mandatory on teardown so a replaced
// controller never acts on late messages.
func (c *Controller) Close() {
	c.events.Unsubscribe(bus.KindLoginSucceeded)
	c.events.Unsubscribe(bus.KindRegistrationSucceeded)
	c.events.Unsubscribe(bus.KindLogoutRequested)
	c.events.Unsubscribe(bus.KindNavigateTo)
	c.events.Unsubscribe(bus.KindPrefillRegistration)
}

// Route returns the currently active route
func (c *Controller) Route() string {
	return c.route
}

// ConsumePrefill returns pending registration prefill data and clears it.
// Prefill data is consumed once by the registration view.
func (c *Controller) ConsumePrefill() bus.Prefill {
	p := c.prefill
	c.prefill = bus.Prefill{}
	return p
}

func (c *Controller) onLoginSucceeded(msg bus.Message) {
	if err := c.sessions.Login(msg.User, msg.Token); err != nil {
		// Session could not be persisted; stay on the login view
		c.logger.Error().Err(err).Msg("Failed to establish session")
		c.route = RouteLogin
		return
	}
	c.route = RouteHome
}

func (c *Controller) onRegistrationSucceeded(bus.Message) {
	c.route = RouteLogin
}

func (c *Controller) onLogoutRequested(bus.Message) {
	c.sessions.Logout()
	c.route = RouteLogin
}

func (c *Controller) onNavigateTo(msg bus.Message) {
	decision := c.routes.Evaluate(msg.Target, c.sessions.Current())
	switch decision {
	case gate.Allow:
		c.route = msg.Target
	case gate.DenyRequireLogin:
		c.logger.Debug().Str("target", msg.Target).Msg("Navigation requires login")
		c.route = RouteLogin
	case gate.DenyRequireUpgrade:
		c.logger.Debug().Str("target", msg.Target).Msg("Navigation requires a higher privilege")
		c.route = RouteRestricted
	}
}

func (c *Controller) onPrefillRegistration(msg bus.Message) {
	c.prefill = msg.Prefill
	c.route = RouteRegister
}
