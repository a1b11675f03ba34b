package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wakeupnow/wakeup/internal/api"
	"github.com/wakeupnow/wakeup/internal/bus"
	"github.com/wakeupnow/wakeup/internal/cli/config"
	"github.com/wakeupnow/wakeup/internal/gate"
	"github.com/wakeupnow/wakeup/internal/session"
	"github.com/wakeupnow/wakeup/internal/shell"
)

// App bundles the shell wiring every command needs: the session store, the
// route registry, the message bus, the controller listening on it and the
// API client. Commands are the views; they talk to the controller through
// the bus and never mutate the session directly.
type App struct {
	Sessions   *session.Store
	Routes     *gate.Registry
	Events     *bus.Bus
	Controller *shell.Controller
	Client     *api.Client
	Logger     zerolog.Logger
}

// NewApp wires the application shell and restores any persisted session
func NewApp(logger zerolog.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	routes, err := gate.DefaultRegistry()
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(session.KeyringTokenStore{}, session.FileProfileStore{}, logger)
	events := bus.New(logger)
	controller := shell.New(sessions, routes, events, logger)

	app := &App{
		Sessions:   sessions,
		Routes:     routes,
		Events:     events,
		Controller: controller,
		Client:     api.New(cfg.APIURL),
		Logger:     logger,
	}

	sessions.Load()
	return app, nil
}

// Close tears down the controller's bus subscriptions
func (a *App) Close() {
	a.Controller.Close()
}

// Navigate asks the controller for the target view and reports denials as
// user-facing errors.
func (a *App) Navigate(target string) error {
	a.Events.Send(bus.Message{Kind: bus.KindNavigateTo, Target: target})

	switch a.Controller.Route() {
	case target:
		return nil
	case shell.RouteLogin:
		return fmt.Errorf("you need to log in first (run 'wakeup login')")
	case shell.RouteRestricted:
		return fmt.Errorf("this area requires an admin account")
	default:
		return fmt.Errorf("navigation to %q was denied", target)
	}
}

// ForceLogout clears the local session after the backend rejected the
// token. A stale token is the same as never having logged in.
func (a *App) ForceLogout() {
	a.Events.Send(bus.Message{Kind: bus.KindLogoutRequested})
}
