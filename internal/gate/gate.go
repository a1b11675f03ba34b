// Package gate decides whether a navigation to a route is permitted for the
// current session. Evaluation is pure so it can run on every render and on
// every session change without side effects.
package gate

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wakeupnow/wakeup/internal/models"
	"github.com/wakeupnow/wakeup/internal/session"
)

//go:embed routes.yaml
var defaultRoutesYAML []byte

// Decision is the outcome of evaluating a navigation attempt
type Decision int

const (
	// Allow permits the navigation
	Allow Decision = iota
	// DenyRequireLogin redirects the user to the login view
	DenyRequireLogin
	// DenyRequireUpgrade renders the access-restricted view; the user is
	// authenticated but lacks the required role, which is not a login problem
	DenyRequireUpgrade
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyRequireLogin:
		return "deny-require-login"
	case DenyRequireUpgrade:
		return "deny-require-upgrade"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Rule describes the access requirements of a navigable view
type Rule struct {
	ID           string      `yaml:"id"`
	Public       bool        `yaml:"public"`
	RequiresAuth bool        `yaml:"requires_auth"`
	RequiresRole models.Role `yaml:"requires_role"`
}

// Registry holds the access rules registered at startup
type Registry struct {
	rules map[string]Rule
}

// NewRegistry builds a registry from an explicit rule list
func NewRegistry(rules []Rule) *Registry {
	m := make(map[string]Rule, len(rules))
	for _, r := range rules {
		m[r.ID] = r
	}
	return &Registry{rules: m}
}

// ParseRegistry builds a registry from a YAML rule document. A rule must
// declare itself either public or carrying auth requirements, never both;
// a contradictory rule fails the whole registry so it cannot mask a route
// that was meant to be protected.
func ParseRegistry(data []byte) (*Registry, error) {
	var doc struct {
		Routes []Rule `yaml:"routes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse route registry: %w", err)
	}
	for _, r := range doc.Routes {
		if r.ID == "" {
			return nil, fmt.Errorf("route registry contains a rule without an id")
		}
		if r.Public && (r.RequiresAuth || r.RequiresRole != "") {
			return nil, fmt.Errorf("route %q is public but carries auth requirements", r.ID)
		}
	}
	return NewRegistry(doc.Routes), nil
}

// DefaultRegistry loads the embedded route registry
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultRoutesYAML)
}

// Rule returns the registered rule for a route, if any
func (r *Registry) Rule(routeID string) (Rule, bool) {
	rule, ok := r.rules[routeID]
	return rule, ok
}

// Evaluate maps (routeID, session) to a Decision. Routes absent from the
// registry fail closed: they require login regardless of session state.
func (r *Registry) Evaluate(routeID string, snap session.Snapshot) Decision {
	rule, ok := r.rules[routeID]
	if !ok {
		return DenyRequireLogin
	}

	if rule.RequiresAuth && !snap.IsAuthenticated {
		return DenyRequireLogin
	}

	if rule.RequiresRole != "" {
		if !snap.IsAuthenticated {
			return DenyRequireLogin
		}
		if snap.User.Role != rule.RequiresRole {
			return DenyRequireUpgrade
		}
	}

	return Allow
}
