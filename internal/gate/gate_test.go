package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeupnow/wakeup/internal/models"
	"github.com/wakeupnow/wakeup/internal/session"
)

func anonymous() session.Snapshot {
	return session.Snapshot{}
}

func member() session.Snapshot {
	return session.Snapshot{
		IsAuthenticated: true,
		User:            session.User{ID: "u1", Name: "A", Email: "a@b.com", Role: models.RoleUser},
		Token:           "t1",
	}
}

func admin() session.Snapshot {
	return session.Snapshot{
		IsAuthenticated: true,
		User:            session.User{ID: "u2", Name: "B", Email: "b@c.com", Role: models.RoleAdmin},
		Token:           "t2",
	}
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	return reg
}

func TestPublicRoutesAllowAnonymous(t *testing.T) {
	reg := mustRegistry(t)

	for _, route := range []string{"home", "login", "register", "plans"} {
		assert.Equal(t, Allow, reg.Evaluate(route, anonymous()), "route %s", route)
	}
}

func TestAuthRoutesDenyAnonymous(t *testing.T) {
	reg := mustRegistry(t)

	for _, route := range []string{"videos", "watch", "checkout", "upload"} {
		assert.Equal(t, DenyRequireLogin, reg.Evaluate(route, anonymous()), "route %s", route)
	}
}

func TestAuthRoutesAllowAfterLogin(t *testing.T) {
	reg := mustRegistry(t)

	// Same route that was denied becomes allowed once authenticated
	assert.Equal(t, DenyRequireLogin, reg.Evaluate("videos", anonymous()))
	assert.Equal(t, Allow, reg.Evaluate("videos", member()))
}

func TestAdminRouteDistinguishesDenials(t *testing.T) {
	reg := mustRegistry(t)

	// Unauthenticated: login problem, not a privilege problem
	assert.Equal(t, DenyRequireLogin, reg.Evaluate("upload", anonymous()))
	// Authenticated non-admin: privilege problem, not a login problem
	assert.Equal(t, DenyRequireUpgrade, reg.Evaluate("upload", member()))
	assert.Equal(t, Allow, reg.Evaluate("upload", admin()))
}

func TestUnknownRouteFailsClosed(t *testing.T) {
	reg := mustRegistry(t)

	assert.Equal(t, DenyRequireLogin, reg.Evaluate("billing-admin", anonymous()))
	// Even an admin session cannot enter an unregistered route
	assert.Equal(t, DenyRequireLogin, reg.Evaluate("billing-admin", admin()))
}

func TestEvaluateIsReferentiallyTransparent(t *testing.T) {
	reg := mustRegistry(t)
	snap := member()

	first := reg.Evaluate("upload", snap)
	second := reg.Evaluate("upload", snap)
	assert.Equal(t, first, second)
	assert.Equal(t, member(), snap, "evaluate must not mutate the snapshot")
}

func TestParseRegistryRejectsContradictoryRule(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"public with requires_auth", `
routes:
  - id: plans
    public: true
    requires_auth: true
`},
		{"public with requires_role", `
routes:
  - id: upload
    public: true
    requires_role: admin
`},
		{"missing id", `
routes:
  - public: true
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseRegistryAcceptsWellFormedRules(t *testing.T) {
	reg, err := ParseRegistry([]byte(`
routes:
  - id: support
    public: true
  - id: reports
    requires_auth: true
    requires_role: admin
`))
	require.NoError(t, err)

	assert.Equal(t, Allow, reg.Evaluate("support", anonymous()))
	assert.Equal(t, DenyRequireUpgrade, reg.Evaluate("reports", member()))
}

func TestCustomRegistry(t *testing.T) {
	reg := NewRegistry([]Rule{
		{ID: "support", Public: true},
		{ID: "reports", RequiresAuth: true, RequiresRole: models.RoleAdmin},
	})

	assert.Equal(t, Allow, reg.Evaluate("support", anonymous()))
	assert.Equal(t, DenyRequireUpgrade, reg.Evaluate("reports", member()))

	_, ok := reg.Rule("missing")
	assert.False(t, ok)
}
