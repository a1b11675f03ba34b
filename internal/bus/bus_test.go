package bus

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeupnow/wakeup/internal/models"
	"github.com/wakeupnow/wakeup/internal/session"
)

func TestSendDeliversInOrder(t *testing.T) {
	b := New(zerolog.Nop())

	var targets []string
	b.Receive(KindNavigateTo, func(msg Message) {
		targets = append(targets, msg.Target)
	})

	b.Send(Message{Kind: KindNavigateTo, Target: "videos"})
	b.Send(Message{Kind: KindNavigateTo, Target: "plans"})
	b.Send(Message{Kind: KindNavigateTo, Target: "home"})

	assert.Equal(t, []string{"videos", "plans", "home"}, targets)
}

func TestSendWithoutHandlerIsDropped(t *testing.T) {
	b := New(zerolog.Nop())

	// Must not panic and must not affect other kinds
	b.Send(Message{Kind: KindLogoutRequested})

	called := false
	b.Receive(KindNavigateTo, func(Message) { called = true })
	b.Send(Message{Kind: KindLogoutRequested})
	assert.False(t, called)
}

func TestReceiveReplacesPreviousHandler(t *testing.T) {
	b := New(zerolog.Nop())

	first, second := 0, 0
	b.Receive(KindLogoutRequested, func(Message) { first++ })
	b.Receive(KindLogoutRequested, func(Message) { second++ })

	b.Send(Message{Kind: KindLogoutRequested})

	assert.Equal(t, 0, first, "replaced handler must not fire")
	assert.Equal(t, 1, second)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(zerolog.Nop())

	calls := 0
	b.Receive(KindLogoutRequested, func(Message) { calls++ })
	b.Send(Message{Kind: KindLogoutRequested})

	b.Unsubscribe(KindLogoutRequested)
	b.Send(Message{Kind: KindLogoutRequested})

	assert.Equal(t, 1, calls)
}

func TestDecoderAcceptsTrustedWellFormedMessages(t *testing.T) {
	d := NewDecoder(New(zerolog.Nop()), []string{"https://app.wakeupnow.com"}, zerolog.Nop())

	msg, err := d.Parse("https://app.wakeupnow.com",
		[]byte(`{"kind":"LOGIN_SUCCEEDED","token":"t1","user":{"id":"u1","name":"A","email":"a@b.com","role":"user"}}`))
	require.NoError(t, err)
	assert.Equal(t, KindLoginSucceeded, msg.Kind)
	assert.Equal(t, "t1", msg.Token)
	assert.Equal(t, session.User{ID: "u1", Name: "A", Email: "a@b.com", Role: models.RoleUser}, msg.User)

	msg, err = d.Parse("https://app.wakeupnow.com", []byte(`{"kind":"NAVIGATE_TO","target":"upload"}`))
	require.NoError(t, err)
	assert.Equal(t, "upload", msg.Target)

	msg, err = d.Parse("https://app.wakeupnow.com",
		[]byte(`{"kind":"PREFILL_REGISTRATION","prefill":{"email":"a@b.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", msg.Prefill.Email)
}

func TestDecoderRejectsUntrustedOrigin(t *testing.T) {
	d := NewDecoder(New(zerolog.Nop()), []string{"https://app.wakeupnow.com"}, zerolog.Nop())

	_, err := d.Parse("https://evil.example.com", []byte(`{"kind":"NAVIGATE_TO","target":"upload"}`))
	assert.ErrorIs(t, err, ErrUntrustedOrigin)
}

func TestDecoderRejectsMalformedShapes(t *testing.T) {
	d := NewDecoder(New(zerolog.Nop()), []string{"https://app.wakeupnow.com"}, zerolog.Nop())

	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"login without token", `{"kind":"LOGIN_SUCCEEDED","user":{"id":"u1"}}`},
		{"login without user", `{"kind":"LOGIN_SUCCEEDED","token":"t1"}`},
		{"navigate without target", `{"kind":"NAVIGATE_TO"}`},
		{"prefill without email", `{"kind":"PREFILL_REGISTRATION","prefill":{}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Parse("https://app.wakeupnow.com", []byte(tc.payload))
			assert.Error(t, err)
		})
	}
}

func TestDeliverDropsUnknownKindWithoutDispatch(t *testing.T) {
	b := New(zerolog.Nop())
	d := NewDecoder(b, []string{"https://app.wakeupnow.com"}, zerolog.Nop())

	dispatched := false
	for _, kind := range []Kind{KindLoginSucceeded, KindRegistrationSucceeded,
		KindLogoutRequested, KindNavigateTo, KindPrefillRegistration} {
		b.Receive(kind, func(Message) { dispatched = true })
	}

	// Unrecognized kind: dropped without panic, no handler fires
	d.Deliver("https://app.wakeupnow.com", []byte(`{"kind":"RELOAD_EVERYTHING"}`))
	assert.False(t, dispatched)

	// Sanity: a valid payload still goes through
	d.Deliver("https://app.wakeupnow.com", []byte(`{"kind":"LOGOUT_REQUESTED"}`))
	assert.True(t, dispatched)
}
