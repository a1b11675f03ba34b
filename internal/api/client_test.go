package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeupnow/wakeup/internal/models"
)

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "a@b.com", req.Email)
		require.Equal(t, "secret123", req.Password)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"token":"t1","user":{"id":"u1","name":"A","email":"a@b.com","role":"user"}}`)
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login("a@b.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, models.RoleUser, resp.User.Role)
}

func TestLoginStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unknown user", http.StatusNotFound, ErrUnknownUser},
		{"bad password", http.StatusUnauthorized, ErrInvalidCredentials},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, `{"error":"nope"}`)
			}))
			defer server.Close()

			_, err := New(server.URL).Login("a@b.com", "wrong")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterConflictAndValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Email {
		case "taken@b.com":
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, `{"error":"email already registered"}`)
		case "bad@b.com":
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"error":"cpf check digits do not match"}`)
		default:
			io.WriteString(w, `{"token":"t1","user":{"id":"u1","name":"A","email":"a@b.com","role":"user"}}`)
		}
	}))
	defer server.Close()

	client := New(server.URL)

	_, err := client.Register(RegisterRequest{Email: "taken@b.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = client.Register(RegisterRequest{Email: "bad@b.com"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "check digits")

	resp, err := client.Register(RegisterRequest{Name: "A", Email: "a@b.com", CPF: "52998224725", Password: "wakeup123"})
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)
}

func TestGoogleSignInNewUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/google", r.URL.Path)
		io.WriteString(w, `{"isNewUser":true,"userData":{"name":"A","email":"a@b.com"}}`)
	}))
	defer server.Close()

	resp, err := New(server.URL).GoogleSignIn("google-credential")
	require.NoError(t, err)

	assert.True(t, resp.IsNewUser)
	assert.Equal(t, "a@b.com", resp.UserData.Email)
	assert.Empty(t, resp.Token)
}

func TestListVideosSendsBearerAndTheme(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		require.Equal(t, "Rotina", r.URL.Query().Get("theme"))
		io.WriteString(w, `{"videos":[{"id":"v1","title":"Como acordar cedo","theme":"Rotina","locked":false}]}`)
	}))
	defer server.Close()

	videos, err := New(server.URL).ListVideos("t1", "Rotina")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "v1", videos[0].ID)
}

func TestListVideosUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Invalid or expired token"}`)
	}))
	defer server.Close()

	_, err := New(server.URL).ListVideos("stale", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUploadVideoMultipartFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/videos/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Novo Video", r.FormValue("title"))
		assert.Equal(t, "desc", r.FormValue("description"))
		assert.Equal(t, "Fitness", r.FormValue("theme"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "aula.mp4", header.Filename)
		contents, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake video bytes", string(contents))

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"v9","title":"Novo Video","url":"/media/v9.mp4"}`)
	}))
	defer server.Close()

	resp, err := New(server.URL).UploadVideo("t1", UploadVideoRequest{
		Title:       "Novo Video",
		Description: "desc",
		Theme:       "Fitness",
		Filename:    "aula.mp4",
		File:        strings.NewReader("fake video bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "v9", resp.ID)
}

func TestCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/payment/checkout", r.URL.Path)

		var req CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pro", req.PlanID)
		assert.Equal(t, PaymentMethodPix, req.PaymentMethod)

		io.WriteString(w, `{"success":true,"subscription":{"id":"s1","plan_id":"pro","status":"pending"},"pix_code":"00020126QR"}`)
	}))
	defer server.Close()

	resp, err := New(server.URL).Checkout("t1", "pro", PaymentMethodPix)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "pro", resp.Subscription.PlanID)
	assert.Equal(t, "00020126QR", resp.PixCode)
}

func TestLogoutBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	assert.NoError(t, New(server.URL).Logout("t1"))
}
