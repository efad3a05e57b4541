package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart/quickcart-golang/internal/models"
	"github.com/quickcart/quickcart-golang/internal/session"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	kv, err := session.NewFileKV(t.TempDir())
	require.NoError(t, err)
	return session.Open(kv)
}

// meServer answers /auth/me with the given user when the expected
// token arrives, 401 otherwise.
func meServer(t *testing.T, validToken string, user models.User) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"user": user})
	}))
}

func TestGuardNoTokenRedirectsToLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("guard must not call the server when there is no token at all")
	}))
	defer server.Close()

	decision, err := Guard(newStore(t), New(server.URL), false)
	require.NoError(t, err)
	assert.Equal(t, DecisionLogin, decision)
}

func TestGuardValidTokenAdmits(t *testing.T) {
	user := models.User{ID: 1, Name: "Ana", Role: models.RoleCustomer}
	server := meServer(t, "good-token", user)
	defer server.Close()

	store := newStore(t)
	store.SetCredentials("good-token", models.User{ID: 1, Name: "stale name"})

	decision, err := Guard(store, New(server.URL), false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)

	// The server-confirmed account overwrote the stale local copy.
	creds := store.Credentials()
	require.NotNil(t, creds)
	assert.Equal(t, "Ana", creds.User.Name)
}

func TestGuardInvalidTokenClearsItAndRedirects(t *testing.T) {
	server := meServer(t, "good-token", models.User{ID: 1})
	defer server.Close()

	store := newStore(t)
	store.SetCredentials("expired-token", models.User{ID: 1})
	api := New(server.URL)

	decision, err := Guard(store, api, false)
	require.NoError(t, err)
	assert.Equal(t, DecisionLogin, decision)

	assert.Nil(t, store.Credentials(), "rejected token must be discarded")
	assert.Empty(t, api.Token())
}

func TestGuardNonAdminOnAdminRouteRedirectsHome(t *testing.T) {
	server := meServer(t, "good-token", models.User{ID: 1, Role: models.RoleCustomer})
	defer server.Close()

	store := newStore(t)
	store.SetCredentials("good-token", models.User{ID: 1})

	decision, err := Guard(store, New(server.URL), true)
	require.NoError(t, err)

	// Authenticated but unauthorized: home, not login, and the token
	// survives.
	assert.Equal(t, DecisionHome, decision)
	assert.NotNil(t, store.Credentials())
}

func TestGuardAdminOnAdminRouteAdmits(t *testing.T) {
	server := meServer(t, "good-token", models.User{ID: 1, Role: models.RoleAdmin})
	defer server.Close()

	store := newStore(t)
	store.SetCredentials("good-token", models.User{ID: 1})

	decision, err := Guard(store, New(server.URL), true)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestGuardNetworkErrorKeepsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Shut down immediately: every request now fails.

	store := newStore(t)
	store.SetCredentials("good-token", models.User{ID: 1})

	decision, err := Guard(store, New(server.URL), false)
	require.Error(t, err)
	assert.Equal(t, DecisionLogin, decision)
	assert.NotNil(t, store.Credentials(), "a network blip is not a rejection; keep the token")
}
