package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/store"
)

// identityStack fakes the four upstream auth endpoints. Individual
// handlers can be swapped per test to inject faults.
type identityStack struct {
	server *httptest.Server
	calls  atomic.Int32

	loginHandler       http.HandlerFunc
	jwtHandler         http.HandlerFunc
	entitlementHandler http.HandlerFunc
	tokenHandler       http.HandlerFunc
}

func newIdentityStack(t *testing.T) *identityStack {
	t.Helper()
	s := &identityStack{}

	s.loginHandler = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("password") != "hunter2" {
			json.NewEncoder(w).Encode(map[string]any{
				"errorCode": 403042, "statusCode": 403, "errorMessage": "invalid loginID or password",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"errorCode": 0, "statusCode": 200, "UID": "uid-1",
			"sessionInfo": map[string]string{"cookieValue": "cookie-1"},
		})
	}
	s.jwtHandler = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errorCode": 0, "statusCode": 200, "id_token": "jwt-1",
		})
	}
	s.entitlementHandler = func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			JWT    string `json:"jwt"`
			Device struct {
				DeviceID string `json:"deviceId"`
			} `json:"device"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jwt-1", body.JWT)
		assert.NotEmpty(t, body.Device.DeviceID)
		json.NewEncoder(w).Encode(map[string]string{"sessionToken": "ent-1"})
	}
	s.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "gigya", r.PostForm.Get("grant_type"))
		assert.Equal(t, "jwt-1", r.PostForm.Get("token"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "access-1"})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/accounts.login", func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.loginHandler(w, r)
	})
	mux.HandleFunc("/accounts.getJWT", func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.jwtHandler(w, r)
	})
	mux.HandleFunc("/redbee/auth/gigyaLogin", func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.entitlementHandler(w, r)
	})
	mux.HandleFunc("/oauth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.tokenHandler(w, r)
	})

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *identityStack) config() config.AuthConfig {
	return config.AuthConfig{
		LoginURL:       s.server.URL + "/accounts.login",
		JWTURL:         s.server.URL + "/accounts.getJWT",
		EntitlementURL: s.server.URL + "/redbee",
		TokenURL:       s.server.URL + "/oauth/v1/token",
		APIKey:         "api-key",
		OAuthClientID:  "client-id",
		OAuthClientKey: "client-secret",
		SessionTTL:     time.Hour,
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db, nil)
	require.NoError(t, err)
	return st
}

func newManager(t *testing.T, stack *identityStack, st *store.Store) *Manager {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.RetryAttempts = 0
	return NewManager(stack.config(), httpclient.New(cfg), st, nil, nil)
}

func TestLoginSuccess(t *testing.T) {
	stack := newIdentityStack(t)
	st := newTestStore(t)
	m := newManager(t, stack, st)
	ctx := context.Background()

	session, err := m.Login(ctx, "viewer@example.be", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "cookie-1", session.LoginCookie)
	assert.Equal(t, "jwt-1", session.IDToken)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "ent-1", session.EntitlementToken)
	assert.Equal(t, "uid-1", session.UserID)
	assert.True(t, session.Valid(time.Now()))
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	persisted, err := st.AuthSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "access-1", persisted.AccessToken)

	creds, err := st.Credentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "viewer@example.be", creds.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	stack := newIdentityStack(t)
	st := newTestStore(t)
	m := newManager(t, stack, st)
	ctx := context.Background()

	_, err := m.Login(ctx, "viewer@example.be", "wrong")
	require.Error(t, err)
	assert.True(t, models.IsAuthKind(err, models.AuthInvalidCredentials))

	session, err := st.AuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session, "failed login persists nothing")
}

func TestLoginEmptyServerResponse(t *testing.T) {
	stack := newIdentityStack(t)
	stack.loginHandler = func(w http.ResponseWriter, _ *http.Request) {}

	m := newManager(t, stack, newTestStore(t))
	_, err := m.Login(context.Background(), "viewer@example.be", "hunter2")
	assert.True(t, models.IsAuthKind(err, models.AuthEmptyServerResponse))
}

func TestLoginMalformedResponses(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		stack := newIdentityStack(t)
		stack.loginHandler = func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}
		m := newManager(t, stack, newTestStore(t))
		_, err := m.Login(context.Background(), "viewer@example.be", "hunter2")
		assert.True(t, models.IsAuthKind(err, models.AuthMalformedResponse))
	})

	t.Run("missing session cookie", func(t *testing.T) {
		stack := newIdentityStack(t)
		stack.loginHandler = func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"errorCode": 0, "statusCode": 200})
		}
		m := newManager(t, stack, newTestStore(t))
		_, err := m.Login(context.Background(), "viewer@example.be", "hunter2")
		assert.True(t, models.IsAuthKind(err, models.AuthMalformedResponse))
	})

	t.Run("missing id token", func(t *testing.T) {
		stack := newIdentityStack(t)
		stack.jwtHandler = func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"errorCode": 0, "statusCode": 200})
		}
		m := newManager(t, stack, newTestStore(t))
		_, err := m.Login(context.Background(), "viewer@example.be", "hunter2")
		assert.True(t, models.IsAuthKind(err, models.AuthMalformedResponse))
	})
}

func TestLoginEntitlementFailureIsAtomic(t *testing.T) {
	stack := newIdentityStack(t)
	stack.entitlementHandler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	st := newTestStore(t)
	m := newManager(t, stack, st)
	ctx := context.Background()

	_, err := m.Login(ctx, "viewer@example.be", "hunter2")
	require.Error(t, err)
	assert.True(t, models.IsAuthKind(err, models.AuthEntitlementExchangeFailed))

	session, err := st.AuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	creds, err := st.Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds, "credentials are not stored on a failed login")
}

func TestLoginAccessTokenFailureIsAtomic(t *testing.T) {
	stack := newIdentityStack(t)
	stack.tokenHandler = func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}

	st := newTestStore(t)
	m := newManager(t, stack, st)

	_, err := m.Login(context.Background(), "viewer@example.be", "hunter2")
	require.Error(t, err)
	assert.True(t, models.IsAuthKind(err, models.AuthEntitlementExchangeFailed))

	session, err := st.AuthSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestEnsureAuthenticated(t *testing.T) {
	t.Run("valid session", func(t *testing.T) {
		stack := newIdentityStack(t)
		st := newTestStore(t)
		m := newManager(t, stack, st)
		ctx := context.Background()

		require.NoError(t, st.SaveAuthSession(ctx, &models.AuthSession{
			LoginCookie: "c", IDToken: "j", AccessToken: "a", EntitlementToken: "e",
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		assert.True(t, m.EnsureAuthenticated(ctx))
		assert.Zero(t, stack.calls.Load(), "valid session needs no network calls")
	})

	t.Run("no session and no credentials", func(t *testing.T) {
		stack := newIdentityStack(t)
		m := newManager(t, stack, newTestStore(t))

		assert.False(t, m.EnsureAuthenticated(context.Background()))
		assert.Zero(t, stack.calls.Load(), "no credentials means no network calls")
	})

	t.Run("expired session with credentials triggers silent re-login", func(t *testing.T) {
		stack := newIdentityStack(t)
		st := newTestStore(t)
		m := newManager(t, stack, st)
		ctx := context.Background()

		require.NoError(t, st.SaveAuthSession(ctx, &models.AuthSession{
			LoginCookie: "c", IDToken: "j", AccessToken: "a", EntitlementToken: "e",
			ExpiresAt: time.Now().Add(-time.Minute),
		}))
		require.NoError(t, st.SaveCredentials(ctx, &models.Credentials{
			Email: "viewer@example.be", Password: "hunter2",
		}))

		assert.True(t, m.EnsureAuthenticated(ctx))
		assert.Positive(t, stack.calls.Load())

		session, err := st.AuthSession(ctx)
		require.NoError(t, err)
		assert.True(t, session.Valid(time.Now()))
	})

	t.Run("re-login failure is swallowed", func(t *testing.T) {
		stack := newIdentityStack(t)
		st := newTestStore(t)
		m := newManager(t, stack, st)
		ctx := context.Background()

		require.NoError(t, st.SaveCredentials(ctx, &models.Credentials{
			Email: "viewer@example.be", Password: "wrong",
		}))

		assert.False(t, m.EnsureAuthenticated(ctx))
	})
}

func TestLogout(t *testing.T) {
	stack := newIdentityStack(t)
	st := newTestStore(t)
	m := newManager(t, stack, st)
	ctx := context.Background()

	_, err := m.Login(ctx, "viewer@example.be", "hunter2")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	session, err := st.AuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	creds, err := st.Credentials(ctx)
	require.NoError(t, err)
	assert.NotNil(t, creds, "logout keeps stored credentials")

	require.NoError(t, m.ForgetCredentials(ctx))
	creds, err = st.Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}
