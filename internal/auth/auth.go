// Package auth implements the multi-step login flow against the primary
// broadcaster's identity stack and manages the resulting session.
//
// A login is four exchanges: identity-provider credential check, session
// cookie to JWT, then JWT to entitlement session and JWT to API access
// token in parallel. The flow is atomic: unless every exchange succeeds,
// nothing is persisted and the previous session state is untouched.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/remotesync"
	"github.com/auviostream/auviostream/internal/store"
)

// Manager owns the auth session lifecycle.
type Manager struct {
	cfg    config.AuthConfig
	client *httpclient.Client
	store  *store.Store
	sync   *remotesync.Client
	logger *slog.Logger
}

// NewManager creates an auth manager. The sync client may be disabled;
// mirroring is best-effort either way.
func NewManager(cfg config.AuthConfig, client *httpclient.Client, st *store.Store, sync *remotesync.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		client: client,
		store:  st,
		sync:   sync,
		logger: observability.WithComponent(logger, "auth"),
	}
}

// identityResponse is the identity provider's reply to both the login and
// JWT endpoints.
type identityResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
	UID          string `json:"UID"`
	SessionInfo  *struct {
		CookieValue string `json:"cookieValue"`
	} `json:"sessionInfo"`
	IDToken string `json:"id_token"`
}

// Login runs the full flow and persists the session plus the credentials
// used, enabling later silent re-login. Any failure returns a typed
// *models.AuthError and leaves stored state untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	cookie, uid, err := m.identityLogin(ctx, email, password)
	if err != nil {
		return nil, err
	}

	idToken, err := m.exchangeJWT(ctx, cookie)
	if err != nil {
		return nil, err
	}

	deviceID, err := m.store.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading device identity: %w", err)
	}

	// The entitlement session and the API access token derive from the
	// same JWT and are independent of each other, so fetch them in
	// parallel. Both must succeed.
	var entitlementToken, accessToken string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entitlementToken, err = m.entitlementSession(gctx, idToken, deviceID)
		return err
	})
	g.Go(func() error {
		var err error
		accessToken, err = m.accessToken(gctx, idToken, deviceID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	session := &models.AuthSession{
		LoginCookie:      cookie,
		IDToken:          idToken,
		AccessToken:      accessToken,
		EntitlementToken: entitlementToken,
		UserID:           uid,
		ExpiresAt:        time.Now().Add(m.cfg.SessionTTL),
	}

	if err := m.store.SaveAuthSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	if err := m.store.SaveCredentials(ctx, &models.Credentials{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("persisting credentials: %w", err)
	}

	if err := m.sync.UpsertPlatformAuth(ctx, "auvio", map[string]any{
		"user_id":    uid,
		"expires_at": session.ExpiresAt,
	}); err != nil {
		m.logger.Warn("remote auth mirror failed", slog.String("error", err.Error()))
	}

	m.logger.Info("login succeeded", slog.String("user_id", uid))
	return session, nil
}

// identityLogin performs the credential check and returns the session
// cookie and account id.
func (m *Manager) identityLogin(ctx context.Context, email, password string) (cookie, uid string, err error) {
	const step = "identity-login"

	params := url.Values{
		"loginID":  {email},
		"password": {password},
		"apiKey":   {m.cfg.APIKey},
		"format":   {"json"},
		"lang":     {"fr"},
	}

	body, err := m.client.GetBody(ctx, m.cfg.LoginURL+"?"+params.Encode(), map[string]string{"Accept": "application/json"})
	if err != nil {
		return "", "", models.NewAuthError(models.AuthNetworkUnreachable, step, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", "", models.NewAuthError(models.AuthEmptyServerResponse, step, nil)
	}

	var resp identityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", models.NewAuthError(models.AuthMalformedResponse, step, err)
	}
	if resp.ErrorCode != 0 || resp.StatusCode != 200 {
		return "", "", models.NewAuthError(models.AuthInvalidCredentials, step,
			fmt.Errorf("errorCode=%d statusCode=%d: %s", resp.ErrorCode, resp.StatusCode, resp.ErrorMessage))
	}
	if resp.SessionInfo == nil || resp.SessionInfo.CookieValue == "" {
		return "", "", models.NewAuthError(models.AuthMalformedResponse, step, fmt.Errorf("no session cookie in response"))
	}

	return resp.SessionInfo.CookieValue, resp.UID, nil
}

// exchangeJWT trades the session cookie for an identity JWT.
func (m *Manager) exchangeJWT(ctx context.Context, cookie string) (string, error) {
	const step = "jwt-exchange"

	params := url.Values{
		"apiKey":      {m.cfg.APIKey},
		"login_token": {cookie},
		"format":      {"json"},
	}

	var resp identityResponse
	if err := m.client.GetJSON(ctx, m.cfg.JWTURL+"?"+params.Encode(), &resp, nil); err != nil {
		return "", models.NewAuthError(models.AuthNetworkUnreachable, step, err)
	}
	if resp.ErrorCode != 0 || resp.StatusCode != 200 {
		return "", models.NewAuthError(models.AuthInvalidCredentials, step,
			fmt.Errorf("errorCode=%d statusCode=%d: %s", resp.ErrorCode, resp.StatusCode, resp.ErrorMessage))
	}
	if resp.IDToken == "" {
		return "", models.NewAuthError(models.AuthMalformedResponse, step, fmt.Errorf("no id_token in response"))
	}

	return resp.IDToken, nil
}

// entitlementSession binds the JWT to this device and returns the
// entitlement session token.
func (m *Manager) entitlementSession(ctx context.Context, idToken, deviceID string) (string, error) {
	const step = "entitlement-session"

	payload := map[string]any{
		"jwt": idToken,
		"device": map[string]string{
			"deviceId": deviceID,
			"name":     "",
			"type":     "WEB",
		},
	}

	var resp struct {
		SessionToken string `json:"sessionToken"`
	}
	err := m.client.PostJSON(ctx, m.cfg.EntitlementURL+"/auth/gigyaLogin", payload, &resp, nil)
	if err != nil {
		return "", models.NewAuthError(models.AuthEntitlementExchangeFailed, step, err)
	}
	if resp.SessionToken == "" {
		return "", models.NewAuthError(models.AuthEntitlementExchangeFailed, step, fmt.Errorf("no session token in response"))
	}

	return resp.SessionToken, nil
}

// accessToken trades the JWT for an API access token.
func (m *Manager) accessToken(ctx context.Context, idToken, deviceID string) (string, error) {
	const step = "access-token"

	form := url.Values{
		"grant_type":    {"gigya"},
		"client_id":     {m.cfg.OAuthClientID},
		"client_secret": {m.cfg.OAuthClientKey},
		"platform":      {"WEB"},
		"device_id":     {deviceID},
		"token":         {idToken},
		"scope":         {"visitor"},
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := m.client.PostForm(ctx, m.cfg.TokenURL, form, &resp, nil); err != nil {
		return "", models.NewAuthError(models.AuthEntitlementExchangeFailed, step, err)
	}
	if resp.AccessToken == "" {
		return "", models.NewAuthError(models.AuthEntitlementExchangeFailed, step, fmt.Errorf("no access token in response"))
	}

	return resp.AccessToken, nil
}

// Session returns the current persisted session, or (nil, nil) when none.
func (m *Manager) Session(ctx context.Context) (*models.AuthSession, error) {
	return m.store.AuthSession(ctx)
}

// EnsureAuthenticated reports whether a usable session exists, attempting
// one silent re-login with stored credentials when the session is absent
// or expired. Without stored credentials it returns false immediately,
// making no network calls. Re-login failures are swallowed: the caller
// only learns that authentication is unavailable.
func (m *Manager) EnsureAuthenticated(ctx context.Context) bool {
	session, err := m.store.AuthSession(ctx)
	if err != nil {
		m.logger.Warn("reading session failed", slog.String("error", err.Error()))
		return false
	}
	if session.Valid(time.Now()) {
		return true
	}

	creds, err := m.store.Credentials(ctx)
	if err != nil || creds == nil || creds.Email == "" || creds.Password == "" {
		return false
	}

	if _, err := m.Login(ctx, creds.Email, creds.Password); err != nil {
		m.logger.Warn("silent re-login failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Logout destroys the persisted session. Stored credentials are kept so
// the user can log back in without retyping them; call ForgetCredentials
// to drop those too.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.DeleteAuthSession(ctx)
}

// ForgetCredentials removes the stored email/password pair.
func (m *Manager) ForgetCredentials(ctx context.Context) error {
	return m.store.DeleteCredentials(ctx)
}
