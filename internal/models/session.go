package models

import "time"

// AuthSession holds the full credential set produced by a successful login.
// All four tokens are required for the session to be usable; the login flow
// persists either the complete set or nothing.
//
// Secret fields carry masq tags so they are redacted if a session ever
// reaches a log line.
type AuthSession struct {
	LoginCookie      string    `json:"login_cookie" masq:"secret"`
	IDToken          string    `json:"id_token" masq:"secret"`
	AccessToken      string    `json:"access_token" masq:"secret"`
	EntitlementToken string    `json:"entitlement_token" masq:"secret"`
	UserID           string    `json:"user_id"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Valid reports whether the session is complete and unexpired at t.
func (s *AuthSession) Valid(t time.Time) bool {
	if s == nil {
		return false
	}
	if s.LoginCookie == "" || s.IDToken == "" || s.AccessToken == "" || s.EntitlementToken == "" {
		return false
	}
	return t.Before(s.ExpiresAt)
}

// Credentials is the stored email/password pair used for silent re-login
// after session expiry. Storing the password locally is a deliberate
// trade-off for unattended operation on a trusted device.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

// DeviceIdentity is the stable per-installation fingerprint presented to
// device-bound entitlement endpoints. Minted once, persisted forever.
type DeviceIdentity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
