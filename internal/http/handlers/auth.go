package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/auth"
)

// AuthHandler handles login, logout and session status endpoints.
type AuthHandler struct {
	manager *auth.Manager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(manager *auth.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

// Register registers the auth routes with the API.
func (h *AuthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      "POST",
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Runs the multi-step login flow and persists the resulting session",
		Tags:        []string{"Auth"},
	}, h.Login)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      "POST",
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Destroys the persisted session; stored credentials are kept unless forget is set",
		Tags:        []string{"Auth"},
	}, h.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "getAuthStatus",
		Method:      "GET",
		Path:        "/api/v1/auth/status",
		Summary:     "Session status",
		Tags:        []string{"Auth"},
	}, h.Status)
}

// LoginInput is the input for the login endpoint.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"1" doc:"Account email"`
		Password string `json:"password" minLength:"1" doc:"Account password"`
	}
}

// AuthStatusResponse describes the current session.
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

// AuthStatusOutput is the output for login and status endpoints.
type AuthStatusOutput struct {
	Body AuthStatusResponse
}

// Login runs the login flow and answers with the session status.
func (h *AuthHandler) Login(ctx context.Context, input *LoginInput) (*AuthStatusOutput, error) {
	session, err := h.manager.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, apiError(err)
	}

	return &AuthStatusOutput{
		Body: AuthStatusResponse{
			Authenticated: true,
			UserID:        session.UserID,
			ExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

// LogoutInput is the input for the logout endpoint.
type LogoutInput struct {
	Forget bool `query:"forget" doc:"Also drop the stored email/password pair"`
}

// LogoutOutput is the output for the logout endpoint.
type LogoutOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// Logout destroys the session and optionally the stored credentials.
func (h *AuthHandler) Logout(ctx context.Context, input *LogoutInput) (*LogoutOutput, error) {
	if err := h.manager.Logout(ctx); err != nil {
		return nil, apiError(err)
	}
	if input.Forget {
		if err := h.manager.ForgetCredentials(ctx); err != nil {
			return nil, apiError(err)
		}
	}

	out := &LogoutOutput{}
	out.Body.Success = true
	return out, nil
}

// Status reports whether a usable session exists.
func (h *AuthHandler) Status(ctx context.Context, _ *struct{}) (*AuthStatusOutput, error) {
	session, err := h.manager.Session(ctx)
	if err != nil {
		return nil, apiError(err)
	}

	out := &AuthStatusOutput{}
	if session.Valid(time.Now()) {
		out.Body = AuthStatusResponse{
			Authenticated: true,
			UserID:        session.UserID,
			ExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339),
		}
	}
	return out, nil
}
