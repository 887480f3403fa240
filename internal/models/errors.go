package models

import (
	"errors"
	"fmt"
)

// Validation sentinels shared by model Validate methods.
var (
	// ErrSlugRequired indicates a required platform slug is empty.
	ErrSlugRequired = errors.New("platform slug is required")

	// ErrNameRequired indicates a required name field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrTitleRequired indicates a required title field is empty.
	ErrTitleRequired = errors.New("title is required")

	// ErrContentIDRequired indicates a required content ID is empty.
	ErrContentIDRequired = errors.New("content id is required")

	// ErrInvalidAuthType indicates an unknown auth type value.
	ErrInvalidAuthType = errors.New("invalid auth type: must be 'gigya', 'oauth', 'simple' or 'none'")

	// ErrInvalidCategory indicates an unknown platform category value.
	ErrInvalidCategory = errors.New("invalid category: must be 'national', 'local' or 'radio'")

	// ErrInvalidFraction indicates a watch fraction outside [0, 1].
	ErrInvalidFraction = errors.New("fraction must be between 0 and 1")

	// ErrPlaylistNotFound indicates the requested playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// AuthErrorKind classifies login and session failures.
type AuthErrorKind string

const (
	// AuthInvalidCredentials means the identity provider rejected the
	// email/password pair.
	AuthInvalidCredentials AuthErrorKind = "invalid_credentials"
	// AuthEmptyServerResponse means an auth endpoint answered with no
	// usable payload.
	AuthEmptyServerResponse AuthErrorKind = "empty_server_response"
	// AuthMalformedResponse means an auth endpoint answered with a payload
	// missing required fields.
	AuthMalformedResponse AuthErrorKind = "malformed_response"
	// AuthEntitlementExchangeFailed means the JWT could not be exchanged
	// for entitlement or access tokens.
	AuthEntitlementExchangeFailed AuthErrorKind = "entitlement_exchange_failed"
	// AuthNetworkUnreachable means no auth endpoint could be reached.
	AuthNetworkUnreachable AuthErrorKind = "network_unreachable"
)

// AuthError is a typed login/session failure. Step records which exchange
// failed so the whole multi-step flow stays diagnosable.
type AuthError struct {
	Kind AuthErrorKind
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s at %s: %v", e.Kind, e.Step, e.Err)
	}
	return fmt.Sprintf("auth %s at %s", e.Kind, e.Step)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError builds a typed auth error.
func NewAuthError(kind AuthErrorKind, step string, err error) *AuthError {
	return &AuthError{Kind: kind, Step: step, Err: err}
}

// IsAuthKind reports whether err is an AuthError of the given kind.
func IsAuthKind(err error, kind AuthErrorKind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == kind
}

// StreamErrorKind classifies stream resolution failures.
type StreamErrorKind string

const (
	// StreamNoPlayableFormat means the entitlement response contained no
	// format this client can play.
	StreamNoPlayableFormat StreamErrorKind = "no_playable_format"
	// StreamNotEntitled means the account lacks the subscription required
	// for this content. Distinct from NoPlayableFormat so the user sees a
	// subscription message rather than a technical one.
	StreamNotEntitled StreamErrorKind = "not_entitled"
	// StreamNotFound means the expected stream markup or locator was
	// missing upstream.
	StreamNotFound StreamErrorKind = "stream_not_found"
	// StreamAuthenticationRequired means resolution needs a login this
	// platform adapter cannot perform.
	StreamAuthenticationRequired StreamErrorKind = "authentication_required"
	// StreamUnknownPlatform means no adapter is registered for the slug.
	StreamUnknownPlatform StreamErrorKind = "unknown_platform"
	// StreamUpstreamError covers transport and server failures upstream.
	StreamUpstreamError StreamErrorKind = "upstream_error"
)

// StreamError is a typed stream resolution failure.
type StreamError struct {
	Kind     StreamErrorKind
	Platform string
	Err      error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream %s on %s: %v", e.Kind, e.Platform, e.Err)
	}
	return fmt.Sprintf("stream %s on %s", e.Kind, e.Platform)
}

func (e *StreamError) Unwrap() error { return e.Err }

// NewStreamError builds a typed stream error.
func NewStreamError(kind StreamErrorKind, platform string, err error) *StreamError {
	return &StreamError{Kind: kind, Platform: platform, Err: err}
}

// IsStreamKind reports whether err is a StreamError of the given kind.
func IsStreamKind(err error, kind StreamErrorKind) bool {
	var se *StreamError
	return errors.As(err, &se) && se.Kind == kind
}
