package models

// AuthType describes how a platform authenticates its users.
type AuthType string

const (
	// AuthTypeGigya is the identity-provider login flow used by the
	// primary national broadcaster (cookie, JWT, entitlement exchange).
	AuthTypeGigya AuthType = "gigya"
	// AuthTypeOAuth is a plain OAuth token flow.
	AuthTypeOAuth AuthType = "oauth"
	// AuthTypeSimple is a basic credential login without token exchange.
	AuthTypeSimple AuthType = "simple"
	// AuthTypeNone marks platforms with no login at all.
	AuthTypeNone AuthType = "none"
)

// PlatformCategory groups platforms for presentation.
type PlatformCategory string

const (
	CategoryNational PlatformCategory = "national"
	CategoryLocal    PlatformCategory = "local"
	CategoryRadio    PlatformCategory = "radio"
)

// Platform describes one upstream streaming service known to the registry.
type Platform struct {
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	Category     PlatformCategory `json:"category"`
	RequiresAuth bool             `json:"requires_auth"`
	AuthType     AuthType         `json:"auth_type"`
	LogoURL      string           `json:"logo_url,omitempty"`
	Active       bool             `json:"active"`
}

// Validate checks the platform for required fields.
func (p *Platform) Validate() error {
	if p.Slug == "" {
		return ErrSlugRequired
	}
	if p.Name == "" {
		return ErrNameRequired
	}
	switch p.AuthType {
	case AuthTypeGigya, AuthTypeOAuth, AuthTypeSimple, AuthTypeNone:
	default:
		return ErrInvalidAuthType
	}
	switch p.Category {
	case CategoryNational, CategoryLocal, CategoryRadio:
	default:
		return ErrInvalidCategory
	}
	return nil
}
