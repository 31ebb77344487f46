package config

import (
	"fmt"
	"strings"
)

// ProviderMode selects which identity provider implementation to use.
type ProviderMode string

const (
	// ProviderModeOIDC uses a live OIDC/OAuth2 identity provider.
	ProviderModeOIDC ProviderMode = "oidc"
	// ProviderModeMock uses a config-driven identity (for development only).
	ProviderModeMock ProviderMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for ProviderMode.
func (p *ProviderMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock":
		*p = ProviderMode(v)
		return nil
	default:
		return fmt.Errorf("invalid ProviderMode: %q (valid options: oidc, mock)", v)
	}
}

// OIDCConfig contains OIDC/OAuth2 identity provider configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"telesales"`
	ClientSecret string `env:"CLIENT_SECRET"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	Scope        string `env:"SCOPE"         envDefault:"openid email offline_access"`
}

// DevIdentityConfig controls the mock identity.
// Used when IDENTITY_MODE=mock for development and testing.
type DevIdentityConfig struct {
	SubjectID     string `env:"SUBJECT_ID"     envDefault:"dev-user"`
	Email         string `env:"EMAIL"          envDefault:"dev@fantastico.example"`
	EmailVerified bool   `env:"EMAIL_VERIFIED" envDefault:"true"`
	SignedIn      bool   `env:"SIGNED_IN"      envDefault:"false"`
}

// IdentityConfig groups all identity-related configuration.
type IdentityConfig struct {
	// Mode determines which identity provider to use.
	Mode ProviderMode `env:"IDENTITY_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Dev identity configuration (used when Mode=mock).
	Dev DevIdentityConfig `envPrefix:"DEV_IDENTITY_"`

	// AdminOverrides maps privileged e-mail addresses to fixed business
	// codes, bypassing verification and directory resolution.
	// Format: "admin@example.com:-1,ops@example.com:-1".
	AdminOverrides map[string]string `env:"ADMIN_OVERRIDES" envSeparator:"," envKeyValSeparator:":"`
}
