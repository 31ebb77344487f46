package config

import "time"

// Directory resolution defaults. The lookup timeout is the window the
// primary directory gets before the secondary takes over.
const (
	DefaultLookupTimeout = 3 * time.Second
)

// DirectoryConfig contains directory lookup and resolution configuration.
type DirectoryConfig struct {
	// LookupTimeout bounds the primary directory lookup.
	LookupTimeout time.Duration `env:"DIRECTORY_LOOKUP_TIMEOUT" envDefault:"3s"`

	// ResolveDeadline optionally bounds a whole resolution attempt.
	// Zero disables it.
	ResolveDeadline time.Duration `env:"DIRECTORY_RESOLVE_DEADLINE" envDefault:"0"`

	// SecondaryBaseURL is the sales backend serving the by-email fallback
	// lookup (GET /auth/sap-id?email=).
	SecondaryBaseURL string `env:"DIRECTORY_SECONDARY_URL"`

	// SecondaryAPIKey is sent as x-api-key to the sales backend.
	SecondaryAPIKey string `env:"DIRECTORY_SECONDARY_API_KEY"`

	// CodeExpression is the JMESPath expression extracting the business code
	// from the secondary directory's JSON response.
	CodeExpression string `env:"DIRECTORY_CODE_EXPRESSION" envDefault:"slpCode"`

	// BypassParam is the launch-URL query parameter carrying the bypass token.
	BypassParam string `env:"DIRECTORY_BYPASS_PARAM" envDefault:"slpCode"`
}

// Sanitize applies guardrails to directory configuration.
func (c *DirectoryConfig) Sanitize() {
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = DefaultLookupTimeout
	}
	if c.ResolveDeadline < 0 {
		c.ResolveDeadline = 0
	}
}
