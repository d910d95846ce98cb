package carrier

import (
	"strings"

	"github.com/shopfront/backend/internal/domain/shared"
)

// Config holds carrier aggregator credentials for both environments.
// Sandbox values take precedence when present so a deployment can point at
// the aggregator's test environment without touching production secrets.
type Config struct {
	// Production environment
	APIBaseURL string
	Token      string

	// Sandbox environment (takes precedence when set)
	SandboxAPIBaseURL string
	SandboxToken      string

	// WebhookSecret is the shared secret used to verify inbound webhook
	// signatures
	WebhookSecret string

	// UserAgent is the stable client label sent on every outbound call
	UserAgent string

	// TimeoutSeconds is the HTTP client timeout for carrier calls
	TimeoutSeconds int
}

// ResolvedConfig is the environment-resolved, sanitized credential set.
// Resolved once at startup and read-only thereafter.
type ResolvedConfig struct {
	BaseURL       string
	Token         string
	WebhookSecret string
	UserAgent     string
}

// Resolve picks the sandbox values when present, falling back to
// production, and sanitizes the credential material before use.
func (c *Config) Resolve() (*ResolvedConfig, error) {
	baseURL := c.SandboxAPIBaseURL
	if baseURL == "" {
		baseURL = c.APIBaseURL
	}
	token := sanitizeCredential(c.SandboxToken)
	if token == "" {
		token = sanitizeCredential(c.Token)
	}

	if baseURL == "" {
		return nil, shared.NewDomainError("CARRIER_NOT_CONFIGURED", "Carrier API base URL is not configured")
	}
	if token == "" {
		return nil, shared.NewDomainError("CARRIER_NOT_CONFIGURED", "Carrier API token is not configured")
	}

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = "shopfront-backend (tracking-sync)"
	}

	return &ResolvedConfig{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		Token:         token,
		WebhookSecret: sanitizeCredential(c.WebhookSecret),
		UserAgent:     userAgent,
	}, nil
}

// sanitizeCredential strips the corruption secrets pick up when pasted
// from password managers or .env files: surrounding whitespace, surrounding
// quote characters, and embedded newlines.
func sanitizeCredential(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}
