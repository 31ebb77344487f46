package oidcid

// Package oidcid implements the identity provider port over OIDC/OAuth2.
// It holds the signed-in user's token and fans provider state transitions
// out to subscribers.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

// ProviderConfig holds configuration for the OIDC identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	DiscoveryURL string
	Scope        string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
	Logger       *slog.Logger // Optional
}

// Provider implements ports.IdentityProvider using go-oidc and oauth2.
type Provider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	logger       *slog.Logger
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier

	mu          sync.Mutex
	current     *domainsession.Identity
	token       *oauth2.Token
	rawIDToken  string
	subscribers map[int]func(*domainsession.Identity)
	nextSubID   int
}

// NewProvider creates a new OIDC identity provider. Discovery runs once at
// construction so misconfiguration fails at startup.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	discoveryCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(discoveryCtx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scope := cfg.Scope
	if scope == "" {
		scope = "openid email offline_access"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		logger:       logger.With("component", "oidc_identity_provider"),
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		subscribers:  make(map[int]func(*domainsession.Identity)),
	}, nil
}

// Subscribe registers a callback for provider state transitions. Credential
// refreshes do not notify; only sign-in and sign-out transitions do.
func (p *Provider) Subscribe(onChange func(identity *domainsession.Identity)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = onChange
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// notifyLocked snapshots subscribers under p.mu and invokes them after release.
func (p *Provider) notifyLocked(identity *domainsession.Identity) {
	subs := make([]func(*domainsession.Identity), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	defer p.mu.Lock()
	for _, fn := range subs {
		fn(cloneIdentity(identity))
	}
}

// SignIn performs the resource-owner password grant and publishes the
// resulting identity to subscribers.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domainsession.Identity, error) {
	reqCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.PasswordCredentialsToken(reqCtx, email, password)
	if err != nil {
		return domainsession.Identity{}, mapTokenError(err, "sign in")
	}

	identity, rawID, err := p.identityFromToken(ctx, token)
	if err != nil {
		return domainsession.Identity{}, err
	}

	p.mu.Lock()
	p.current = &identity
	p.token = token
	p.rawIDToken = rawID
	p.notifyLocked(&identity)
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "user signed in", "subject", identity.SubjectID)
	return identity, nil
}

// SignOut discards the cached token and publishes "no user" to subscribers.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	signedIn := p.current != nil
	p.current = nil
	p.token = nil
	p.rawIDToken = ""
	p.notifyLocked(nil)
	p.mu.Unlock()

	if signedIn {
		p.logger.InfoContext(ctx, "user signed out")
	}
	return nil
}

// CurrentUser returns the cached identity, or nil when no user is signed in.
func (p *Provider) CurrentUser() *domainsession.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneIdentity(p.current)
}

// Reload fetches fresh claims for the subject from the UserInfo endpoint.
// When UserInfo is unreachable the cached ID token's claims are used as a
// degraded fallback so a transient provider outage does not lose the
// verification flag.
func (p *Provider) Reload(ctx context.Context, subjectID string) (domainsession.Identity, error) {
	p.mu.Lock()
	current := cloneIdentity(p.current)
	token := p.token
	rawID := p.rawIDToken
	p.mu.Unlock()

	if current == nil || token == nil {
		return domainsession.Identity{}, apperrors.IdentityNotFound("no user signed in")
	}
	if current.SubjectID != subjectID {
		return domainsession.Identity{}, apperrors.IdentityNotFound("subject is no longer signed in")
	}

	reqCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	ui, err := p.oidcProvider.UserInfo(reqCtx, oauth2.StaticTokenSource(token))
	if err != nil {
		p.logger.WarnContext(ctx, "userinfo fetch failed, falling back to cached id_token claims",
			"subject", subjectID, "error", err)
		return p.reloadFromIDToken(*current, rawID, err)
	}

	var claims providerClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domainsession.Identity{}, apperrors.Wrap(claimsErr, apperrors.ErrCodeProviderUnavailable, "decode userinfo claims")
	}
	if claims.Sub != "" && claims.Sub != subjectID {
		return domainsession.Identity{}, apperrors.IdentityNotFound("userinfo subject mismatch")
	}

	refreshed := *current
	if claims.Email != "" {
		refreshed.Email = claims.Email
	}
	refreshed.EmailVerified = claims.EmailVerified

	p.mu.Lock()
	if p.current != nil && p.current.SubjectID == subjectID {
		p.current = cloneIdentity(&refreshed)
	}
	p.mu.Unlock()

	return refreshed, nil
}

// reloadFromIDToken recovers reload claims from the cached raw ID token via
// an unverified parse. The token was verified at sign-in; this path only
// re-reads claims we already trusted.
func (p *Provider) reloadFromIDToken(current domainsession.Identity, rawID string, cause error) (domainsession.Identity, error) {
	if rawID == "" {
		return domainsession.Identity{}, apperrors.Wrap(cause, apperrors.ErrCodeProviderUnavailable, "fetch userinfo")
	}

	var claims idTokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawID, &claims); err != nil {
		return domainsession.Identity{}, apperrors.Wrap(cause, apperrors.ErrCodeProviderUnavailable, "fetch userinfo")
	}
	if claims.Subject != "" && claims.Subject != current.SubjectID {
		return domainsession.Identity{}, apperrors.IdentityNotFound("cached token subject mismatch")
	}

	if claims.Email != "" {
		current.Email = claims.Email
	}
	current.EmailVerified = claims.EmailVerified
	return current, nil
}

// RefreshCredential obtains a credential for the subject. With force set, the
// cached access token is treated as expired so the refresh token is always
// exercised and fresh claims are issued.
func (p *Provider) RefreshCredential(ctx context.Context, subjectID string, force bool) (domainsession.Credential, error) {
	p.mu.Lock()
	current := cloneIdentity(p.current)
	token := p.token
	p.mu.Unlock()

	if current == nil || token == nil {
		return domainsession.Credential{}, apperrors.IdentityNotFound("no user signed in")
	}
	if current.SubjectID != subjectID {
		return domainsession.Credential{}, apperrors.IdentityNotFound("subject is no longer signed in")
	}

	seed := *token
	if force {
		seed.Expiry = time.Now().Add(-time.Minute)
	}

	reqCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	fresh, err := p.config.TokenSource(reqCtx, &seed).Token()
	if err != nil {
		return domainsession.Credential{}, mapTokenError(err, "refresh credential")
	}

	cred := credentialFromToken(fresh)

	p.mu.Lock()
	if p.current != nil && p.current.SubjectID == subjectID {
		p.token = fresh
		if raw, ok := fresh.Extra("id_token").(string); ok && raw != "" {
			p.rawIDToken = raw
		}
		updated := *p.current
		updated.Credential = cred
		p.current = &updated
	}
	p.mu.Unlock()

	return cred, nil
}

// identityFromToken verifies the ID token and maps its claims. When the token
// response carries no id_token, UserInfo supplies the claims instead.
func (p *Provider) identityFromToken(ctx context.Context, token *oauth2.Token) (domainsession.Identity, string, error) {
	rawID, _ := token.Extra("id_token").(string)
	if rawID != "" {
		idTok, err := p.verifier.Verify(ctx, rawID)
		if err != nil {
			return domainsession.Identity{}, "", apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "verify id_token")
		}
		var claims providerClaims
		if err := idTok.Claims(&claims); err != nil {
			return domainsession.Identity{}, "", apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "parse id_token claims")
		}
		if claims.Sub == "" {
			return domainsession.Identity{}, "", apperrors.ProviderUnavailable("id_token missing subject")
		}
		return domainsession.Identity{
			SubjectID:     claims.Sub,
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
			Credential:    credentialFromToken(token),
		}, rawID, nil
	}

	reqCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	ui, err := p.oidcProvider.UserInfo(reqCtx, oauth2.StaticTokenSource(token))
	if err != nil {
		return domainsession.Identity{}, "", apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "fetch userinfo")
	}
	var claims providerClaims
	if err := ui.Claims(&claims); err != nil {
		return domainsession.Identity{}, "", apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "decode userinfo claims")
	}
	if claims.Sub == "" {
		return domainsession.Identity{}, "", apperrors.ProviderUnavailable("userinfo missing subject")
	}
	return domainsession.Identity{
		SubjectID:     claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Credential:    credentialFromToken(token),
	}, "", nil
}

// providerClaims is the shape shared by the ID token and UserInfo payloads.
type providerClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// idTokenClaims adds jwt registered claims for the unverified fallback parse.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func credentialFromToken(tok *oauth2.Token) domainsession.Credential {
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(time.Hour)
	}
	return domainsession.Credential{
		Token:     tok.AccessToken,
		ExpiresAt: expiry,
	}
}

func cloneIdentity(in *domainsession.Identity) *domainsession.Identity {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

// mapTokenError classifies oauth2 token-endpoint failures. An invalid_grant
// means the credentials or refresh token are no longer good; anything else
// is a provider outage.
func mapTokenError(err error, op string) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant":
			return apperrors.Wrap(err, apperrors.ErrCodeCredentialExpired, op)
		case "invalid_request", "unauthorized_client", "access_denied":
			return apperrors.Wrap(err, apperrors.ErrCodeIdentityNotFound, op)
		}
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
			return apperrors.Wrap(err, apperrors.ErrCodeIdentityNotFound, op)
		}
	}
	return apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, op)
}
