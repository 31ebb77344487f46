package devid

// Package devid provides a config-driven identity provider for local
// development. It accepts any password for the configured email and issues
// locally generated credentials.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

// Config controls the dev identity provider behavior.
type Config struct {
	SubjectID          string
	Email              string
	EmailVerified      bool
	CredentialLifetime time.Duration // default 8h when zero
	SignedIn           bool          // start with the user already signed in
}

// Provider implements ports.IdentityProvider for local development.
type Provider struct {
	cfg      Config
	lifetime time.Duration

	mu          sync.Mutex
	current     *domainsession.Identity
	subscribers map[int]func(*domainsession.Identity)
	nextSubID   int
}

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.SubjectID == "" {
		return nil, errors.New("dev identity: SubjectID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev identity: Email is required")
	}
	lifetime := cfg.CredentialLifetime
	if lifetime == 0 {
		lifetime = 8 * time.Hour
	}

	p := &Provider{
		cfg:         cfg,
		lifetime:    lifetime,
		subscribers: make(map[int]func(*domainsession.Identity)),
	}
	if cfg.SignedIn {
		identity := p.makeIdentity()
		p.current = &identity
	}
	return p, nil
}

func (p *Provider) makeIdentity() domainsession.Identity {
	return domainsession.Identity{
		SubjectID:     p.cfg.SubjectID,
		Email:         p.cfg.Email,
		EmailVerified: p.cfg.EmailVerified,
		Credential:    p.makeCredential(),
	}
}

func (p *Provider) makeCredential() domainsession.Credential {
	return domainsession.Credential{
		Token:     "dev-" + randomString(24),
		ExpiresAt: time.Now().Add(p.lifetime),
	}
}

// Subscribe registers a callback for provider state transitions.
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

func (p *Provider) notifyLocked(identity *domainsession.Identity) {
	subs := make([]func(*domainsession.Identity), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	defer p.mu.Lock()
	for _, fn := range subs {
		fn(clone(identity))
	}
}

// SignIn accepts any password for the configured email.
func (p *Provider) SignIn(_ context.Context, email, _ string) (domainsession.Identity, error) {
	if !strings.EqualFold(email, p.cfg.Email) {
		return domainsession.Identity{}, apperrors.IdentityNotFound("unknown dev user")
	}

	identity := p.makeIdentity()
	p.mu.Lock()
	p.current = &identity
	p.notifyLocked(&identity)
	p.mu.Unlock()
	return identity, nil
}

// SignOut clears the dev user and notifies subscribers.
func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.notifyLocked(nil)
	p.mu.Unlock()
	return nil
}

// CurrentUser returns the cached identity, or nil when signed out.
func (p *Provider) CurrentUser() *domainsession.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.current)
}

// Reload returns the configured identity unchanged.
func (p *Provider) Reload(_ context.Context, subjectID string) (domainsession.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.SubjectID != subjectID {
		return domainsession.Identity{}, apperrors.IdentityNotFound("no dev user signed in")
	}
	return *p.current, nil
}

// RefreshCredential issues a fresh locally generated credential.
func (p *Provider) RefreshCredential(_ context.Context, subjectID string, _ bool) (domainsession.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.SubjectID != subjectID {
		return domainsession.Credential{}, apperrors.IdentityNotFound("no dev user signed in")
	}
	cred := p.makeCredential()
	updated := *p.current
	updated.Credential = cred
	p.current = &updated
	return cred, nil
}

func clone(in *domainsession.Identity) *domainsession.Identity {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

func randomString(n int) string {
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		return "0000000000000000"
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s
}
