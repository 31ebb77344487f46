package ports

// Package ports defines interfaces (hexagonal ports) for the collaborators of
// the session resolution engine. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
)

// IdentityProvider is the live external identity provider. The engine never
// mutates provider state directly; it asks for reloads, refreshes, and
// sign-out, and observes transitions through Subscribe.
type IdentityProvider interface {
	// Subscribe registers a callback invoked on every provider state
	// transition (sign-in, sign-out, credential change). The callback
	// receives the current identity, or nil when no user is signed in.
	// The returned function cancels the subscription.
	Subscribe(onChange func(identity *domainsession.Identity)) (unsubscribe func())

	// Reload fetches a fresh copy of the identity, including an up-to-date
	// email-verification flag.
	Reload(ctx context.Context, subjectID string) (domainsession.Identity, error)

	// RefreshCredential obtains a new short-lived credential with fresh
	// claims. When force is true a cached, still-valid credential must not
	// be returned.
	RefreshCredential(ctx context.Context, subjectID string, force bool) (domainsession.Credential, error)

	SignIn(ctx context.Context, email, password string) (domainsession.Identity, error)
	SignOut(ctx context.Context) error

	// CurrentUser returns the provider's cached identity, or nil when no
	// user is signed in.
	CurrentUser() *domainsession.Identity
}

// PrimaryDirectory resolves a business code by provider subject id.
// Implementations return an error classified as directory_not_found when the
// subject has no mapping.
type PrimaryDirectory interface {
	LookupByUID(ctx context.Context, uid string) (string, error)
}

// SecondaryDirectory resolves a business code by email. It is the fallback
// source when the primary is slow, unavailable, or has no mapping.
type SecondaryDirectory interface {
	LookupByEmail(ctx context.Context, email string) (string, error)
}

// RecordStore persists the last committed session record. Reads and writes
// are whole-record; the engine treats any store failure as "record absent".
type RecordStore interface {
	Get(ctx context.Context) (rec domainsession.Record, found bool, err error)
	Set(ctx context.Context, rec domainsession.Record) error
	Clear(ctx context.Context) error
}

// LaunchReader yields the optional bypass token parsed from the launch URL
// (web query string or a mobile deep link's query parameters).
type LaunchReader interface {
	BypassToken() (token string, ok bool)
}

// Notifier receives user-facing resolution outcomes. Message formatting and
// delivery are outside the engine.
type Notifier interface {
	SessionDenied(ctx context.Context, cause error)
	SessionPending(ctx context.Context, cause error)
}
