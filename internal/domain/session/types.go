package session

// Package session contains domain-level types for session resolution.
// It is pure and free of framework/adapter concerns.

import "time"

// Strategy identifies which authentication path produced a session.
// Keep string form for easy persistence.
type Strategy string

const (
	// StrategyURLBypass trusts a sales-rep code embedded in the launch URL
	// (or one previously persisted from such a token) without consulting the
	// identity provider.
	StrategyURLBypass Strategy = "url_bypass"
	// StrategyProvider derives the session from a live identity-provider event.
	StrategyProvider Strategy = "provider"
)

// Status is the lifecycle state of a resolved session.
type Status string

const (
	// StatusActive means the session has a resolved business code.
	StatusActive Status = "active"
	// StatusPending means the user is signed in and verified but no business
	// code has been resolved for them yet.
	StatusPending Status = "pending"
)

// Record is the persisted outcome of the last committed resolution.
// An empty BusinessCode with StatusPending represents "signed in, unmapped".
type Record struct {
	BusinessCode string   `json:"business_code,omitempty"`
	Strategy     Strategy `json:"strategy"`
	Status       Status   `json:"status"`
}

// IsBypass reports whether the record was produced by the URL-bypass path.
// Bypass records are self-trusting: the provider reporting "no user" never
// invalidates them.
func (r Record) IsBypass() bool { return r.Strategy == StrategyURLBypass }

// HasCode reports whether a business code was resolved.
func (r Record) HasCode() bool { return r.BusinessCode != "" }

// Credential is the provider-issued short-lived credential attached to an
// identity. The engine never mutates it; it only asks the provider for a
// forced refresh.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the credential is past its expiry at the given time.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Identity represents the principal reported by the identity provider.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	SubjectID     string // stable provider subject identifier
	Email         string
	EmailVerified bool
	Credential    Credential
}

// Phase is the top-level classification of EngineState.
type Phase string

const (
	PhaseResolving     Phase = "resolving"
	PhaseAuthenticated Phase = "authenticated"
	PhaseDenied        Phase = "denied"
)

// EngineState is the single externally observable value of the resolution
// engine. The navigation shell consumes it to choose between the
// authenticated application shell and the sign-in shell.
type EngineState struct {
	Phase Phase

	// Strategy, BusinessCode and Status are meaningful only while
	// Phase == PhaseAuthenticated. BusinessCode is empty while pending.
	Strategy     Strategy
	BusinessCode string
	Status       Status
}

// Resolving is the initial state, also observable while an attempt is in flight.
func Resolving() EngineState { return EngineState{Phase: PhaseResolving} }

// Denied is the terminal state for the sign-in shell.
func Denied() EngineState { return EngineState{Phase: PhaseDenied} }

// Authenticated builds an authenticated state.
func Authenticated(strategy Strategy, businessCode string, status Status) EngineState {
	return EngineState{
		Phase:        PhaseAuthenticated,
		Strategy:     strategy,
		BusinessCode: businessCode,
		Status:       status,
	}
}

// FromRecord derives the authenticated state a committed record implies.
func FromRecord(r Record) EngineState {
	return Authenticated(r.Strategy, r.BusinessCode, r.Status)
}

// IsAuthenticated reports whether the state admits the user into the
// application shell (pending sessions are authenticated but unmapped).
func (s EngineState) IsAuthenticated() bool { return s.Phase == PhaseAuthenticated }

// IsPending reports whether the user is authenticated without a business code.
func (s EngineState) IsPending() bool {
	return s.Phase == PhaseAuthenticated && s.Status == StatusPending
}
