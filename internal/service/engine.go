package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
	"github.com/fantastico/telesales-go/internal/ports"
)

// EngineOptions groups dependencies for the session resolution engine.
type EngineOptions struct {
	Provider  ports.IdentityProvider
	Primary   ports.PrimaryDirectory
	Secondary ports.SecondaryDirectory
	Records   ports.RecordStore
	Launch    ports.LaunchReader
	Notifier  ports.Notifier
	Logger    *slog.Logger

	// AdminOverrides maps privileged e-mail addresses to fixed business
	// codes. An override skips the verification gate and both directory
	// lookups for that identity.
	AdminOverrides map[string]string

	// LookupTimeout bounds the primary directory lookup (default 3000 ms).
	LookupTimeout time.Duration

	// ResolveDeadline optionally bounds a whole resolution attempt
	// (reload + refresh + race). Zero disables it, which means a hung
	// secondary lookup can hold the engine in Resolving.
	ResolveDeadline time.Duration
}

// Engine is the session resolution engine. It reconciles the launch-URL
// bypass path, the persisted session record, and live identity-provider
// events into a single authoritative EngineState.
//
// Rapid provider events may leave several resolution attempts in flight;
// a monotonic epoch counter decides which attempt's result is committed.
// Superseded attempts run to completion and are discarded at commit time.
type Engine struct {
	provider  ports.IdentityProvider
	records   ports.RecordStore
	launch    ports.LaunchReader
	notifier  ports.Notifier
	race      *directoryRace
	publisher *StatePublisher
	logger    *slog.Logger

	admins          map[string]string
	resolveDeadline time.Duration

	mu         sync.Mutex
	epoch      uint64
	current    domainsession.Record
	hasRecord  bool
	signingOut bool

	// lastWrite is closed when the most recently scheduled store write
	// finishes. Chaining on it keeps persisted writes in commit order
	// without holding mu across store I/O.
	lastWrite chan struct{}

	attempts sync.WaitGroup
}

// NewEngine constructs the engine. The publisher starts in Resolving.
func NewEngine(opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}

	admins := make(map[string]string, len(opts.AdminOverrides))
	for email, code := range opts.AdminOverrides {
		admins[strings.ToLower(strings.TrimSpace(email))] = code
	}

	return &Engine{
		provider:        opts.Provider,
		records:         opts.Records,
		launch:          opts.Launch,
		notifier:        notifier,
		race:            newDirectoryRace(opts.Primary, opts.Secondary, opts.LookupTimeout, logger),
		publisher:       NewStatePublisher(),
		logger:          logger,
		admins:          admins,
		resolveDeadline: opts.ResolveDeadline,
	}
}

// State returns the current EngineState.
func (e *Engine) State() domainsession.EngineState {
	return e.publisher.Current()
}

// SubscribeState registers a synchronous observer of EngineState transitions
// (the navigation shell). The callback runs immediately with the current
// state and must not invoke engine operations synchronously.
func (e *Engine) SubscribeState(fn func(domainsession.EngineState)) (unsubscribe func()) {
	return e.publisher.Subscribe(fn)
}

// Run executes the bootstrap resolver and the provider watcher for the life
// of ctx. The two start concurrently: bootstrap may satisfy the publisher
// immediately via a bypass path while the watcher waits for provider events.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.Bootstrap(ctx)
		return nil
	})
	g.Go(func() error {
		stop := e.Watch(ctx)
		defer stop()
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	e.attempts.Wait()
	return nil
}

// Bootstrap runs the startup short-circuit exactly once: launch-URL bypass
// token first, then the persisted record. It performs no network calls.
func (e *Engine) Bootstrap(ctx context.Context) {
	if token, ok := e.launch.BypassToken(); ok && token != "" {
		rec := domainsession.Record{
			BusinessCode: token,
			Strategy:     domainsession.StrategyURLBypass,
			Status:       domainsession.StatusActive,
		}
		e.mu.Lock()
		e.current = rec
		e.hasRecord = true
		e.writeThrough(ctx, &rec, domainsession.FromRecord(rec))

		e.logger.InfoContext(ctx, "authenticated via launch-url bypass", "business_code", rec.BusinessCode)
		return
	}

	rec, found, err := e.records.Get(ctx)
	if err != nil {
		// Corrupt or unreadable persisted state is treated as absent.
		e.logger.WarnContext(ctx, "read persisted record failed, treating as absent", "error", err)
		return
	}
	if !found {
		return
	}

	e.mu.Lock()
	e.current = rec
	e.hasRecord = true
	if rec.IsBypass() && rec.HasCode() {
		// A persisted bypass record is self-trusting.
		e.publisher.Publish(domainsession.FromRecord(rec))
		e.mu.Unlock()
		e.logger.InfoContext(ctx, "authenticated via persisted bypass record", "business_code", rec.BusinessCode)
		return
	}
	e.mu.Unlock()

	// A persisted provider-strategy record is informational only: it must be
	// reconfirmed by a live provider event, so the state stays Resolving.
	e.logger.DebugContext(ctx, "persisted provider record awaiting reconfirmation")
}

// Watch subscribes the engine to identity-provider state transitions for the
// life of the process. The returned function cancels the subscription.
func (e *Engine) Watch(ctx context.Context) (stop func()) {
	return e.provider.Subscribe(func(identity *domainsession.Identity) {
		e.handleProviderEvent(ctx, identity)
	})
}

// SignIn delegates to the identity provider. Resolution of the resulting
// session happens through the provider subscription, not here.
func (e *Engine) SignIn(ctx context.Context, email, password string) error {
	if _, err := e.provider.SignIn(ctx, email, password); err != nil {
		return err
	}
	return nil
}

// SignOut ends the session regardless of strategy: the persisted record is
// cleared (bypass included), the state becomes Denied, and the provider is
// signed out. A fresh epoch invalidates any in-flight attempts.
func (e *Engine) SignOut(ctx context.Context) error {
	e.mu.Lock()
	e.epoch++
	e.current = domainsession.Record{}
	e.hasRecord = false
	e.writeThrough(ctx, nil, domainsession.Denied())

	return e.signOutProvider(ctx)
}

// ManualRecheck re-runs verification and directory resolution against the
// currently cached provider identity under a fresh epoch. It serves the
// "try again" action while a session is pending; the admin shortcut is not
// consulted again.
func (e *Engine) ManualRecheck(ctx context.Context) error {
	identity := e.provider.CurrentUser()
	if identity == nil {
		return apperrors.IdentityNotFound("no signed-in user to re-check")
	}

	epoch := e.nextEpoch()
	e.attempts.Add(1)
	go func() {
		defer e.attempts.Done()
		e.resolve(ctx, *identity, epoch, true)
	}()
	return nil
}

// handleProviderEvent is invoked once per provider state transition.
func (e *Engine) handleProviderEvent(ctx context.Context, identity *domainsession.Identity) {
	if identity == nil {
		e.handleSignedOut(ctx)
		return
	}

	epoch := e.nextEpoch()
	id := *identity
	e.attempts.Add(1)
	go func() {
		defer e.attempts.Done()
		e.resolve(ctx, id, epoch, false)
	}()
}

// handleSignedOut processes a "no user" event. Bypass sessions are
// independent of provider state and are never downgraded by it. A no-user
// event echoed back from a sign-out the engine itself initiated still bumps
// the epoch but produces no second outcome: the initiating path has already
// committed the denial with its real cause.
func (e *Engine) handleSignedOut(ctx context.Context) {
	e.mu.Lock()
	e.epoch++
	if e.signingOut {
		e.mu.Unlock()
		return
	}
	if e.hasRecord && e.current.IsBypass() {
		e.mu.Unlock()
		e.logger.DebugContext(ctx, "provider reports no user; bypass session unaffected")
		return
	}
	e.current = domainsession.Record{}
	e.hasRecord = false
	e.writeThrough(ctx, nil, domainsession.Denied())

	e.notifier.SessionDenied(ctx, apperrors.IdentityNotFound("provider reports no signed-in user"))
}

// resolve is one resolution attempt. Every write it produces is gated on the
// attempt's epoch still being current; a superseded attempt's side effects
// (including forced sign-outs) are suppressed so it can never clobber a
// newer attempt's outcome.
func (e *Engine) resolve(ctx context.Context, identity domainsession.Identity, epoch uint64, recheck bool) {
	logger := e.logger.With(
		"attempt_id", uuid.NewString(),
		"epoch", epoch,
		"subject", identity.SubjectID,
	)

	defer func() {
		if r := recover(); r != nil {
			// Fail open to pending: a verified identity is never denied
			// because of resolution infrastructure.
			logger.ErrorContext(ctx, "resolution attempt panicked", "panic", r)
			e.commitPending(ctx, epoch, apperrors.Internalf("resolution attempt panicked: %v", r))
		}
	}()

	if e.resolveDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.resolveDeadline)
		defer cancel()
	}

	if !recheck {
		if code, ok := e.admins[strings.ToLower(identity.Email)]; ok {
			logger.WarnContext(ctx, "admin override: skipping verification and directory resolution",
				"email", identity.Email)
			e.commitActive(ctx, epoch, code)
			return
		}
	}

	if err := e.confirmIdentity(ctx, &identity); err != nil {
		if apperrors.ForcesSignOut(err) {
			logger.InfoContext(ctx, "identity rejected by provider", "error", err)
			e.denyAndSignOut(ctx, epoch, err)
			return
		}
		// Transient provider failure: continue with the last-known identity
		// rather than locking the user out.
		logger.WarnContext(ctx, "identity reload failed, continuing with cached identity", "error", err)
	}

	if !identity.EmailVerified {
		logger.InfoContext(ctx, "email not verified, forcing sign-out")
		e.denyAndSignOut(ctx, epoch, apperrors.EmailNotVerified("e-mail address not verified"))
		return
	}

	code, err := e.race.resolveCode(ctx, identity)
	if err != nil {
		logger.InfoContext(ctx, "no business code resolved, session pending",
			"code", apperrors.CodeOf(err),
			"error", err)
		e.commitPending(ctx, epoch, err)
		return
	}

	logger.InfoContext(ctx, "business code resolved", "business_code", code)
	e.commitActive(ctx, epoch, code)
}

// confirmIdentity reloads the identity for a fresh verification flag, forces
// a credential refresh for fresh claims, and re-reads the provider's cached
// identity afterward.
func (e *Engine) confirmIdentity(ctx context.Context, identity *domainsession.Identity) error {
	reloaded, err := e.provider.Reload(ctx, identity.SubjectID)
	if err != nil {
		return err
	}
	*identity = reloaded

	if _, err := e.provider.RefreshCredential(ctx, identity.SubjectID, true); err != nil {
		return err
	}

	if current := e.provider.CurrentUser(); current != nil && current.SubjectID == identity.SubjectID {
		*identity = *current
	}
	return nil
}

func (e *Engine) commitActive(ctx context.Context, epoch uint64, code string) {
	rec := domainsession.Record{
		BusinessCode: code,
		Strategy:     domainsession.StrategyProvider,
		Status:       domainsession.StatusActive,
	}
	e.commit(ctx, epoch, &rec, domainsession.FromRecord(rec))
}

func (e *Engine) commitPending(ctx context.Context, epoch uint64, cause error) {
	rec := domainsession.Record{
		Strategy: domainsession.StrategyProvider,
		Status:   domainsession.StatusPending,
	}
	if e.commit(ctx, epoch, &rec, domainsession.FromRecord(rec)) {
		e.notifier.SessionPending(ctx, cause)
	}
}

// denyAndSignOut commits the denial first (record clear + publish + notify
// with the real cause), then forces the provider sign-out. The provider emits
// its own "no user" event from SignOut; committing beforehand keeps that echo
// from racing the denial and replacing its cause. If the attempt was
// superseded the commit fails and even the sign-out is suppressed: a stale
// attempt must not sign out a user who has re-authenticated since.
func (e *Engine) denyAndSignOut(ctx context.Context, epoch uint64, cause error) {
	if !e.commit(ctx, epoch, nil, domainsession.Denied()) {
		return
	}
	e.notifier.SessionDenied(ctx, cause)
	if err := e.signOutProvider(ctx); err != nil {
		e.logger.WarnContext(ctx, "forced sign-out failed", "error", err)
	}
}

// signOutProvider signs out of the provider with the echo guard raised, so
// the provider's synchronous "no user" notification is absorbed by
// handleSignedOut instead of publishing a second Denied.
func (e *Engine) signOutProvider(ctx context.Context) error {
	e.mu.Lock()
	e.signingOut = true
	e.mu.Unlock()

	err := e.provider.SignOut(ctx)

	e.mu.Lock()
	e.signingOut = false
	e.mu.Unlock()
	return err
}

// commit is the single write path for SessionRecord and EngineState. It
// enforces the two authorities of the engine: the epoch gate (only the
// current attempt may write) and the bypass guard (provider outcomes never
// override a live bypass session). A nil record clears the store.
func (e *Engine) commit(ctx context.Context, epoch uint64, rec *domainsession.Record, state domainsession.EngineState) bool {
	e.mu.Lock()
	if epoch != e.epoch {
		e.mu.Unlock()
		e.logger.DebugContext(ctx, "discarding superseded resolution result",
			"attempt_epoch", epoch,
			"current_epoch", e.epoch)
		return false
	}
	if e.hasRecord && e.current.IsBypass() {
		e.mu.Unlock()
		e.logger.DebugContext(ctx, "bypass session active, provider outcome recorded for bookkeeping only")
		return false
	}

	if rec == nil {
		e.current = domainsession.Record{}
		e.hasRecord = false
	} else {
		e.current = *rec
		e.hasRecord = true
	}
	e.writeThrough(ctx, rec, state)
	return true
}

// writeThrough publishes the state and persists the record (nil clears).
// The caller holds mu with the in-memory state already updated; it is
// released here. Publishing before the unlock keeps publish order identical
// to commit order; the write chain captured under mu does the same for store
// writes, so mu is never held across store I/O and a slow store cannot stall
// epoch bumps or later publishes. Store failures are logged and never change
// the outcome.
func (e *Engine) writeThrough(ctx context.Context, rec *domainsession.Record, state domainsession.EngineState) {
	prev := e.lastWrite
	done := make(chan struct{})
	e.lastWrite = done
	e.publisher.Publish(state)
	e.mu.Unlock()

	defer close(done)
	if prev != nil {
		<-prev
	}
	var err error
	if rec == nil {
		err = e.records.Clear(ctx)
	} else {
		err = e.records.Set(ctx, *rec)
	}
	if err != nil {
		e.logger.WarnContext(ctx, "persist record failed", "error", err)
	}
}

func (e *Engine) nextEpoch() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	return e.epoch
}

// noopNotifier discards outcomes when no messaging surface is wired.
type noopNotifier struct{}

func (noopNotifier) SessionDenied(context.Context, error)  {}
func (noopNotifier) SessionPending(context.Context, error) {}
