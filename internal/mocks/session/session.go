package session

// Package session contains simple hand-written test doubles for the
// resolution-engine ports. These are lightweight and suitable for unit tests
// without codegen; gomock-generated directory mocks live one package up.

import (
	"context"
	"sync"
	"sync/atomic"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
	"github.com/fantastico/telesales-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider   = (*FakeIdentityProvider)(nil)
	_ ports.RecordStore        = (*MemoryRecordStore)(nil)
	_ ports.LaunchReader       = (StaticLaunchReader{})
	_ ports.PrimaryDirectory   = (*FuncPrimaryDirectory)(nil)
	_ ports.SecondaryDirectory = (*FuncSecondaryDirectory)(nil)
	_ ports.Notifier           = (*RecordingNotifier)(nil)
)

// FakeIdentityProvider simulates the external identity provider. Tests drive
// it by calling Emit (a provider state transition) and script Reload and
// RefreshCredential through function fields.
type FakeIdentityProvider struct {
	mu      sync.Mutex
	subs    map[int]func(*domainsession.Identity)
	nextSub int
	current *domainsession.Identity

	ReloadFunc  func(ctx context.Context, subjectID string) (domainsession.Identity, error)
	RefreshFunc func(ctx context.Context, subjectID string, force bool) (domainsession.Credential, error)
	SignInFunc  func(ctx context.Context, email, password string) (domainsession.Identity, error)

	ReloadCalls  atomic.Int64
	RefreshCalls atomic.Int64
	SignOutCalls atomic.Int64
}

// NewFakeIdentityProvider creates a provider with no signed-in user whose
// reload and refresh succeed by echoing the cached identity.
func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{subs: make(map[int]func(*domainsession.Identity))}
}

// Emit sets the cached identity and notifies subscribers synchronously,
// exactly once per call, mirroring a provider state transition.
func (p *FakeIdentityProvider) Emit(identity *domainsession.Identity) {
	p.mu.Lock()
	p.current = identity
	fns := make([]func(*domainsession.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

func (p *FakeIdentityProvider) Subscribe(onChange func(*domainsession.Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = onChange
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *FakeIdentityProvider) Reload(ctx context.Context, subjectID string) (domainsession.Identity, error) {
	p.ReloadCalls.Add(1)
	if p.ReloadFunc != nil {
		return p.ReloadFunc(ctx, subjectID)
	}
	if cur := p.CurrentUser(); cur != nil && cur.SubjectID == subjectID {
		return *cur, nil
	}
	return domainsession.Identity{}, apperrors.IdentityNotFound("unknown subject " + subjectID)
}

func (p *FakeIdentityProvider) RefreshCredential(ctx context.Context, subjectID string, force bool) (domainsession.Credential, error) {
	p.RefreshCalls.Add(1)
	if p.RefreshFunc != nil {
		return p.RefreshFunc(ctx, subjectID, force)
	}
	return domainsession.Credential{Token: "fresh-token"}, nil
}

func (p *FakeIdentityProvider) SignIn(ctx context.Context, email, password string) (domainsession.Identity, error) {
	if p.SignInFunc != nil {
		identity, err := p.SignInFunc(ctx, email, password)
		if err != nil {
			return domainsession.Identity{}, err
		}
		p.Emit(&identity)
		return identity, nil
	}
	identity := domainsession.Identity{SubjectID: "uid-" + email, Email: email, EmailVerified: true}
	p.Emit(&identity)
	return identity, nil
}

// SignOut clears the cached identity and notifies subscribers with a nil
// identity synchronously, the way the real provider adapters do.
func (p *FakeIdentityProvider) SignOut(context.Context) error {
	p.SignOutCalls.Add(1)
	p.Emit(nil)
	return nil
}

func (p *FakeIdentityProvider) CurrentUser() *domainsession.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	cp := *p.current
	return &cp
}

// SetCurrent replaces the cached identity without notifying subscribers.
func (p *FakeIdentityProvider) SetCurrent(identity *domainsession.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = identity
}

// MemoryRecordStore is an in-memory ports.RecordStore with optional scripted
// failures.
type MemoryRecordStore struct {
	mu    sync.Mutex
	rec   domainsession.Record
	found bool

	GetErr   error
	SetErr   error
	ClearErr error
}

// NewMemoryRecordStore creates an empty store.
func NewMemoryRecordStore() *MemoryRecordStore { return &MemoryRecordStore{} }

// Seed places a record in the store, bypassing error scripting.
func (s *MemoryRecordStore) Seed(rec domainsession.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.found = true
}

func (s *MemoryRecordStore) Get(context.Context) (domainsession.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return domainsession.Record{}, false, s.GetErr
	}
	return s.rec, s.found, nil
}

func (s *MemoryRecordStore) Set(_ context.Context, rec domainsession.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.rec = rec
	s.found = true
	return nil
}

func (s *MemoryRecordStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.rec = domainsession.Record{}
	s.found = false
	return nil
}

// Current returns the stored record and whether one exists.
func (s *MemoryRecordStore) Current() (domainsession.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, s.found
}

// StaticLaunchReader yields a fixed bypass token (or none).
type StaticLaunchReader struct {
	Token string
}

func (r StaticLaunchReader) BypassToken() (string, bool) {
	return r.Token, r.Token != ""
}

// FuncPrimaryDirectory adapts a function to ports.PrimaryDirectory and counts
// invocations.
type FuncPrimaryDirectory struct {
	Fn    func(ctx context.Context, uid string) (string, error)
	Calls atomic.Int64
}

func (d *FuncPrimaryDirectory) LookupByUID(ctx context.Context, uid string) (string, error) {
	d.Calls.Add(1)
	if d.Fn == nil {
		return "", apperrors.DirectoryNotFoundf("no mapping for %s", uid)
	}
	return d.Fn(ctx, uid)
}

// FuncSecondaryDirectory adapts a function to ports.SecondaryDirectory and
// counts invocations.
type FuncSecondaryDirectory struct {
	Fn    func(ctx context.Context, email string) (string, error)
	Calls atomic.Int64
}

func (d *FuncSecondaryDirectory) LookupByEmail(ctx context.Context, email string) (string, error) {
	d.Calls.Add(1)
	if d.Fn == nil {
		return "", apperrors.DirectoryNotFoundf("no mapping for %s", email)
	}
	return d.Fn(ctx, email)
}

// RecordingNotifier captures denied/pending notifications for assertions.
type RecordingNotifier struct {
	mu      sync.Mutex
	denied  []error
	pending []error
}

func (n *RecordingNotifier) SessionDenied(_ context.Context, cause error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.denied = append(n.denied, cause)
}

func (n *RecordingNotifier) SessionPending(_ context.Context, cause error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, cause)
}

// Denied returns captured denial causes.
func (n *RecordingNotifier) Denied() []error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]error(nil), n.denied...)
}

// Pending returns captured pending causes.
func (n *RecordingNotifier) Pending() []error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]error(nil), n.pending...)
}
