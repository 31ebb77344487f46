package service

import (
	"sync"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
)

// StatePublisher holds the current EngineState and notifies subscribers
// synchronously on every transition. There is no debouncing: intermediate
// states (Resolving while a race is in flight) are visible to subscribers;
// the navigation shell treats them as a loading condition.
type StatePublisher struct {
	mu    sync.Mutex
	state domainsession.EngineState
	subs  map[int]func(domainsession.EngineState)
	next  int
}

// NewStatePublisher creates a publisher in the Resolving state.
func NewStatePublisher() *StatePublisher {
	return &StatePublisher{
		state: domainsession.Resolving(),
		subs:  make(map[int]func(domainsession.EngineState)),
	}
}

// Current returns the last published state.
func (p *StatePublisher) Current() domainsession.EngineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers a callback invoked synchronously on every transition,
// starting with the current state. The returned function cancels the
// subscription. Callbacks must not invoke engine operations synchronously.
func (p *StatePublisher) Subscribe(fn func(domainsession.EngineState)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	current := p.state
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Publish records the new state and notifies subscribers. Notification runs
// outside the publisher lock so callbacks may read Current.
func (p *StatePublisher) Publish(state domainsession.EngineState) {
	p.mu.Lock()
	p.state = state
	fns := make([]func(domainsession.EngineState), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
