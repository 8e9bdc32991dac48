package gate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Gate runs the landing flow: identity first, then one verification lookup.
type Gate struct {
	lookup   Lookup
	maxAge   time.Duration
	now      func() time.Time
	newID    func() string
	log      *zap.Logger
	observer func(DeviceIdentity, Decision)
}

// New creates a Gate backed by lookup
func New(lookup Lookup, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		lookup: lookup,
		maxAge: MaxAge,
		now:    time.Now,
		newID:  NewDeviceID,
		log:    log,
	}
}

func (g *Gate) SetClock(now func() time.Time)   { g.now = now }
func (g *Gate) SetIDGenerator(gen func() string) { g.newID = gen }
func (g *Gate) SetMaxAge(d time.Duration)        { g.maxAge = d }

// SetObserver registers a callback invoked once per resolved flow
func (g *Gate) SetObserver(fn func(DeviceIdentity, Decision)) { g.observer = fn }

// Now returns the gate's current time
func (g *Gate) Now() time.Time { return g.now() }

// Identities returns an identity manager over store configured like the gate
func (g *Gate) Identities(store Store) *IdentityManager {
	m := NewIdentityManager(store)
	m.SetClock(g.now)
	m.SetIDGenerator(g.newID)
	m.SetMaxAge(g.maxAge)
	m.SetLogger(g.log)
	return m
}

// Mount ensures the device identity synchronously and starts the remote
// lookup in the background. The identity is written to store before the
// lookup starts.
func (g *Gate) Mount(ctx context.Context, store Store) *Flow {
	identity := g.Identities(store).EnsureDeviceIdentity()

	rec := NewReconciler(g.lookup, store)
	rec.SetClock(g.now)
	rec.SetLogger(g.log)

	fctx, cancel := context.WithCancel(ctx)
	f := &Flow{
		identity: identity,
		ctx:      fctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go f.run(rec, g.observer)
	return f
}

// Flow is one mounted landing page. It stays Loading until the lookup
// resolves; a result arriving after Unmount is dropped.
type Flow struct {
	identity DeviceIdentity
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	mu       sync.Mutex
	state    GateState
	decision Decision
}

func (f *Flow) run(rec *Reconciler, observer func(DeviceIdentity, Decision)) {
	state := rec.Reconcile(f.ctx, f.identity.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ctx.Err() != nil {
		return
	}
	f.state = state
	f.decision = Decide(state)
	if observer != nil {
		observer(f.identity, f.decision)
	}
	close(f.done)
}

// Identity returns the device identity ensured at mount
func (f *Flow) Identity() DeviceIdentity { return f.identity }

// Decision returns Loading until the lookup has resolved
func (f *Flow) Decision() Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decision
}

// State returns the reconciled state and whether it is available yet
func (f *Flow) State() (GateState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.done:
		return f.state, true
	default:
		return GateState{}, false
	}
}

// Wait blocks until the flow resolves, ctx ends or the flow is unmounted.
// While unresolved it returns Loading with the ending context's error.
func (f *Flow) Wait(ctx context.Context) (Decision, error) {
	select {
	case <-f.done:
		return f.Decision(), nil
	case <-ctx.Done():
		if d, ok := f.resolved(); ok {
			return d, nil
		}
		return Loading, ctx.Err()
	case <-f.ctx.Done():
		if d, ok := f.resolved(); ok {
			return d, nil
		}
		return Loading, f.ctx.Err()
	}
}

func (f *Flow) resolved() (Decision, bool) {
	select {
	case <-f.done:
		return f.Decision(), true
	default:
		return Loading, false
	}
}

// Unmount cancels the outstanding lookup. Safe to call more than once.
func (f *Flow) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancel()
}
