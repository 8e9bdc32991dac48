package gate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RemoteRecord is what the verification store knows about a device id
type RemoteRecord struct {
	Exists        bool
	TokenVerified bool
}

// Lookup queries the verification store for a device id
type Lookup interface {
	Check(ctx context.Context, id string) (RemoteRecord, error)
}

// LookupFunc adapts a plain function to Lookup
type LookupFunc func(ctx context.Context, id string) (RemoteRecord, error)

func (f LookupFunc) Check(ctx context.Context, id string) (RemoteRecord, error) {
	return f(ctx, id)
}

// GateState combines the remote, durable verification flag with the local,
// short-lived grant. Both must hold for full trust.
type GateState struct {
	RemoteVerified bool
	LocalValid     bool
}

// LocalValid reports whether the store carries an unexpired local grant
func LocalValid(store Store, now time.Time) bool {
	if v, _ := store.Get(KeyValidToken); v != "true" {
		return false
	}
	raw, ok := store.Get(KeyValidTokenExpiration)
	if !ok {
		return false
	}
	expiresAt, err := parseMillis(raw)
	if err != nil {
		return false
	}
	return now.Before(expiresAt)
}

// GrantLocalToken writes a local grant valid for ttl from now
func GrantLocalToken(store Store, now time.Time, ttl time.Duration) time.Time {
	expiresAt := now.Add(ttl)
	store.Set(KeyValidToken, "true")
	store.Set(KeyValidTokenExpiration, formatMillis(expiresAt))
	return expiresAt
}

// Reconciler turns one remote lookup plus the local grant into a GateState
type Reconciler struct {
	lookup Lookup
	store  Store
	now    func() time.Time
	log    *zap.Logger
}

func NewReconciler(lookup Lookup, store Store) *Reconciler {
	return &Reconciler{
		lookup: lookup,
		store:  store,
		now:    time.Now,
		log:    zap.NewNop(),
	}
}

func (r *Reconciler) SetClock(now func() time.Time) { r.now = now }
func (r *Reconciler) SetLogger(l *zap.Logger)        { r.log = l }

// Reconcile performs a single lookup for id. Any lookup failure yields the
// zero GateState.
func (r *Reconciler) Reconcile(ctx context.Context, id string) GateState {
	record, err := r.lookup.Check(ctx, id)
	if err != nil {
		r.log.Warn("verification lookup failed", zap.String("user_id", id), zap.Error(err))
		return GateState{}
	}

	state := GateState{
		RemoteVerified: record.Exists && record.TokenVerified,
		LocalValid:     LocalValid(r.store, r.now()),
	}
	r.log.Debug("verification reconciled",
		zap.String("user_id", id),
		zap.Bool("remote_verified", state.RemoteVerified),
		zap.Bool("local_valid", state.LocalValid))
	return state
}
