package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func staticLookup(record RemoteRecord, err error) LookupFunc {
	return func(ctx context.Context, id string) (RemoteRecord, error) {
		return record, err
	}
}

func TestDecideTruthTable(t *testing.T) {
	tests := []struct {
		state GateState
		want  Decision
	}{
		{GateState{RemoteVerified: true, LocalValid: true}, Entering},
		{GateState{RemoteVerified: true, LocalValid: false}, Finalizing},
		{GateState{RemoteVerified: false, LocalValid: true}, NeedsVerification},
		{GateState{RemoteVerified: false, LocalValid: false}, NeedsVerification},
	}
	for _, tt := range tests {
		if got := Decide(tt.state); got != tt.want {
			t.Errorf("Decide(%+v) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestLocalValid(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"unexpired grant", map[string]string{KeyValidToken: "true", KeyValidTokenExpiration: millis(now.Add(time.Hour))}, true},
		{"expired one millisecond ago", map[string]string{KeyValidToken: "true", KeyValidTokenExpiration: millis(now.Add(-time.Millisecond))}, false},
		{"expiring right now", map[string]string{KeyValidToken: "true", KeyValidTokenExpiration: millis(now)}, false},
		{"flag not true", map[string]string{KeyValidToken: "false", KeyValidTokenExpiration: millis(now.Add(time.Hour))}, false},
		{"missing expiration", map[string]string{KeyValidToken: "true"}, false},
		{"garbage expiration", map[string]string{KeyValidToken: "true", KeyValidTokenExpiration: "soon"}, false},
		{"empty store", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocalValid(NewMemoryStore(tt.values), now); got != tt.want {
				t.Errorf("LocalValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrantLocalTokenShouldBeValidUntilExpiry(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(nil)

	expiresAt := GrantLocalToken(store, now, time.Hour)

	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", expiresAt)
	}
	if !LocalValid(store, now.Add(59*time.Minute)) {
		t.Error("expected grant to be valid before expiry")
	}
	if LocalValid(store, now.Add(time.Hour)) {
		t.Error("expected grant to be invalid at expiry")
	}
}

func TestReconcileShouldRequireExistsAndTokenVerified(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	grant := map[string]string{KeyValidToken: "true", KeyValidTokenExpiration: millis(now.Add(time.Hour))}

	tests := []struct {
		name   string
		record RemoteRecord
		want   GateState
	}{
		{"verified", RemoteRecord{Exists: true, TokenVerified: true}, GateState{RemoteVerified: true, LocalValid: true}},
		{"exists only", RemoteRecord{Exists: true}, GateState{LocalValid: true}},
		{"verified flag without record", RemoteRecord{TokenVerified: true}, GateState{LocalValid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconciler(staticLookup(tt.record, nil), NewMemoryStore(grant))
			r.SetClock(fixedClock(now))
			if got := r.Reconcile(context.Background(), "abc"); got != tt.want {
				t.Errorf("Reconcile = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReconcileLookupFailureShouldFailClosed(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(map[string]string{
		KeyValidToken:           "true",
		KeyValidTokenExpiration: millis(now.Add(time.Hour)),
	})
	r := NewReconciler(staticLookup(RemoteRecord{Exists: true, TokenVerified: true}, errors.New("malformed body")), store)
	r.SetClock(fixedClock(now))

	state := r.Reconcile(context.Background(), "abc")

	if state != (GateState{}) {
		t.Errorf("expected zero state, got %+v", state)
	}
	if Decide(state) != NeedsVerification {
		t.Errorf("expected NeedsVerification, got %v", Decide(state))
	}
}

func TestReconcileShouldPassIDToLookup(t *testing.T) {
	var got string
	lookup := LookupFunc(func(ctx context.Context, id string) (RemoteRecord, error) {
		got = id
		return RemoteRecord{}, nil
	})
	NewReconciler(lookup, NewMemoryStore(nil)).Reconcile(context.Background(), "a/b c")
	if got != "a/b c" {
		t.Errorf("expected raw id to reach lookup, got %q", got)
	}
}
