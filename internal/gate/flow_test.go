package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMountFreshBrowserShouldEndInNeedsVerification(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	release := make(chan struct{})
	var lookedUp string
	lookup := LookupFunc(func(ctx context.Context, id string) (RemoteRecord, error) {
		lookedUp = id
		<-release
		return RemoteRecord{Exists: false, TokenVerified: false}, nil
	})
	g := New(lookup, nil)
	g.SetClock(fixedClock(now))
	store := NewMemoryStore(nil)

	flow := g.Mount(context.Background(), store)
	defer flow.Unmount()

	if d := flow.Decision(); d != Loading {
		t.Fatalf("expected Loading while lookup is in flight, got %v", d)
	}
	id, ok := store.Get(KeyUserID)
	if !ok || id != flow.Identity().ID {
		t.Fatalf("expected identity persisted before lookup, got %q", id)
	}
	if got, _ := store.Get(KeyCreatedAt); got != millis(now) {
		t.Errorf("expected createdAt %q, got %q", millis(now), got)
	}

	close(release)
	decision, err := flow.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if decision != NeedsVerification {
		t.Errorf("expected NeedsVerification, got %v", decision)
	}
	if lookedUp != id {
		t.Errorf("expected lookup for %q, got %q", id, lookedUp)
	}
}

func TestMountVerifiedBrowserWithGrantShouldEnter(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(map[string]string{
		KeyUserID:               "abc",
		KeyCreatedAt:            millis(now.Add(-time.Hour)),
		KeyValidToken:           "true",
		KeyValidTokenExpiration: millis(now.Add(time.Hour)),
	})
	lookup := LookupFunc(func(ctx context.Context, id string) (RemoteRecord, error) {
		if id != "abc" {
			return RemoteRecord{}, errors.New("unknown id")
		}
		return RemoteRecord{Exists: true, TokenVerified: true}, nil
	})
	g := New(lookup, nil)
	g.SetClock(fixedClock(now))

	var observed Decision
	g.SetObserver(func(_ DeviceIdentity, d Decision) { observed = d })

	flow := g.Mount(context.Background(), store)
	decision, err := flow.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if decision != Entering {
		t.Errorf("expected Entering, got %v", decision)
	}
	if flow.Identity().ID != "abc" {
		t.Errorf("expected existing identity, got %q", flow.Identity().ID)
	}
	state, ok := flow.State()
	if !ok || !state.RemoteVerified || !state.LocalValid {
		t.Errorf("unexpected state %+v (resolved=%v)", state, ok)
	}
	if observed != Entering {
		t.Errorf("expected observer to see Entering, got %v", observed)
	}
}

func TestMountLookupErrorShouldFailClosedRegardlessOfGrant(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(map[string]string{
		KeyUserID:               "abc",
		KeyCreatedAt:            millis(now),
		KeyValidToken:           "true",
		KeyValidTokenExpiration: millis(now.Add(time.Hour)),
	})
	g := New(staticLookup(RemoteRecord{}, errors.New("connection refused")), nil)
	g.SetClock(fixedClock(now))

	decision, err := g.Mount(context.Background(), store).Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if decision != NeedsVerification {
		t.Errorf("expected NeedsVerification, got %v", decision)
	}
}

func TestUnmountShouldDiscardLateResult(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	lookup := LookupFunc(func(ctx context.Context, id string) (RemoteRecord, error) {
		defer close(finished)
		<-release
		return RemoteRecord{Exists: true, TokenVerified: true}, nil
	})
	g := New(lookup, nil)
	observed := false
	g.SetObserver(func(DeviceIdentity, Decision) { observed = true })

	flow := g.Mount(context.Background(), NewMemoryStore(nil))
	flow.Unmount()
	close(release)
	<-finished

	decision, err := flow.Wait(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if decision != Loading {
		t.Errorf("expected Loading, got %v", decision)
	}
	// Give the flow goroutine a moment to (not) publish.
	time.Sleep(20 * time.Millisecond)
	if flow.Decision() != Loading {
		t.Errorf("late result leaked: %v", flow.Decision())
	}
	if observed {
		t.Error("observer must not see a discarded result")
	}
	flow.Unmount()
}

func TestWaitShouldReturnLoadingWhenCallerGivesUp(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	lookup := LookupFunc(func(ctx context.Context, id string) (RemoteRecord, error) {
		<-release
		return RemoteRecord{}, nil
	})
	flow := New(lookup, nil).Mount(context.Background(), NewMemoryStore(nil))
	defer flow.Unmount()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	decision, err := flow.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if decision != Loading {
		t.Errorf("expected Loading, got %v", decision)
	}
}
