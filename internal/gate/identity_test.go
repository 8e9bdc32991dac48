package gate

import (
	"regexp"
	"strconv"
	"testing"
	"time"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// recordingStore logs every mutation in order
type recordingStore struct {
	*MemoryStore
	ops []string
}

func newRecordingStore(values map[string]string) *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore(values)}
}

func (s *recordingStore) Set(key, value string) {
	s.ops = append(s.ops, "set:"+key)
	s.MemoryStore.Set(key, value)
}

func (s *recordingStore) Clear() {
	s.ops = append(s.ops, "clear")
	s.MemoryStore.Clear()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func TestEnsureDeviceIdentityFreshStoreShouldIssueAndPersist(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(nil)
	m := NewIdentityManager(store)
	m.SetClock(fixedClock(now))

	identity := m.EnsureDeviceIdentity()

	if !uuidV4Pattern.MatchString(identity.ID) {
		t.Fatalf("expected v4 uuid, got %q", identity.ID)
	}
	if got, _ := store.Get(KeyUserID); got != identity.ID {
		t.Errorf("expected persisted userId %q, got %q", identity.ID, got)
	}
	if got, _ := store.Get(KeyCreatedAt); got != millis(now) {
		t.Errorf("expected persisted createdAt %q, got %q", millis(now), got)
	}
	if !identity.CreatedAt.Equal(now) {
		t.Errorf("expected createdAt %v, got %v", now, identity.CreatedAt)
	}
}

func TestEnsureDeviceIdentityWithinMaxAgeShouldBeStable(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(nil)
	m := NewIdentityManager(store)
	m.SetClock(fixedClock(start))
	first := m.EnsureDeviceIdentity()

	for _, elapsed := range []time.Duration{0, time.Minute, 23 * time.Hour, MaxAge} {
		m.SetClock(fixedClock(start.Add(elapsed)))
		again := m.EnsureDeviceIdentity()
		if again.ID != first.ID {
			t.Errorf("after %v: expected id %q, got %q", elapsed, first.ID, again.ID)
		}
		if !again.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("after %v: createdAt changed", elapsed)
		}
	}
}

func TestEnsureDeviceIdentityExpiredShouldClearAllKeysBeforeIssuing(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	createdAt := now.Add(-MaxAge - time.Millisecond)
	store := newRecordingStore(map[string]string{
		KeyUserID:               "old-id",
		KeyCreatedAt:            millis(createdAt),
		KeyValidToken:           "true",
		KeyValidTokenExpiration: millis(now.Add(time.Hour)),
	})
	m := NewIdentityManager(store)
	m.SetClock(fixedClock(now))
	m.SetIDGenerator(func() string { return "new-id" })

	identity := m.EnsureDeviceIdentity()

	if identity.ID != "new-id" {
		t.Fatalf("expected new id, got %q", identity.ID)
	}
	want := []string{"clear", "set:" + KeyUserID, "set:" + KeyCreatedAt}
	if len(store.ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, store.ops)
	}
	for i := range want {
		if store.ops[i] != want[i] {
			t.Fatalf("expected ops %v, got %v", want, store.ops)
		}
	}
	for _, key := range []string{KeyValidToken, KeyValidTokenExpiration} {
		if _, ok := store.Get(key); ok {
			t.Errorf("expected %s to be wiped", key)
		}
	}
}

func TestEnsureDeviceIdentityNegativeAgeShouldNotExpire(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store := NewMemoryStore(map[string]string{
		KeyUserID:    "abc",
		KeyCreatedAt: millis(now.Add(time.Hour)),
	})
	m := NewIdentityManager(store)
	m.SetClock(fixedClock(now))

	if got := m.EnsureDeviceIdentity(); got.ID != "abc" {
		t.Errorf("expected id to survive clock skew, got %q", got.ID)
	}
}

func TestEnsureDeviceIdentityPartialStateShouldReset(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"id without createdAt", map[string]string{KeyUserID: "abc", KeyValidToken: "true"}},
		{"createdAt without id", map[string]string{KeyCreatedAt: millis(now), KeyValidToken: "true"}},
		{"empty id", map[string]string{KeyUserID: "", KeyCreatedAt: millis(now), KeyValidToken: "true"}},
		{"unreadable createdAt", map[string]string{KeyUserID: "abc", KeyCreatedAt: "yesterday", KeyValidToken: "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newRecordingStore(tt.values)
			m := NewIdentityManager(store)
			m.SetClock(fixedClock(now))
			m.SetIDGenerator(func() string { return "fresh" })

			identity := m.EnsureDeviceIdentity()

			if identity.ID != "fresh" {
				t.Errorf("expected fresh id, got %q", identity.ID)
			}
			if len(store.ops) == 0 || store.ops[0] != "clear" {
				t.Errorf("expected a clear first, got %v", store.ops)
			}
			if _, ok := store.Get(KeyValidToken); ok {
				t.Error("expected validToken to be wiped")
			}
		})
	}
}

func TestNewDeviceIDShouldMatchVersion4Shape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewDeviceID()
		if !uuidV4Pattern.MatchString(id) {
			t.Fatalf("id %q does not match the v4 pattern", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
