package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinematalkiez/blackhole/pkg/auth"
)

func roundTrip(t *testing.T, codec Codec, cookies []*http.Cookie) *CookieStore {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return LoadCookieStore(req, codec, CookieOptions{})
}

func TestCookieStoreShouldPersistAcrossRequests(t *testing.T) {
	codec := auth.NewJWTManager("test-secret", time.Hour)

	first := roundTrip(t, codec, nil)
	first.Set(KeyUserID, "abc")
	first.Set(KeyCreatedAt, "1700000000000")
	rec := httptest.NewRecorder()
	if err := first.Flush(rec); err != nil {
		t.Fatalf("flush: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != DefaultCookieName {
		t.Fatalf("expected one %s cookie, got %v", DefaultCookieName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("expected HttpOnly cookie")
	}

	second := roundTrip(t, codec, cookies)
	if v, _ := second.Get(KeyUserID); v != "abc" {
		t.Errorf("expected userId abc, got %q", v)
	}
	if second.Dirty() {
		t.Error("freshly loaded store must not be dirty")
	}
}

func TestCookieStoreFlushShouldSkipUnchangedStore(t *testing.T) {
	codec := auth.NewJWTManager("test-secret", time.Hour)
	store := roundTrip(t, codec, nil)

	rec := httptest.NewRecorder()
	if err := store.Flush(rec); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("expected no cookie for an untouched store")
	}
}

func TestCookieStoreTamperedCookieShouldReadAsEmpty(t *testing.T) {
	codec := auth.NewJWTManager("test-secret", time.Hour)
	forged, err := auth.NewJWTManager("other-secret", time.Hour).SignStorage(map[string]string{
		KeyValidToken: "true",
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	store := roundTrip(t, codec, []*http.Cookie{{Name: DefaultCookieName, Value: forged}})

	if _, ok := store.Get(KeyValidToken); ok {
		t.Error("forged grant must not be readable")
	}
	if !store.Dirty() {
		t.Error("expected tampered store to be rewritten on flush")
	}
}

func TestCookieStoreClearShouldWipeEverything(t *testing.T) {
	codec := auth.NewJWTManager("test-secret", time.Hour)
	store := roundTrip(t, codec, nil)
	store.Set(KeyUserID, "abc")
	store.Set("somethingElse", "1")

	store.Clear()

	for _, key := range []string{KeyUserID, "somethingElse"} {
		if _, ok := store.Get(key); ok {
			t.Errorf("expected %s to be cleared", key)
		}
	}
}
