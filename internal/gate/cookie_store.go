package gate

import (
	"net/http"
	"sync"
	"time"
)

// DefaultCookieName is the cookie holding a browser's Store
const DefaultCookieName = "bh_storage"

const cookieLifetime = 365 * 24 * time.Hour

// Codec signs and verifies the cookie payload
type Codec interface {
	SignStorage(values map[string]string) (string, error)
	ParseStorage(token string) (map[string]string, error)
}

// CookieOptions controls how the storage cookie is written
type CookieOptions struct {
	Name   string
	Secure bool
}

// CookieStore is a Store persisted in a single signed cookie. Changes are
// held in memory until Flush.
type CookieStore struct {
	mu     sync.Mutex
	codec  Codec
	opts   CookieOptions
	values map[string]string
	dirty  bool
}

// LoadCookieStore reads the storage cookie from r. A missing or invalid
// cookie yields an empty store.
func LoadCookieStore(r *http.Request, codec Codec, opts CookieOptions) *CookieStore {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	s := &CookieStore{codec: codec, opts: opts, values: map[string]string{}}

	cookie, err := r.Cookie(opts.Name)
	if err != nil || cookie.Value == "" {
		return s
	}
	values, err := codec.ParseStorage(cookie.Value)
	if err != nil {
		// Tampered or signed with another key: start over.
		s.dirty = true
		return s
	}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *CookieStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *CookieStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.values[key]; ok && cur == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

func (s *CookieStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
	s.dirty = true
}

// Dirty reports whether the store has unflushed changes
func (s *CookieStore) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush writes the cookie if anything changed. Must run before the response
// body is written.
func (s *CookieStore) Flush(w http.ResponseWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	token, err := s.codec.SignStorage(s.values)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieLifetime / time.Second),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.dirty = false
	return nil
}
