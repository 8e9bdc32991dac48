package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cinematalkiez/blackhole/internal/database"
	"github.com/cinematalkiez/blackhole/internal/gate"
	"github.com/cinematalkiez/blackhole/internal/repository"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/cinematalkiez/blackhole/pkg/auth"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db            *gorm.DB
	jwt           *auth.JWTManager
	browser       BrowserStorage
	verifications *service.VerificationService
	movies        *service.MovieService
	gate          *gate.Gate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite("file:h_" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	jm := auth.NewJWTManager("test-secret", time.Hour)
	verifications := service.NewVerificationService(repository.NewVerificationRepository(db), nil, 0, nil)
	verifications.SetClock(func() time.Time { return testNow })

	g := gate.New(verifications, nil)
	g.SetClock(func() time.Time { return testNow })

	return &testEnv{
		db:            db,
		jwt:           jm,
		browser:       BrowserStorage{Codec: jm, Options: gate.CookieOptions{Name: gate.DefaultCookieName}},
		verifications: verifications,
		movies:        service.NewMovieService(repository.NewMovieRepository(db), nil, nil),
		gate:          g,
	}
}

// storageCookie builds the browser storage cookie holding values
func (e *testEnv) storageCookie(t *testing.T, values map[string]string) *http.Cookie {
	t.Helper()
	token, err := e.jwt.SignStorage(values)
	if err != nil {
		t.Fatalf("sign storage: %v", err)
	}
	return &http.Cookie{Name: gate.DefaultCookieName, Value: token}
}

// storageFrom decodes the storage cookie set on a response
func (e *testEnv) storageFrom(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == gate.DefaultCookieName {
			values, err := e.jwt.ParseStorage(c.Value)
			if err != nil {
				t.Fatalf("parse storage cookie: %v", err)
			}
			return values
		}
	}
	return nil
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func (e *testEnv) serviceToken(t *testing.T, scope string) string {
	t.Helper()
	token, err := e.jwt.GenerateServiceToken("test", scope)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

type noRevocations struct{}

func (noRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
