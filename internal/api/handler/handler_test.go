package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/api/middleware"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/service"
	"github.com/cascadeforum/portal/internal/infrastructure/db/memory"
)

// testEnv is an echo instance with sessions backed by memory.
type testEnv struct {
	e        *echo.Echo
	store    *memory.SessionStore
	sessions *middleware.Sessions
}

func newTestEnv() *testEnv {
	e := echo.New()
	e.Validator = NewValidator()
	store := memory.NewSessionStore()
	return &testEnv{
		e:        e,
		store:    store,
		sessions: middleware.NewSessions(store, middleware.CookieConfig{Name: "cf_session"}, time.Hour, zerolog.Nop()),
	}
}

// login seeds an established session and returns its id.
func (env *testEnv) login(t *testing.T, identity domain.Identity) string {
	t.Helper()
	sess := env.sessions.New()
	if err := sess.Establish(context.Background(), "tok", identity); err != nil {
		t.Fatalf("establish: %v", err)
	}
	return sess.ID()
}

// call runs h behind the session middleware and returns the recorder and
// whatever error h returned.
func (env *testEnv) call(method, target, body, sessionID string, h echo.HandlerFunc, params ...string) (*httptest.ResponseRecorder, echo.Context, error) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "cf_session", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	err := env.sessions.Middleware()(h)(c)
	return rec, c, err
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func sessionFor(env *testEnv, id string) *service.Session {
	return service.NewSession(env.store, id, time.Hour, zerolog.Nop())
}
