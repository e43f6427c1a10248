package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/api/metrics"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/core/service"
)

const sessionContextKey = "session"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Sessions binds the session cookie to a service.Session for every request.
type Sessions struct {
	store  ports.SessionStore
	cookie CookieConfig
	ttl    time.Duration
	log    zerolog.Logger
}

func NewSessions(store ports.SessionStore, cookie CookieConfig, ttl time.Duration, log zerolog.Logger) *Sessions {
	if cookie.Name == "" {
		cookie.Name = "cf_session"
	}
	return &Sessions{store: store, cookie: cookie, ttl: ttl, log: log}
}

// Middleware loads the caller's session and attaches its token to the
// request context so backend calls are made on the caller's behalf.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if ck, err := c.Cookie(s.cookie.Name); err == nil {
				id = ck.Value
			}

			sess := service.NewSession(s.store, id, s.ttl, s.log)
			c.Set(sessionContextKey, sess)

			req := c.Request()
			if token := sess.Token(req.Context()); token != "" {
				c.SetRequest(req.WithContext(ports.ContextWithToken(req.Context(), token)))
			}
			return next(c)
		}
	}
}

// New returns a session under a fresh id. Nothing is stored or sent until
// the caller establishes it and calls Issue.
func (s *Sessions) New() *service.Session {
	return service.NewSession(s.store, uuid.NewString(), s.ttl, s.log)
}

// Issue installs fresh as the caller's session. The previous one is cleared
// and the cookie now carries fresh's id.
func (s *Sessions) Issue(c echo.Context, fresh *service.Session) {
	if prev := FromContext(c); prev != nil && prev.ID() != "" && prev.ID() != fresh.ID() {
		if err := prev.Logout(c.Request().Context()); err != nil {
			s.log.Warn().Err(err).Msg("could not clear previous session")
		}
	}
	c.Set(sessionContextKey, fresh)
	c.SetCookie(&http.Cookie{
		Name:     s.cookie.Name,
		Value:    fresh.ID(),
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
}

// End logs the caller out and expires the cookie. reason labels the metric.
func (s *Sessions) End(c echo.Context, reason string) {
	if sess := FromContext(c); sess != nil {
		if err := sess.Logout(c.Request().Context()); err != nil {
			s.log.Warn().Err(err).Msg("could not clear session")
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.SessionEventsTotal.WithLabelValues(reason).Inc()
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(c echo.Context) *service.Session {
	sess, _ := c.Get(sessionContextKey).(*service.Session)
	return sess
}
