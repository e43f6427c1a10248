package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/api/metrics"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/service"
)

// RequireRole lets the request through only when the session's role ranks at
// least as high as required. Otherwise it redirects: to /login without a
// usable session, to / when the role is too low.
func RequireRole(guard *service.Guard, required domain.Role) echo.MiddlewareFunc {
	label := string(required)
	if label == "" {
		label = string(domain.RoleClient)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Evaluate(c.Request().Context(), FromContext(c), required)
			metrics.GuardDecisionsTotal.WithLabelValues(label, d.String()).Inc()

			if target := d.Redirect(); target != "" {
				return c.Redirect(http.StatusSeeOther, target)
			}
			return next(c)
		}
	}
}
