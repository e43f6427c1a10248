package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/api/middleware"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/core/service"
	"github.com/cascadeforum/portal/internal/infrastructure/backend"
)

const maxPageLimit = 100

// ctxSession returns the caller's session. Guarded routes always have one;
// a missing session means the middleware chain is miswired.
func ctxSession(c echo.Context) (*service.Session, error) {
	sess := middleware.FromContext(c)
	if sess == nil || sess.ID() == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

// ctxPrefill builds the widget's contact prefill from the cached identity.
func ctxPrefill(c echo.Context) *domain.CheckoutPrefill {
	sess := middleware.FromContext(c)
	if sess == nil {
		return nil
	}
	identity, ok := sess.CurrentIdentity(c.Request().Context())
	if !ok {
		return nil
	}
	return &domain.CheckoutPrefill{Name: identity.FullName, Email: identity.Email}
}

// pageParam reads ?skip=&limit=. Invalid values fall back to the defaults.
func pageParam(c echo.Context, defaultLimit int) ports.Page {
	p := ports.Page{Limit: defaultLimit}
	if v, err := strconv.Atoi(c.QueryParam("skip")); err == nil && v > 0 {
		p.Skip = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// backendFailure turns a failed backend call into the response the caller
// sees: the backend's own message when it sent one, fallback otherwise.
// Rejected sessions pass through untouched for the global error handler.
func backendFailure(err error, fallback string) error {
	if errors.Is(err, domain.ErrAuthRejected) {
		return err
	}
	if apiErr, ok := backend.IsAPIError(err); ok {
		status := apiErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		return echo.NewHTTPError(status, service.MessageOr(err, fallback))
	}
	if errors.Is(err, domain.ErrBackendUnavailable) {
		return echo.NewHTTPError(http.StatusBadGateway, fallback)
	}
	return err
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
