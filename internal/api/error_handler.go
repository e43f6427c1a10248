package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/api/middleware"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/infrastructure/backend"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Ends the session and redirects to /login when the backend rejected the
//     caller's token. This is the only place that happens.
//   - Maps known domain and backend errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, sessions *middleware.Sessions) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrAuthRejected) {
			log.Info().
				Str("path", c.Path()).
				Msg("backend rejected session, logging out")
			sessions.End(c, "rejected")
			_ = c.Redirect(http.StatusSeeOther, "/login")
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ports.ErrFlowNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrVerificationPending):
		return http.StatusConflict, "payment verification already in progress"
	case errors.Is(err, domain.ErrStaleAttempt):
		return http.StatusConflict, "this payment page is out of date, reload it"
	case errors.Is(err, domain.ErrWidgetNotReady):
		return http.StatusConflict, "payment widget is not ready"
	case errors.Is(err, domain.ErrVerificationFailed),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrBackendUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unavailable")
		return http.StatusBadGateway, "service temporarily unavailable"
	}

	// Any other backend answer keeps its status; 5xx become 502.
	if apiErr, ok := backend.IsAPIError(err); ok {
		msg := apiErr.Detail()
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		if apiErr.Status >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("backend error")
			return http.StatusBadGateway, msg
		}
		return apiErr.Status, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
