package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
)

// Decision is the outcome of guarding a route.
type Decision int

const (
	Unauthenticated Decision = iota
	Insufficient
	Sufficient
)

func (d Decision) String() string {
	switch d {
	case Unauthenticated:
		return "unauthenticated"
	case Insufficient:
		return "insufficient"
	case Sufficient:
		return "sufficient"
	default:
		return "unknown"
	}
}

// Redirect returns where the caller is sent, or "" when the route may render.
func (d Decision) Redirect() string {
	switch d {
	case Unauthenticated:
		return "/login"
	case Insufficient:
		return "/"
	default:
		return ""
	}
}

// Guard evaluates route requirements against a session.
type Guard struct {
	log zerolog.Logger
}

func NewGuard(log zerolog.Logger) *Guard {
	return &Guard{log: log}
}

// Evaluate returns the decision for a route requiring role.
func (g *Guard) Evaluate(ctx context.Context, sess *Session, required domain.Role) Decision {
	d := Authorize(ctx, sess, required)
	if d != Sufficient {
		g.log.Debug().
			Str("required", string(required)).
			Str("decision", d.String()).
			Msg("route guarded")
	}
	return d
}

// Authorize decides whether the session may view a route requiring the given
// role. It is a convenience for the portal's own routes; the backend enforces
// authorization independently.
func Authorize(ctx context.Context, sess *Session, required domain.Role) Decision {
	if sess == nil || !sess.IsAuthenticated(ctx) {
		return Unauthenticated
	}
	identity, ok := sess.CurrentIdentity(ctx)
	if !ok {
		return Unauthenticated
	}
	if !identity.Role.Satisfies(required) {
		return Insufficient
	}
	return Sufficient
}
