package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
)

var allRoles = []domain.Role{domain.RoleClient, domain.RoleAdmin, domain.RoleDeveloper}

func TestAuthorize_RankOrdering(t *testing.T) {
	ctx := context.Background()
	for _, held := range allRoles {
		for _, required := range allRoles {
			sess, _ := newTestSession("sid")
			_ = sess.Establish(ctx, "tok", domain.Identity{ID: "u", Role: held})

			want := Sufficient
			if domain.Rank(held) < domain.Rank(required) {
				want = Insufficient
			}
			if got := Authorize(ctx, sess, required); got != want {
				t.Errorf("%s requiring %s: expected %s, got %s", held, required, want, got)
			}
		}
	}
}

func TestHasRole_Reflexive(t *testing.T) {
	ctx := context.Background()
	for _, r := range allRoles {
		sess, _ := newTestSession("sid")
		_ = sess.Establish(ctx, "tok", domain.Identity{ID: "u", Role: r})
		if !sess.HasRole(ctx, r) {
			t.Errorf("%s should satisfy itself", r)
		}
	}
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	ctx := context.Background()

	if got := Authorize(ctx, nil, domain.RoleClient); got != Unauthenticated {
		t.Fatalf("nil session: expected unauthenticated, got %s", got)
	}

	sess, store := newTestSession("sid")
	if got := Authorize(ctx, sess, domain.RoleClient); got != Unauthenticated {
		t.Fatalf("empty session: expected unauthenticated, got %s", got)
	}

	// token without a readable identity
	_ = store.SessionStore.Set(ctx, map[string]string{SessionKey("sid", TokenKey): "tok"}, 0)
	if got := Authorize(ctx, sess, domain.RoleClient); got != Unauthenticated {
		t.Fatalf("token only: expected unauthenticated, got %s", got)
	}
}

func TestGuard_EvaluateRedirects(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(zerolog.Nop())
	sess, _ := newTestSession("sid")
	_ = sess.Establish(ctx, "tok", domain.Identity{ID: "u", Role: domain.RoleClient})

	if d := guard.Evaluate(ctx, sess, domain.RoleDeveloper); d.Redirect() != "/" {
		t.Fatalf("expected redirect to /, got %q", d.Redirect())
	}
	if d := guard.Evaluate(ctx, sess, ""); d.Redirect() != "" {
		t.Fatalf("empty requirement defaults to client, got %s", d)
	}
	_ = sess.Logout(ctx)
	if d := guard.Evaluate(ctx, sess, domain.RoleClient); d.Redirect() != "/login" {
		t.Fatalf("expected redirect to /login, got %q", d.Redirect())
	}
}
