package domain

import "testing"

var allRoles = []Role{RoleClient, RoleAdmin, RoleDeveloper}

func TestRank_Order(t *testing.T) {
	if !(Rank(RoleClient) < Rank(RoleAdmin) && Rank(RoleAdmin) < Rank(RoleDeveloper)) {
		t.Fatalf("expected client < admin < developer, got %d %d %d",
			Rank(RoleClient), Rank(RoleAdmin), Rank(RoleDeveloper))
	}
	if Rank(Role("guest")) != 0 {
		t.Fatalf("expected unknown role to rank 0")
	}
}

func TestSatisfies_LowerRankRejected(t *testing.T) {
	for _, have := range allRoles {
		for _, want := range allRoles {
			if Rank(have) < Rank(want) && have.Satisfies(want) {
				t.Errorf("%s must not satisfy %s", have, want)
			}
			if Rank(have) >= Rank(want) && !have.Satisfies(want) {
				t.Errorf("%s should satisfy %s", have, want)
			}
		}
	}
}

func TestSatisfies_Reflexive(t *testing.T) {
	for _, r := range allRoles {
		if !r.Satisfies(r) {
			t.Errorf("%s should satisfy itself", r)
		}
	}
}

func TestSatisfies_DefaultsToClient(t *testing.T) {
	if !RoleClient.Satisfies("") {
		t.Fatalf("empty requirement should default to client")
	}
	if Role("").Satisfies("") {
		t.Fatalf("empty role must not satisfy anything")
	}
	if Role("superuser").Satisfies(RoleClient) {
		t.Fatalf("unknown role must not satisfy anything")
	}
}

func TestLanding(t *testing.T) {
	cases := map[Role]string{
		RoleDeveloper: "/developer/dashboard",
		RoleAdmin:     "/admin/dashboard",
		RoleClient:    "/events",
	}
	for role, want := range cases {
		if got := role.Landing(); got != want {
			t.Errorf("%s: expected %s, got %s", role, want, got)
		}
	}
}
