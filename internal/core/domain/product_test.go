package domain

import "testing"

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Men's Shirt", "mens_shirt"},
		{"mens_white_t_shirt", "mens_white_t_shirt"},
		{"  Kids Hoodie  ", "kids_hoodie"},
		{"UPPER CASE", "upper_case"},
		{"rock'n'roll tee", "rocknroll_tee"},
	}
	for _, tc := range cases {
		if got := NormalizeSlug(tc.in); got != tc.want {
			t.Fatalf("NormalizeSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSlug_Idempotent(t *testing.T) {
	once := NormalizeSlug("Men's Shirt")
	if twice := NormalizeSlug(once); twice != once {
		t.Fatalf("second pass changed slug: %q -> %q", once, twice)
	}
}

func TestEnsureSlug_DerivesFromTitle(t *testing.T) {
	p := &Product{Title: "Men's Chill Crew Neck Sweatshirt"}
	p.EnsureSlug()
	if p.Slug != "mens_chill_crew_neck_sweatshirt" {
		t.Fatalf("unexpected slug: %q", p.Slug)
	}
}

func TestEnsureSlug_KeepsExplicitSlug(t *testing.T) {
	p := &Product{Title: "Some Title", Slug: "Custom Slug"}
	p.EnsureSlug()
	if p.Slug != "custom_slug" {
		t.Fatalf("unexpected slug: %q", p.Slug)
	}
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &User{Roles: []string{RoleUser, RoleAdmin}}
	if !u.HasAnyRole(RoleAdmin, RoleSuperUser) {
		t.Fatalf("expected match on admin")
	}
	if u.HasAnyRole(RoleSuperUser) {
		t.Fatalf("unexpected match on super-user")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@B.com "); got != "a@b.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
