package models

import (
	"slices"
	"testing"
)

func TestDeriveRole(t *testing.T) {
	admin := &AdminProfile{Email: "owner@office.in"}
	cases := []struct {
		name     string
		identity *Identity
		admin    *AdminProfile
		want     Role
	}{
		{"signed out", nil, admin, RoleNone},
		{"admin email", &Identity{Email: "owner@office.in"}, admin, RoleAdmin},
		{"admin email other case", &Identity{Email: "Owner@Office.in"}, admin, RoleAdmin},
		{"other email", &Identity{Email: "staff@office.in"}, admin, RoleEmployee},
		{"no admin configured", &Identity{Email: "owner@office.in"}, nil, RoleEmployee},
	}
	for _, tc := range cases {
		if got := DeriveRole(tc.identity, tc.admin); got != tc.want {
			t.Fatalf("%s: DeriveRole = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCanMutate(t *testing.T) {
	cases := map[Permission]bool{
		PermissionRead:  false,
		PermissionWrite: true,
		PermissionAll:   true,
		"":              false,
		"owner":         false,
	}
	for p, want := range cases {
		if got := CanMutate(p); got != want {
			t.Fatalf("CanMutate(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestComposeActions(t *testing.T) {
	cases := []struct {
		role       Role
		permission Permission
		want       ActionSet
	}{
		{RoleEmployee, PermissionRead, ActionSet{Export: true}},
		{RoleEmployee, PermissionWrite, ActionSet{Create: true, Update: true, Export: true}},
		{RoleEmployee, PermissionAll, ActionSet{Create: true, Update: true, Delete: true, Export: true}},
		{RoleAdmin, "", ActionSet{Create: true, Update: true, Delete: true, Export: true}},
		{RoleNone, PermissionAll, ActionSet{}},
	}
	for _, tc := range cases {
		if got := ComposeActions(tc.role, tc.permission); got != tc.want {
			t.Fatalf("ComposeActions(%q, %q) = %+v, want %+v", tc.role, tc.permission, got, tc.want)
		}
	}
}

func navKeys(items []NavItem) map[string]bool {
	keys := make(map[string]bool)
	for _, it := range items {
		keys[it.Key] = true
		for k := range navKeys(it.Children) {
			keys[k] = true
		}
	}
	return keys
}

func TestComposeNavigation(t *testing.T) {
	admin := navKeys(ComposeNavigation(RoleAdmin))
	employee := navKeys(ComposeNavigation(RoleEmployee))

	for _, k := range []string{"employees", "masters.products", "runsheet", "fd-entries", "clients"} {
		if !admin[k] {
			t.Fatalf("admin navigation misses %q", k)
		}
	}
	for _, k := range []string{"employees", "masters", "masters.products", "runsheet", "executives", "notifications"} {
		if employee[k] {
			t.Fatalf("employee navigation shows %q", k)
		}
	}
	for _, k := range []string{"clients", "insurance", "phone-logs"} {
		if !employee[k] {
			t.Fatalf("employee navigation misses %q", k)
		}
	}
	if len(ComposeNavigation(RoleNone)) != 0 {
		t.Fatalf("signed-out navigation should be empty")
	}
}

func TestComposeNavigation_GroupsTransactions(t *testing.T) {
	tests := []struct {
		role Role
		want []string
	}{
		{RoleAdmin, []string{"postal", "fd-entries", "insurance", "mediclaim", "runsheet", "phone-logs"}},
		{RoleEmployee, []string{"postal", "insurance", "mediclaim", "phone-logs"}},
	}
	for _, tt := range tests {
		var group *NavItem
		nav := ComposeNavigation(tt.role)
		for i := range nav {
			if nav[i].Key == "transactions" {
				group = &nav[i]
			}
			if nav[i].Key == "postal" || nav[i].Key == "fd-entries" {
				t.Fatalf("%s: %q is outside the Transactions group", tt.role, nav[i].Key)
			}
		}
		if group == nil {
			t.Fatalf("%s: no Transactions group", tt.role)
		}
		var got []string
		for _, child := range group.Children {
			got = append(got, child.Key)
		}
		if !slices.Equal(got, tt.want) {
			t.Fatalf("%s: transactions = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestFindNavItem(t *testing.T) {
	item, ok := FindNavItem("masters.locations")
	if !ok || item.Href != "/masters/locations" {
		t.Fatalf("FindNavItem = %+v, %v", item, ok)
	}
	if _, ok := FindNavItem("nope"); ok {
		t.Fatalf("unknown key found")
	}
}
