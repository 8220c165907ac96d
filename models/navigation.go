package models

import "slices"

type NavItem struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Href     string    `json:"href,omitempty"`
	Roles    []Role    `json:"-"`
	Children []NavItem `json:"children,omitempty"`
}

var both = []Role{RoleAdmin, RoleEmployee}
var adminOnly = []Role{RoleAdmin}

// Navigation is the full sidebar before role filtering.
var Navigation = []NavItem{
	{Key: "dashboard", Name: "Dashboard", Href: "/dashboard", Roles: both},
	{Key: "clients", Name: "Client Management", Href: "/clients", Roles: both},
	{Key: "family", Name: "Family Management", Href: "/family", Roles: both},
	{Key: "employees", Name: "Employee", Href: "/employees", Roles: adminOnly},
	{Key: "masters", Name: "Masters", Roles: adminOnly, Children: []NavItem{
		{Key: "masters.products", Name: "Product Master", Href: "/masters/products", Roles: adminOnly},
		{Key: "masters.locations", Name: "Location & Area", Href: "/masters/locations", Roles: adminOnly},
	}},
	{Key: "transactions", Name: "Transactions", Roles: both, Children: []NavItem{
		{Key: "postal", Name: "Postal Entry", Href: "/postal", Roles: both},
		{Key: "fd-entries", Name: "FD Entry", Href: "/fd-entries", Roles: adminOnly},
		{Key: "insurance", Name: "Insurance Entry", Href: "/insurance", Roles: both},
		{Key: "mediclaim", Name: "Mediclaim Entry", Href: "/mediclaim", Roles: both},
		{Key: "runsheet", Name: "Runsheet Entry", Href: "/runsheet", Roles: adminOnly},
		{Key: "phone-logs", Name: "Phone Log Book", Href: "/phone-logs", Roles: both},
	}},
	{Key: "post-office", Name: "Post Office", Href: "/post-office", Roles: both},
	{Key: "executives", Name: "Executive Master", Href: "/executives", Roles: adminOnly},
	{Key: "notifications", Name: "Notification Management", Href: "/notifications", Roles: adminOnly},
}

func CanView(item NavItem, role Role) bool {
	return role != RoleNone && slices.Contains(item.Roles, role)
}

// ComposeNavigation keeps the items role may view. A parent the role cannot
// view hides its children.
func ComposeNavigation(role Role) []NavItem {
	return filterNav(Navigation, role)
}

func filterNav(items []NavItem, role Role) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if !CanView(item, role) {
			continue
		}
		visible := item
		if len(item.Children) > 0 {
			visible.Children = filterNav(item.Children, role)
		}
		out = append(out, visible)
	}
	return out
}

// FindNavItem looks up an item, children included, by key.
func FindNavItem(key string) (NavItem, bool) {
	return findNav(Navigation, key)
}

func findNav(items []NavItem, key string) (NavItem, bool) {
	for _, item := range items {
		if item.Key == key {
			return item, true
		}
		if found, ok := findNav(item.Children, key); ok {
			return found, true
		}
	}
	return NavItem{}, false
}
