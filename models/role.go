package models

import "strings"

type Role string

const (
	RoleNone     Role = ""
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "myEmployee"
)

type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAll   Permission = "all"
)

var Permissions = []Permission{PermissionRead, PermissionWrite, PermissionAll}

func ParsePermission(s string) (Permission, bool) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PermissionRead, PermissionWrite, PermissionAll:
		return p, true
	}
	return "", false
}

// DeriveRole: the identity whose email matches the admin email is Admin,
// any other signed-in identity is an employee.
func DeriveRole(identity *Identity, admin *AdminProfile) Role {
	if identity == nil {
		return RoleNone
	}
	if admin != nil && admin.Email != "" && strings.EqualFold(strings.TrimSpace(identity.Email), strings.TrimSpace(admin.Email)) {
		return RoleAdmin
	}
	return RoleEmployee
}

// CanMutate reports whether an employee permission allows writes.
func CanMutate(p Permission) bool {
	return p == PermissionWrite || p == PermissionAll
}

// Access is what one request may do.
type Access struct {
	Role       Role       `json:"role"`
	Permission Permission `json:"permission,omitempty"`
}

func (a Access) CanMutate() bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleEmployee:
		return CanMutate(a.Permission)
	}
	return false
}

func (a Access) CanDelete() bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleEmployee:
		return a.Permission == PermissionAll
	}
	return false
}

type ActionSet struct {
	Create bool `json:"create"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
	Export bool `json:"export"`
}

func ComposeActions(role Role, permission Permission) ActionSet {
	a := Access{Role: role, Permission: permission}
	return ActionSet{
		Create: a.CanMutate(),
		Update: a.CanMutate(),
		Delete: a.CanDelete(),
		Export: role != RoleNone,
	}
}
