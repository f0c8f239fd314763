package role

import (
	"context"
	"strings"

	"roombook/shared/constant"
)

// Role is the closed set of account roles.
type Role int

const (
	Unknown Role = iota
	Customer
	Admin
)

const (
	nameAdmin    = "admin"
	nameCustomer = "customer"
)

// Parse maps a stored role name to a Role. Anything unrecognised is Unknown,
// which holds no capabilities.
func Parse(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case nameAdmin:
		return Admin
	case nameCustomer:
		return Customer
	default:
		return Unknown
	}
}

func (r Role) String() string {
	switch r {
	case Admin:
		return nameAdmin
	case Customer:
		return nameCustomer
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	return r == Admin || r == Customer
}

func (r Role) CanManageRooms() bool {
	return r == Admin
}

func (r Role) CanActOnAnyReservation() bool {
	return r == Admin
}

func (r Role) CanBookForOthers() bool {
	return r == Admin
}

func (r Role) CanSetStatus() bool {
	return r == Admin
}

func (r Role) CanViewStats() bool {
	return r == Admin
}

func (r Role) CanListUsers() bool {
	return r == Admin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

// Owns reports whether the actor is the given owner.
func (a Actor) Owns(ownerID string) bool {
	return a.UserID != constant.Empty && a.UserID == ownerID
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.Owns(ownerID) || a.Role.CanActOnAnyReservation()
}

// FromContext builds the actor from the values placed by the auth middleware.
func FromContext(ctx context.Context) Actor {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	roleName, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Actor{
		UserID: userID,
		Role:   Parse(roleName),
	}
}
