package domain

import "errors"

// User is the authenticated caller as carried in a bearer token.
type User struct {
	ID    string
	Email string
	Role  Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleAccountant can record payments and view every report
	RoleAccountant Role = "accountant"

	// RoleViewer can only read reports
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleAccountant: true,
	RoleViewer:     true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanRecordPayments checks if the role can submit payments
func (r Role) CanRecordPayments() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanViewReports checks if the role can read reports
func (r Role) CanViewReports() bool {
	return r.IsValid()
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
