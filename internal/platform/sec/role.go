// Copyright (c) 2026 DevisApp. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Back-office manager: can administer clients, quotes and invoices
	RoleGestionnaire UserRole = "gestionnaire"

	// Default role for tradespeople: site tracking, quotes, timesheets
	RoleArtisan UserRole = "artisan"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleGestionnaire:
		return 20
	case RoleArtisan:
		return 10
	default:
		return 0
	}
}
