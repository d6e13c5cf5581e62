// Copyright (c) 2026 DevisApp. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, RefreshTokenRecord) and the logic
for authentication, token rotation, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the DevisApp platform.
type User struct {
	ID           int          `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	FullName     string       `json:"full_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// RefreshTokenRecord is one row of the refresh-token ledger.
//
// # Lifecycle
//
// A record is born ACTIVE (Revoked = false) and moves to REVOKED exactly once,
// either through rotation or logout. REVOKED is terminal: no code path ever
// clears the flag again.
type RefreshTokenRecord struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // The signed refresh JWT. Omitted for security.
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Sentinel Errors

// Every authentication failure surfaces to the client with the same shape and
// status so that callers cannot probe which check failed. The distinct
// sentinels exist for internal branching and tests only.
var (
	// ErrInvalidCredentials covers unknown email, wrong password, and
	// deactivated accounts on login.
	ErrInvalidCredentials = apperr.Unauthorized("Invalid login credentials")

	// ErrRefreshInvalid covers malformed, expired, and forged
	// refresh tokens.
	ErrRefreshInvalid = apperr.Unauthorized("Invalid or expired refresh token")

	// ErrRefreshRevoked covers refresh tokens that are revoked or unknown to
	// the ledger. Same outward message as [ErrRefreshInvalid].
	ErrRefreshRevoked = apperr.Unauthorized("Invalid or expired refresh token")
)

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldFullName    = "full_name"
	FieldRole        = "role"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)
