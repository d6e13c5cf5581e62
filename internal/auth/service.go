// Copyright (c) 2026 DevisApp. All rights reserved.

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
session lifecycle management via paired JWT access and refresh tokens.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh, Logout).
  - Repository: Abstracted interfaces over Postgres (users, refresh ledger).
  - Security: Bcrypt password hashing and HS256-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kad123/DevisAppCC/internal/platform/clock"
	"github.com/Kad123/DevisAppCC/internal/platform/ctxutil"
	"github.com/Kad123/DevisAppCC/internal/platform/sec"
)

// # Contracts & Types

// TokenCodec defines the contract for issuing and verifying identity tokens.
//
// Implemented by [sec.TokenCodec].
type TokenCodec interface {
	// Encode creates a signed token of the given type for the identity.
	Encode(subject string, userID int, role, tokenType string, timeToLive time.Duration) (string, error)

	// Decode verifies a token string and returns its claims, or
	// [sec.ErrTokenInvalid] for any failure.
	Decode(tokenString string) (*sec.AuthClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed before merging.
type Service struct {
	userRepository  UserRepository
	tokenRepository RefreshTokenRepository
	codec           TokenCodec
	clock           clock.Clock
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService constructs a new authentication [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	tokenRepo RefreshTokenRepository,
	codec TokenCodec,
	clk clock.Clock,
	accessTTL, refreshTTL time.Duration,
) *Service {
	if clk == nil {
		clk = clock.System{}
	}

	return &Service{
		userRepository:  userRepo,
		tokenRepository: tokenRepo,
		codec:           codec,
		clock:           clk,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     sec.UserRole
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new member, handling password hashing and role
assignment. Accounts default to the artisan role when none is given.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	role := input.Role
	if role == "" {
		role = sec.RoleArtisan
	}

	user := &User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		Role:         role,
		IsActive:     true,
	}

	// The unique index on email is the real conflict guard: the repository
	// maps a duplicate insert to a client-safe Conflict error, with no
	// check-then-insert race window.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Session represents a successfully established user session.
type Session struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Verifies identity with a constant-time bcrypt comparison, signs
the access/refresh pair, and appends the refresh token to the ledger.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session credentials
  - err: [ErrInvalidCredentials] or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {

	// Unknown email, wrong password, and a disabled account all collapse into
	// the same generic failure to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return service.issueSession(context, user)
}

/*
Logout permanently revokes the presented refresh token.

Description: Ensures that a ledgered refresh token can never be used again.
Logout is idempotent: an unknown or already-revoked token is a success.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	record, err := service.tokenRepository.FindByToken(context, refreshToken)

	// The token is already gone or was never issued: logout succeeded.
	if err != nil {
		return nil
	}

	if record.Revoked {
		return nil
	}

	if err := service.tokenRepository.Revoke(context, record.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Rotation

/*
Refresh implements the refresh-token rotation mechanism.

Description: Verifies the presented refresh token against both its signature
and the ledger, revokes it to prevent reuse (replay mitigation), and issues a
fresh rotated pair.

# Degraded Mode

When the atomic revoke-and-insert against the ledger fails, the caller still
receives a valid access token together with their ORIGINAL refresh token
(which stayed active because the transaction rolled back). The incident is
logged as a warning; availability of the API is preferred over strict
single-use rotation during a storage outage.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: New session credentials
  - err: [ErrRefreshInvalid], [ErrRefreshRevoked] or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {

	// ── 1. Cryptographic check ──
	// Signature, expiry and issuer are all validated by the codec.
	claims, err := service.codec.Decode(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	// An access token presented as a refresh token is rejected outright.
	if claims.TokenType != sec.TokenTypeRefresh {
		return nil, ErrRefreshInvalid
	}

	// ── 2. Ledger check ──
	// A well-signed token with no ledger row is classed with revoked tokens:
	// it either predates the ledger or was purged after revocation, and in
	// both cases the rotation chain is broken.
	record, err := service.tokenRepository.FindByToken(context, refreshToken)
	if err != nil {
		return nil, ErrRefreshRevoked
	}

	if record.Revoked {
		return nil, ErrRefreshRevoked
	}

	if !record.ExpiresAt.After(service.clock.Now()) {
		return nil, ErrRefreshInvalid
	}

	// ── 3. Identity check ──
	user, err := service.userRepository.FindByID(context, record.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrRefreshInvalid
	}

	// ── 4. Issue the rotated pair ──
	accessToken, err := service.codec.Encode(user.Email, user.ID, string(user.Role), sec.TokenTypeAccess, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	newRefreshToken, err := service.codec.Encode(user.Email, user.ID, string(user.Role), sec.TokenTypeRefresh, service.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := service.clock.Now().Add(service.refreshTokenTTL)
	next := &RefreshTokenRecord{
		UserID:    user.ID,
		Token:     newRefreshToken,
		ExpiresAt: expiresAt,
	}

	// ── 5. Rotate the ledger ──
	if err := service.tokenRepository.Rotate(context, record.ID, next); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_refresh_rotation_degraded",
			slog.Int("user_id", user.ID),
			slog.String("error", err.Error()),
		)

		// Degraded mode: the old token is still active, hand it back.
		return &Session{
			AccessToken:           accessToken,
			RefreshToken:          refreshToken,
			RefreshTokenExpiresAt: record.ExpiresAt,
			User:                  user,
		}, nil
	}

	return &Session{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Internal Helpers

// issueSession signs a fresh token pair for the user and ledgers the refresh
// token.
//
// A ledger-write failure is logged and tolerated: the user still gets a
// working access token, only the coming refresh will fail.
func (service *Service) issueSession(context context.Context, user *User) (*Session, error) {

	accessToken, err := service.codec.Encode(user.Email, user.ID, string(user.Role), sec.TokenTypeAccess, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.codec.Encode(user.Email, user.ID, string(user.Role), sec.TokenTypeRefresh, service.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := service.clock.Now().Add(service.refreshTokenTTL)
	record := &RefreshTokenRecord{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}

	if err := service.tokenRepository.Create(context, record); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_login_ledger_degraded",
			slog.Int("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return &Session{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}
