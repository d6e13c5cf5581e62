// Copyright (c) 2026 DevisApp. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces ([auth.TokenCodec]).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kad123/DevisAppCC/internal/platform/clock"
)

// Token type discriminators embedded in the signed payload. Access and
// refresh tokens share one codec and are told apart only by this tag.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrTokenInvalid is the single sentinel for every decode failure: expired,
// malformed, wrong signature, wrong algorithm. Callers must treat it as an
// authentication failure and nothing more specific.
var ErrTokenInvalid = errors.New("sec: invalid token")

// AuthClaims represents the payload embedded inside a signed identity token.
//
// # Why custom claims?
//
// By embedding the UserID and Role directly inside the JWT, the
// authentication middleware can reconstruct the active user context
// WITHOUT querying the database on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID    int    `json:"uid"`
	Role      string `json:"rol"`
	TokenType string `json:"typ"`
}

// TokenCodec signs and verifies identity tokens using HS256 and a single
// process-wide secret.
//
// # Key Rotation
//
// The secret is immutable for the process lifetime; rotating it invalidates
// every previously issued token. This is accepted behavior, not a bug.
type TokenCodec struct {
	secret []byte
	issuer string
	clock  clock.Clock
}

// NewTokenCodec constructs a codec from the configured signing secret.
//
// The secret comes from explicit configuration — there is no baked-in
// development fallback.
func NewTokenCodec(secret, issuer string, clk clock.Clock) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	if clk == nil {
		clk = clock.System{}
	}

	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		clock:  clk,
	}, nil
}

// Encode creates a signed token for the given identity.
//
// # Parameters
//   - subject: The user's email (the 'sub' claim).
//   - userID: The account's numeric ID.
//   - role: The account's role.
//   - tokenType: [TokenTypeAccess] or [TokenTypeRefresh].
//   - timeToLive: The duration before the token expires.
func (codec *TokenCodec) Encode(subject string, userID int, role, tokenType string, timeToLive time.Duration) (string, error) {
	currentTime := codec.clock.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti claim makes every token unique even when two are minted
			// within the same second for the same identity. The refresh-token
			// ledger has a unique index on the token string and rotation must
			// never reissue a previously ledgered string.
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Decode checks the signature and validity of a token string.
//
// # Returns
//
// The embedded [*AuthClaims], or [ErrTokenInvalid] for ANY failure. The
// caller never learns whether the token was expired, forged, or malformed.
func (codec *TokenCodec) Decode(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return codec.secret, nil
		},
		jwt.WithTimeFunc(codec.clock.Now),
		jwt.WithIssuer(codec.issuer),
	)

	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
