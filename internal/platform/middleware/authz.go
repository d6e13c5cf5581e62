// Copyright (c) 2026 DevisApp. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/ctxutil"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/sec"
)

// # Authentication & Authorization

// TokenVerifier checks a bearer token and returns the embedded identity claims.
//
// Implemented by [sec.TokenCodec]; an interface here keeps the middleware
// testable with a stub verifier.
type TokenVerifier interface {
	Decode(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate extracts the Bearer token, verifies it, and stores the claims
// in the request context.
//
// Requests without an Authorization header pass through anonymously; guarding
// endpoints is the job of [RequireAuth] and [RequireRole]. A header that IS
// present but carries an invalid or non-access token is rejected outright.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Anonymous requests proceed without claims
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Enforce the "Bearer <token>" scheme
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization header"))
				return
			}

			// 3. Verify signature, expiry and issuer
			claims, err := verifier.Decode(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// 4. Refresh tokens must never be used as access credentials
			if claims.TokenType != sec.TokenTypeAccess {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not present valid access credentials.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetAuthUser(request.Context()) == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole rejects authenticated users whose role sits below the target
// in the hierarchy. It implies [RequireAuth].
func RequireRole(target sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(target) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
