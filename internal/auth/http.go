// Copyright (c) 2026 DevisApp. All rights reserved.

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle, from account
creation to session rotation and logout.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/constants"
	requestutil "github.com/Kad123/DevisAppCC/internal/platform/request"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/sec"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the session lifecycle entry
// points (Registration, Login, Rotation, Logout).
type Handler struct {
	authService    *Service
	cookieSecure   bool
	accessTokenTTL time.Duration
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// cookieSecure controls the Secure flag of the refresh-token cookie and is
// disabled only for plain-HTTP development setups.
func NewHandler(service *Service, cookieSecure bool, accessTokenTTL time.Duration) *Handler {
	return &Handler{
		authService:    service,
		cookieSecure:   cookieSecure,
		accessTokenTTL: accessTokenTTL,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /token    : Authenticates and returns a JWT pair.
//   - POST /refresh  : Rotates the refresh token.
//   - POST /logout   : Revokes the current refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// All four endpoints are public: refresh and logout authenticate through
	// the refresh-token cookie, not the Authorization header.
	router.Post("/register", handler.register)
	router.Post("/token", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, and persists
a new user profile to the database.

Request:
  - Body: registerRequest (Email, Password, FullName, Role)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldFullName, input.FullName)

	if input.Role != "" {
		validator.OneOf(FieldRole, input.Role, []string{
			string(sec.RoleAdmin),
			string(sec.RoleGestionnaire),
			string(sec.RoleArtisan),
		})
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Role:     sec.UserRole(input.Role),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/token

Description: Verifies credentials, signs the JWT pair, and injects a secure
refresh token cookie into the response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and User profile
  - 401: ErrUnauthorized: Invalid credentials or deactivated account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "bearer",
		FieldExpiresIn:   int(handler.accessTokenTTL / time.Second),
		FieldUser:        session.User,
	})
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie,
revoking its ledger record, and issuing a fresh pair.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing, invalid, or revoked refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "bearer",
		FieldExpiresIn:   int(handler.accessTokenTTL / time.Second),
	})
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Revokes the refresh token (if present) and clears the security
cookie from the client. Always succeeds, even for unknown tokens.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		if err := handler.authService.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.NoContent(writer)
}

// setRefreshCookie writes the session's refresh token as an HttpOnly cookie
// scoped to the auth endpoints.
//
// SameSite is Lax (not Strict) so that top-level navigations from the web
// frontend still carry the cookie to /refresh.
func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
