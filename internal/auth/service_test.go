// Copyright (c) 2026 DevisApp. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kad123/DevisAppCC/internal/auth"
	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/clock"
	"github.com/Kad123/DevisAppCC/internal/platform/sec"
)

// # In-Memory Fakes

type fakeUserRepository struct {
	users  map[int]*auth.User
	nextID int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[int]*auth.User{}, nextID: 1}
}

func (repo *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return apperr.Conflict("Email is already registered")
		}
	}
	user.ID = repo.nextID
	repo.nextID++
	repo.users[user.ID] = user
	return nil
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id int) (*auth.User, error) {
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) Deactivate(_ context.Context, id int) error {
	user, ok := repo.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.IsActive = false
	return nil
}

type fakeRefreshTokenRepository struct {
	records    map[int64]*auth.RefreshTokenRecord
	nextID     int64
	failCreate bool
	failRotate bool
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{records: map[int64]*auth.RefreshTokenRecord{}, nextID: 1}
}

func (repo *fakeRefreshTokenRepository) Create(_ context.Context, record *auth.RefreshTokenRecord) error {
	if repo.failCreate {
		return errors.New("ledger down")
	}
	record.ID = repo.nextID
	repo.nextID++
	repo.records[record.ID] = record
	return nil
}

func (repo *fakeRefreshTokenRepository) FindByToken(_ context.Context, token string) (*auth.RefreshTokenRecord, error) {
	for _, record := range repo.records {
		if record.Token == token {
			return record, nil
		}
	}
	return nil, apperr.NotFound("Refresh token")
}

func (repo *fakeRefreshTokenRepository) Revoke(_ context.Context, id int64) error {
	record, ok := repo.records[id]
	if !ok {
		return apperr.NotFound("Refresh token")
	}
	record.Revoked = true
	return nil
}

func (repo *fakeRefreshTokenRepository) Rotate(context context.Context, oldID int64, next *auth.RefreshTokenRecord) error {
	if repo.failRotate {
		return errors.New("ledger down")
	}
	if err := repo.Revoke(context, oldID); err != nil {
		return err
	}
	return repo.Create(context, next)
}

func (repo *fakeRefreshTokenRepository) RevokeAllForUser(_ context.Context, userID int) error {
	for _, record := range repo.records {
		if record.UserID == userID {
			record.Revoked = true
		}
	}
	return nil
}

// # Harness

type authFixture struct {
	service *auth.Service
	users   *fakeUserRepository
	tokens  *fakeRefreshTokenRepository
	clock   *clock.Fixed
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	codec, err := sec.NewTokenCodec("unit-test-secret", "devisapp", clk)
	require.NoError(t, err)

	users := newFakeUserRepository()
	tokens := newFakeRefreshTokenRepository()

	return &authFixture{
		service: auth.NewService(users, tokens, codec, clk, 15*time.Minute, 720*time.Hour),
		users:   users,
		tokens:  tokens,
		clock:   clk,
	}
}

func (fixture *authFixture) register(t *testing.T, email, password string) *auth.User {
	t.Helper()
	user, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		FullName: "Test Artisan",
	})
	require.NoError(t, err)
	return user
}

// # Registration

/*
TestService_Register verifies hashing and the default role assignment.
*/
func TestService_Register(t *testing.T) {
	fixture := newAuthFixture(t)

	user := fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	assert.NotZero(t, user.ID)
	assert.Equal(t, sec.RoleArtisan, user.Role)
	assert.True(t, user.IsActive)

	// Stored hash verifies against the plaintext but is never the plaintext.
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("s3cret-pass", user.PasswordHash))
}

/*
TestService_Register_DuplicateEmail maps the unique index violation to a
conflict.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	_, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Email:    "artisan@devisapp.fr",
		Password: "another-pass",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

// # Login

/*
TestService_Login issues a token pair and ledgers the refresh token.
*/
func TestService_Login(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, user.ID, session.User.ID)

	// The refresh token is in the ledger, active.
	record, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.False(t, record.Revoked)
	assert.Equal(t, user.ID, record.UserID)
}

/*
TestService_Login_Failures collapses every credential failure into the same
generic error, with no ledger side effects.
*/
func TestService_Login_Failures(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	tests := []struct {
		name     string
		email    string
		password string
		prepare  func()
	}{
		{"wrong_password", "artisan@devisapp.fr", "wrong-pass", nil},
		{"unknown_email", "nobody@devisapp.fr", "s3cret-pass", nil},
		{"inactive_account", "artisan@devisapp.fr", "s3cret-pass", func() {
			require.NoError(t, fixture.users.Deactivate(context.Background(), user.ID))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}

			_, err := fixture.service.Login(context.Background(), auth.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})

			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
			assert.Empty(t, fixture.tokens.records, "a failed login must not touch the ledger")
		})
	}
}

/*
TestService_Login_LedgerDegraded still returns a session when the refresh
ledger write fails.
*/
func TestService_Login_LedgerDegraded(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")
	fixture.tokens.failCreate = true

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
}

// # Logout

/*
TestService_Logout_Idempotent verifies that unknown, revoked, and active
tokens all log out successfully, and that an active token ends up revoked.
*/
func TestService_Logout_Idempotent(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// Unknown token: success.
	require.NoError(t, fixture.service.Logout(context.Background(), "never-issued"))

	// Active token: success, and the record flips to revoked.
	require.NoError(t, fixture.service.Logout(context.Background(), session.RefreshToken))
	record, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.True(t, record.Revoked)

	// Second logout of the same token: still success.
	require.NoError(t, fixture.service.Logout(context.Background(), session.RefreshToken))
}

// # Refresh Rotation

/*
TestService_Refresh_Rotation rotates the pair: the old refresh token is
revoked, the new one is ledgered and usable.
*/
func TestService_Refresh_Rotation(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// Time passes before the client comes back to refresh.
	fixture.clock.Advance(time.Minute)

	rotated, err := fixture.service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	oldRecord, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.True(t, oldRecord.Revoked)

	// Replay of the revoked token is rejected with the revocation sentinel.
	_, err = fixture.service.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshRevoked)

	// The rotated token keeps working.
	fixture.clock.Advance(time.Minute)
	_, err = fixture.service.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

/*
TestService_Refresh_SameInstantRotation rotates without the clock moving at
all: the replacement token must still differ from the one it revokes, or the
ledger's unique token index would reject the rotation.
*/
func TestService_Refresh_SameInstantRotation(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	rotated, err := fixture.service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken,
		"rotation reissued the identical refresh token string")

	// Exactly one active row per token string: the old one is revoked, the
	// replacement is active.
	oldRecord, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.True(t, oldRecord.Revoked)

	newRecord, err := fixture.tokens.FindByToken(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
	assert.False(t, newRecord.Revoked)
}

/*
TestService_Refresh_RejectsAccessToken refuses an access token presented on
the refresh endpoint.
*/
func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = fixture.service.Refresh(context.Background(), session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
}

/*
TestService_Refresh_InvalidInputs covers garbage tokens and unledgered but
well-signed tokens. A token that fails the cryptographic check is invalid; a
token that verifies but has no ledger row falls into the revoked-or-unknown
class.
*/
func TestService_Refresh_InvalidInputs(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	_, err := fixture.service.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)

	// Well-signed refresh token whose ledger row has vanished.
	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	record, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	delete(fixture.tokens.records, record.ID)

	_, err = fixture.service.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshRevoked)
}

/*
TestService_Refresh_Degraded hands back the ORIGINAL refresh token when the
ledger rotation fails: the old token stayed active, so the client keeps a
working pair.
*/
func TestService_Refresh_Degraded(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	fixture.tokens.failRotate = true
	fixture.clock.Advance(time.Minute)

	degraded, err := fixture.service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)

	assert.NotEmpty(t, degraded.AccessToken)
	assert.Equal(t, session.RefreshToken, degraded.RefreshToken)

	// The original ledger entry is untouched.
	record, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.False(t, record.Revoked)
}

/*
TestService_Refresh_ExpiredLedgerEntry rejects a ledger row whose expiry has
passed even when the JWT itself would still verify.
*/
func TestService_Refresh_ExpiredLedgerEntry(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "artisan@devisapp.fr", "s3cret-pass")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "artisan@devisapp.fr",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// Force the ledger entry to expire without expiring the JWT.
	record, err := fixture.tokens.FindByToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	record.ExpiresAt = fixture.clock.Now().Add(-time.Minute)

	_, err = fixture.service.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
}
