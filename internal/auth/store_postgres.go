// Copyright (c) 2026 DevisApp. All rights reserved.

// PostgreSQL implementations of the authentication storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record and hydrates the generated ID.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (email, password_hash, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := repository.pool.QueryRow(context, query,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, password_hash, full_name, role, is_active, created_at, updated_at
		FROM users
		WHERE email = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their primary key.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id int) (*User, error) {
	const query = `
		SELECT id, email, password_hash, full_name, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Deactivate flips the account's is_active flag to false.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) Deactivate(context context.Context, id int) error {
	const query = "UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_deactivate_failed: %w", err)
	}
	return nil
}

// # Refresh-Token Ledger Repository

// PostgresRefreshTokenRepository implements the RefreshTokenRepository interface.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

/*
Create appends a new ACTIVE record to the refresh_tokens ledger.

Parameters:
  - context: context.Context
  - record: *RefreshTokenRecord

Returns:
  - error: Storage failures
*/
func (repository *PostgresRefreshTokenRepository) Create(context context.Context, record *RefreshTokenRecord) error {
	const query = `
		INSERT INTO refresh_tokens (user_id, token, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id`

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	err := repository.pool.QueryRow(context, query,
		record.UserID,
		record.Token,
		record.ExpiresAt,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByToken retrieves the ledger record matching the exact token string.

Revoked and expired records are returned as-is; state interpretation belongs
to the service layer.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *RefreshTokenRecord: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRefreshTokenRepository) FindByToken(context context.Context, token string) (*RefreshTokenRecord, error) {
	const query = `
		SELECT id, user_id, token, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token = $1`

	record := &RefreshTokenRecord{}
	err := repository.pool.QueryRow(context, query, token).Scan(
		&record.ID,
		&record.UserID,
		&record.Token,
		&record.ExpiresAt,
		&record.Revoked,
		&record.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Refresh token")
		}
		return nil, fmt.Errorf("postgres_refresh_repo_find_failed: %w", err)
	}

	return record, nil
}

/*
Revoke marks a specific ledger record as revoked. Revoking an already-revoked
record is a harmless no-op, which keeps logout idempotent.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: Revocation failures
*/
func (repository *PostgresRefreshTokenRepository) Revoke(context context.Context, id int64) error {
	const query = "UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_revoke_failed: %w", err)
	}
	return nil
}

/*
Rotate atomically revokes the old record and inserts its successor.

Description: Runs both writes in a single transaction so that a crash between
them cannot leave the ledger with neither (or both) tokens active.

Parameters:
  - context: context.Context
  - oldID: int64
  - next: *RefreshTokenRecord

Returns:
  - error: Transaction failures
*/
func (repository *PostgresRefreshTokenRepository) Rotate(context context.Context, oldID int64, next *RefreshTokenRecord) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_rotate_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	const revokeQuery = "UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1"
	if _, err := transaction.Exec(context, revokeQuery, oldID); err != nil {
		return fmt.Errorf("postgres_refresh_repo_rotate_revoke_failed: %w", err)
	}

	const insertQuery = `
		INSERT INTO refresh_tokens (user_id, token, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id`

	if next.CreatedAt.IsZero() {
		next.CreatedAt = time.Now()
	}

	err = transaction.QueryRow(context, insertQuery,
		next.UserID,
		next.Token,
		next.ExpiresAt,
		next.CreatedAt,
	).Scan(&next.ID)

	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_rotate_insert_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_refresh_repo_rotate_commit_failed: %w", err)
	}

	return nil
}

/*
RevokeAllForUser revokes every active record belonging to the userID.

Parameters:
  - context: context.Context
  - userID: int

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresRefreshTokenRepository) RevokeAllForUser(context context.Context, userID int) error {
	const query = "UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE"
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_revoke_all_failed: %w", err)
	}
	return nil
}
