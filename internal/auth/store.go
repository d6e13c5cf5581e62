// Copyright (c) 2026 DevisApp. All rights reserved.

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id int) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Deactivate flips the account's IsActive flag to false.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - error: Persistence failures
	*/
	Deactivate(context context.Context, id int) error
}

// # Refresh-Token Ledger Access

// RefreshTokenRepository defines the data access contract for the
// refresh-token ledger.
type RefreshTokenRepository interface {

	/*
		Create appends a new ACTIVE record to the ledger.

		Parameters:
		  - context: context.Context
		  - record: *RefreshTokenRecord

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, record *RefreshTokenRecord) error

	/*
		FindByToken returns the ledger record matching the exact token string.

		Revoked and expired records are returned as-is; state interpretation
		belongs to the service layer.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *RefreshTokenRecord: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByToken(context context.Context, token string) (*RefreshTokenRecord, error)

	/*
		Revoke marks a specific ledger record as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, id int64) error

	/*
		Rotate atomically revokes the old record and inserts its successor.

		Both writes happen inside one transaction: either the rotation fully
		lands or the ledger is untouched.

		Parameters:
		  - context: context.Context
		  - oldID: int64
		  - next: *RefreshTokenRecord

		Returns:
		  - error: Transaction failures
	*/
	Rotate(context context.Context, oldID int64, next *RefreshTokenRecord) error

	/*
		RevokeAllForUser revokes every active record belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: int

		Returns:
		  - error: Persistence failures
	*/
	RevokeAllForUser(context context.Context, userID int) error
}
