// Copyright (c) 2026 DevisApp. All rights reserved.

package crm

import (
	"context"

	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// # Client Data Access

// ClientRepository defines the data access contract for customer accounts.
type ClientRepository interface {

	/*
		FindByID returns the client with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - *Client: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id int) (*Client, error)

	/*
		Create persists a new client and hydrates the generated ID.

		Parameters:
		  - context: context.Context
		  - client: *Client

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, client *Client) error

	/*
		List returns one page of clients plus the total count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []Client: Page of entities
		  - int: Total row count
		  - error: Database retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]Client, int, error)

	/*
		Update persists the full state of an existing client.

		Parameters:
		  - context: context.Context
		  - client: *Client

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, client *Client) error

	/*
		Delete physically removes a client row.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id int) error
}

// # Project Data Access

// ProjetRepository defines the data access contract for projects.
type ProjetRepository interface {

	/*
		FindByID returns the project with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - *Projet: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id int) (*Projet, error)

	/*
		Create persists a new project and hydrates the generated ID.

		Parameters:
		  - context: context.Context
		  - projet: *Projet

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, projet *Projet) error

	/*
		List returns one page of projects, optionally filtered by client.

		clientID = 0 means "all clients".

		Parameters:
		  - context: context.Context
		  - clientID: int
		  - params: pagination.Params

		Returns:
		  - []Projet: Page of entities
		  - int: Total row count for the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, clientID int, params pagination.Params) ([]Projet, int, error)

	/*
		Update persists the full state of an existing project.

		Parameters:
		  - context: context.Context
		  - projet: *Projet

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, projet *Projet) error

	/*
		Delete physically removes a project row.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id int) error
}
