// Copyright (c) 2026 DevisApp. All rights reserved.

// PostgreSQL implementations of the CRM storage contracts.
package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/dberr"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// # Client Repository

// PostgresClientRepository implements the ClientRepository interface using pgx.
type PostgresClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new PostgreSQL implementation of ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *PostgresClientRepository {
	return &PostgresClientRepository{pool: pool}
}

/*
Create persists a new client record and hydrates the generated ID.

Parameters:
  - context: context.Context
  - client: *Client

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresClientRepository) Create(context context.Context, client *Client) error {
	const query = `
		INSERT INTO clients (nom_societe, nom_contact, prenom_contact, email, telephone, adresse, date_creation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if client.DateCreation.IsZero() {
		client.DateCreation = time.Now()
	}

	err := repository.pool.QueryRow(context, query,
		client.NomSociete,
		client.NomContact,
		client.PrenomContact,
		client.Email,
		client.Telephone,
		client.Adresse,
		client.DateCreation,
	).Scan(&client.ID)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A client with this email already exists")
		}
		return fmt.Errorf("postgres_client_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a client record by its primary key.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *Client: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresClientRepository) FindByID(context context.Context, id int) (*Client, error) {
	const query = `
		SELECT id, nom_societe, nom_contact, prenom_contact, email, telephone, adresse, date_creation
		FROM clients
		WHERE id = $1`

	client := &Client{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&client.ID,
		&client.NomSociete,
		&client.NomContact,
		&client.PrenomContact,
		&client.Email,
		&client.Telephone,
		&client.Adresse,
		&client.DateCreation,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Client")
		}
		return nil, fmt.Errorf("postgres_client_repo_find_failed: %w", err)
	}

	return client, nil
}

/*
List retrieves one page of clients ordered by creation date, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Client: Page of entities
  - int: Total row count
  - error: Execution errors
*/
func (repository *PostgresClientRepository) List(context context.Context, params pagination.Params) ([]Client, int, error) {
	const countQuery = "SELECT COUNT(*) FROM clients"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_client_repo_count_failed: %w", err)
	}

	const query = `
		SELECT id, nom_societe, nom_contact, prenom_contact, email, telephone, adresse, date_creation
		FROM clients
		ORDER BY date_creation DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_client_repo_list_failed: %w", err)
	}
	defer rows.Close()

	clients := make([]Client, 0, params.Limit)
	for rows.Next() {
		var client Client
		err := rows.Scan(
			&client.ID,
			&client.NomSociete,
			&client.NomContact,
			&client.PrenomContact,
			&client.Email,
			&client.Telephone,
			&client.Adresse,
			&client.DateCreation,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_client_repo_scan_failed: %w", err)
		}
		clients = append(clients, client)
	}

	return clients, total, rows.Err()
}

/*
Update persists the full state of an existing client.

Parameters:
  - context: context.Context
  - client: *Client

Returns:
  - error: apperr.Conflict on duplicate email, or update failures
*/
func (repository *PostgresClientRepository) Update(context context.Context, client *Client) error {
	const query = `
		UPDATE clients
		SET nom_societe = $2, nom_contact = $3, prenom_contact = $4, email = $5, telephone = $6, adresse = $7
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		client.ID,
		client.NomSociete,
		client.NomContact,
		client.PrenomContact,
		client.Email,
		client.Telephone,
		client.Adresse,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A client with this email already exists")
		}
		return fmt.Errorf("postgres_client_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete physically removes a client row.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - error: Execution errors
*/
func (repository *PostgresClientRepository) Delete(context context.Context, id int) error {
	const query = "DELETE FROM clients WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_client_repo_delete_failed: %w", err)
	}
	return nil
}

// # Project Repository

// PostgresProjetRepository implements the ProjetRepository interface.
type PostgresProjetRepository struct {
	pool *pgxpool.Pool
}

// NewProjetRepository creates a new PostgreSQL implementation of ProjetRepository.
func NewProjetRepository(pool *pgxpool.Pool) *PostgresProjetRepository {
	return &PostgresProjetRepository{pool: pool}
}

/*
Create persists a new project record and hydrates the generated ID.

Parameters:
  - context: context.Context
  - projet: *Projet

Returns:
  - error: Storage failures
*/
func (repository *PostgresProjetRepository) Create(context context.Context, projet *Projet) error {
	const query = `
		INSERT INTO projets (nom, description, statut, code_reference, client_id, date_creation)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if projet.DateCreation.IsZero() {
		projet.DateCreation = time.Now()
	}

	err := repository.pool.QueryRow(context, query,
		projet.Nom,
		projet.Description,
		projet.Statut,
		projet.CodeReference,
		projet.ClientID,
		projet.DateCreation,
	).Scan(&projet.ID)

	if err != nil {
		return fmt.Errorf("postgres_projet_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a project record by its primary key.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *Projet: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProjetRepository) FindByID(context context.Context, id int) (*Projet, error) {
	const query = `
		SELECT id, nom, description, statut, code_reference, client_id, date_creation
		FROM projets
		WHERE id = $1`

	projet := &Projet{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&projet.ID,
		&projet.Nom,
		&projet.Description,
		&projet.Statut,
		&projet.CodeReference,
		&projet.ClientID,
		&projet.DateCreation,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Projet")
		}
		return nil, fmt.Errorf("postgres_projet_repo_find_failed: %w", err)
	}

	return projet, nil
}

/*
List retrieves one page of projects, optionally filtered by client.

clientID = 0 disables the filter.

Parameters:
  - context: context.Context
  - clientID: int
  - params: pagination.Params

Returns:
  - []Projet: Page of entities
  - int: Total row count for the filter
  - error: Execution errors
*/
func (repository *PostgresProjetRepository) List(context context.Context, clientID int, params pagination.Params) ([]Projet, int, error) {
	const countQuery = "SELECT COUNT(*) FROM projets WHERE ($1 = 0 OR client_id = $1)"

	var total int
	if err := repository.pool.QueryRow(context, countQuery, clientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_projet_repo_count_failed: %w", err)
	}

	const query = `
		SELECT id, nom, description, statut, code_reference, client_id, date_creation
		FROM projets
		WHERE ($1 = 0 OR client_id = $1)
		ORDER BY date_creation DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, clientID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_projet_repo_list_failed: %w", err)
	}
	defer rows.Close()

	projets := make([]Projet, 0, params.Limit)
	for rows.Next() {
		var projet Projet
		err := rows.Scan(
			&projet.ID,
			&projet.Nom,
			&projet.Description,
			&projet.Statut,
			&projet.CodeReference,
			&projet.ClientID,
			&projet.DateCreation,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_projet_repo_scan_failed: %w", err)
		}
		projets = append(projets, projet)
	}

	return projets, total, rows.Err()
}

/*
Update persists the full state of an existing project.

Parameters:
  - context: context.Context
  - projet: *Projet

Returns:
  - error: Update failures
*/
func (repository *PostgresProjetRepository) Update(context context.Context, projet *Projet) error {
	const query = `
		UPDATE projets
		SET nom = $2, description = $3, statut = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		projet.ID,
		projet.Nom,
		projet.Description,
		projet.Statut,
	)

	if err != nil {
		return fmt.Errorf("postgres_projet_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete physically removes a project row.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - error: Execution errors
*/
func (repository *PostgresProjetRepository) Delete(context context.Context, id int) error {
	const query = "DELETE FROM projets WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_projet_repo_delete_failed: %w", err)
	}
	return nil
}
