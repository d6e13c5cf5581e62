// Copyright (c) 2026 DevisApp. All rights reserved.

// PostgreSQL implementation of the invoice ledger contract.
package billing

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

// # Invoice Ledger Repository

// PostgresFactureRepository implements the FactureRepository interface.
type PostgresFactureRepository struct {
	pool *pgxpool.Pool
}

// NewFactureRepository creates a new PostgreSQL implementation of FactureRepository.
func NewFactureRepository(pool *pgxpool.Pool) *PostgresFactureRepository {
	return &PostgresFactureRepository{pool: pool}
}

/*
Insert appends a new invoice to the ledger and hydrates the generated ID.

The unique index on numero_facture is the serialization point of the
numbering engine: two concurrent inserts deriving the same number race here,
and the loser receives [ErrSequenceConflict] to retry with a fresh number.

Parameters:
  - context: context.Context
  - facture: *Facture

Returns:
  - error: ErrSequenceConflict or persistence failures
*/
func (repository *PostgresFactureRepository) Insert(context context.Context, facture *Facture) error {
	const query = `
		INSERT INTO factures (devis_id, numero_facture, total_ht, total_ttc, date_emission, date_prestation, mention_franchise_tva, statut)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	if facture.DateEmission.IsZero() {
		facture.DateEmission = time.Now()
	}

	err := repository.pool.QueryRow(context, query,
		facture.DevisID,
		facture.NumeroFacture,
		facture.TotalHT,
		facture.TotalTTC,
		facture.DateEmission,
		facture.DatePrestation,
		facture.MentionFranchiseTVA,
		facture.Statut,
	).Scan(&facture.ID)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrSequenceConflict
		}
		return fmt.Errorf("postgres_facture_repo_insert_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves an invoice by its primary key.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *Facture: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresFactureRepository) FindByID(context context.Context, id int) (*Facture, error) {
	const query = `
		SELECT id, devis_id, numero_facture, total_ht, total_ttc, date_emission, date_prestation, mention_franchise_tva, statut
		FROM factures
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(context, query, id), "Facture")
}

/*
FindLatest retrieves the most recently inserted invoice by insertion order.

Parameters:
  - context: context.Context

Returns:
  - *Facture: Latest ledger entry
  - error: apperr.NotFound when the ledger is empty, or execution errors
*/
func (repository *PostgresFactureRepository) FindLatest(context context.Context) (*Facture, error) {
	const query = `
		SELECT id, devis_id, numero_facture, total_ht, total_ttc, date_emission, date_prestation, mention_franchise_tva, statut
		FROM factures
		ORDER BY id DESC
		LIMIT 1`

	return repository.scanOne(repository.pool.QueryRow(context, query), "Facture")
}

/*
FindValideeByDevis retrieves the Validée invoice attached to a quote.

Parameters:
  - context: context.Context
  - devisID: int

Returns:
  - *Facture: Hydrated entity
  - error: apperr.NotFound when none exists, or execution errors
*/
func (repository *PostgresFactureRepository) FindValideeByDevis(context context.Context, devisID int) (*Facture, error) {
	const query = `
		SELECT id, devis_id, numero_facture, total_ht, total_ttc, date_emission, date_prestation, mention_franchise_tva, statut
		FROM factures
		WHERE devis_id = $1 AND statut = $2
		LIMIT 1`

	return repository.scanOne(repository.pool.QueryRow(context, query, devisID, FactureValidee), "Facture")
}

/*
List retrieves one page of invoices ordered by insertion, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Facture: Page of entities
  - int: Total row count
  - error: Execution errors
*/
func (repository *PostgresFactureRepository) List(context context.Context, params pagination.Params) ([]Facture, int, error) {
	const countQuery = "SELECT COUNT(*) FROM factures"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_facture_repo_count_failed: %w", err)
	}

	const query = `
		SELECT id, devis_id, numero_facture, total_ht, total_ttc, date_emission, date_prestation, mention_franchise_tva, statut
		FROM factures
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_facture_repo_list_failed: %w", err)
	}
	defer rows.Close()

	factures, err := repository.scanMany(rows)
	if err != nil {
		return nil, 0, err
	}

	return factures, total, nil
}

/*
ListByDevis retrieves every invoice attached to a quote, oldest first.

Parameters:
  - context: context.Context
  - devisID: int

Returns:
  - []Facture: Attached entities
  - error: Execution errors
*/
func (repository *PostgresFactureRepository) ListByDevis(context context.Context, devisID int) ([]Facture, error) {
	const query = `
		SELECT id, devis_id, numero_facture, total_ht, total_ttc, date_emission, date_prestation, mention_franchise_tva, statut
		FROM factures
		WHERE devis_id = $1
		ORDER BY id ASC`

	rows, err := repository.pool.Query(context, query, devisID)
	if err != nil {
		return nil, fmt.Errorf("postgres_facture_repo_list_by_devis_failed: %w", err)
	}
	defer rows.Close()

	return repository.scanMany(rows)
}

/*
Update persists the mutable fields of a draft invoice.

The WHERE clause re-checks the status so that even a buggy caller cannot
overwrite a Validée row: the guard in the engine is belt, this is braces.

Parameters:
  - context: context.Context
  - facture: *Facture

Returns:
  - error: Update failures
*/
func (repository *PostgresFactureRepository) Update(context context.Context, facture *Facture) error {
	const query = `
		UPDATE factures
		SET date_prestation = $2, mention_franchise_tva = $3
		WHERE id = $1 AND statut <> $4`

	_, err := repository.pool.Exec(context, query,
		facture.ID,
		facture.DatePrestation,
		facture.MentionFranchiseTVA,
		FactureValidee,
	)

	if err != nil {
		return fmt.Errorf("postgres_facture_repo_update_failed: %w", err)
	}

	return nil
}

// # Scan Helpers

func (repository *PostgresFactureRepository) scanOne(row pgx.Row, resource string) (*Facture, error) {
	facture := &Facture{}
	err := row.Scan(
		&facture.ID,
		&facture.DevisID,
		&facture.NumeroFacture,
		&facture.TotalHT,
		&facture.TotalTTC,
		&facture.DateEmission,
		&facture.DatePrestation,
		&facture.MentionFranchiseTVA,
		&facture.Statut,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(resource)
		}
		return nil, fmt.Errorf("postgres_facture_repo_scan_failed: %w", err)
	}

	return facture, nil
}

func (repository *PostgresFactureRepository) scanMany(rows pgx.Rows) ([]Facture, error) {
	factures := []Facture{}
	for rows.Next() {
		var facture Facture
		err := rows.Scan(
			&facture.ID,
			&facture.DevisID,
			&facture.NumeroFacture,
			&facture.TotalHT,
			&facture.TotalTTC,
			&facture.DateEmission,
			&facture.DatePrestation,
			&facture.MentionFranchiseTVA,
			&facture.Statut,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_facture_repo_scan_failed: %w", err)
		}
		factures = append(factures, facture)
	}

	return factures, rows.Err()
}
