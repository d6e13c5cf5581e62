// Copyright (c) 2026 DevisApp. All rights reserved.

// PostgreSQL implementation of the quote storage contract.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// # Quote Repository

// PostgresDevisRepository implements the DevisRepository interface using pgx.
type PostgresDevisRepository struct {
	pool *pgxpool.Pool
}

// NewDevisRepository creates a new PostgreSQL implementation of DevisRepository.
func NewDevisRepository(pool *pgxpool.Pool) *PostgresDevisRepository {
	return &PostgresDevisRepository{pool: pool}
}

/*
Create persists a quote with its full lot/line tree in one transaction.

Description: Inserts the devis header first, then every lot and line with
their parent FKs, hydrating all generated IDs back into the entity. Either
the whole tree lands or nothing does.

Parameters:
  - context: context.Context
  - devis: *Devis

Returns:
  - error: Transaction failures
*/
func (repository *PostgresDevisRepository) Create(context context.Context, devis *Devis) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_devis_repo_create_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	const devisQuery = `
		INSERT INTO devis (projet_id, client_id, user_id, nom, statut, date_emission, taux_tva, total_ht, total_ttc, validite_jours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	if devis.DateEmission.IsZero() {
		devis.DateEmission = time.Now()
	}

	err = transaction.QueryRow(context, devisQuery,
		devis.ProjetID,
		devis.ClientID,
		devis.UserID,
		devis.Nom,
		devis.Statut,
		devis.DateEmission,
		devis.TauxTVA,
		devis.TotalHT,
		devis.TotalTTC,
		devis.ValiditeJours,
	).Scan(&devis.ID)

	if err != nil {
		return fmt.Errorf("postgres_devis_repo_create_failed: %w", err)
	}

	const lotQuery = `
		INSERT INTO lots_devis (devis_id, nom, ordre, total_lot_ht)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	const ligneQuery = `
		INSERT INTO lignes_poste (lot_id, designation, unite, quantite, prix_unitaire_ht, total_ligne_ht)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for lotIndex := range devis.Lots {
		lot := &devis.Lots[lotIndex]
		lot.DevisID = devis.ID

		err = transaction.QueryRow(context, lotQuery,
			lot.DevisID,
			lot.Nom,
			lot.Ordre,
			lot.TotalLotHT,
		).Scan(&lot.ID)

		if err != nil {
			return fmt.Errorf("postgres_devis_repo_create_lot_failed: %w", err)
		}

		for ligneIndex := range lot.LignesPoste {
			ligne := &lot.LignesPoste[ligneIndex]
			ligne.LotID = lot.ID

			err = transaction.QueryRow(context, ligneQuery,
				ligne.LotID,
				ligne.Designation,
				ligne.Unite,
				ligne.Quantite,
				ligne.PrixUnitaireHT,
				ligne.TotalLigneHT,
			).Scan(&ligne.ID)

			if err != nil {
				return fmt.Errorf("postgres_devis_repo_create_ligne_failed: %w", err)
			}
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_devis_repo_create_commit_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a quote with its full lot/line tree.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *Devis: Hydrated entity including lots and lines
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresDevisRepository) FindByID(context context.Context, id int) (*Devis, error) {
	const query = `
		SELECT id, projet_id, client_id, user_id, nom, statut, date_emission, taux_tva, total_ht, total_ttc, validite_jours
		FROM devis
		WHERE id = $1`

	devis := &Devis{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&devis.ID,
		&devis.ProjetID,
		&devis.ClientID,
		&devis.UserID,
		&devis.Nom,
		&devis.Statut,
		&devis.DateEmission,
		&devis.TauxTVA,
		&devis.TotalHT,
		&devis.TotalTTC,
		&devis.ValiditeJours,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Devis")
		}
		return nil, fmt.Errorf("postgres_devis_repo_find_failed: %w", err)
	}

	if err := repository.hydrateLots(context, devis); err != nil {
		return nil, err
	}

	return devis, nil
}

// hydrateLots loads the lot and line tree for one quote, ordered by the
// lot's ordre field.
func (repository *PostgresDevisRepository) hydrateLots(context context.Context, devis *Devis) error {
	const lotQuery = `
		SELECT id, devis_id, nom, ordre, total_lot_ht
		FROM lots_devis
		WHERE devis_id = $1
		ORDER BY ordre ASC, id ASC`

	lotRows, err := repository.pool.Query(context, lotQuery, devis.ID)
	if err != nil {
		return fmt.Errorf("postgres_devis_repo_lots_failed: %w", err)
	}
	defer lotRows.Close()

	devis.Lots = []LotDevis{}
	for lotRows.Next() {
		var lot LotDevis
		if err := lotRows.Scan(&lot.ID, &lot.DevisID, &lot.Nom, &lot.Ordre, &lot.TotalLotHT); err != nil {
			return fmt.Errorf("postgres_devis_repo_lot_scan_failed: %w", err)
		}
		devis.Lots = append(devis.Lots, lot)
	}
	if err := lotRows.Err(); err != nil {
		return fmt.Errorf("postgres_devis_repo_lots_failed: %w", err)
	}

	const ligneQuery = `
		SELECT id, lot_id, designation, unite, quantite, prix_unitaire_ht, total_ligne_ht
		FROM lignes_poste
		WHERE lot_id = $1
		ORDER BY id ASC`

	for lotIndex := range devis.Lots {
		lot := &devis.Lots[lotIndex]

		ligneRows, err := repository.pool.Query(context, ligneQuery, lot.ID)
		if err != nil {
			return fmt.Errorf("postgres_devis_repo_lignes_failed: %w", err)
		}

		lot.LignesPoste = []LignePoste{}
		for ligneRows.Next() {
			var ligne LignePoste
			err := ligneRows.Scan(
				&ligne.ID,
				&ligne.LotID,
				&ligne.Designation,
				&ligne.Unite,
				&ligne.Quantite,
				&ligne.PrixUnitaireHT,
				&ligne.TotalLigneHT,
			)
			if err != nil {
				ligneRows.Close()
				return fmt.Errorf("postgres_devis_repo_ligne_scan_failed: %w", err)
			}
			lot.LignesPoste = append(lot.LignesPoste, ligne)
		}
		ligneRows.Close()

		if err := ligneRows.Err(); err != nil {
			return fmt.Errorf("postgres_devis_repo_lignes_failed: %w", err)
		}
	}

	return nil
}

/*
List retrieves one page of quote headers, optionally filtered by status.

statut = "" disables the filter. Lots are not hydrated.

Parameters:
  - context: context.Context
  - statut: string
  - params: pagination.Params

Returns:
  - []Devis: Page of shallow entities
  - int: Total row count for the filter
  - error: Execution errors
*/
func (repository *PostgresDevisRepository) List(context context.Context, statut string, params pagination.Params) ([]Devis, int, error) {
	const countQuery = "SELECT COUNT(*) FROM devis WHERE ($1 = '' OR statut = $1)"

	var total int
	if err := repository.pool.QueryRow(context, countQuery, statut).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_devis_repo_count_failed: %w", err)
	}

	const query = `
		SELECT id, projet_id, client_id, user_id, nom, statut, date_emission, taux_tva, total_ht, total_ttc, validite_jours
		FROM devis
		WHERE ($1 = '' OR statut = $1)
		ORDER BY date_emission DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, statut, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_devis_repo_list_failed: %w", err)
	}
	defer rows.Close()

	collection := make([]Devis, 0, params.Limit)
	for rows.Next() {
		var devis Devis
		err := rows.Scan(
			&devis.ID,
			&devis.ProjetID,
			&devis.ClientID,
			&devis.UserID,
			&devis.Nom,
			&devis.Statut,
			&devis.DateEmission,
			&devis.TauxTVA,
			&devis.TotalHT,
			&devis.TotalTTC,
			&devis.ValiditeJours,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_devis_repo_scan_failed: %w", err)
		}
		collection = append(collection, devis)
	}

	return collection, total, rows.Err()
}

/*
Update persists the scalar fields of an existing quote. Lots are untouched.

Parameters:
  - context: context.Context
  - devis: *Devis

Returns:
  - error: Update failures
*/
func (repository *PostgresDevisRepository) Update(context context.Context, devis *Devis) error {
	const query = `
		UPDATE devis
		SET nom = $2, statut = $3, taux_tva = $4, total_ttc = $5, validite_jours = $6
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		devis.ID,
		devis.Nom,
		devis.Statut,
		devis.TauxTVA,
		devis.TotalTTC,
		devis.ValiditeJours,
	)

	if err != nil {
		return fmt.Errorf("postgres_devis_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete removes a quote row. Lots and lines cascade via the schema's
ON DELETE CASCADE constraints.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - error: Execution errors
*/
func (repository *PostgresDevisRepository) Delete(context context.Context, id int) error {
	const query = "DELETE FROM devis WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_devis_repo_delete_failed: %w", err)
	}
	return nil
}
