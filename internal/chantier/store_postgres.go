// Copyright (c) 2026 DevisApp. All rights reserved.

// PostgreSQL implementations of the site-tracking storage contracts.
package chantier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
)

// # Milestone Repository

// PostgresJalonRepository implements the JalonRepository interface using pgx.
type PostgresJalonRepository struct {
	pool *pgxpool.Pool
}

// NewJalonRepository creates a new PostgreSQL implementation of JalonRepository.
func NewJalonRepository(pool *pgxpool.Pool) *PostgresJalonRepository {
	return &PostgresJalonRepository{pool: pool}
}

/*
Create persists a new milestone and hydrates the generated ID.

Parameters:
  - context: context.Context
  - jalon: *Jalon

Returns:
  - error: Storage failures
*/
func (repository *PostgresJalonRepository) Create(context context.Context, jalon *Jalon) error {
	const query = `
		INSERT INTO jalons_chantier (projet_id, nom, date_prevue, date_realisation, termine)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repository.pool.QueryRow(context, query,
		jalon.ProjetID,
		jalon.Nom,
		jalon.DatePrevue,
		jalon.DateRealisation,
		jalon.Termine,
	).Scan(&jalon.ID)

	if err != nil {
		return fmt.Errorf("postgres_jalon_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a milestone by its primary key.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *Jalon: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresJalonRepository) FindByID(context context.Context, id int) (*Jalon, error) {
	const query = `
		SELECT id, projet_id, nom, date_prevue, date_realisation, termine
		FROM jalons_chantier
		WHERE id = $1`

	jalon := &Jalon{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&jalon.ID,
		&jalon.ProjetID,
		&jalon.Nom,
		&jalon.DatePrevue,
		&jalon.DateRealisation,
		&jalon.Termine,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Jalon")
		}
		return nil, fmt.Errorf("postgres_jalon_repo_find_failed: %w", err)
	}

	return jalon, nil
}

/*
ListByProjet retrieves every milestone of a project ordered by planned date.

Parameters:
  - context: context.Context
  - projetID: int

Returns:
  - []Jalon: Ordered entities
  - error: Execution errors
*/
func (repository *PostgresJalonRepository) ListByProjet(context context.Context, projetID int) ([]Jalon, error) {
	const query = `
		SELECT id, projet_id, nom, date_prevue, date_realisation, termine
		FROM jalons_chantier
		WHERE projet_id = $1
		ORDER BY date_prevue ASC, id ASC`

	rows, err := repository.pool.Query(context, query, projetID)
	if err != nil {
		return nil, fmt.Errorf("postgres_jalon_repo_list_failed: %w", err)
	}
	defer rows.Close()

	jalons := []Jalon{}
	for rows.Next() {
		var jalon Jalon
		err := rows.Scan(
			&jalon.ID,
			&jalon.ProjetID,
			&jalon.Nom,
			&jalon.DatePrevue,
			&jalon.DateRealisation,
			&jalon.Termine,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_jalon_repo_scan_failed: %w", err)
		}
		jalons = append(jalons, jalon)
	}

	return jalons, rows.Err()
}

/*
Update persists the full state of a milestone.

Parameters:
  - context: context.Context
  - jalon: *Jalon

Returns:
  - error: Update failures
*/
func (repository *PostgresJalonRepository) Update(context context.Context, jalon *Jalon) error {
	const query = `
		UPDATE jalons_chantier
		SET nom = $2, date_prevue = $3, date_realisation = $4, termine = $5
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		jalon.ID,
		jalon.Nom,
		jalon.DatePrevue,
		jalon.DateRealisation,
		jalon.Termine,
	)

	if err != nil {
		return fmt.Errorf("postgres_jalon_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete physically removes a milestone row.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - error: Execution errors
*/
func (repository *PostgresJalonRepository) Delete(context context.Context, id int) error {
	const query = "DELETE FROM jalons_chantier WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_jalon_repo_delete_failed: %w", err)
	}
	return nil
}

// # Journal Repository

// PostgresJournalRepository implements the JournalRepository interface.
type PostgresJournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new PostgreSQL implementation of JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *PostgresJournalRepository {
	return &PostgresJournalRepository{pool: pool}
}

/*
Create persists a new journal entry and hydrates the generated ID.

Parameters:
  - context: context.Context
  - entry: *JournalEntry

Returns:
  - error: Storage failures
*/
func (repository *PostgresJournalRepository) Create(context context.Context, entry *JournalEntry) error {
	const query = `
		INSERT INTO journal_chantier (projet_id, user_id, date_entry, type_entry, description, file_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if entry.DateEntry.IsZero() {
		entry.DateEntry = time.Now()
	}

	err := repository.pool.QueryRow(context, query,
		entry.ProjetID,
		entry.UserID,
		entry.DateEntry,
		entry.TypeEntry,
		entry.Description,
		entry.FileURL,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("postgres_journal_repo_create_failed: %w", err)
	}

	return nil
}

/*
ListByProjet retrieves the most recent journal entries of a project.

Parameters:
  - context: context.Context
  - projetID: int
  - limit: int

Returns:
  - []JournalEntry: Entities, newest first
  - error: Execution errors
*/
func (repository *PostgresJournalRepository) ListByProjet(context context.Context, projetID, limit int) ([]JournalEntry, error) {
	const query = `
		SELECT id, projet_id, user_id, date_entry, type_entry, description, file_url
		FROM journal_chantier
		WHERE projet_id = $1
		ORDER BY date_entry DESC, id DESC
		LIMIT $2`

	rows, err := repository.pool.Query(context, query, projetID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_journal_repo_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var entry JournalEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ProjetID,
			&entry.UserID,
			&entry.DateEntry,
			&entry.TypeEntry,
			&entry.Description,
			&entry.FileURL,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_journal_repo_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// # Timesheet Repository

// PostgresPointageRepository implements the PointageRepository interface.
type PostgresPointageRepository struct {
	pool *pgxpool.Pool
}

// NewPointageRepository creates a new PostgreSQL implementation of PointageRepository.
func NewPointageRepository(pool *pgxpool.Pool) *PostgresPointageRepository {
	return &PostgresPointageRepository{pool: pool}
}

/*
Create persists a new timesheet row and hydrates the generated ID.

Parameters:
  - context: context.Context
  - pointage: *Pointage

Returns:
  - error: Storage failures
*/
func (repository *PostgresPointageRepository) Create(context context.Context, pointage *Pointage) error {
	const query = `
		INSERT INTO pointage_heures (projet_id, user_id, date_travail, heures_debut, heures_fin, duree_heures, lot_rattachement)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := repository.pool.QueryRow(context, query,
		pointage.ProjetID,
		pointage.UserID,
		pointage.DateTravail,
		pointage.HeuresDebut,
		pointage.HeuresFin,
		pointage.DureeHeures,
		pointage.LotRattachement,
	).Scan(&pointage.ID)

	if err != nil {
		return fmt.Errorf("postgres_pointage_repo_create_failed: %w", err)
	}

	return nil
}

/*
ListByUser retrieves a worker's timesheet rows over a date range.

Parameters:
  - context: context.Context
  - userID: int
  - from: time.Time
  - to: time.Time

Returns:
  - []Pointage: Entities ordered by work date
  - error: Execution errors
*/
func (repository *PostgresPointageRepository) ListByUser(context context.Context, userID int, from, to time.Time) ([]Pointage, error) {
	const query = `
		SELECT id, projet_id, user_id, date_travail, heures_debut, heures_fin, duree_heures, lot_rattachement
		FROM pointage_heures
		WHERE user_id = $1 AND date_travail >= $2 AND date_travail <= $3
		ORDER BY date_travail ASC, id ASC`

	rows, err := repository.pool.Query(context, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres_pointage_repo_list_failed: %w", err)
	}
	defer rows.Close()

	pointages := []Pointage{}
	for rows.Next() {
		var pointage Pointage
		err := rows.Scan(
			&pointage.ID,
			&pointage.ProjetID,
			&pointage.UserID,
			&pointage.DateTravail,
			&pointage.HeuresDebut,
			&pointage.HeuresFin,
			&pointage.DureeHeures,
			&pointage.LotRattachement,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_pointage_repo_scan_failed: %w", err)
		}
		pointages = append(pointages, pointage)
	}

	return pointages, rows.Err()
}
