// Copyright (c) 2026 DevisApp. All rights reserved.

package chantier

import (
	"context"
	"time"
)

// # Milestone Data Access

// JalonRepository defines the data access contract for milestones.
type JalonRepository interface {

	/*
		Create persists a new milestone and hydrates the generated ID.

		Parameters:
		  - context: context.Context
		  - jalon: *Jalon

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, jalon *Jalon) error

	/*
		FindByID returns the milestone with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - *Jalon: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id int) (*Jalon, error)

	/*
		ListByProjet returns every milestone of a project, by planned date.

		Parameters:
		  - context: context.Context
		  - projetID: int

		Returns:
		  - []Jalon: Entities ordered by date_prevue
		  - error: Database retrieval failures
	*/
	ListByProjet(context context.Context, projetID int) ([]Jalon, error)

	/*
		Update persists the full state of a milestone.

		Parameters:
		  - context: context.Context
		  - jalon: *Jalon

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, jalon *Jalon) error

	/*
		Delete physically removes a milestone row.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id int) error
}

// # Journal Data Access

// JournalRepository defines the data access contract for site journal entries.
type JournalRepository interface {

	/*
		Create persists a new journal entry and hydrates the generated ID.

		Parameters:
		  - context: context.Context
		  - entry: *JournalEntry

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, entry *JournalEntry) error

	/*
		ListByProjet returns the most recent entries of a project.

		Parameters:
		  - context: context.Context
		  - projetID: int
		  - limit: int

		Returns:
		  - []JournalEntry: Entities, newest first
		  - error: Database retrieval failures
	*/
	ListByProjet(context context.Context, projetID, limit int) ([]JournalEntry, error)
}

// # Timesheet Data Access

// PointageRepository defines the data access contract for timesheet rows.
type PointageRepository interface {

	/*
		Create persists a new timesheet row and hydrates the generated ID.

		Parameters:
		  - context: context.Context
		  - pointage: *Pointage

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, pointage *Pointage) error

	/*
		ListByUser returns a worker's rows over a date range (payroll view).

		Parameters:
		  - context: context.Context
		  - userID: int
		  - from: time.Time
		  - to: time.Time

		Returns:
		  - []Pointage: Entities ordered by work date
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID int, from, to time.Time) ([]Pointage, error)
}
