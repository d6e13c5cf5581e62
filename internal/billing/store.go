// Copyright (c) 2026 DevisApp. All rights reserved.

package billing

import (
	"context"

	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// # Quote Data Access

// DevisRepository defines the data access contract for quotes.
type DevisRepository interface {

	/*
		Create persists a full quote with its lots and lines in one
		transaction, hydrating every generated ID.

		Parameters:
		  - context: context.Context
		  - devis: *Devis

		Returns:
		  - error: Transaction failures
	*/
	Create(context context.Context, devis *Devis) error

	/*
		FindByID returns the quote with its full lot/line tree.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - *Devis: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id int) (*Devis, error)

	/*
		List returns one page of quotes, optionally filtered by status.
		Lots are not hydrated on list queries.

		statut = "" means "all statuses".

		Parameters:
		  - context: context.Context
		  - statut: string
		  - params: pagination.Params

		Returns:
		  - []Devis: Page of entities (shallow)
		  - int: Total row count for the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, statut string, params pagination.Params) ([]Devis, int, error)

	/*
		Update persists the quote's scalar fields. Lots are untouched.

		Parameters:
		  - context: context.Context
		  - devis: *Devis

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, devis *Devis) error

	/*
		Delete removes a quote; lots and lines cascade at the schema level.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id int) error
}

// # Invoice Ledger Access

// FactureRepository defines the data access contract for the invoice ledger.
type FactureRepository interface {

	/*
		Insert appends a new invoice to the ledger.

		A unique violation on numero_facture is mapped to
		[ErrSequenceConflict] so the engine can retry the derivation.

		Parameters:
		  - context: context.Context
		  - facture: *Facture

		Returns:
		  - error: ErrSequenceConflict or persistence failures
	*/
	Insert(context context.Context, facture *Facture) error

	/*
		FindByID returns the invoice with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int

		Returns:
		  - *Facture: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id int) (*Facture, error)

	/*
		FindLatest returns the most recently inserted invoice, or
		apperr.NotFound when the ledger is empty.

		Parameters:
		  - context: context.Context

		Returns:
		  - *Facture: Latest ledger entry by insertion order
		  - error: Database retrieval failures
	*/
	FindLatest(context context.Context) (*Facture, error)

	/*
		FindValideeByDevis returns the Validée invoice attached to a quote,
		or apperr.NotFound when none exists.

		Parameters:
		  - context: context.Context
		  - devisID: int

		Returns:
		  - *Facture: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindValideeByDevis(context context.Context, devisID int) (*Facture, error)

	/*
		List returns one page of invoices plus the total count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []Facture: Page of entities
		  - int: Total row count
		  - error: Database retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]Facture, int, error)

	/*
		ListByDevis returns every invoice attached to a quote.

		Parameters:
		  - context: context.Context
		  - devisID: int

		Returns:
		  - []Facture: Attached entities
		  - error: Database retrieval failures
	*/
	ListByDevis(context context.Context, devisID int) ([]Facture, error)

	/*
		Update persists the mutable fields of a DRAFT invoice. The engine is
		responsible for refusing this call on Validée rows.

		Parameters:
		  - context: context.Context
		  - facture: *Facture

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, facture *Facture) error
}
