// Copyright (c) 2026 DevisApp. All rights reserved.

// Invoice numbering & immutability engine.
//
// # Numbering
//
// Numbers follow the literal pattern FAC-YYYYMMDD-NNN (credit notes:
// AVOIR-YYYYMMDD-NNN), zero-padded to width 3. The next number is always
// derived from the latest persisted invoice; when the ledger is empty or the
// latest number cannot be parsed, the sequence restarts at 001 under today's
// date prefix.
//
// # Serialization
//
// The read-then-derive-then-insert sequence is not locked. Instead, the
// unique index on numero_facture acts as a compare-and-swap: the engine
// treats a unique violation as "someone else took this number" and retries
// the whole derivation a bounded number of times. Callers never observe the
// conflict.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/constants"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// sequenceRetryLimit bounds the number-derivation retries under concurrent
// invoice creation before the operation is given up as a server error.
const sequenceRetryLimit = 3

// # Invoice Use Cases

/*
CreateFactureFromDevis generates a validated invoice from an accepted quote.

Description: Enforces the two ledger preconditions (invoiceable quote status,
at most one Validée invoice per quote), derives the next sequential number,
copies the quote totals, and appends the invoice with status Validée.

Parameters:
  - context: context.Context
  - devisID: int

Returns:
  - *Facture: Created ledger entry
  - error: NotFound, Unprocessable, Conflict, or storage failures
*/
func (service *Service) CreateFactureFromDevis(context context.Context, devisID int) (*Facture, error) {

	// ── 1. Preconditions ──
	devis, err := service.devisRepository.FindByID(context, devisID)
	if err != nil {
		return nil, err
	}

	if devis.Statut != DevisValide && devis.Statut != DevisAccepte {
		return nil, apperr.Unprocessable("Quote must be validated or accepted to generate an invoice")
	}

	if _, err := service.factureRepository.FindValideeByDevis(context, devisID); err == nil {
		return nil, apperr.Conflict("A validated invoice already exists for this quote")
	}

	// ── 2. Derive, insert, retry on sequence conflict ──
	facture := &Facture{
		DevisID:      devisID,
		TotalHT:      devis.TotalHT,
		TotalTTC:     devis.TotalTTC,
		DateEmission: service.clock.Now(),
		Statut:       FactureValidee,
	}

	if err := service.insertWithSequence(context, facture, constants.InvoicePrefix); err != nil {
		return nil, err
	}

	return facture, nil
}

/*
CreateAvoir generates a credit note against a validated invoice.

Description: The source invoice stays untouched. The avoir carries the next
sequential number under the AVOIR prefix, both totals negated, and the same
tax-franchise mention, with status Avoir.

Parameters:
  - context: context.Context
  - factureID: int

Returns:
  - *Facture: Created credit-note entry
  - error: NotFound (missing or non-validated source) or storage failures
*/
func (service *Service) CreateAvoir(context context.Context, factureID int) (*Facture, error) {

	source, err := service.factureRepository.FindByID(context, factureID)
	if err != nil {
		return nil, err
	}

	if source.Statut != FactureValidee {
		return nil, apperr.NotFound("Validated invoice")
	}

	avoir := &Facture{
		DevisID:             source.DevisID,
		TotalHT:             -source.TotalHT,
		TotalTTC:            -source.TotalTTC,
		DateEmission:        service.clock.Now(),
		MentionFranchiseTVA: source.MentionFranchiseTVA,
		Statut:              FactureAvoir,
	}

	if err := service.insertWithSequence(context, avoir, constants.CreditNotePrefix); err != nil {
		return nil, err
	}

	return avoir, nil
}

/*
UpdateFacture applies a partial update to a DRAFT invoice.

Description: Whenever the target is Validée the call fails with a
permission-denied IMMUTABLE_ENTITY error, regardless of which fields the
patch carries. This rule is absolute; corrections go through [CreateAvoir].

Parameters:
  - context: context.Context
  - id: int
  - patch: FacturePatch

Returns:
  - *Facture: Updated entity
  - error: NotFound, Immutable, or storage failures
*/
func (service *Service) UpdateFacture(context context.Context, id int, patch FacturePatch) (*Facture, error) {
	facture, err := service.factureRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if facture.Statut == FactureValidee {
		return nil, apperr.Immutable("Facture")
	}

	if patch.DatePrestation != nil {
		facture.DatePrestation = patch.DatePrestation
	}
	if patch.MentionFranchiseTVA != nil {
		facture.MentionFranchiseTVA = *patch.MentionFranchiseTVA
	}

	if err := service.factureRepository.Update(context, facture); err != nil {
		return nil, err
	}

	return facture, nil
}

// GetFacture returns a single invoice by ID.
func (service *Service) GetFacture(context context.Context, id int) (*Facture, error) {
	return service.factureRepository.FindByID(context, id)
}

// ListFactures returns one page of invoices plus the total count.
func (service *Service) ListFactures(context context.Context, params pagination.Params) ([]Facture, int, error) {
	return service.factureRepository.List(context, params)
}

// ListFacturesByDevis returns every invoice attached to a quote.
func (service *Service) ListFacturesByDevis(context context.Context, devisID int) ([]Facture, error) {
	return service.factureRepository.ListByDevis(context, devisID)
}

// # Numbering Engine

// insertWithSequence derives the next sequential number under the given
// prefix and inserts the invoice, retrying the whole derivation when a
// concurrent insert claimed the number first.
func (service *Service) insertWithSequence(context context.Context, facture *Facture, prefix string) error {
	var err error

	for attempt := 0; attempt < sequenceRetryLimit; attempt++ {
		number, deriveErr := service.nextNumber(context)
		if deriveErr != nil {
			return deriveErr
		}

		// Credit notes reuse the derived sequence under their own prefix.
		if prefix != constants.InvoicePrefix {
			number = strings.Replace(number, constants.InvoicePrefix, prefix, 1)
		}

		facture.NumeroFacture = number

		err = service.factureRepository.Insert(context, facture)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSequenceConflict) {
			return err
		}
		// Lost the race: re-read the ledger and derive again.
	}

	return apperr.Internal(fmt.Errorf("billing_sequence_exhausted_after_%d_attempts: %w", sequenceRetryLimit, err))
}

// nextNumber derives the next sequential invoice number.
//
// The latest persisted invoice is read by insertion order and its number
// parsed as PREFIX-NNN; on success NNN is incremented under the same prefix.
// An empty ledger or an unparseable number both restart the sequence at 001
// under today's date prefix.
func (service *Service) nextNumber(context context.Context) (string, error) {
	latest, err := service.factureRepository.FindLatest(context)

	if err == nil && latest.NumeroFacture != "" {
		if next, ok := incrementNumber(latest.NumeroFacture); ok {
			return next, nil
		}
	} else if err != nil {
		// Not-found means an empty ledger; anything else is a real failure.
		if ae := apperr.As(err); ae == nil || ae.Code != "NOT_FOUND" {
			return "", err
		}
	}

	today := service.clock.Now().Format(constants.InvoiceDateLayout)
	return fmt.Sprintf("%s-%s-%0*d", constants.InvoicePrefix, today, constants.InvoiceSequenceWidth, 1), nil
}

// incrementNumber parses PREFIX-NNN and increments the numeric suffix with
// zero padding. ok is false when the number does not match the pattern.
func incrementNumber(number string) (string, bool) {
	separator := strings.LastIndex(number, "-")
	if separator <= 0 || separator == len(number)-1 {
		return "", false
	}

	prefix := number[:separator]
	sequence, err := strconv.Atoi(number[separator+1:])
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%s-%0*d", prefix, constants.InvoiceSequenceWidth, sequence+1), true
}
