// Copyright (c) 2026 DevisApp. All rights reserved.

package billing

import (
	"errors"
	"time"
)

// # Invoice Status Vocabulary

// Facture statuses. Validée is write-once; Avoir is the negating correction.
const (
	FactureBrouillon = "Brouillon"
	FactureValidee   = "Validée"
	FactureAvoir     = "Avoir"
)

// FactureStatuts lists every accepted invoice status.
var FactureStatuts = []string{
	FactureBrouillon,
	FactureValidee,
	FactureAvoir,
}

// ErrSequenceConflict signals that a concurrently created invoice claimed the
// derived sequential number first. It stays internal: the service retries the
// derivation and the caller never sees it.
var ErrSequenceConflict = errors.New("billing: numero_facture already taken")

// # Invoice Entity

// Facture is one invoice ledger entry.
//
// # Immutability
//
// Once Statut is Validée the row is write-once: every field is frozen and the
// only legal follow-up is an Avoir record with negated totals. NumeroFacture
// is globally unique and never reused, even across failed attempts.
type Facture struct {
	ID                  int        `json:"id"`
	DevisID             int        `json:"devis_id"`
	NumeroFacture       string     `json:"numero_facture"`
	TotalHT             float64    `json:"total_ht"`
	TotalTTC            float64    `json:"total_ttc"`
	DateEmission        time.Time  `json:"date_emission"`
	DatePrestation      *time.Time `json:"date_prestation,omitempty"`
	MentionFranchiseTVA string     `json:"mention_franchise_tva,omitempty"`
	Statut              string     `json:"statut"`
}

// FacturePatch is the explicit optional-field patch for draft invoices.
//
// It deliberately has no slot for NumeroFacture, DevisID, or the totals:
// those are set once by the engine and are not mutable through any path.
type FacturePatch struct {
	DatePrestation      *time.Time `json:"date_prestation"`
	MentionFranchiseTVA *string    `json:"mention_franchise_tva"`
}
