// Copyright (c) 2026 DevisApp. All rights reserved.

/*
Package billing implements quotes (devis) and the invoice numbering &
immutability engine (factures).

# Architecture

Quotes are fully mutable working documents with nested lots and line items
whose totals are always derived, never client-supplied. Invoices are the
opposite: once validated they form an append-only ledger where every
correction is a new negating record (avoir), never a mutation.
*/
package billing

import (
	"math"
	"time"

	"github.com/Kad123/DevisAppCC/pkg/slice"
)

// # Quote Status Vocabulary

// Devis statuses. Only Validé and Accepté make a quote invoiceable.
const (
	DevisBrouillon = "Brouillon"
	DevisEnvoye    = "Envoyé"
	DevisValide    = "Validé"
	DevisAccepte   = "Accepté"
	DevisRefuse    = "Refusé"
)

// DevisStatuts lists every accepted quote status.
var DevisStatuts = []string{
	DevisBrouillon,
	DevisEnvoye,
	DevisValide,
	DevisAccepte,
	DevisRefuse,
}

// # Quote Entities

// LignePoste is a single priced line inside a lot.
type LignePoste struct {
	ID             int     `json:"id"`
	LotID          int     `json:"-"`
	Designation    string  `json:"designation"`
	Unite          string  `json:"unite"`
	Quantite       float64 `json:"quantite"`
	PrixUnitaireHT float64 `json:"prix_unitaire_ht"`
	TotalLigneHT   float64 `json:"total_ligne_ht"`
}

// LotDevis groups line items under one work package (e.g. "Gros œuvre").
type LotDevis struct {
	ID          int          `json:"id"`
	DevisID     int          `json:"-"`
	Nom         string       `json:"nom"`
	Ordre       int          `json:"ordre"`
	TotalLotHT  float64      `json:"total_lot_ht"`
	LignesPoste []LignePoste `json:"lignes_poste"`
}

// Devis is a full quote with its nested lots and derived totals.
type Devis struct {
	ID            int        `json:"id"`
	ProjetID      int        `json:"projet_id"`
	ClientID      int        `json:"client_id"`
	UserID        int        `json:"user_id"`
	Nom           string     `json:"nom"`
	Statut        string     `json:"statut"`
	DateEmission  time.Time  `json:"date_emission"`
	TauxTVA       float64    `json:"taux_tva"`
	TotalHT       float64    `json:"total_ht"`
	TotalTTC      float64    `json:"total_ttc"`
	ValiditeJours int        `json:"validite_jours"`
	Lots          []LotDevis `json:"lots"`
}

// DevisPatch is the explicit optional-field patch for partial quote updates.
// Lots are never touched through a patch; they are set at creation only.
type DevisPatch struct {
	Nom           *string  `json:"nom"`
	Statut        *string  `json:"statut"`
	TauxTVA       *float64 `json:"taux_tva"`
	ValiditeJours *int     `json:"validite_jours"`
}

// # Total Computation

// Every monetary amount is rounded to the cent at each aggregation level, in
// this order: ligne, then lot, then devis. Reordering the rounding changes
// the results.

// ComputeLigneTotal returns quantity times unit price, rounded to 2 decimals.
func ComputeLigneTotal(ligne LignePoste) float64 {
	return round2(ligne.Quantite * ligne.PrixUnitaireHT)
}

// ComputeLotTotal sums the line totals of a lot, rounded to 2 decimals.
func ComputeLotTotal(lignes []LignePoste) float64 {
	total := slice.Reduce(lignes, 0.0, func(accumulator float64, ligne LignePoste) float64 {
		return accumulator + ligne.TotalLigneHT
	})
	return round2(total)
}

// ComputeDevisTotals derives the HT and TTC totals from the lot totals and
// the quote's VAT rate.
func ComputeDevisTotals(lots []LotDevis, tauxTVA float64) (totalHT, totalTTC float64) {
	totalHT = slice.Reduce(lots, 0.0, func(accumulator float64, lot LotDevis) float64 {
		return accumulator + lot.TotalLotHT
	})
	totalHT = round2(totalHT)
	totalTTC = ComputeTTC(totalHT, tauxTVA)
	return totalHT, totalTTC
}

// ComputeTTC applies the VAT rate (expressed in percent) to an HT amount.
func ComputeTTC(totalHT, tauxTVA float64) float64 {
	return round2(totalHT * (1 + tauxTVA/100.0))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// # Field Identifiers

const (
	FieldNom            = "nom"
	FieldStatut         = "statut"
	FieldProjetID       = "projet_id"
	FieldDevisID        = "devis_id"
	FieldTauxTVA        = "taux_tva"
	FieldValiditeJours  = "validite_jours"
	FieldLots           = "lots"
	FieldDesignation    = "designation"
	FieldUnite          = "unite"
	FieldQuantite       = "quantite"
	FieldPrixUnitaireHT = "prix_unitaire_ht"
)
