// Copyright (c) 2026 DevisApp. All rights reserved.

package crm

import (
	"time"
)

// # Project Entity

// Projet statuses follow the commercial funnel of a construction job.
const (
	StatutBrouillonDevis = "Brouillon Devis"
	StatutDevisEnvoye    = "Devis Envoyé"
	StatutEnCours        = "En Cours"
	StatutTermine        = "Terminé"
)

// ProjetStatuts lists every accepted project status, in funnel order.
var ProjetStatuts = []string{
	StatutBrouillonDevis,
	StatutDevisEnvoye,
	StatutEnCours,
	StatutTermine,
}

// Projet represents one construction job attached to a client.
//
// CodeReference is a URL-safe slug derived from the project name at creation
// time and never regenerated afterwards, so external documents referencing it
// stay valid across renames.
type Projet struct {
	ID            int       `json:"id"`
	Nom           string    `json:"nom"`
	Description   string    `json:"description,omitempty"`
	Statut        string    `json:"statut"`
	CodeReference string    `json:"code_reference"`
	ClientID      int       `json:"client_id"`
	DateCreation  time.Time `json:"date_creation"`
}

// ProjetPatch is the explicit optional-field patch for partial project updates.
type ProjetPatch struct {
	Nom         *string `json:"nom"`
	Description *string `json:"description"`
	Statut      *string `json:"statut"`
}
