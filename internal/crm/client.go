// Copyright (c) 2026 DevisApp. All rights reserved.

/*
Package crm implements the customer-relationship layer: clients and their
projects (projets).

# Architecture

Entities defined here carry the French business vocabulary of the trade
(nom_societe, projet, statut) end to end, from the JSON surface down to the
column names, so that the API matches the documents artisans actually produce.
*/
package crm

import (
	"time"
)

// # Domain Entities

// Client represents a customer account (company or individual).
type Client struct {
	ID            int       `json:"id"`
	NomSociete    string    `json:"nom_societe,omitempty"`
	NomContact    string    `json:"nom_contact"`
	PrenomContact string    `json:"prenom_contact"`
	Email         string    `json:"email"`
	Telephone     string    `json:"telephone,omitempty"`
	Adresse       string    `json:"adresse,omitempty"`
	DateCreation  time.Time `json:"date_creation"`
}

// ClientPatch is the explicit optional-field patch for partial client updates.
//
// A nil field means "leave unchanged"; a non-nil field overwrites, including
// with an empty string.
type ClientPatch struct {
	NomSociete    *string `json:"nom_societe"`
	NomContact    *string `json:"nom_contact"`
	PrenomContact *string `json:"prenom_contact"`
	Email         *string `json:"email"`
	Telephone     *string `json:"telephone"`
	Adresse       *string `json:"adresse"`
}

// # Field Identifiers

const (
	FieldNomSociete    = "nom_societe"
	FieldNomContact    = "nom_contact"
	FieldPrenomContact = "prenom_contact"
	FieldEmail         = "email"
	FieldTelephone     = "telephone"
	FieldAdresse       = "adresse"
	FieldNom           = "nom"
	FieldDescription   = "description"
	FieldStatut        = "statut"
	FieldClientID      = "client_id"
)
