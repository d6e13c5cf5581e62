// Copyright (c) 2026 DevisApp. All rights reserved.

/*
Package chantier implements on-site tracking: milestones (jalons), the daily
site journal, and hour tracking (pointage).

All three entity families hang off a project and exist to answer one
question at the end of the job: what happened on site, when, and how many
hours did it cost.
*/
package chantier

import (
	"math"
	"time"
)

// # Milestones

// Jalon is one planned step of a site schedule (e.g. "Fondations").
type Jalon struct {
	ID              int        `json:"id"`
	ProjetID        int        `json:"projet_id"`
	Nom             string     `json:"nom"`
	DatePrevue      time.Time  `json:"date_prevue"`
	DateRealisation *time.Time `json:"date_realisation,omitempty"`
	Termine         bool       `json:"termine"`
}

// # Site Journal

// Journal entry types.
const (
	EntryNote     = "Note"
	EntryIncident = "Incident"
	EntryPhoto    = "Photo"
	EntryMeteo    = "Météo"
)

// JournalTypes lists every accepted journal entry type.
var JournalTypes = []string{EntryNote, EntryIncident, EntryPhoto, EntryMeteo}

// JournalEntry is one dated observation in a project's site log. The author
// is always the authenticated user who posted it.
type JournalEntry struct {
	ID          int       `json:"id"`
	ProjetID    int       `json:"projet_id"`
	UserID      int       `json:"user_id"`
	DateEntry   time.Time `json:"date_entry"`
	TypeEntry   string    `json:"type_entry"`
	Description string    `json:"description"`
	FileURL     string    `json:"file_url,omitempty"`
}

// # Hour Tracking

// Pointage is one timesheet row for a worker on a project.
//
// DureeHeures is always derived from the start/end pair, never
// client-supplied.
type Pointage struct {
	ID              int       `json:"id"`
	ProjetID        int       `json:"projet_id"`
	UserID          int       `json:"user_id"`
	DateTravail     time.Time `json:"date_travail"`
	HeuresDebut     time.Time `json:"heures_debut"`
	HeuresFin       time.Time `json:"heures_fin"`
	DureeHeures     float64   `json:"duree_heures"`
	LotRattachement string    `json:"lot_rattachement,omitempty"`
}

// ComputeDuree returns the worked duration in decimal hours, rounded to two
// decimals (1h30 -> 1.5).
func ComputeDuree(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours()*100) / 100
}

// # Field Identifiers

const (
	FieldNom         = "nom"
	FieldProjetID    = "projet_id"
	FieldDatePrevue  = "date_prevue"
	FieldTypeEntry   = "type_entry"
	FieldDescription = "description"
	FieldDateTravail = "date_travail"
	FieldHeuresDebut = "heures_debut"
	FieldHeuresFin   = "heures_fin"
)
