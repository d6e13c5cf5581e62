// Copyright (c) 2026 DevisApp. All rights reserved.

package chantier

import (
	"context"
	"time"

	"github.com/Kad123/DevisAppCC/internal/crm"
	"github.com/Kad123/DevisAppCC/internal/platform/clock"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
	"github.com/Kad123/DevisAppCC/pkg/pointer"
)

// ProjetDirectory is the narrow view of the CRM layer this package needs:
// proof that the target project exists before attaching site records to it.
type ProjetDirectory interface {
	FindByID(context context.Context, id int) (*crm.Projet, error)
}

// Service implements site-tracking business logic over the storage contracts.
type Service struct {
	jalonRepository    JalonRepository
	journalRepository  JournalRepository
	pointageRepository PointageRepository
	projets            ProjetDirectory
	clock              clock.Clock
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	jalonRepository JalonRepository,
	journalRepository JournalRepository,
	pointageRepository PointageRepository,
	projets ProjetDirectory,
	clk clock.Clock,
) *Service {
	return &Service{
		jalonRepository:    jalonRepository,
		journalRepository:  journalRepository,
		pointageRepository: pointageRepository,
		projets:            projets,
		clock:              clk,
	}
}

// # Milestones

// JalonInput carries the caller-supplied fields of a new milestone.
type JalonInput struct {
	ProjetID   int
	Nom        string
	DatePrevue time.Time
}

/*
CreateJalon adds a planned milestone to a project's schedule.

Parameters:
  - context: context.Context
  - input: JalonInput

Returns:
  - *Jalon: Created milestone
  - error: apperr.NotFound when the project is missing
*/
func (service *Service) CreateJalon(context context.Context, input JalonInput) (*Jalon, error) {
	if _, err := service.projets.FindByID(context, input.ProjetID); err != nil {
		return nil, err
	}

	jalon := &Jalon{
		ProjetID:   input.ProjetID,
		Nom:        input.Nom,
		DatePrevue: input.DatePrevue,
	}

	if err := service.jalonRepository.Create(context, jalon); err != nil {
		return nil, err
	}

	return jalon, nil
}

/*
CompleteJalon marks a milestone as done and stamps the realization date.

Completing an already completed milestone is a no-op that keeps the
original realization date.

Parameters:
  - context: context.Context
  - id: int

Returns:
  - *Jalon: Updated milestone
  - error: apperr.NotFound when the milestone is missing
*/
func (service *Service) CompleteJalon(context context.Context, id int) (*Jalon, error) {
	jalon, err := service.jalonRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if jalon.Termine {
		return jalon, nil
	}

	jalon.Termine = true
	jalon.DateRealisation = pointer.To(service.clock.Now())

	if err := service.jalonRepository.Update(context, jalon); err != nil {
		return nil, err
	}

	return jalon, nil
}

// ListJalonsByProjet returns a project's milestones by planned date. The
// project itself is checked first so a wrong ID reads as 404, not an empty
// list.
func (service *Service) ListJalonsByProjet(context context.Context, projetID int) ([]Jalon, error) {
	if _, err := service.projets.FindByID(context, projetID); err != nil {
		return nil, err
	}

	return service.jalonRepository.ListByProjet(context, projetID)
}

// DeleteJalon removes a milestone from the schedule.
func (service *Service) DeleteJalon(context context.Context, id int) error {
	if _, err := service.jalonRepository.FindByID(context, id); err != nil {
		return err
	}

	return service.jalonRepository.Delete(context, id)
}

// # Site Journal

// JournalInput carries the caller-supplied fields of a new journal entry.
type JournalInput struct {
	ProjetID    int
	TypeEntry   string
	Description string
	FileURL     string
}

// DefaultJournalLimit bounds a journal listing when the caller gives none.
const DefaultJournalLimit = 50

/*
CreateJournalEntry appends a dated observation to a project's site log.

The author is always the authenticated caller; an empty type defaults to
Note.

Parameters:
  - context: context.Context
  - userID: int
  - input: JournalInput

Returns:
  - *JournalEntry: Created entry
  - error: apperr.NotFound when the project is missing
*/
func (service *Service) CreateJournalEntry(context context.Context, userID int, input JournalInput) (*JournalEntry, error) {
	if _, err := service.projets.FindByID(context, input.ProjetID); err != nil {
		return nil, err
	}

	typeEntry := input.TypeEntry
	if typeEntry == "" {
		typeEntry = EntryNote
	}

	entry := &JournalEntry{
		ProjetID:    input.ProjetID,
		UserID:      userID,
		DateEntry:   service.clock.Now(),
		TypeEntry:   typeEntry,
		Description: input.Description,
		FileURL:     input.FileURL,
	}

	if err := service.journalRepository.Create(context, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListJournalByProjet returns the newest entries of a project's site log.
// A non-positive limit falls back to DefaultJournalLimit.
func (service *Service) ListJournalByProjet(context context.Context, projetID, limit int) ([]JournalEntry, error) {
	if _, err := service.projets.FindByID(context, projetID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultJournalLimit
	}

	return service.journalRepository.ListByProjet(context, projetID, limit)
}

// # Hour Tracking

// PointageInput carries the caller-supplied fields of a new timesheet row.
type PointageInput struct {
	ProjetID        int
	DateTravail     time.Time
	HeuresDebut     time.Time
	HeuresFin       time.Time
	LotRattachement string
}

/*
CreatePointage records a worker's hours on a project for one day.

The duration is always derived server-side from the start/end pair.

Parameters:
  - context: context.Context
  - userID: int
  - input: PointageInput

Returns:
  - *Pointage: Created row with derived duree_heures
  - error: Validation error when heures_fin is not after heures_debut
*/
func (service *Service) CreatePointage(context context.Context, userID int, input PointageInput) (*Pointage, error) {
	if _, err := service.projets.FindByID(context, input.ProjetID); err != nil {
		return nil, err
	}

	if !input.HeuresFin.After(input.HeuresDebut) {
		return nil, validate.RequiredError(FieldHeuresFin, "must be after heures_debut")
	}

	pointage := &Pointage{
		ProjetID:        input.ProjetID,
		UserID:          userID,
		DateTravail:     input.DateTravail,
		HeuresDebut:     input.HeuresDebut,
		HeuresFin:       input.HeuresFin,
		DureeHeures:     ComputeDuree(input.HeuresDebut, input.HeuresFin),
		LotRattachement: input.LotRattachement,
	}

	if err := service.pointageRepository.Create(context, pointage); err != nil {
		return nil, err
	}

	return pointage, nil
}

// ListPointagesByUser returns a worker's timesheet over a date range.
func (service *Service) ListPointagesByUser(context context.Context, userID int, from, to time.Time) ([]Pointage, error) {
	return service.pointageRepository.ListByUser(context, userID, from, to)
}
