// Copyright (c) 2026 DevisApp. All rights reserved.

// HTTP delivery layer for site tracking.
package chantier

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/Kad123/DevisAppCC/internal/platform/request"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
	"github.com/Kad123/DevisAppCC/pkg/convert"
)

// dateLayout is the wire format for plain dates in query strings.
const dateLayout = "2006-01-02"

// Handler implements the site-tracking HTTP endpoints.
type Handler struct {
	chantierService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{chantierService: service}
}

// Routes returns a [chi.Router] for the /chantier resource.
//
// # Endpoints
//   - POST   /jalons               : Adds a milestone to a project schedule.
//   - GET    /jalons?projet_id=    : Lists a project's milestones.
//   - POST   /jalons/{id}/terminer : Marks a milestone done, stamps the date.
//   - DELETE /jalons/{id}          : Removes a milestone.
//   - POST   /journal              : Appends a site journal entry.
//   - GET    /journal?projet_id=   : Lists the newest journal entries.
//   - POST   /pointage             : Records worked hours for the caller.
//   - GET    /pointage?start=&end= : Lists the caller's timesheet rows.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/jalons", handler.createJalon)
	router.Get("/jalons", handler.listJalons)
	router.Post("/jalons/{id}/terminer", handler.completeJalon)
	router.Delete("/jalons/{id}", handler.deleteJalon)

	router.Post("/journal", handler.createJournalEntry)
	router.Get("/journal", handler.listJournal)

	router.Post("/pointage", handler.createPointage)
	router.Get("/pointage", handler.listPointages)

	return router
}

// # Milestones

type jalonRequest struct {
	ProjetID   int       `json:"projet_id"`
	Nom        string    `json:"nom"`
	DatePrevue time.Time `json:"date_prevue"`
}

/*
CreateJalon adds a planned milestone to a project.

POST /api/v1/chantier/jalons

Response:
  - 201: Jalon: Created milestone
  - 404: ErrNotFound: Project does not exist
*/
func (handler *Handler) createJalon(writer http.ResponseWriter, request *http.Request) {
	var input jalonRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNom, input.Nom)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ProjetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}
	if input.DatePrevue.IsZero() {
		respond.Error(writer, request, validate.RequiredError(FieldDatePrevue, "is required"))
		return
	}

	jalon, err := handler.chantierService.CreateJalon(request.Context(), JalonInput{
		ProjetID:   input.ProjetID,
		Nom:        input.Nom,
		DatePrevue: input.DatePrevue,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, jalon)
}

// listJalons returns a project's milestones by planned date.
//
// GET /api/v1/chantier/jalons?projet_id=
func (handler *Handler) listJalons(writer http.ResponseWriter, request *http.Request) {
	projetID := convert.ToInt(request.URL.Query().Get(FieldProjetID))
	if projetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}

	jalons, err := handler.chantierService.ListJalonsByProjet(request.Context(), projetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, jalons)
}

/*
CompleteJalon marks a milestone done and stamps the realization date.

POST /api/v1/chantier/jalons/{id}/terminer

Response:
  - 200: Jalon: Milestone with termine=true and date_realisation set
  - 404: ErrNotFound: Milestone does not exist
*/
func (handler *Handler) completeJalon(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	jalon, err := handler.chantierService.CompleteJalon(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, jalon)
}

// deleteJalon removes a milestone from the schedule.
//
// DELETE /api/v1/chantier/jalons/{id}
func (handler *Handler) deleteJalon(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.chantierService.DeleteJalon(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Site Journal

type journalRequest struct {
	ProjetID    int    `json:"projet_id"`
	TypeEntry   string `json:"type_entry"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
}

/*
CreateJournalEntry appends an observation to a project's site log.

POST /api/v1/chantier/journal

The author is the authenticated caller; an omitted type defaults to Note.

Response:
  - 201: JournalEntry: Created entry
  - 404: ErrNotFound: Project does not exist
*/
func (handler *Handler) createJournalEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input journalRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldDescription, input.Description)
	if input.TypeEntry != "" {
		validator.OneOf(FieldTypeEntry, input.TypeEntry, JournalTypes)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ProjetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}

	entry, err := handler.chantierService.CreateJournalEntry(request.Context(), userID, JournalInput{
		ProjetID:    input.ProjetID,
		TypeEntry:   input.TypeEntry,
		Description: input.Description,
		FileURL:     input.FileURL,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

// listJournal returns the newest journal entries of a project.
//
// GET /api/v1/chantier/journal?projet_id=&limit=
func (handler *Handler) listJournal(writer http.ResponseWriter, request *http.Request) {
	projetID := convert.ToInt(request.URL.Query().Get(FieldProjetID))
	if projetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}

	limit := convert.ToInt(request.URL.Query().Get("limit"))

	entries, err := handler.chantierService.ListJournalByProjet(request.Context(), projetID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// # Hour Tracking

type pointageRequest struct {
	ProjetID        int       `json:"projet_id"`
	DateTravail     time.Time `json:"date_travail"`
	HeuresDebut     time.Time `json:"heures_debut"`
	HeuresFin       time.Time `json:"heures_fin"`
	LotRattachement string    `json:"lot_rattachement"`
}

/*
CreatePointage records the caller's worked hours on a project.

POST /api/v1/chantier/pointage

Response:
  - 201: Pointage: Created row with derived duree_heures
  - 400: ErrValidation: heures_fin not after heures_debut
  - 404: ErrNotFound: Project does not exist
*/
func (handler *Handler) createPointage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input pointageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.ProjetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}
	if input.HeuresDebut.IsZero() || input.HeuresFin.IsZero() {
		respond.Error(writer, request, validate.RequiredError(FieldHeuresDebut, "start and end times are required"))
		return
	}

	if input.DateTravail.IsZero() {
		input.DateTravail = input.HeuresDebut
	}

	pointage, err := handler.chantierService.CreatePointage(request.Context(), userID, PointageInput{
		ProjetID:        input.ProjetID,
		DateTravail:     input.DateTravail,
		HeuresDebut:     input.HeuresDebut,
		HeuresFin:       input.HeuresFin,
		LotRattachement: input.LotRattachement,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pointage)
}

// listPointages returns the caller's timesheet rows over a date range.
// Omitted bounds default to the last 30 days.
//
// GET /api/v1/chantier/pointage?start=2026-01-01&end=2026-01-31
func (handler *Handler) listPointages(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := request.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("start", "must be a date in YYYY-MM-DD format"))
			return
		}
		from = parsed
	}
	if raw := request.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("end", "must be a date in YYYY-MM-DD format"))
			return
		}
		// Inclusive upper bound covers the whole end day.
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	pointages, err := handler.chantierService.ListPointagesByUser(request.Context(), userID, from, to)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pointages)
}
