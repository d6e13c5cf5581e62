// Copyright (c) 2026 DevisApp. All rights reserved.

// HTTP delivery layer for quotes.
package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/Kad123/DevisAppCC/internal/platform/request"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
	"github.com/Kad123/DevisAppCC/pkg/slice"
)

// Handler implements the billing HTTP endpoints.
type Handler struct {
	billingService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{billingService: service}
}

// DevisRoutes returns a [chi.Router] for the /devis resource.
//
// # Endpoints
//   - POST   /              : Creates a full quote (lots and lines inline).
//   - GET    /              : Lists quotes (paginated, optional statut filter).
//   - GET    /{id}          : Fetches one quote with its lot tree.
//   - PATCH  /{id}          : Partially updates a quote's scalar fields.
//   - DELETE /{id}          : Deletes a quote (lots/lines cascade).
//   - GET    /{id}/factures : Lists the invoices attached to a quote.
func (handler *Handler) DevisRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createDevis)
	router.Get("/", handler.listDevis)
	router.Get("/{id}", handler.getDevis)
	router.Patch("/{id}", handler.updateDevis)
	router.Delete("/{id}", handler.deleteDevis)
	router.Get("/{id}/factures", handler.listFacturesByDevis)

	return router
}

// # Request Payloads

type ligneRequest struct {
	Designation    string  `json:"designation"`
	Unite          string  `json:"unite"`
	Quantite       float64 `json:"quantite"`
	PrixUnitaireHT float64 `json:"prix_unitaire_ht"`
}

type lotRequest struct {
	Nom         string         `json:"nom"`
	Ordre       int            `json:"ordre"`
	LignesPoste []ligneRequest `json:"lignes_poste"`
}

type devisRequest struct {
	ProjetID      int          `json:"projet_id"`
	Nom           string       `json:"nom"`
	TauxTVA       float64      `json:"taux_tva"`
	ValiditeJours int          `json:"validite_jours"`
	Lots          []lotRequest `json:"lots"`
}

/*
CreateDevis builds a complete quote from the nested request payload.

POST /api/v1/devis

Response:
  - 201: Devis: Created entity with derived totals
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 404: ErrNotFound: Owning project does not exist
*/
func (handler *Handler) createDevis(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input devisRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNom, input.Nom).
		NonNegative(FieldTauxTVA, input.TauxTVA)

	for _, lot := range input.Lots {
		validator.Required(FieldLots+".nom", lot.Nom)
		for _, ligne := range lot.LignesPoste {
			validator.Required(FieldDesignation, ligne.Designation).
				Positive(FieldQuantite, ligne.Quantite).
				Positive(FieldPrixUnitaireHT, ligne.PrixUnitaireHT)
		}
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ProjetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}

	devis, err := handler.billingService.CreateDevis(request.Context(), userID, DevisInput{
		ProjetID:      input.ProjetID,
		Nom:           input.Nom,
		TauxTVA:       input.TauxTVA,
		ValiditeJours: input.ValiditeJours,
		Lots: slice.Map(input.Lots, func(lot lotRequest) LotInput {
			return LotInput{
				Nom:   lot.Nom,
				Ordre: lot.Ordre,
				Lignes: slice.Map(lot.LignesPoste, func(ligne ligneRequest) LigneInput {
					return LigneInput{
						Designation:    ligne.Designation,
						Unite:          ligne.Unite,
						Quantite:       ligne.Quantite,
						PrixUnitaireHT: ligne.PrixUnitaireHT,
					}
				}),
			}
		}),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, devis)
}

// listDevis returns a paginated quote collection, optionally filtered by
// status.
//
// GET /api/v1/devis?statut=&page=&limit=
func (handler *Handler) listDevis(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	statut := request.URL.Query().Get(FieldStatut)

	if statut != "" {
		validator := &validate.Validator{}
		validator.OneOf(FieldStatut, statut, DevisStatuts)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	collection, total, err := handler.billingService.ListDevis(request.Context(), statut, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, collection, pagination.NewMeta(params.Page, params.Limit, total))
}

// getDevis fetches one quote with its lot tree.
//
// GET /api/v1/devis/{id}
func (handler *Handler) getDevis(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	devis, err := handler.billingService.GetDevis(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, devis)
}

/*
UpdateDevis partially updates a quote's scalar fields.

PATCH /api/v1/devis/{id}

A changed taux_tva recomputes total_ttc; lots are never touched here.
*/
func (handler *Handler) updateDevis(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch DevisPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if patch.Statut != nil {
		validator.OneOf(FieldStatut, *patch.Statut, DevisStatuts)
	}
	if patch.TauxTVA != nil {
		validator.NonNegative(FieldTauxTVA, *patch.TauxTVA)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	devis, err := handler.billingService.UpdateDevis(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, devis)
}

// deleteDevis removes a quote and its lot/line tree.
//
// DELETE /api/v1/devis/{id}
func (handler *Handler) deleteDevis(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.billingService.DeleteDevis(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// listFacturesByDevis returns every invoice attached to a quote.
//
// GET /api/v1/devis/{id}/factures
func (handler *Handler) listFacturesByDevis(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	factures, err := handler.billingService.ListFacturesByDevis(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, factures)
}
