// Copyright (c) 2026 DevisApp. All rights reserved.

// HTTP delivery layer for invoices and credit notes.
package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/Kad123/DevisAppCC/internal/platform/request"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// FactureRoutes returns a [chi.Router] for the /factures resource.
//
// # Endpoints
//   - POST   /            : Generates a validated invoice from a quote.
//   - GET    /            : Lists invoices (paginated).
//   - GET    /{id}        : Fetches one invoice.
//   - PATCH  /{id}        : Updates a DRAFT invoice (403 on Validée).
//   - POST   /{id}/avoir  : Issues a credit note against a validated invoice.
func (handler *Handler) FactureRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createFacture)
	router.Get("/", handler.listFactures)
	router.Get("/{id}", handler.getFacture)
	router.Patch("/{id}", handler.updateFacture)
	router.Post("/{id}/avoir", handler.createAvoir)

	return router
}

type factureRequest struct {
	DevisID int `json:"devis_id"`
}

/*
CreateFacture generates a validated invoice from an accepted quote.

POST /api/v1/factures

Response:
  - 201: Facture: Created ledger entry with its sequential number
  - 404: ErrNotFound: Quote does not exist
  - 409: ErrConflict: A validated invoice already exists for this quote
  - 422: ErrUnprocessable: Quote status is not invoiceable
*/
func (handler *Handler) createFacture(writer http.ResponseWriter, request *http.Request) {
	var input factureRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.DevisID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldDevisID, "must be a positive integer"))
		return
	}

	facture, err := handler.billingService.CreateFactureFromDevis(request.Context(), input.DevisID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, facture)
}

/*
CreateAvoir issues a credit note against a validated invoice.

POST /api/v1/factures/{id}/avoir

Response:
  - 201: Facture: Credit note with negated totals and AVOIR number
  - 404: ErrNotFound: Source invoice missing or not validated
*/
func (handler *Handler) createAvoir(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	avoir, err := handler.billingService.CreateAvoir(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, avoir)
}

// listFactures returns a paginated invoice collection.
//
// GET /api/v1/factures?page=&limit=
func (handler *Handler) listFactures(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	factures, total, err := handler.billingService.ListFactures(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, factures, pagination.NewMeta(params.Page, params.Limit, total))
}

// getFacture fetches one invoice by ID.
//
// GET /api/v1/factures/{id}
func (handler *Handler) getFacture(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	facture, err := handler.billingService.GetFacture(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, facture)
}

/*
UpdateFacture updates a draft invoice.

PATCH /api/v1/factures/{id}

Response:
  - 200: Facture: Updated entity
  - 403: IMMUTABLE_ENTITY: The invoice is validated and frozen
  - 404: ErrNotFound: Invoice does not exist
*/
func (handler *Handler) updateFacture(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch FacturePatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	facture, err := handler.billingService.UpdateFacture(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, facture)
}
