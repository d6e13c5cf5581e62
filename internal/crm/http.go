// Copyright (c) 2026 DevisApp. All rights reserved.

// HTTP delivery layer for clients and projects.
package crm

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/Kad123/DevisAppCC/internal/platform/request"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
	"github.com/Kad123/DevisAppCC/pkg/convert"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// Handler implements the CRM HTTP endpoints.
type Handler struct {
	crmService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{crmService: service}
}

// ClientRoutes returns a [chi.Router] for the /clients resource.
//
// # Endpoints
//   - POST   /           : Creates a client.
//   - GET    /           : Lists clients (paginated).
//   - GET    /{id}       : Fetches one client.
//   - PATCH  /{id}       : Partially updates a client.
//   - DELETE /{id}       : Deletes a client.
func (handler *Handler) ClientRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createClient)
	router.Get("/", handler.listClients)
	router.Get("/{id}", handler.getClient)
	router.Patch("/{id}", handler.updateClient)
	router.Delete("/{id}", handler.deleteClient)

	return router
}

// ProjetRoutes returns a [chi.Router] for the /projets resource.
func (handler *Handler) ProjetRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createProjet)
	router.Get("/", handler.listProjets)
	router.Get("/{id}", handler.getProjet)
	router.Patch("/{id}", handler.updateProjet)
	router.Delete("/{id}", handler.deleteProjet)

	return router
}

// # Client Handlers

type clientRequest struct {
	NomSociete    string `json:"nom_societe"`
	NomContact    string `json:"nom_contact"`
	PrenomContact string `json:"prenom_contact"`
	Email         string `json:"email"`
	Telephone     string `json:"telephone"`
	Adresse       string `json:"adresse"`
}

/*
CreateClient registers a new customer account.

POST /api/v1/clients

Response:
  - 201: Client: Created entity
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) createClient(writer http.ResponseWriter, request *http.Request) {
	var input clientRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNomContact, input.NomContact).
		Required(FieldPrenomContact, input.PrenomContact).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	client, err := handler.crmService.CreateClient(request.Context(), ClientInput{
		NomSociete:    input.NomSociete,
		NomContact:    input.NomContact,
		PrenomContact: input.PrenomContact,
		Email:         input.Email,
		Telephone:     input.Telephone,
		Adresse:       input.Adresse,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, client)
}

// listClients returns a paginated client collection.
//
// GET /api/v1/clients?page=&limit=
func (handler *Handler) listClients(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	clients, total, err := handler.crmService.ListClients(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, clients, pagination.NewMeta(params.Page, params.Limit, total))
}

// getClient fetches one client by ID.
//
// GET /api/v1/clients/{id}
func (handler *Handler) getClient(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	client, err := handler.crmService.GetClient(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, client)
}

/*
UpdateClient partially updates a client.

PATCH /api/v1/clients/{id}

Only fields present in the JSON body are modified.
*/
func (handler *Handler) updateClient(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch ClientPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if patch.Email != nil {
		validator := &validate.Validator{}
		validator.Email(FieldEmail, *patch.Email)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	client, err := handler.crmService.UpdateClient(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, client)
}

// deleteClient removes a client.
//
// DELETE /api/v1/clients/{id}
func (handler *Handler) deleteClient(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.crmService.DeleteClient(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Project Handlers

type projetRequest struct {
	Nom         string `json:"nom"`
	Description string `json:"description"`
	ClientID    int    `json:"client_id"`
}

/*
CreateProjet opens a new project for an existing client.

POST /api/v1/projets

Response:
  - 201: Projet: Created entity with its generated reference code
  - 404: ErrNotFound: Owning client does not exist
*/
func (handler *Handler) createProjet(writer http.ResponseWriter, request *http.Request) {
	var input projetRequest

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

	if input.ClientID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldClientID, "must be a positive integer"))
		return
	}

	projet, err := handler.crmService.CreateProjet(request.Context(), ProjetInput{
		Nom:         input.Nom,
		Description: input.Description,
		ClientID:    input.ClientID,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, projet)
}

// listProjets returns a paginated project collection, optionally filtered by
// client.
//
// GET /api/v1/projets?client_id=&page=&limit=
func (handler *Handler) listProjets(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	clientID := convert.ToInt(request.URL.Query().Get(FieldClientID))

	projets, total, err := handler.crmService.ListProjets(request.Context(), clientID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, projets, pagination.NewMeta(params.Page, params.Limit, total))
}

// getProjet fetches one project by ID.
//
// GET /api/v1/projets/{id}
func (handler *Handler) getProjet(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	projet, err := handler.crmService.GetProjet(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, projet)
}

/*
UpdateProjet partially updates a project.

PATCH /api/v1/projets/{id}

The statut field, when present, must belong to the accepted vocabulary.
*/
func (handler *Handler) updateProjet(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch ProjetPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if patch.Statut != nil {
		validator := &validate.Validator{}
		validator.OneOf(FieldStatut, *patch.Statut, ProjetStatuts)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	projet, err := handler.crmService.UpdateProjet(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, projet)
}

// deleteProjet removes a project.
//
// DELETE /api/v1/projets/{id}
func (handler *Handler) deleteProjet(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.crmService.DeleteProjet(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
