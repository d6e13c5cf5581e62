// Copyright (c) 2026 DevisApp. All rights reserved.

// HTTP delivery layer for AI-assisted quote generation.
package ai

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/Kad123/DevisAppCC/internal/platform/request"
	"github.com/Kad123/DevisAppCC/internal/platform/respond"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
)

// Field identifiers for validation messages.
const (
	FieldPrompt   = "prompt"
	FieldProjetID = "projet_id"
)

// Handler implements the generation HTTP endpoints.
type Handler struct {
	aiService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{aiService: service}
}

// Routes returns a [chi.Router] for the AI generation surface.
//
// # Endpoints
//   - POST /devis/generate : Builds a draft quote from a free-text prompt.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/devis/generate", handler.generateDevis)

	return router
}

type generateDevisRequest struct {
	Prompt   string `json:"prompt"`
	ProjetID int    `json:"projet_id"`
}

/*
GenerateDevis turns a free-text description into a persisted draft quote.

POST /api/v1/ai/devis/generate

Response:
  - 201: Devis: Persisted draft with derived totals
  - 404: ErrNotFound: Target project does not exist
  - 503: SERVICE_UNAVAILABLE: Generation service exhausted its retries
*/
func (handler *Handler) generateDevis(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input generateDevisRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPrompt, input.Prompt).
		MinLen(FieldPrompt, input.Prompt, 10)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ProjetID <= 0 {
		respond.Error(writer, request, validate.RequiredError(FieldProjetID, "must be a positive integer"))
		return
	}

	devis, err := handler.aiService.GenerateDevis(request.Context(), userID, input.ProjetID, input.Prompt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, devis)
}
