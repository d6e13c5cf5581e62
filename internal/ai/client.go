// Copyright (c) 2026 DevisApp. All rights reserved.

/*
Package ai turns free-text work descriptions into structured quote drafts by
calling an external text-to-JSON generation service.

The external service is treated as unreliable: every call is retried with
exponential backoff, successful generations are cached in Redis keyed by the
prompt digest, and exhaustion surfaces as a 503 so the caller can fall back
to manual quote entry.
*/
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds a single round trip to the generation service.
const requestTimeout = 60 * time.Second

// # Draft Shape

// LigneDraft is one generated work line inside a lot draft.
type LigneDraft struct {
	Designation    string  `json:"designation"`
	Unite          string  `json:"unite"`
	Quantite       float64 `json:"quantite"`
	PrixUnitaireHT float64 `json:"prix_unitaire_ht"`
}

// LotDraft is one generated work section of a quote draft.
type LotDraft struct {
	Nom         string       `json:"nom"`
	Ordre       int          `json:"ordre"`
	LignesPoste []LigneDraft `json:"lignes_poste"`
}

// DevisDraft is the structured quote skeleton returned by the generation
// service. It mirrors the nested create payload of the billing layer.
type DevisDraft struct {
	Nom           string     `json:"nom"`
	TauxTVA       float64    `json:"taux_tva"`
	ValiditeJours int        `json:"validite_jours"`
	Lots          []LotDraft `json:"lots"`
}

// # HTTP Client

// Generator is the outbound contract of this package, satisfied by [Client]
// and stubbed in tests.
type Generator interface {

	/*
		Generate submits a prompt and returns the structured draft.

		Parameters:
		  - context: context.Context
		  - prompt: string

		Returns:
		  - *DevisDraft: Parsed quote skeleton
		  - error: Transport, status or decoding failures
	*/
	Generate(context context.Context, prompt string) (*DevisDraft, error)
}

// Client calls the external text-to-JSON generation endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient constructs a generation client for the given endpoint.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate performs one round trip to the generation service. Any non-200
// status or malformed body is an error; retry policy lives in the service
// layer, not here.
func (client *Client) Generate(context context.Context, prompt string) (*DevisDraft, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("ai_client_encode_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, client.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai_client_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if client.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("ai_client_call_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))
		return nil, fmt.Errorf("ai_client_unexpected_status: %d", response.StatusCode)
	}

	draft := &DevisDraft{}
	if err := json.NewDecoder(response.Body).Decode(draft); err != nil {
		return nil, fmt.Errorf("ai_client_decode_failed: %w", err)
	}

	if draft.Nom == "" || len(draft.Lots) == 0 {
		return nil, fmt.Errorf("ai_client_empty_draft")
	}

	return draft, nil
}
