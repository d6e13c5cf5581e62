// Copyright (c) 2026 DevisApp. All rights reserved.

package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kad123/DevisAppCC/internal/ai"
	"github.com/Kad123/DevisAppCC/internal/billing"
)

// # Fakes

// unreachableCache returns a client pointing nowhere. The service must treat
// every cache failure as a miss and keep working.
func unreachableCache() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
}

type stubGenerator struct {
	draft    *ai.DevisDraft
	failures int
	calls    int
}

func (stub *stubGenerator) Generate(_ context.Context, _ string) (*ai.DevisDraft, error) {
	stub.calls++
	if stub.calls <= stub.failures {
		return nil, errors.New("upstream flapping")
	}
	return stub.draft, nil
}

type fakeQuoteBuilder struct {
	lastUserID int
	lastInput  billing.DevisInput
}

func (builder *fakeQuoteBuilder) CreateDevis(_ context.Context, userID int, input billing.DevisInput) (*billing.Devis, error) {
	builder.lastUserID = userID
	builder.lastInput = input
	return &billing.Devis{ID: 1, ProjetID: input.ProjetID, Nom: input.Nom}, nil
}

func sampleDraft() *ai.DevisDraft {
	return &ai.DevisDraft{
		Nom:           "Rénovation salle de bain",
		TauxTVA:       10,
		ValiditeJours: 45,
		Lots: []ai.LotDraft{
			{Nom: "Plomberie", Ordre: 1, LignesPoste: []ai.LigneDraft{
				{Designation: "Remplacement baignoire", Unite: "u", Quantite: 1, PrixUnitaireHT: 850},
			}},
		},
	}
}

// # HTTP Client

/*
TestClient_Generate parses the external service's JSON payload and forwards
the API key as a bearer credential.
*/
func TestClient_Generate(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotAuth = request.Header.Get("Authorization")

		var body map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, "refaire la salle de bain", body["prompt"])

		require.NoError(t, json.NewEncoder(writer).Encode(sampleDraft()))
	}))
	defer server.Close()

	client := ai.NewClient(server.URL, "test-api-key")

	draft, err := client.Generate(context.Background(), "refaire la salle de bain")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "Rénovation salle de bain", draft.Nom)
	require.Len(t, draft.Lots, 1)
	assert.Equal(t, "Plomberie", draft.Lots[0].Nom)
}

/*
TestClient_Generate_Failures treats non-200 statuses and empty drafts as
errors so the retry policy upstream can take over.
*/
func TestClient_Generate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"upstream_error", func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed_body", func(writer http.ResponseWriter, _ *http.Request) {
			_, _ = writer.Write([]byte("not json"))
		}},
		{"empty_draft", func(writer http.ResponseWriter, _ *http.Request) {
			_, _ = writer.Write([]byte(`{"nom":"","lots":[]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := ai.NewClient(server.URL, "")
			_, err := client.Generate(context.Background(), "prompt")
			assert.Error(t, err)
		})
	}
}

// # Generation Service

/*
TestService_GenerateDevis maps the draft into a billing quote request; the
caller's project always wins over anything the draft might claim.
*/
func TestService_GenerateDevis(t *testing.T) {
	generator := &stubGenerator{draft: sampleDraft()}
	builder := &fakeQuoteBuilder{}
	service := ai.NewService(generator, unreachableCache(), builder)

	devis, err := service.GenerateDevis(context.Background(), 42, 7, "refaire la salle de bain complète")
	require.NoError(t, err)
	require.NotNil(t, devis)

	assert.Equal(t, 42, builder.lastUserID)
	assert.Equal(t, 7, builder.lastInput.ProjetID)
	assert.Equal(t, "Rénovation salle de bain", builder.lastInput.Nom)
	assert.InDelta(t, 10.0, builder.lastInput.TauxTVA, 0.0001)
	assert.Equal(t, 45, builder.lastInput.ValiditeJours)

	require.Len(t, builder.lastInput.Lots, 1)
	require.Len(t, builder.lastInput.Lots[0].Lignes, 1)
	assert.Equal(t, "Remplacement baignoire", builder.lastInput.Lots[0].Lignes[0].Designation)
}

/*
TestService_GenerateDevis_RetriesOnce recovers transparently from a single
upstream failure.
*/
func TestService_GenerateDevis_RetriesOnce(t *testing.T) {
	generator := &stubGenerator{draft: sampleDraft(), failures: 1}
	builder := &fakeQuoteBuilder{}
	service := ai.NewService(generator, unreachableCache(), builder)

	_, err := service.GenerateDevis(context.Background(), 42, 7, "refaire la salle de bain complète")
	require.NoError(t, err)
	assert.Equal(t, 2, generator.calls)
}

/*
TestService_GenerateDevis_CancelledContext aborts the backoff wait instead
of sleeping out the full retry schedule.
*/
func TestService_GenerateDevis_CancelledContext(t *testing.T) {
	generator := &stubGenerator{draft: sampleDraft(), failures: 5}
	builder := &fakeQuoteBuilder{}
	service := ai.NewService(generator, unreachableCache(), builder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.GenerateDevis(ctx, 42, 7, "refaire la salle de bain complète")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Only the first attempt ran before the wait was aborted.
	assert.Equal(t, 1, generator.calls)
}
