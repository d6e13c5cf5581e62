// Copyright (c) 2026 DevisApp. All rights reserved.

package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kad123/DevisAppCC/internal/billing"
	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/constants"
	"github.com/Kad123/DevisAppCC/internal/platform/ctxutil"
	"github.com/Kad123/DevisAppCC/pkg/slice"
)

const (
	// generateAttempts is how many times a prompt is submitted before the
	// external service is declared unavailable.
	generateAttempts = 5

	// cacheTTL keeps a generated draft around long enough for the user to
	// tweak the prompt without paying for identical generations.
	cacheTTL = 24 * time.Hour
)

// QuoteBuilder is the narrow view of the billing layer this package needs:
// turning a validated draft into a persisted quote.
type QuoteBuilder interface {
	CreateDevis(context context.Context, userID int, input billing.DevisInput) (*billing.Devis, error)
}

// Service orchestrates generation, caching and quote persistence.
type Service struct {
	generator Generator
	cache     *redis.Client
	quotes    QuoteBuilder
}

// NewService constructs a new [Service] with its dependencies.
func NewService(generator Generator, cache *redis.Client, quotes QuoteBuilder) *Service {
	return &Service{
		generator: generator,
		cache:     cache,
		quotes:    quotes,
	}
}

/*
GenerateDevis turns a free-text description into a persisted draft quote on
the given project.

The prompt is first looked up in the Redis cache; on a miss the external
service is called with exponential backoff. The generated structure never
decides which project it lands on: the caller's projet_id always wins.

Parameters:
  - context: context.Context
  - userID: int
  - projetID: int
  - prompt: string

Returns:
  - *billing.Devis: Persisted quote with derived totals
  - error: apperr.ServiceUnavailable when every generation attempt failed
*/
func (service *Service) GenerateDevis(context context.Context, userID, projetID int, prompt string) (*billing.Devis, error) {
	draft, err := service.draftForPrompt(context, prompt)
	if err != nil {
		return nil, err
	}

	return service.quotes.CreateDevis(context, userID, billing.DevisInput{
		ProjetID:      projetID,
		Nom:           draft.Nom,
		TauxTVA:       draft.TauxTVA,
		ValiditeJours: draft.ValiditeJours,
		Lots: slice.Map(draft.Lots, func(lot LotDraft) billing.LotInput {
			return billing.LotInput{
				Nom:   lot.Nom,
				Ordre: lot.Ordre,
				Lignes: slice.Map(lot.LignesPoste, func(ligne LigneDraft) billing.LigneInput {
					return billing.LigneInput{
						Designation:    ligne.Designation,
						Unite:          ligne.Unite,
						Quantite:       ligne.Quantite,
						PrixUnitaireHT: ligne.PrixUnitaireHT,
					}
				}),
			}
		}),
	})
}

// draftForPrompt returns the cached draft for a prompt, generating and
// caching it on a miss. Cache failures are tolerated: the generation path
// still works when Redis is down.
func (service *Service) draftForPrompt(context context.Context, prompt string) (*DevisDraft, error) {
	logger := ctxutil.GetLogger(context)
	key := cacheKey(prompt)

	if cached, err := service.cache.Get(context, key).Result(); err == nil {
		draft := &DevisDraft{}
		if err := json.Unmarshal([]byte(cached), draft); err == nil {
			logger.DebugContext(context, "ai_draft_cache_hit", slog.String("key", key))
			return draft, nil
		}
		// Poisoned entry, drop it and regenerate.
		_ = service.cache.Del(context, key).Err()
	}

	draft, err := service.generateWithRetry(context, prompt)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(draft); err == nil {
		if err := service.cache.Set(context, key, encoded, cacheTTL).Err(); err != nil {
			logger.WarnContext(context, "ai_draft_cache_degraded", slog.String("error", err.Error()))
		}
	}

	return draft, nil
}

// generateWithRetry calls the external service up to generateAttempts times,
// sleeping 1s, 2s, 4s, 8s between attempts. Context cancellation aborts the
// wait immediately.
func (service *Service) generateWithRetry(context context.Context, prompt string) (*DevisDraft, error) {
	logger := ctxutil.GetLogger(context)

	var lastErr error
	for attempt := 0; attempt < generateAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-context.Done():
				return nil, context.Err()
			case <-time.After(backoff):
			}
		}

		draft, err := service.generator.Generate(context, prompt)
		if err == nil {
			return draft, nil
		}

		lastErr = err
		logger.WarnContext(context, "ai_generate_attempt_failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)
	}

	failure := apperr.ServiceUnavailable("Quote generation service is unavailable, please try again later")
	failure.Cause = fmt.Errorf("ai_generate_exhausted_after_%d_attempts: %w", generateAttempts, lastErr)
	return nil, failure
}

// cacheKey derives the Redis key for a prompt. Hashing keeps arbitrary user
// text out of the keyspace.
func cacheKey(prompt string) string {
	digest := sha256.Sum256([]byte(prompt))
	return constants.RedisPrefixAIDevis + hex.EncodeToString(digest[:])
}
