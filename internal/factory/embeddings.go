package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/config"
	emb "github.com/nutrigenie/nutrigenie/internal/embeddings"
	"github.com/nutrigenie/nutrigenie/internal/embeddings/ollama"
)

// NewEmbeddingProvider creates an embedding provider based on config.
// Launches an async warmup so the first real request does not pay the
// model-load latency; startup is not blocked on it.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) emb.Provider {
	var provider emb.Provider

	switch cfg.EmbedProvider {
	case "", "ollama":
		provider = ollama.New(cfg.OllamaURL, cfg.EmbedModel)
	default:
		log.Warn().Str("provider", cfg.EmbedProvider).Msg("unknown embedding provider; using ollama")
		provider = ollama.New(cfg.OllamaURL, cfg.EmbedModel)
	}

	go func() {
		warmupCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.StartupTimeoutSeconds)*time.Second)
		defer cancel()
		if vec, err := provider.Embed(warmupCtx, "factory-warmup-check"); err != nil || len(vec) == 0 {
			log.Warn().Err(err).Int("vec_len", len(vec)).
				Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup failed")
		} else {
			log.Debug().Str("model", cfg.EmbedModel).Msg("embedding provider warmup completed")
		}
	}()

	return provider
}
