package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/config"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
)

// NewSemanticIndex creates the semantic index selected by cfg.SemanticStore.
// Weaviate class bootstrap runs asynchronously; the index is usable as soon
// as the classes exist.
func NewSemanticIndex(ctx context.Context, cfg *config.Config, log zerolog.Logger) (semantic.Index, error) {
	switch cfg.SemanticStore {
	case "chromem":
		return semantic.NewChromemIndex(), nil

	case "weaviate":
		idx, err := semantic.NewWeaviateIndex(cfg.WeaviateURL, cfg.SearchAlpha)
		if err != nil {
			return nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.StartupTimeoutSeconds)*time.Second)
			defer cancel()
			if err := semantic.BootstrapWeaviate(bootstrapCtx, cfg.WeaviateURL); err != nil {
				log.Warn().Err(err).Str("url", cfg.WeaviateURL).Msg("semantic index bootstrap failed")
			} else {
				log.Debug().Str("url", cfg.WeaviateURL).Msg("semantic index bootstrap completed")
			}
		}()
		return idx, nil

	default:
		return nil, fmt.Errorf("unknown SEMANTIC_STORE: %s", cfg.SemanticStore)
	}
}
