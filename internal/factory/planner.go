package factory

import (
	"fmt"
	"os"

	"github.com/nutrigenie/nutrigenie/internal/config"
	"github.com/nutrigenie/nutrigenie/internal/planner"
)

// NewPlanner creates the LLM meal planner. The API key comes from the
// standard ANTHROPIC_API_KEY variable, not the NUTRIGENIE_ prefix, so the
// same credentials work for other tooling.
func NewPlanner(cfg *config.Config) (planner.Planner, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return planner.NewAnthropicPlanner(apiKey, cfg.AnthropicModel), nil
}
