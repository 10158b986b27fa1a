package planner

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

const maxPlanTokens = 8000

// AnthropicPlanner implements Planner on the Anthropic Messages API.
type AnthropicPlanner struct {
	client anthropic.Client
	model  string
}

// NewAnthropicPlanner creates a planner using the given API key and model.
func NewAnthropicPlanner(apiKey, modelName string) *AnthropicPlanner {
	return &AnthropicPlanner{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
	}
}

func (p *AnthropicPlanner) GenerateMealPlan(ctx context.Context, uc *model.UserContext, targets model.MacroTargets, weekStart string) ([]*model.PlannedMeal, error) {
	prompt := BuildPrompt(uc, targets)

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxPlanTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrBadPlan)
	}

	return ParseMeals(text)
}
