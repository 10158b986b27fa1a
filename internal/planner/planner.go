// Package planner generates weekly meal plans with an LLM. The facade treats
// planner failures as fatal for plan creation; nothing is persisted when the
// model call or parse fails.
package planner

import (
	"context"
	"errors"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// ErrUnavailable marks a failed model call (network, auth, rate limit).
// Callers may retry a bounded number of times; the HTTP layer maps it to 502.
var ErrUnavailable = errors.New("planner unavailable")

// ErrBadPlan marks a model response that could not be parsed into meals.
var ErrBadPlan = errors.New("planner returned malformed plan")

// Planner produces a full week of meals from user context and macro targets.
type Planner interface {
	GenerateMealPlan(ctx context.Context, uc *model.UserContext, targets model.MacroTargets, weekStart string) ([]*model.PlannedMeal, error)
}
