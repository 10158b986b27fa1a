package memory

import (
	"context"
	"fmt"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/safety"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
)

// CreatePlanRequest carries a generated plan ready for persistence.
type CreatePlanRequest struct {
	UserID    string
	WeekStart string
	Meals     []*model.PlannedMeal
	CreatedBy string
}

// CreatePlanResult is the stored plan plus non-fatal advisories and warnings.
type CreatePlanResult struct {
	Plan       *model.MealPlan   `json:"plan"`
	Advisories []safety.Conflict `json:"advisories,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// CreateMealPlan screens the meals against the user's restrictions, then
// stores and activates the plan in one transaction. A critical allergen
// conflict fails the whole operation before anything is written. The per-user
// lock serializes concurrent activations.
func (s *Service) CreateMealPlan(ctx context.Context, req *CreatePlanRequest) (*CreatePlanResult, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	if req.WeekStart == "" {
		return nil, fmt.Errorf("%w: weekStart is required", model.ErrValidation)
	}
	if len(req.Meals) == 0 {
		return nil, fmt.Errorf("%w: plan has no meals", model.ErrValidation)
	}
	for _, m := range req.Meals {
		if m.Day < 1 || m.Day > 7 {
			return nil, fmt.Errorf("%w: meal day %d out of range", model.ErrValidation, m.Day)
		}
		if model.SlotRank(m.Slot) > 4 {
			return nil, fmt.Errorf("%w: unknown meal slot %q", model.ErrValidation, m.Slot)
		}
	}

	if _, err := s.store.Users().Get(ctx, req.UserID); err != nil {
		return nil, err
	}

	restrictions, err := s.store.Restrictions().List(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: load restrictions: %v", model.ErrStorage, err)
	}

	verdict := safety.Screen(req.Meals, restrictions)
	if !verdict.OK() {
		return nil, fmt.Errorf("%w: %s", model.ErrSafetyViolation, verdict.Fatal[0].String())
	}

	mu := s.userLock(req.UserID)
	mu.Lock()
	plan, err := s.store.MealPlans().Create(ctx, &model.MealPlan{
		UserID:         req.UserID,
		WeekStart:      req.WeekStart,
		CreatedByAgent: req.CreatedBy,
	}, req.Meals)
	mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: create plan: %v", model.ErrStorage, err)
	}

	result := &CreatePlanResult{Plan: plan, Advisories: verdict.Advisory}

	// Best-effort semantic log of the plan creation.
	text := fmt.Sprintf("Created meal plan for week of %s with %d meals", req.WeekStart, len(plan.Meals))
	if err := s.indexRecord(ctx, semantic.CollectionConversations, req.UserID, text, map[string]string{
		"role":   "agent",
		"agent":  req.CreatedBy,
		"planId": plan.PlanID,
	}); err != nil {
		s.warnIndex(&result.Warnings, "plan creation not logged to memory", err)
	}

	s.log.Info().
		Str("userId", req.UserID).
		Str("planId", plan.PlanID).
		Int("meals", len(plan.Meals)).
		Msg("meal plan created")
	return result, nil
}

// GetMealPlan returns a plan by id with its meals in serving order.
func (s *Service) GetMealPlan(ctx context.Context, planID string) (*model.MealPlan, error) {
	return s.store.MealPlans().GetByID(ctx, planID)
}

// GetActiveMealPlan returns the user's single active plan or ErrNotFound.
func (s *Service) GetActiveMealPlan(ctx context.Context, userID string) (*model.MealPlan, error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.MealPlans().GetActive(ctx, userID)
}
