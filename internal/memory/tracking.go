package memory

import (
	"context"
	"fmt"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
)

// ActualMealResult wraps an appended meal row with semantic-echo warnings.
type ActualMealResult struct {
	Record   *model.ActualMeal `json:"record"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ModificationResult wraps an appended adjustment row with warnings.
type ModificationResult struct {
	Record   *model.Modification `json:"record"`
	Warnings []string            `json:"warnings,omitempty"`
}

// LogActualMeal appends what the user actually ate, then echoes it into
// conversation memory best-effort.
func (s *Service) LogActualMeal(ctx context.Context, a *model.ActualMeal) (*ActualMealResult, error) {
	if a.FoodDescription == "" {
		return nil, fmt.Errorf("%w: foodDescription is required", model.ErrValidation)
	}
	if a.Day < 1 || a.Day > 7 {
		return nil, fmt.Errorf("%w: day %d out of range", model.ErrValidation, a.Day)
	}
	if _, err := s.store.Users().Get(ctx, a.UserID); err != nil {
		return nil, err
	}

	stored, err := s.store.Tracking().LogActualMeal(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("%w: log actual meal: %v", model.ErrStorage, err)
	}

	result := &ActualMealResult{Record: stored}
	text := fmt.Sprintf("Ate %s (%d kcal) for %s", stored.FoodDescription, stored.Calories, stored.Slot)
	if err := s.indexRecord(ctx, semantic.CollectionConversations, stored.UserID, text, map[string]string{
		"role":  "agent",
		"agent": stored.LoggedByAgent,
	}); err != nil {
		s.warnIndex(&result.Warnings, "meal log not echoed to memory", err)
	}
	return result, nil
}

// LogModification appends a plan adjustment record.
func (s *Service) LogModification(ctx context.Context, m *model.Modification) (*ModificationResult, error) {
	if m.PlanID == "" {
		return nil, fmt.Errorf("%w: planId is required", model.ErrValidation)
	}
	if _, err := s.store.Users().Get(ctx, m.UserID); err != nil {
		return nil, err
	}
	if _, err := s.store.MealPlans().GetByID(ctx, m.PlanID); err != nil {
		return nil, err
	}

	stored, err := s.store.Tracking().LogModification(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%w: log modification: %v", model.ErrStorage, err)
	}

	result := &ModificationResult{Record: stored}
	text := fmt.Sprintf("Adjusted plan day %d (%s): %d to %d kcal because %s",
		stored.Day, stored.ModificationType, stored.OriginalCalories, stored.NewCalories, stored.Reason)
	if err := s.indexRecord(ctx, semantic.CollectionConversations, stored.UserID, text, map[string]string{
		"role":  "agent",
		"agent": stored.AdjustedByAgent,
	}); err != nil {
		s.warnIndex(&result.Warnings, "modification not echoed to memory", err)
	}
	return result, nil
}

// LogDailyMacros appends a planned-vs-actual intake record for one day.
func (s *Service) LogDailyMacros(ctx context.Context, d *model.DailyMacroLog) (*model.DailyMacroLog, error) {
	if d.Date == "" {
		return nil, fmt.Errorf("%w: date is required", model.ErrValidation)
	}
	if _, err := s.store.Users().Get(ctx, d.UserID); err != nil {
		return nil, err
	}
	stored, err := s.store.Tracking().LogDailyMacros(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("%w: log daily macros: %v", model.ErrStorage, err)
	}
	return stored, nil
}

// RecentActualMeals lists the latest tracked meals, newest first.
func (s *Service) RecentActualMeals(ctx context.Context, userID string, limit int) ([]*model.ActualMeal, error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Tracking().ListActualMeals(ctx, userID, limit)
}
