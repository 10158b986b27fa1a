package store

import (
	"context"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// Store exposes structured persistence operations required by the memory
// facade. Implementations live under internal/store/<driver>/
// (postgres, sqlite).
type Store interface {
	Users() Users
	Goals() Goals
	Restrictions() Restrictions
	Preferences() Preferences
	MealPlans() MealPlans
	Tracking() Tracking
}

type Users interface {
	Create(ctx context.Context, u *model.UserProfile) (*model.UserProfile, error)
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	Update(ctx context.Context, u *model.UserProfile) (*model.UserProfile, error)
	// Delete removes the user and all dependent rows, children first,
	// in a single transaction.
	Delete(ctx context.Context, userID string) error
}

type Goals interface {
	// Create inserts a new goal and deactivates any prior active goal for
	// the user in the same transaction.
	Create(ctx context.Context, g *model.Goal) (*model.Goal, error)
	GetActive(ctx context.Context, userID string) (*model.Goal, error)
	List(ctx context.Context, userID string) ([]*model.Goal, error)
}

type Restrictions interface {
	Add(ctx context.Context, r *model.Restriction) (*model.Restriction, error)
	List(ctx context.Context, userID string) ([]*model.Restriction, error)
}

type Preferences interface {
	// Put replaces the user's preference snapshot, creating it if absent.
	Put(ctx context.Context, p *model.Preference) (*model.Preference, error)
	Get(ctx context.Context, userID string) (*model.Preference, error)
}

type MealPlans interface {
	// Create inserts the plan with its meals and activates it, deactivating
	// any prior active plan for the user, all in one transaction.
	Create(ctx context.Context, p *model.MealPlan, meals []*model.PlannedMeal) (*model.MealPlan, error)
	// GetByID returns the plan with meals ordered by day then slot.
	GetByID(ctx context.Context, planID string) (*model.MealPlan, error)
	GetActive(ctx context.Context, userID string) (*model.MealPlan, error)
	CountActive(ctx context.Context, userID string) (int, error)
}

type Tracking interface {
	LogActualMeal(ctx context.Context, a *model.ActualMeal) (*model.ActualMeal, error)
	ListActualMeals(ctx context.Context, userID string, limit int) ([]*model.ActualMeal, error)
	LogModification(ctx context.Context, m *model.Modification) (*model.Modification, error)
	ListModifications(ctx context.Context, planID string) ([]*model.Modification, error)
	LogDailyMacros(ctx context.Context, d *model.DailyMacroLog) (*model.DailyMacroLog, error)
	ListDailyMacros(ctx context.Context, userID string, limit int) ([]*model.DailyMacroLog, error)
}
