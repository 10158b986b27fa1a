package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()

	// Users
	u := &model.UserProfile{
		UserID:        userID,
		Name:          "Test User",
		Age:           30,
		Sex:           "male",
		HeightCm:      175,
		WeightKg:      80,
		ActivityLevel: "moderately_active",
	}
	created, err := s.Users().Create(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Status != "ACTIVE" || created.CreationTime.IsZero() {
		t.Fatalf("CreateUser: status=%q creation=%v", created.Status, created.CreationTime)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got.Name != "Test User" {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}

	created.WeightKg = 78.5
	if upd, err := s.Users().Update(ctx, created); err != nil || upd.WeightKg != 78.5 {
		t.Fatalf("UpdateUser: got=%v err=%v", upd, err)
	}

	// Goals: second create deactivates the first
	g1, err := s.Goals().Create(ctx, &model.Goal{UserID: userID, GoalType: "maintain", DailyCalories: 2710, ProteinG: 203, CarbsG: 271, FatsG: 90})
	if err != nil {
		t.Fatalf("CreateGoal g1: %v", err)
	}
	g2, err := s.Goals().Create(ctx, &model.Goal{UserID: userID, GoalType: "cut", DailyCalories: 2410, ProteinG: 241, CarbsG: 180, FatsG: 80})
	if err != nil {
		t.Fatalf("CreateGoal g2: %v", err)
	}
	active, err := s.Goals().GetActive(ctx, userID)
	if err != nil || active.GoalID != g2.GoalID {
		t.Fatalf("GetActiveGoal: got=%v err=%v", active, err)
	}
	if lst, err := s.Goals().List(ctx, userID); err != nil || len(lst) != 2 {
		t.Fatalf("ListGoals: n=%d err=%v", len(lst), err)
	}
	_ = g1

	// Restrictions
	if _, err := s.Restrictions().Add(ctx, &model.Restriction{UserID: userID, Kind: model.RestrictionAllergy, Value: "peanut", Severity: model.SeverityCritical}); err != nil {
		t.Fatalf("AddRestriction: %v", err)
	}
	if lst, err := s.Restrictions().List(ctx, userID); err != nil || len(lst) != 1 || lst[0].Value != "peanut" {
		t.Fatalf("ListRestrictions: got=%v err=%v", lst, err)
	}

	// Preferences upsert
	p1, err := s.Preferences().Put(ctx, &model.Preference{UserID: userID, DietType: "omnivore", Cuisines: []string{"thai", "mexican"}, MealsPerDay: 3, MealComplexity: "moderate"})
	if err != nil {
		t.Fatalf("PutPreference: %v", err)
	}
	p2, err := s.Preferences().Put(ctx, &model.Preference{UserID: userID, DietType: "vegetarian", Cuisines: []string{"indian"}, MealsPerDay: 4, MealComplexity: "simple"})
	if err != nil {
		t.Fatalf("PutPreference update: %v", err)
	}
	if p2.PreferenceID != p1.PreferenceID {
		t.Fatalf("PutPreference: id changed on upsert: %s vs %s", p1.PreferenceID, p2.PreferenceID)
	}
	if got, err := s.Preferences().Get(ctx, userID); err != nil || got.DietType != "vegetarian" || len(got.Cuisines) != 1 {
		t.Fatalf("GetPreference: got=%v err=%v", got, err)
	}

	// Meal plans: ordering and single-active invariant
	meals := []*model.PlannedMeal{
		{Day: 2, Slot: model.SlotLunch, RecipeName: "Lentil Soup", Calories: 520, Ingredients: []string{"lentils", "carrot", "onion"}},
		{Day: 1, Slot: model.SlotDinner, RecipeName: "Paneer Tikka", Calories: 640, Ingredients: []string{"paneer", "yogurt", "spices"}},
		{Day: 1, Slot: model.SlotBreakfast, RecipeName: "Oatmeal", Calories: 380, Ingredients: []string{"oats", "banana"}},
	}
	plan1, err := s.MealPlans().Create(ctx, &model.MealPlan{UserID: userID, WeekStart: "2026-08-31", CreatedByAgent: "planner"}, meals)
	if err != nil {
		t.Fatalf("CreateMealPlan: %v", err)
	}
	got, err := s.MealPlans().GetByID(ctx, plan1.PlanID)
	if err != nil {
		t.Fatalf("GetMealPlan: %v", err)
	}
	if len(got.Meals) != 3 {
		t.Fatalf("GetMealPlan meals: n=%d", len(got.Meals))
	}
	if got.Meals[0].RecipeName != "Oatmeal" || got.Meals[1].RecipeName != "Paneer Tikka" || got.Meals[2].RecipeName != "Lentil Soup" {
		t.Fatalf("GetMealPlan order: %s, %s, %s", got.Meals[0].RecipeName, got.Meals[1].RecipeName, got.Meals[2].RecipeName)
	}
	if got.Meals[0].Ingredients[0] != "oats" || got.Meals[0].Ingredients[1] != "banana" {
		t.Fatalf("GetMealPlan ingredient order: %v", got.Meals[0].Ingredients)
	}

	plan2, err := s.MealPlans().Create(ctx, &model.MealPlan{UserID: userID, WeekStart: "2026-09-07", CreatedByAgent: "planner"}, nil)
	if err != nil {
		t.Fatalf("CreateMealPlan second: %v", err)
	}
	if n, err := s.MealPlans().CountActive(ctx, userID); err != nil || n != 1 {
		t.Fatalf("CountActive: n=%d err=%v", n, err)
	}
	if act, err := s.MealPlans().GetActive(ctx, userID); err != nil || act.PlanID != plan2.PlanID {
		t.Fatalf("GetActiveMealPlan: got=%v err=%v", act, err)
	}
	if _, err := s.MealPlans().GetByID(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetMealPlan missing: want ErrNotFound, got %v", err)
	}

	// Tracking
	if _, err := s.Tracking().LogActualMeal(ctx, &model.ActualMeal{UserID: userID, PlanID: &plan2.PlanID, Day: 1, Slot: model.SlotLunch, FoodDescription: "leftover soup", Calories: 480, LoggedByAgent: "tracker"}); err != nil {
		t.Fatalf("LogActualMeal: %v", err)
	}
	if lst, err := s.Tracking().ListActualMeals(ctx, userID, 10); err != nil || len(lst) != 1 {
		t.Fatalf("ListActualMeals: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Tracking().LogModification(ctx, &model.Modification{UserID: userID, PlanID: plan2.PlanID, Day: 1, ModificationType: "swap", OriginalCalories: 640, NewCalories: 480, Reason: "too heavy", AdjustedByAgent: "tracker"}); err != nil {
		t.Fatalf("LogModification: %v", err)
	}
	if lst, err := s.Tracking().ListModifications(ctx, plan2.PlanID); err != nil || len(lst) != 1 {
		t.Fatalf("ListModifications: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Tracking().LogDailyMacros(ctx, &model.DailyMacroLog{UserID: userID, PlanID: &plan2.PlanID, Date: "2026-09-07", PlannedCalories: 2400, ActualCalories: 2250, AdherenceScore: 0.94}); err != nil {
		t.Fatalf("LogDailyMacros: %v", err)
	}
	if lst, err := s.Tracking().ListDailyMacros(ctx, userID, 7); err != nil || len(lst) != 1 {
		t.Fatalf("ListDailyMacros: n=%d err=%v", len(lst), err)
	}

	// Cascade delete
	if err := s.Users().Delete(ctx, userID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.Users().Get(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser after delete: want ErrNotFound, got %v", err)
	}
	if _, err := s.MealPlans().GetByID(ctx, plan2.PlanID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetMealPlan after delete: want ErrNotFound, got %v", err)
	}
	if err := s.Users().Delete(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteUser twice: want ErrNotFound, got %v", err)
	}
}
