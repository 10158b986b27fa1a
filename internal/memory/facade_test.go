package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
	"github.com/nutrigenie/nutrigenie/internal/store/sqlite"
)

// hashEmbedder is a deterministic bag-of-words embedder: texts sharing words
// score high, identical texts score 1, disjoint texts score near 0.
type hashEmbedder struct {
	fail bool
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedder down")
	}
	vec := make([]float32, 16)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%16]++
	}
	var sum float32
	for _, v := range vec {
		sum += v
	}
	if sum == 0 {
		vec[0] = 1
	}
	return vec, nil
}

func newTestService(t *testing.T) (*Service, *hashEmbedder) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	emb := &hashEmbedder{}
	return NewService(sqlite.NewWithDB(db), semantic.NewChromemIndex(), emb, zerolog.Nop()), emb
}

func validCreateUser() *CreateUserRequest {
	budget := 120.0
	return &CreateUserRequest{
		Name:          "Alex",
		Age:           30,
		Sex:           "male",
		HeightCm:      175,
		WeightKg:      80,
		ActivityLevel: "moderately_active",
		GoalType:      "maintain",
		Restrictions: []RestrictionInput{
			{Kind: model.RestrictionAllergy, Value: "peanut", Severity: model.SeverityCritical},
			{Kind: model.RestrictionMedical, Value: "lactose", Severity: model.SeverityModerate},
		},
		Preferences: &PreferenceInput{
			DietType:       "omnivore",
			Cuisines:       []string{"thai", "mexican"},
			MealsPerDay:    3,
			WeeklyBudget:   &budget,
			MealComplexity: "moderate",
		},
	}
}

func weekMeals() []*model.PlannedMeal {
	return []*model.PlannedMeal{
		{Day: 1, Slot: model.SlotBreakfast, RecipeName: "Oatmeal", Calories: 380, ProteinG: 15, CarbsG: 60, FatsG: 8, Ingredients: []string{"oats", "banana", "honey"}},
		{Day: 1, Slot: model.SlotDinner, RecipeName: "Chicken Rice Bowl", Calories: 650, ProteinG: 45, CarbsG: 70, FatsG: 18, Ingredients: []string{"chicken breast", "rice", "broccoli"}},
		{Day: 2, Slot: model.SlotLunch, RecipeName: "Beef Tacos", Calories: 580, ProteinG: 38, CarbsG: 52, FatsG: 22, Ingredients: []string{"beef", "tortillas", "salsa"}},
	}
}

func TestCreateUserProfileComputesTargets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)
	require.NotEmpty(t, res.UserID)
	// male, 30y, 175cm, 80kg, moderately_active, maintain
	assert.Equal(t, 2710, res.Targets.DailyCalories)
	assert.Empty(t, res.Warnings)

	uc, err := svc.GetUserContext(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", uc.User.Name)
	require.NotNil(t, uc.Goal)
	assert.Equal(t, "maintain", uc.Goal.GoalType)
	assert.Equal(t, 2710, uc.Goal.DailyCalories)
	assert.Len(t, uc.Restrictions, 2)
	require.NotNil(t, uc.Preferences)
	assert.Equal(t, []string{"thai", "mexican"}, uc.Preferences.Cuisines)
	// onboarding preference summary was indexed
	assert.NotEmpty(t, uc.PreferenceStatements)
}

func TestCreateUserProfileValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(*CreateUserRequest){
		"missing name":     func(r *CreateUserRequest) { r.Name = "" },
		"age too low":      func(r *CreateUserRequest) { r.Age = 5 },
		"bad sex":          func(r *CreateUserRequest) { r.Sex = "unknown" },
		"height too high":  func(r *CreateUserRequest) { r.HeightCm = 400 },
		"weight too low":   func(r *CreateUserRequest) { r.WeightKg = 10 },
		"bad activity":     func(r *CreateUserRequest) { r.ActivityLevel = "couch" },
		"bad goal":         func(r *CreateUserRequest) { r.GoalType = "shred" },
		"bad severity":     func(r *CreateUserRequest) { r.Restrictions[0].Severity = "fatal" },
		"empty restricted": func(r *CreateUserRequest) { r.Restrictions[0].Value = "" },
	}
	for name, mutate := range cases {
		req := validCreateUser()
		mutate(req)
		_, err := svc.CreateUserProfile(ctx, req)
		assert.ErrorIs(t, err, model.ErrValidation, name)
	}
}

func TestCreateUserProfileDegradedEmbedder(t *testing.T) {
	svc, emb := newTestService(t)
	emb.fail = true

	res, err := svc.CreateUserProfile(context.Background(), validCreateUser())
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserID)
	assert.NotEmpty(t, res.Warnings)

	// structured data survived the semantic failure
	uc, err := svc.GetUserContext(context.Background(), res.UserID)
	require.NoError(t, err)
	assert.Len(t, uc.Restrictions, 2)
}

func TestGetUserContextNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetUserContext(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateMealPlanSafetyGateStoresNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	meals := weekMeals()
	meals[0].Ingredients = append(meals[0].Ingredients, "peanut butter")

	_, err = svc.CreateMealPlan(ctx, &CreatePlanRequest{
		UserID: res.UserID, WeekStart: "2026-08-31", Meals: meals, CreatedBy: "planner",
	})
	assert.ErrorIs(t, err, model.ErrSafetyViolation)

	_, err = svc.GetActiveMealPlan(ctx, res.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateMealPlanAdvisoryDoesNotBlock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	meals := weekMeals()
	meals[1].Ingredients = append(meals[1].Ingredients, "lactose-free milk")

	out, err := svc.CreateMealPlan(ctx, &CreatePlanRequest{
		UserID: res.UserID, WeekStart: "2026-08-31", Meals: meals, CreatedBy: "planner",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Advisories)
}

func TestCreateMealPlanSingleActiveInvariant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	first, err := svc.CreateMealPlan(ctx, &CreatePlanRequest{
		UserID: res.UserID, WeekStart: "2026-08-31", Meals: weekMeals(), CreatedBy: "planner",
	})
	require.NoError(t, err)
	second, err := svc.CreateMealPlan(ctx, &CreatePlanRequest{
		UserID: res.UserID, WeekStart: "2026-09-07", Meals: weekMeals(), CreatedBy: "planner",
	})
	require.NoError(t, err)

	active, err := svc.GetActiveMealPlan(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, second.Plan.PlanID, active.PlanID)

	old, err := svc.GetMealPlan(ctx, first.Plan.PlanID)
	require.NoError(t, err)
	assert.False(t, old.Active)
}

func TestCreateMealPlanRoundTripOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	out, err := svc.CreateMealPlan(ctx, &CreatePlanRequest{
		UserID: res.UserID, WeekStart: "2026-08-31", Meals: weekMeals(), CreatedBy: "planner",
	})
	require.NoError(t, err)

	got, err := svc.GetMealPlan(ctx, out.Plan.PlanID)
	require.NoError(t, err)
	require.Len(t, got.Meals, 3)
	assert.Equal(t, "Oatmeal", got.Meals[0].RecipeName)
	assert.Equal(t, "Chicken Rice Bowl", got.Meals[1].RecipeName)
	assert.Equal(t, "Beef Tacos", got.Meals[2].RecipeName)
	assert.Equal(t, []string{"oats", "banana", "honey"}, got.Meals[0].Ingredients)
	assert.Equal(t, 650, got.Meals[1].Calories)
}

func TestCreateMealPlanUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateMealPlan(context.Background(), &CreatePlanRequest{
		UserID: "ghost", WeekStart: "2026-08-31", Meals: weekMeals(), CreatedBy: "planner",
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConversationSaveAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	require.NoError(t, svc.SaveConversation(ctx, res.UserID, "coach", "user", "I want more thai food"))
	require.NoError(t, svc.SaveConversation(ctx, res.UserID, "coach", "agent", "Noted, adding thai dishes"))

	// identical text embeds identically, so it must come back first
	hits, err := svc.SearchConversationContext(ctx, res.UserID, "I want more thai food", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "I want more thai food", hits[0].Text)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchEmptyHistoryReturnsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	hits, err := svc.SearchConversationContext(ctx, res.UserID, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSaveConversationUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.SaveConversation(context.Background(), "ghost", "coach", "user", "hi")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSaveMealFeedbackValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SaveMealFeedback(ctx, res.UserID, "Pad Thai", "great", 9, ""), model.ErrValidation)
	assert.NoError(t, svc.SaveMealFeedback(ctx, res.UserID, "Pad Thai", "great", 5, "thai"))
}

func TestFoodPreferenceContextSplitsByRating(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	require.NoError(t, svc.SaveMealFeedback(ctx, res.UserID, "Pad Thai", "Pad Thai was amazing", 5, "thai"))
	require.NoError(t, svc.SaveMealFeedback(ctx, res.UserID, "Oatmeal", "Pad Thai was amazing", 1, ""))

	// query with the same text as both records so both clear the score floor
	out, err := svc.FoodPreferenceContext(ctx, res.UserID, "Pad Thai: Pad Thai was amazing", 10)
	require.NoError(t, err)
	assert.Len(t, out.Liked, 1)
	assert.Len(t, out.Disliked, 1)
}

func TestLogActualMealAndRecent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	out, err := svc.LogActualMeal(ctx, &model.ActualMeal{
		UserID: res.UserID, Day: 3, Slot: model.SlotLunch,
		FoodDescription: "leftover tacos", Calories: 540, LoggedByAgent: "tracker",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Record.ActualID)

	recent, err := svc.RecentActualMeals(ctx, res.UserID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "leftover tacos", recent[0].FoodDescription)
}

func TestLogModificationRequiresPlan(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)

	_, err = svc.LogModification(ctx, &model.Modification{
		UserID: res.UserID, PlanID: "missing", Day: 1,
		ModificationType: "swap", Reason: "x", AdjustedByAgent: "tracker",
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteUserPurgesEverything(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res, err := svc.CreateUserProfile(ctx, validCreateUser())
	require.NoError(t, err)
	require.NoError(t, svc.SaveConversation(ctx, res.UserID, "coach", "user", "hello"))

	warnings, err := svc.DeleteUser(ctx, res.UserID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	_, err = svc.GetUserContext(ctx, res.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
