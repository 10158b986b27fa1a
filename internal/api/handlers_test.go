package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrigenie/nutrigenie/internal/memory"
	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/planner"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
	"github.com/nutrigenie/nutrigenie/internal/store/sqlite"
)

// wordEmbedder is a deterministic bag-of-words embedder for tests.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
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

// stubPlanner returns canned meals, optionally failing the first failures calls.
type stubPlanner struct {
	meals    []*model.PlannedMeal
	err      error
	failures int
	calls    int
}

func (p *stubPlanner) GenerateMealPlan(_ context.Context, _ *model.UserContext, _ model.MacroTargets, _ string) ([]*model.PlannedMeal, error) {
	p.calls++
	if p.err != nil && (p.failures == 0 || p.calls <= p.failures) {
		return nil, p.err
	}
	return p.meals, nil
}

type stubHealth struct{ healthy bool }

func (s stubHealth) IsHealthy() bool { return s.healthy }

func stubMeals() []*model.PlannedMeal {
	return []*model.PlannedMeal{
		{Day: 1, Slot: model.SlotBreakfast, RecipeName: "Oatmeal", Calories: 380, ProteinG: 15, CarbsG: 60, FatsG: 8, Ingredients: []string{"oats", "banana"}},
		{Day: 1, Slot: model.SlotDinner, RecipeName: "Chicken Rice Bowl", Calories: 650, ProteinG: 45, CarbsG: 70, FatsG: 18, Ingredients: []string{"chicken breast", "rice"}},
	}
}

func newTestRouter(t *testing.T, p planner.Planner) http.Handler {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := memory.NewService(sqlite.NewWithDB(db), semantic.NewChromemIndex(), wordEmbedder{}, zerolog.Nop())
	return NewRouter(NewHandler(svc, p, stubHealth{healthy: true}, 1, zerolog.Nop()))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func onboardBody() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Alex",
		"age":           30,
		"sex":           "male",
		"heightCm":      175,
		"weightKg":      80,
		"activityLevel": "moderately_active",
		"goalType":      "maintain",
		"restrictions": []map[string]interface{}{
			{"kind": "allergy", "value": "peanut", "severity": "critical"},
		},
		"preferences": map[string]interface{}{
			"dietType":    "omnivore",
			"cuisines":    []string{"thai"},
			"mealsPerDay": 3,
		},
		"weekStart": "2026-09-07",
	}
}

func createUser(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/users", onboardBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.UserID)
	return out.UserID
}

func TestCreateUserGeneratesPlan(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})

	rec := doJSON(t, h, http.MethodPost, "/api/users", onboardBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		UserID  string             `json:"userId"`
		Targets model.MacroTargets `json:"targets"`
		Plan    *model.MealPlan    `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.UserID)
	assert.Equal(t, 2710, out.Targets.DailyCalories)
	require.NotNil(t, out.Plan)
	assert.True(t, out.Plan.Active)
	assert.Equal(t, "2026-09-07", out.Plan.WeekStart)
	require.Len(t, out.Plan.Meals, 2)
	assert.Equal(t, "Oatmeal", out.Plan.Meals[0].RecipeName)
}

func TestCreateUserValidation(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})

	body := onboardBody()
	body["age"] = 5
	rec := doJSON(t, h, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserSurvivesPlannerOutage(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{err: planner.ErrUnavailable})

	rec := doJSON(t, h, http.MethodPost, "/api/users", onboardBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		UserID   string          `json:"userId"`
		Plan     *model.MealPlan `json:"plan"`
		Warnings []string        `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.UserID)
	assert.Nil(t, out.Plan)
	assert.NotEmpty(t, out.Warnings)

	// The profile is intact and the plan can be regenerated later.
	rec = doJSON(t, h, http.MethodGet, "/api/users/"+out.UserID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGeneratePlanRetriesTransientFailure(t *testing.T) {
	p := &stubPlanner{meals: stubMeals(), err: planner.ErrUnavailable, failures: 1}
	h := newTestRouter(t, p)

	userID := createUser(t, h)
	require.GreaterOrEqual(t, p.calls, 2)

	rec := doJSON(t, h, http.MethodGet, "/api/users/"+userID+"/meal-plans/active", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGeneratePlanUnavailableMapsTo502(t *testing.T) {
	p := &stubPlanner{meals: stubMeals()}
	h := newTestRouter(t, p)
	userID := createUser(t, h)

	p.err = planner.ErrUnavailable
	p.failures = 0
	rec := doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/meal-plans", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGeneratePlanSafetyViolationMapsTo422(t *testing.T) {
	p := &stubPlanner{meals: stubMeals()}
	h := newTestRouter(t, p)
	userID := createUser(t, h)

	p.meals = []*model.PlannedMeal{
		{Day: 1, Slot: model.SlotLunch, RecipeName: "Pad Thai", Calories: 600, Ingredients: []string{"rice noodles", "peanut sauce"}},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/meal-plans", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The unsafe plan must not have replaced the active one.
	rec = doJSON(t, h, http.MethodGet, "/api/users/"+userID+"/meal-plans/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan model.MealPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "Oatmeal", plan.Meals[0].RecipeName)
}

func TestGetUserNotFound(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})

	rec := doJSON(t, h, http.MethodGet, "/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserContextAggregation(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})
	userID := createUser(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/users/"+userID+"/context", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var uc model.UserContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uc))
	require.NotNil(t, uc.Goal)
	assert.Equal(t, 2710, uc.Goal.DailyCalories)
	require.Len(t, uc.Restrictions, 1)
	assert.Equal(t, "peanut", uc.Restrictions[0].Value)
}

func TestConversationRoundTrip(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})
	userID := createUser(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/conversations", map[string]string{
		"agent":   "coach",
		"role":    "user",
		"message": "I want more spicy thai food for dinner",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/conversations/search", map[string]interface{}{
		"query": "spicy thai food",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Hits []model.SemanticHit `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Hits)
	assert.Contains(t, out.Hits[0].Text, "spicy thai")
}

func TestSaveFeedbackValidation(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})
	userID := createUser(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/feedback", map[string]interface{}{
		"mealName": "Oatmeal",
		"feedback": "too bland",
		"rating":   9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/feedback", map[string]interface{}{
		"mealName": "Oatmeal",
		"feedback": "loved it",
		"rating":   5,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestActualMealLogAndList(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})
	userID := createUser(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/users/"+userID+"/actual-meals", map[string]interface{}{
		"day":             1,
		"slot":            "lunch",
		"foodDescription": "leftover fried rice",
		"calories":        550,
		"loggedByAgent":   "tracker",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/users/"+userID+"/actual-meals?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Meals []*model.ActualMeal `json:"meals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Meals, 1)
	assert.Equal(t, "leftover fried rice", out.Meals[0].FoodDescription)
}

func TestDeleteUser(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})
	userID := createUser(t, h)

	rec := doJSON(t, h, http.MethodDelete, "/api/users/"+userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/users/"+userID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})

	rec := doJSON(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewRouter(NewHandler(nil, nil, stubHealth{healthy: false}, 0, zerolog.Nop()))
	rec = doJSON(t, down, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInvalidBodyIs400(t *testing.T) {
	h := newTestRouter(t, &stubPlanner{meals: stubMeals()})

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"code":%d`, http.StatusBadRequest))
}
