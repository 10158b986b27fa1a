package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

const samplePlan = `[
  {
    "day_of_week": "monday",
    "meal_type": "breakfast",
    "recipe_name": "Greek Yogurt Parfait",
    "calories": 350,
    "protein_g": 25,
    "carbs_g": 40,
    "fats_g": 10,
    "prep_time_min": 10,
    "ingredients": ["greek yogurt", "berries", "granola", "honey", "almonds"]
  },
  {
    "day_of_week": "Sunday",
    "meal_type": "dinner",
    "recipe_name": "Grilled Salmon",
    "calories": 620,
    "protein_g": 45,
    "carbs_g": 30,
    "fats_g": 28,
    "prep_time_min": 25,
    "ingredients": ["salmon", "asparagus", "lemon", "olive oil"]
  }
]`

func TestParseMealsBareJSON(t *testing.T) {
	meals, err := ParseMeals(samplePlan)
	require.NoError(t, err)
	require.Len(t, meals, 2)

	assert.Equal(t, 1, meals[0].Day)
	assert.Equal(t, model.SlotBreakfast, meals[0].Slot)
	assert.Equal(t, "Greek Yogurt Parfait", meals[0].RecipeName)
	assert.Equal(t, 350, meals[0].Calories)
	assert.Equal(t, []string{"greek yogurt", "berries", "granola", "honey", "almonds"}, meals[0].Ingredients)

	assert.Equal(t, 7, meals[1].Day)
	assert.Equal(t, model.SlotDinner, meals[1].Slot)
}

func TestParseMealsStripsJSONFence(t *testing.T) {
	fenced := "Here is your plan:\n```json\n" + samplePlan + "\n```\nEnjoy!"
	meals, err := ParseMeals(fenced)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestParseMealsStripsBareFence(t *testing.T) {
	fenced := "```\n" + samplePlan + "\n```"
	meals, err := ParseMeals(fenced)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestParseMealsRejectsMalformed(t *testing.T) {
	for name, input := range map[string]string{
		"not json":     "sorry, I cannot help with that",
		"empty array":  "[]",
		"unknown day":  `[{"day_of_week":"funday","meal_type":"lunch","recipe_name":"X"}]`,
		"unknown slot": `[{"day_of_week":"monday","meal_type":"brunch","recipe_name":"X"}]`,
		"no recipe":    `[{"day_of_week":"monday","meal_type":"lunch"}]`,
	} {
		_, err := ParseMeals(input)
		assert.ErrorIs(t, err, ErrBadPlan, name)
	}
}

func TestBuildPromptIncludesTargetsAndRestrictions(t *testing.T) {
	country := "Japan"
	maxCook := 20
	uc := &model.UserContext{
		User: &model.UserProfile{Age: 30, Sex: "male", HeightCm: 175, WeightKg: 80, Country: &country},
		Goal: &model.Goal{GoalType: "cut"},
		Restrictions: []*model.Restriction{
			{Kind: model.RestrictionAllergy, Value: "peanut", Severity: model.SeverityCritical},
			{Kind: model.RestrictionMedical, Value: "diabetes", Severity: model.SeverityModerate},
		},
		Preferences: &model.Preference{DietType: "pescatarian", Cuisines: []string{"japanese", "thai"}, MealsPerDay: 4, MaxCookingTimeMin: &maxCook},
		FoodFeedback: []model.SemanticHit{
			{Text: "loved the miso soup"},
		},
	}
	targets := model.MacroTargets{DailyCalories: 2410, ProteinG: 241, CarbsG: 180, FatsG: 80}

	prompt := BuildPrompt(uc, targets)

	assert.Contains(t, prompt, "Calories: 2410 kcal")
	assert.Contains(t, prompt, "Protein: 241g")
	assert.Contains(t, prompt, "Allergies: peanut")
	assert.Contains(t, prompt, "Medical Conditions: diabetes")
	assert.Contains(t, prompt, "Diet Type: pescatarian")
	assert.Contains(t, prompt, "japanese, thai")
	assert.Contains(t, prompt, "4 meals per day")
	assert.Contains(t, prompt, "under 20 minutes")
	assert.Contains(t, prompt, "Goal: cut")
	assert.Contains(t, prompt, "Country: Japan")
	assert.Contains(t, prompt, "loved the miso soup")
	assert.Contains(t, prompt, "ONLY valid JSON")
}

func TestBuildPromptDefaults(t *testing.T) {
	uc := &model.UserContext{User: &model.UserProfile{Age: 25, Sex: "female", HeightCm: 165, WeightKg: 60}}
	prompt := BuildPrompt(uc, model.MacroTargets{DailyCalories: 2000})

	assert.Contains(t, prompt, "Goal: maintain")
	assert.Contains(t, prompt, "Allergies: None")
	assert.Contains(t, prompt, "Diet Type: omnivore")
	assert.Contains(t, prompt, "Cuisines: Any")
	assert.Contains(t, prompt, "Country: Not specified")
}

func TestErrorTaxonomy(t *testing.T) {
	assert.False(t, errors.Is(ErrBadPlan, ErrUnavailable))
}
