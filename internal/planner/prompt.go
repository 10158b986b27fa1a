package planner

import (
	"fmt"
	"strings"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// BuildPrompt renders the meal-plan request for the model. The response
// contract is a bare JSON array; ParseMeals handles fenced output anyway.
func BuildPrompt(uc *model.UserContext, targets model.MacroTargets) string {
	user := uc.User

	var allergies, medical []string
	for _, r := range uc.Restrictions {
		switch r.Kind {
		case model.RestrictionAllergy:
			allergies = append(allergies, r.Value)
		case model.RestrictionMedical:
			medical = append(medical, r.Value)
		}
	}

	goalType := "maintain"
	if uc.Goal != nil {
		goalType = uc.Goal.GoalType
	}

	dietType := "omnivore"
	cuisines := "Any"
	mealsPerDay := 3
	maxCookingTime := 30
	budget := 100.0
	if p := uc.Preferences; p != nil {
		if p.DietType != "" {
			dietType = p.DietType
		}
		if len(p.Cuisines) > 0 {
			cuisines = strings.Join(p.Cuisines, ", ")
		}
		if p.MealsPerDay > 0 {
			mealsPerDay = p.MealsPerDay
		}
		if p.MaxCookingTimeMin != nil {
			maxCookingTime = *p.MaxCookingTimeMin
		}
		if p.WeeklyBudget != nil {
			budget = *p.WeeklyBudget
		}
	}

	var b strings.Builder
	b.WriteString("You are a professional nutritionist creating a personalized 7-day meal plan.\n\n")

	fmt.Fprintf(&b, "USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d, Sex: %s\n", user.Age, user.Sex)
	fmt.Fprintf(&b, "- Current Weight: %.1fkg, Height: %.1fcm\n", user.WeightKg, user.HeightCm)
	fmt.Fprintf(&b, "- Country: %s\n", orDefault(user.Country, "Not specified"))
	fmt.Fprintf(&b, "- Ethnicity: %s\n", orDefault(user.Ethnicity, "Not specified"))
	fmt.Fprintf(&b, "- Goal: %s\n\n", goalType)

	fmt.Fprintf(&b, "DAILY TARGETS:\n")
	fmt.Fprintf(&b, "- Calories: %d kcal\n", targets.DailyCalories)
	fmt.Fprintf(&b, "- Protein: %dg\n", targets.ProteinG)
	fmt.Fprintf(&b, "- Carbs: %dg\n", targets.CarbsG)
	fmt.Fprintf(&b, "- Fats: %dg\n\n", targets.FatsG)

	fmt.Fprintf(&b, "RESTRICTIONS (CRITICAL - MUST AVOID):\n")
	fmt.Fprintf(&b, "- Allergies: %s\n", orNone(allergies))
	fmt.Fprintf(&b, "- Medical Conditions: %s\n\n", orNone(medical))

	fmt.Fprintf(&b, "PREFERENCES:\n")
	fmt.Fprintf(&b, "- Diet Type: %s\n", dietType)
	fmt.Fprintf(&b, "- Cuisines: %s\n", cuisines)
	fmt.Fprintf(&b, "- Meals Per Day: %d\n", mealsPerDay)
	fmt.Fprintf(&b, "- Max Cooking Time Per Meal: %d minutes\n", maxCookingTime)
	fmt.Fprintf(&b, "- Budget: $%.0f/week\n\n", budget)

	if len(uc.FoodFeedback) > 0 || len(uc.PreferenceStatements) > 0 {
		fmt.Fprintf(&b, "REMEMBERED CONTEXT (from past sessions):\n")
		for _, h := range uc.FoodFeedback {
			fmt.Fprintf(&b, "- Feedback: %s\n", h.Text)
		}
		for _, h := range uc.PreferenceStatements {
			fmt.Fprintf(&b, "- Preference: %s\n", h.Text)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Create a 7-day meal plan (Monday-Sunday) with %d meals per day.\n\n", mealsPerDay)
	b.WriteString(`For each meal, provide:
1. Recipe name
2. Estimated calories, protein, carbs, fats
3. Prep time in minutes
4. List of main ingredients (5-7 items)

Return ONLY a valid JSON array with this structure:
[
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
  ...
]

IMPORTANT:
`)
	fmt.Fprintf(&b, "- Ensure total daily calories are close to %d kcal\n", targets.DailyCalories)
	fmt.Fprintf(&b, "- Strictly avoid all allergens: %s\n", orNone(allergies))
	fmt.Fprintf(&b, "- Respect dietary restrictions: %s\n", dietType)
	fmt.Fprintf(&b, "- Keep prep times under %d minutes PER MEAL\n", maxCookingTime)
	b.WriteString("- Provide variety across the week\n")
	b.WriteString("- Return ONLY valid JSON, no other text")

	return b.String()
}

func orDefault(s *string, def string) string {
	if s != nil && *s != "" {
		return *s
	}
	return def
}

func orNone(vals []string) string {
	if len(vals) == 0 {
		return "None"
	}
	return strings.Join(vals, ", ")
}
