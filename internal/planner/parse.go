package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

var dayIndex = map[string]int{
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
	"sunday":    7,
}

type wireMeal struct {
	DayOfWeek   string   `json:"day_of_week"`
	MealType    string   `json:"meal_type"`
	RecipeName  string   `json:"recipe_name"`
	Calories    int      `json:"calories"`
	ProteinG    float64  `json:"protein_g"`
	CarbsG      float64  `json:"carbs_g"`
	FatsG       float64  `json:"fats_g"`
	PrepTimeMin int      `json:"prep_time_min"`
	Ingredients []string `json:"ingredients"`
}

// ParseMeals converts a model response into planned meals. Markdown code
// fences around the JSON are stripped; anything else malformed is ErrBadPlan.
func ParseMeals(raw string) ([]*model.PlannedMeal, error) {
	content := stripFences(raw)

	var wire []wireMeal
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPlan, err)
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("%w: empty meal list", ErrBadPlan)
	}

	out := make([]*model.PlannedMeal, 0, len(wire))
	for i, wm := range wire {
		day, ok := dayIndex[strings.ToLower(strings.TrimSpace(wm.DayOfWeek))]
		if !ok {
			return nil, fmt.Errorf("%w: meal %d has unknown day %q", ErrBadPlan, i, wm.DayOfWeek)
		}
		slot := strings.ToLower(strings.TrimSpace(wm.MealType))
		if model.SlotRank(slot) > 4 {
			return nil, fmt.Errorf("%w: meal %d has unknown slot %q", ErrBadPlan, i, wm.MealType)
		}
		if wm.RecipeName == "" {
			return nil, fmt.Errorf("%w: meal %d missing recipe name", ErrBadPlan, i)
		}
		out = append(out, &model.PlannedMeal{
			Day:         day,
			Slot:        slot,
			RecipeName:  wm.RecipeName,
			Calories:    wm.Calories,
			ProteinG:    wm.ProteinG,
			CarbsG:      wm.CarbsG,
			FatsG:       wm.FatsG,
			PrepTimeMin: wm.PrepTimeMin,
			Ingredients: wm.Ingredients,
		})
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "```json") {
		s = strings.SplitN(s, "```json", 2)[1]
		s = strings.SplitN(s, "```", 2)[0]
	} else if strings.Contains(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
	}
	return strings.TrimSpace(s)
}
