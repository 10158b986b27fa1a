package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

func meal(day int, slot, recipe string, ingredients ...string) *model.PlannedMeal {
	return &model.PlannedMeal{Day: day, Slot: slot, RecipeName: recipe, Ingredients: ingredients}
}

func restriction(value, severity string) *model.Restriction {
	return &model.Restriction{Kind: model.RestrictionAllergy, Value: value, Severity: severity}
}

func TestScreenCriticalSubstringMatch(t *testing.T) {
	meals := []*model.PlannedMeal{
		meal(1, model.SlotBreakfast, "PB Toast", "bread", "Peanut Butter"),
	}
	v := Screen(meals, []*model.Restriction{restriction("peanut", model.SeverityCritical)})
	assert.False(t, v.OK())
	if assert.Len(t, v.Fatal, 1) {
		assert.Equal(t, "Peanut Butter", v.Fatal[0].Ingredient)
		assert.Equal(t, "peanut", v.Fatal[0].Restricted)
	}
	assert.Empty(t, v.Advisory)
}

func TestScreenCaseInsensitive(t *testing.T) {
	meals := []*model.PlannedMeal{meal(3, model.SlotDinner, "Shrimp Curry", "SHELLFISH stock")}
	v := Screen(meals, []*model.Restriction{restriction("Shellfish", model.SeverityCritical)})
	assert.False(t, v.OK())
}

func TestScreenReverseContainment(t *testing.T) {
	// Restriction text broader than the ingredient name still matches.
	meals := []*model.PlannedMeal{meal(2, model.SlotSnack, "Trail Mix", "nuts")}
	v := Screen(meals, []*model.Restriction{restriction("tree nuts", model.SeverityCritical)})
	assert.False(t, v.OK())
}

func TestScreenAdvisoryDoesNotGate(t *testing.T) {
	meals := []*model.PlannedMeal{meal(1, model.SlotLunch, "Mac and Cheese", "pasta", "milk")}
	v := Screen(meals, []*model.Restriction{restriction("milk", model.SeverityModerate)})
	assert.True(t, v.OK())
	assert.Len(t, v.Advisory, 1)
}

func TestScreenCleanPlan(t *testing.T) {
	meals := []*model.PlannedMeal{
		meal(1, model.SlotBreakfast, "Oatmeal", "oats", "banana"),
		meal(1, model.SlotDinner, "Grilled Chicken", "chicken breast", "rice"),
	}
	v := Screen(meals, []*model.Restriction{
		restriction("peanut", model.SeverityCritical),
		restriction("shellfish", model.SeverityCritical),
	})
	assert.True(t, v.OK())
	assert.Empty(t, v.Fatal)
	assert.Empty(t, v.Advisory)
}

func TestScreenEmptyInputs(t *testing.T) {
	assert.True(t, Screen(nil, nil).OK())
	assert.True(t, Screen([]*model.PlannedMeal{meal(1, model.SlotLunch, "Salad", "")}, []*model.Restriction{restriction("", model.SeverityCritical)}).OK())
}

func TestConflictString(t *testing.T) {
	c := Conflict{Day: 4, Slot: model.SlotDinner, RecipeName: "Pad Thai", Ingredient: "peanuts", Restricted: "peanut", Severity: model.SeverityCritical}
	assert.Contains(t, c.String(), "Pad Thai")
	assert.Contains(t, c.String(), "day 4")
	assert.Contains(t, c.String(), "critical")
}
