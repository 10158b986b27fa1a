// Package nutrition computes calorie and macro targets from demographic
// inputs. All functions are pure; no I/O.
package nutrition

import (
	"fmt"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// Sex categories accepted by the BMR formula.
const (
	SexMale   = "male"
	SexFemale = "female"
)

// Mifflin-St Jeor sex offsets (kcal).
const (
	maleOffset   = 5
	femaleOffset = -161
)

// Activity levels and their TDEE multipliers.
const (
	ActivitySedentary        = "sedentary"
	ActivityLightlyActive    = "lightly_active"
	ActivityModeratelyActive = "moderately_active"
	ActivityVeryActive       = "very_active"
	ActivityExtremelyActive  = "extremely_active"
)

var activityMultipliers = map[string]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtremelyActive:  1.9,
}

// Goal types and their calorie adjustments relative to TDEE.
const (
	GoalLoseWeight = "lose_weight"
	GoalCut        = "cut"
	GoalMaintain   = "maintain"
	GoalGainMuscle = "gain_muscle"
	GoalBulk       = "bulk"
)

type goalProfile struct {
	calorieDelta float64
	proteinRatio float64
	carbsRatio   float64
	fatsRatio    float64
}

var goalProfiles = map[string]goalProfile{
	GoalLoseWeight: {calorieDelta: -500, proteinRatio: 0.40, carbsRatio: 0.30, fatsRatio: 0.30},
	GoalCut:        {calorieDelta: -300, proteinRatio: 0.40, carbsRatio: 0.30, fatsRatio: 0.30},
	GoalMaintain:   {calorieDelta: 0, proteinRatio: 0.30, carbsRatio: 0.40, fatsRatio: 0.30},
	GoalGainMuscle: {calorieDelta: +300, proteinRatio: 0.30, carbsRatio: 0.40, fatsRatio: 0.30},
	GoalBulk:       {calorieDelta: +500, proteinRatio: 0.25, carbsRatio: 0.45, fatsRatio: 0.30},
}

// Calories per gram of macronutrient.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFats    = 9
)

// ValidActivityLevel reports whether level is in the multiplier table.
func ValidActivityLevel(level string) bool {
	_, ok := activityMultipliers[level]
	return ok
}

// ValidGoalType reports whether goalType has a defined adjustment profile.
func ValidGoalType(goalType string) bool {
	_, ok := goalProfiles[goalType]
	return ok
}

// BMR computes basal metabolic rate via the Mifflin-St Jeor equation:
// 10*weight + 6.25*height - 5*age + sex offset.
func BMR(sex string, age int, heightCm, weightKg float64) (float64, error) {
	var offset float64
	switch sex {
	case SexMale:
		offset = maleOffset
	case SexFemale:
		offset = femaleOffset
	default:
		return 0, fmt.Errorf("unknown sex %q", sex)
	}
	return 10*weightKg + 6.25*heightCm - 5*float64(age) + offset, nil
}

// TDEE scales BMR by the activity multiplier for level.
func TDEE(bmr float64, level string) (float64, error) {
	mult, ok := activityMultipliers[level]
	if !ok {
		return 0, fmt.Errorf("unknown activity level %q", level)
	}
	return bmr * mult, nil
}

// Targets derives the daily calorie and macro-gram budget for a goal type.
// Calories truncate toward zero after the goal adjustment; macro grams
// truncate from the per-macro calorie share at 4/4/9 kcal per gram.
func Targets(sex string, age int, heightCm, weightKg float64, activityLevel, goalType string) (model.MacroTargets, error) {
	bmr, err := BMR(sex, age, heightCm, weightKg)
	if err != nil {
		return model.MacroTargets{}, err
	}
	tdee, err := TDEE(bmr, activityLevel)
	if err != nil {
		return model.MacroTargets{}, err
	}
	gp, ok := goalProfiles[goalType]
	if !ok {
		return model.MacroTargets{}, fmt.Errorf("unknown goal type %q", goalType)
	}
	calories := int(tdee + gp.calorieDelta)
	return model.MacroTargets{
		DailyCalories: calories,
		ProteinG:      int(float64(calories) * gp.proteinRatio / kcalPerGramProtein),
		CarbsG:        int(float64(calories) * gp.carbsRatio / kcalPerGramCarbs),
		FatsG:         int(float64(calories) * gp.fatsRatio / kcalPerGramFats),
	}, nil
}
