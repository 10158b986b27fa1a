package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMRReferenceMale(t *testing.T) {
	bmr, err := BMR(SexMale, 30, 175, 80)
	require.NoError(t, err)
	assert.InDelta(t, 1748.75, bmr, 1e-9)
}

func TestBMRReferenceFemale(t *testing.T) {
	bmr, err := BMR(SexFemale, 25, 165, 60)
	require.NoError(t, err)
	// 600 + 1031.25 - 125 - 161
	assert.InDelta(t, 1345.25, bmr, 1e-9)
}

func TestBMRUnknownSex(t *testing.T) {
	_, err := BMR("other", 30, 175, 80)
	assert.Error(t, err)
}

func TestTDEEMultipliers(t *testing.T) {
	cases := map[string]float64{
		ActivitySedentary:        1.2,
		ActivityLightlyActive:    1.375,
		ActivityModeratelyActive: 1.55,
		ActivityVeryActive:       1.725,
		ActivityExtremelyActive:  1.9,
	}
	for level, mult := range cases {
		got, err := TDEE(1000, level)
		require.NoError(t, err, level)
		assert.InDelta(t, 1000*mult, got, 1e-9, level)
	}
	_, err := TDEE(1000, "couch")
	assert.Error(t, err)
}

func TestTargetsMaintainReference(t *testing.T) {
	got, err := Targets(SexMale, 30, 175, 80, ActivityModeratelyActive, GoalMaintain)
	require.NoError(t, err)
	// TDEE 2710.5625 truncates to 2710 with no goal adjustment.
	assert.Equal(t, 2710, got.DailyCalories)
	// 2710*0.30/4 = 203.25, 2710*0.40/4 = 271, 2710*0.30/9 = 90.33
	assert.Equal(t, 203, got.ProteinG)
	assert.Equal(t, 271, got.CarbsG)
	assert.Equal(t, 90, got.FatsG)
}

func TestTargetsGoalAdjustments(t *testing.T) {
	base, err := Targets(SexMale, 30, 175, 80, ActivityModeratelyActive, GoalMaintain)
	require.NoError(t, err)

	cases := map[string]int{
		GoalLoseWeight: base.DailyCalories - 500,
		GoalCut:        base.DailyCalories - 300,
		GoalGainMuscle: base.DailyCalories + 300,
		GoalBulk:       base.DailyCalories + 500,
	}
	for goal, want := range cases {
		got, err := Targets(SexMale, 30, 175, 80, ActivityModeratelyActive, goal)
		require.NoError(t, err, goal)
		assert.Equal(t, want, got.DailyCalories, goal)
	}
}

func TestTargetsMacroRatios(t *testing.T) {
	got, err := Targets(SexFemale, 28, 168, 62, ActivityLightlyActive, GoalBulk)
	require.NoError(t, err)
	cal := float64(got.DailyCalories)
	assert.Equal(t, int(cal*0.25/4), got.ProteinG)
	assert.Equal(t, int(cal*0.45/4), got.CarbsG)
	assert.Equal(t, int(cal*0.30/9), got.FatsG)
}

func TestTargetsUnknownGoal(t *testing.T) {
	_, err := Targets(SexMale, 30, 175, 80, ActivityModeratelyActive, "shred")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidActivityLevel(ActivityVeryActive))
	assert.False(t, ValidActivityLevel(""))
	assert.True(t, ValidGoalType(GoalCut))
	assert.False(t, ValidGoalType("tone"))
}
