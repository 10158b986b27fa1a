package model

import "time"

// UserProfile is the structured identity record for a user. Profiles are
// created once at onboarding and mutated only through explicit updates;
// they are never hard-deleted outside reset/teardown paths.
type UserProfile struct {
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Age           int       `json:"age"`
	Sex           string    `json:"sex"`
	HeightCm      float64   `json:"heightCm"`
	WeightKg      float64   `json:"weightKg"`
	Country       *string   `json:"country,omitempty"`
	Ethnicity     *string   `json:"ethnicity,omitempty"`
	ActivityLevel string    `json:"activityLevel"`
	Status        string    `json:"status"`
	CreationTime  time.Time `json:"creationTime"`
	UpdateTime    time.Time `json:"updateTime"`
}

// Goal captures a user's target and its computed daily calorie/macro budget.
// Superseding a goal creates a new row; history is never rewritten.
type Goal struct {
	GoalID         string    `json:"goalId"`
	UserID         string    `json:"userId"`
	GoalType       string    `json:"goalType"`
	TargetWeightKg *float64  `json:"targetWeightKg,omitempty"`
	TimelineWeeks  *int      `json:"timelineWeeks,omitempty"`
	DailyCalories  int       `json:"dailyCalories"`
	ProteinG       int       `json:"proteinG"`
	CarbsG         int       `json:"carbsG"`
	FatsG          int       `json:"fatsG"`
	Active         bool      `json:"active"`
	CreationTime   time.Time `json:"creationTime"`
}

// Restriction severities. Critical restrictions are hard safety constraints;
// moderate and mild are advisory in generated output.
const (
	SeverityCritical = "critical"
	SeverityModerate = "moderate"
	SeverityMild     = "mild"
)

// Restriction kinds.
const (
	RestrictionAllergy   = "allergy"
	RestrictionMedical   = "medical"
	RestrictionReligious = "religious"
)

// Restriction is a dietary constraint attached to a user.
type Restriction struct {
	RestrictionID string    `json:"restrictionId"`
	UserID        string    `json:"userId"`
	Kind          string    `json:"kind"`
	Value         string    `json:"value"`
	Severity      string    `json:"severity"`
	CreationTime  time.Time `json:"creationTime"`
}

// Preference is the current preference snapshot for a user; updates replace it.
type Preference struct {
	PreferenceID      string    `json:"preferenceId"`
	UserID            string    `json:"userId"`
	DietType          string    `json:"dietType"`
	Cuisines          []string  `json:"cuisines"`
	MealsPerDay       int       `json:"mealsPerDay"`
	MaxCookingTimeMin *int      `json:"maxCookingTimeMin,omitempty"`
	WeeklyBudget      *float64  `json:"weeklyBudget,omitempty"`
	MealComplexity    string    `json:"mealComplexity"`
	CreationTime      time.Time `json:"creationTime"`
	UpdateTime        time.Time `json:"updateTime"`
}

// MealPlan is a weekly plan. At most one plan is active per user at any time.
type MealPlan struct {
	PlanID         string         `json:"planId"`
	UserID         string         `json:"userId"`
	WeekStart      string         `json:"weekStart"`
	Active         bool           `json:"active"`
	TotalCost      *float64       `json:"totalCost,omitempty"`
	CreatedByAgent string         `json:"createdByAgent"`
	CreationTime   time.Time      `json:"creationTime"`
	Meals          []*PlannedMeal `json:"meals,omitempty"`
}

// Meal slots in serving order within a day.
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotSnack     = "snack"
)

// SlotRank returns the within-day ordering rank of a meal slot.
// Unknown slots sort last.
func SlotRank(slot string) int {
	switch slot {
	case SlotBreakfast:
		return 1
	case SlotLunch:
		return 2
	case SlotDinner:
		return 3
	case SlotSnack:
		return 4
	default:
		return 5
	}
}

// PlannedMeal is a single meal inside a plan. Day is 1 (Monday) through 7
// (Sunday); ordering by (Day, SlotRank) is meaningful and preserved on reads.
type PlannedMeal struct {
	MealID       string    `json:"mealId"`
	PlanID       string    `json:"planId"`
	UserID       string    `json:"userId"`
	Day          int       `json:"day"`
	Slot         string    `json:"slot"`
	RecipeName   string    `json:"recipeName"`
	Calories     int       `json:"calories"`
	ProteinG     float64   `json:"proteinG"`
	CarbsG       float64   `json:"carbsG"`
	FatsG        float64   `json:"fatsG"`
	PrepTimeMin  int       `json:"prepTimeMin"`
	Ingredients  []string  `json:"ingredients"`
	Completed    bool      `json:"completed"`
	CreationTime time.Time `json:"creationTime"`
}

// ActualMeal records what the user actually ate. Append-only.
type ActualMeal struct {
	ActualID        string    `json:"actualId"`
	UserID          string    `json:"userId"`
	PlanID          *string   `json:"planId,omitempty"`
	PlannedMealID   *string   `json:"plannedMealId,omitempty"`
	Day             int       `json:"day"`
	Slot            string    `json:"slot"`
	FoodDescription string    `json:"foodDescription"`
	Calories        int       `json:"calories"`
	ProteinG        float64   `json:"proteinG"`
	CarbsG          float64   `json:"carbsG"`
	FatsG           float64   `json:"fatsG"`
	Planned         bool      `json:"planned"`
	LoggedByAgent   string    `json:"loggedByAgent"`
	CreationTime    time.Time `json:"creationTime"`
}

// Modification is an append-only log entry describing an edit to a plan.
type Modification struct {
	ModificationID   string    `json:"modificationId"`
	UserID           string    `json:"userId"`
	PlanID           string    `json:"planId"`
	Day              int       `json:"day"`
	ModificationType string    `json:"modificationType"`
	OriginalCalories int       `json:"originalCalories"`
	NewCalories      int       `json:"newCalories"`
	Reason           string    `json:"reason"`
	AdjustedByAgent  string    `json:"adjustedByAgent"`
	CreationTime     time.Time `json:"creationTime"`
}

// DailyMacroLog tracks planned-vs-actual intake per calendar day. Append-only.
type DailyMacroLog struct {
	LogID           string    `json:"logId"`
	UserID          string    `json:"userId"`
	PlanID          *string   `json:"planId,omitempty"`
	Date            string    `json:"date"`
	PlannedCalories int       `json:"plannedCalories"`
	ActualCalories  int       `json:"actualCalories"`
	PlannedProteinG float64   `json:"plannedProteinG"`
	ActualProteinG  float64   `json:"actualProteinG"`
	PlannedCarbsG   float64   `json:"plannedCarbsG"`
	ActualCarbsG    float64   `json:"actualCarbsG"`
	PlannedFatsG    float64   `json:"plannedFatsG"`
	ActualFatsG     float64   `json:"actualFatsG"`
	AdherenceScore  float64   `json:"adherenceScore"`
	CreationTime    time.Time `json:"creationTime"`
}

// MacroTargets is a computed daily calorie/macro budget.
type MacroTargets struct {
	DailyCalories int `json:"dailyCalories"`
	ProteinG      int `json:"proteinG"`
	CarbsG        int `json:"carbsG"`
	FatsG         int `json:"fatsG"`
}

// SemanticHit is one similarity-search result from the semantic store.
type SemanticHit struct {
	RecordID string            `json:"recordId"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UserContext aggregates everything an agent needs to know about a user:
// structured facts plus recent semantic memory. Semantic fields may be empty
// when the index is degraded; Warnings carries the reason.
type UserContext struct {
	User                 *UserProfile   `json:"user"`
	Goal                 *Goal          `json:"goal,omitempty"`
	Restrictions         []*Restriction `json:"restrictions"`
	Preferences          *Preference    `json:"preferences,omitempty"`
	RecentConversations  []SemanticHit  `json:"recentConversations"`
	FoodFeedback         []SemanticHit  `json:"foodFeedback"`
	PreferenceStatements []SemanticHit  `json:"preferenceStatements"`
	Warnings             []string       `json:"warnings,omitempty"`
}
