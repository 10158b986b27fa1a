// Package sqlite implements store.Store on modernc.org/sqlite for the local
// build target and tests. Timestamps are assigned in Go (UTC) on write.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/store"
)

// Open opens (or creates) a SQLite database at the given path, enables WAL
// journal mode and foreign keys, and applies the schema.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &sqStore{db: db} }

type sqStore struct{ db *sql.DB }

func (s *sqStore) Users() store.Users               { return &users{db: s.db} }
func (s *sqStore) Goals() store.Goals               { return &goals{db: s.db} }
func (s *sqStore) Restrictions() store.Restrictions { return &restrictions{db: s.db} }
func (s *sqStore) Preferences() store.Preferences   { return &preferences{db: s.db} }
func (s *sqStore) MealPlans() store.MealPlans       { return &mealPlans{db: s.db} }
func (s *sqStore) Tracking() store.Tracking         { return &tracking{db: s.db} }

// HealthPing implements health.HealthPinger for the SQLite-backed store.
func (s *sqStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func now() time.Time { return time.Now().UTC() }

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return err
}

func marshalList(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func unmarshalList(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// mealOrder sorts meals by day then serving slot within the day.
const mealOrder = `ORDER BY day, CASE slot
    WHEN 'breakfast' THEN 1
    WHEN 'lunch' THEN 2
    WHEN 'dinner' THEN 3
    WHEN 'snack' THEN 4
    ELSE 5 END, creation_time`

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.UserProfile) (*model.UserProfile, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.Status = "ACTIVE"
	out.CreationTime = now()
	out.UpdateTime = out.CreationTime
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, name, email, age, sex, height_cm, weight_kg, country, ethnicity, activity_level, status, creation_time, update_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.UserID, out.Name, out.Email, out.Age, out.Sex, out.HeightCm, out.WeightKg, out.Country, out.Ethnicity, out.ActivityLevel, out.Status, out.CreationTime, out.UpdateTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	var out model.UserProfile
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, name, email, age, sex, height_cm, weight_kg, country, ethnicity, activity_level, status, creation_time, update_time
        FROM users WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.UserID, &out.Name, &out.Email, &out.Age, &out.Sex, &out.HeightCm, &out.WeightKg, &out.Country, &out.Ethnicity, &out.ActivityLevel, &out.Status, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err, "user")
	}
	return &out, nil
}

func (u *users) Update(ctx context.Context, m *model.UserProfile) (*model.UserProfile, error) {
	out := *m
	out.UpdateTime = now()
	res, err := u.db.ExecContext(ctx, `
        UPDATE users SET name=?, email=?, age=?, sex=?, height_cm=?, weight_kg=?, country=?, ethnicity=?, activity_level=?, update_time=?
        WHERE user_id=?
    `, out.Name, out.Email, out.Age, out.Sex, out.HeightCm, out.WeightKg, out.Country, out.Ethnicity, out.ActivityLevel, out.UpdateTime, out.UserID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("user: %w", model.ErrNotFound)
	}
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// children first
	for _, q := range []string{
		`DELETE FROM daily_macro_logs WHERE user_id=?`,
		`DELETE FROM plan_modifications WHERE user_id=?`,
		`DELETE FROM actual_meals WHERE user_id=?`,
		`DELETE FROM planned_meals WHERE user_id=?`,
		`DELETE FROM meal_plans WHERE user_id=?`,
		`DELETE FROM preferences WHERE user_id=?`,
		`DELETE FROM restrictions WHERE user_id=?`,
		`DELETE FROM goals WHERE user_id=?`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id=?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user: %w", model.ErrNotFound)
	}
	return tx.Commit()
}

// --- Goals ---
type goals struct{ db *sql.DB }

func (g *goals) Create(ctx context.Context, m *model.Goal) (*model.Goal, error) {
	out := *m
	if out.GoalID == "" {
		out.GoalID = uuid.New().String()
	}
	out.Active = true
	out.CreationTime = now()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE goals SET active=0 WHERE user_id=? AND active=1`, out.UserID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO goals (goal_id, user_id, goal_type, target_weight_kg, timeline_weeks, daily_calories, protein_g, carbs_g, fats_g, active, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,1,?)
    `, out.GoalID, out.UserID, out.GoalType, out.TargetWeightKg, out.TimelineWeeks, out.DailyCalories, out.ProteinG, out.CarbsG, out.FatsG, out.CreationTime); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func scanGoal(row interface{ Scan(...any) error }) (*model.Goal, error) {
	var out model.Goal
	if err := row.Scan(&out.GoalID, &out.UserID, &out.GoalType, &out.TargetWeightKg, &out.TimelineWeeks, &out.DailyCalories, &out.ProteinG, &out.CarbsG, &out.FatsG, &out.Active, &out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

const goalCols = `goal_id, user_id, goal_type, target_weight_kg, timeline_weeks, daily_calories, protein_g, carbs_g, fats_g, active, creation_time`

func (g *goals) GetActive(ctx context.Context, userID string) (*model.Goal, error) {
	row := g.db.QueryRowContext(ctx, `SELECT `+goalCols+` FROM goals WHERE user_id=? AND active=1`, userID)
	out, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, "active goal")
	}
	return out, nil
}

func (g *goals) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT `+goalCols+` FROM goals WHERE user_id=? ORDER BY creation_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Goal
	for rows.Next() {
		gl, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, gl)
	}
	return out, rows.Err()
}

// --- Restrictions ---
type restrictions struct{ db *sql.DB }

func (r *restrictions) Add(ctx context.Context, m *model.Restriction) (*model.Restriction, error) {
	out := *m
	if out.RestrictionID == "" {
		out.RestrictionID = uuid.New().String()
	}
	out.CreationTime = now()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO restrictions (restriction_id, user_id, kind, value, severity, creation_time)
        VALUES (?,?,?,?,?,?)
    `, out.RestrictionID, out.UserID, out.Kind, out.Value, out.Severity, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *restrictions) List(ctx context.Context, userID string) ([]*model.Restriction, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT restriction_id, user_id, kind, value, severity, creation_time
        FROM restrictions WHERE user_id=? ORDER BY creation_time
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Restriction
	for rows.Next() {
		var m model.Restriction
		if err := rows.Scan(&m.RestrictionID, &m.UserID, &m.Kind, &m.Value, &m.Severity, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Preferences ---
type preferences struct{ db *sql.DB }

func (p *preferences) Put(ctx context.Context, m *model.Preference) (*model.Preference, error) {
	out := *m
	if out.PreferenceID == "" {
		out.PreferenceID = uuid.New().String()
	}
	ts := now()
	out.UpdateTime = ts
	res, err := p.db.ExecContext(ctx, `
        UPDATE preferences SET diet_type=?, cuisines=?, meals_per_day=?, max_cooking_time_min=?, weekly_budget=?, meal_complexity=?, update_time=?
        WHERE user_id=?
    `, out.DietType, marshalList(out.Cuisines), out.MealsPerDay, out.MaxCookingTimeMin, out.WeeklyBudget, out.MealComplexity, ts, out.UserID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		existing, err := p.Get(ctx, out.UserID)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}
	out.CreationTime = ts
	if _, err := p.db.ExecContext(ctx, `
        INSERT INTO preferences (preference_id, user_id, diet_type, cuisines, meals_per_day, max_cooking_time_min, weekly_budget, meal_complexity, creation_time, update_time)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, out.PreferenceID, out.UserID, out.DietType, marshalList(out.Cuisines), out.MealsPerDay, out.MaxCookingTimeMin, out.WeeklyBudget, out.MealComplexity, ts, ts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *preferences) Get(ctx context.Context, userID string) (*model.Preference, error) {
	var out model.Preference
	var cuisines string
	row := p.db.QueryRowContext(ctx, `
        SELECT preference_id, user_id, diet_type, cuisines, meals_per_day, max_cooking_time_min, weekly_budget, meal_complexity, creation_time, update_time
        FROM preferences WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.PreferenceID, &out.UserID, &out.DietType, &cuisines, &out.MealsPerDay, &out.MaxCookingTimeMin, &out.WeeklyBudget, &out.MealComplexity, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err, "preferences")
	}
	out.Cuisines = unmarshalList(cuisines)
	return &out, nil
}

// --- MealPlans ---
type mealPlans struct{ db *sql.DB }

func (mp *mealPlans) Create(ctx context.Context, p *model.MealPlan, meals []*model.PlannedMeal) (*model.MealPlan, error) {
	out := *p
	if out.PlanID == "" {
		out.PlanID = uuid.New().String()
	}
	out.Active = true
	out.CreationTime = now()

	tx, err := mp.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE meal_plans SET active=0 WHERE user_id=? AND active=1`, out.UserID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO meal_plans (plan_id, user_id, week_start, active, total_cost, created_by_agent, creation_time)
        VALUES (?,?,?,1,?,?,?)
    `, out.PlanID, out.UserID, out.WeekStart, out.TotalCost, out.CreatedByAgent, out.CreationTime); err != nil {
		return nil, err
	}

	out.Meals = make([]*model.PlannedMeal, 0, len(meals))
	for _, m := range meals {
		pm := *m
		if pm.MealID == "" {
			pm.MealID = uuid.New().String()
		}
		pm.PlanID = out.PlanID
		pm.UserID = out.UserID
		pm.CreationTime = out.CreationTime
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO planned_meals (meal_id, plan_id, user_id, day, slot, recipe_name, calories, protein_g, carbs_g, fats_g, prep_time_min, ingredients, completed, creation_time)
            VALUES (?,?,?,?,?,?,?,?,?,?,?,?,0,?)
        `, pm.MealID, pm.PlanID, pm.UserID, pm.Day, pm.Slot, pm.RecipeName, pm.Calories, pm.ProteinG, pm.CarbsG, pm.FatsG, pm.PrepTimeMin, marshalList(pm.Ingredients), pm.CreationTime); err != nil {
			return nil, err
		}
		out.Meals = append(out.Meals, &pm)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

const planCols = `plan_id, user_id, week_start, active, total_cost, created_by_agent, creation_time`

func scanPlan(row interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var out model.MealPlan
	if err := row.Scan(&out.PlanID, &out.UserID, &out.WeekStart, &out.Active, &out.TotalCost, &out.CreatedByAgent, &out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (mp *mealPlans) loadMeals(ctx context.Context, plan *model.MealPlan) error {
	rows, err := mp.db.QueryContext(ctx, `
        SELECT meal_id, plan_id, user_id, day, slot, recipe_name, calories, protein_g, carbs_g, fats_g, prep_time_min, ingredients, completed, creation_time
        FROM planned_meals WHERE plan_id=? `+mealOrder, plan.PlanID)
	if err != nil {
		return err
	}
	defer rows.Close()
	plan.Meals = []*model.PlannedMeal{}
	for rows.Next() {
		var m model.PlannedMeal
		var ingredients string
		if err := rows.Scan(&m.MealID, &m.PlanID, &m.UserID, &m.Day, &m.Slot, &m.RecipeName, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatsG, &m.PrepTimeMin, &ingredients, &m.Completed, &m.CreationTime); err != nil {
			return err
		}
		m.Ingredients = unmarshalList(ingredients)
		plan.Meals = append(plan.Meals, &m)
	}
	return rows.Err()
}

func (mp *mealPlans) GetByID(ctx context.Context, planID string) (*model.MealPlan, error) {
	row := mp.db.QueryRowContext(ctx, `SELECT `+planCols+` FROM meal_plans WHERE plan_id=?`, planID)
	plan, err := scanPlan(row)
	if err != nil {
		return nil, notFound(err, "meal plan")
	}
	if err := mp.loadMeals(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (mp *mealPlans) GetActive(ctx context.Context, userID string) (*model.MealPlan, error) {
	row := mp.db.QueryRowContext(ctx, `SELECT `+planCols+` FROM meal_plans WHERE user_id=? AND active=1`, userID)
	plan, err := scanPlan(row)
	if err != nil {
		return nil, notFound(err, "active meal plan")
	}
	if err := mp.loadMeals(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (mp *mealPlans) CountActive(ctx context.Context, userID string) (int, error) {
	var n int
	row := mp.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meal_plans WHERE user_id=? AND active=1`, userID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// --- Tracking ---
type tracking struct{ db *sql.DB }

func (t *tracking) LogActualMeal(ctx context.Context, a *model.ActualMeal) (*model.ActualMeal, error) {
	out := *a
	if out.ActualID == "" {
		out.ActualID = uuid.New().String()
	}
	out.CreationTime = now()
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO actual_meals (actual_id, user_id, plan_id, planned_meal_id, day, slot, food_description, calories, protein_g, carbs_g, fats_g, planned, logged_by_agent, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.ActualID, out.UserID, out.PlanID, out.PlannedMealID, out.Day, out.Slot, out.FoodDescription, out.Calories, out.ProteinG, out.CarbsG, out.FatsG, out.Planned, out.LoggedByAgent, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *tracking) ListActualMeals(ctx context.Context, userID string, limit int) ([]*model.ActualMeal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := t.db.QueryContext(ctx, `
        SELECT actual_id, user_id, plan_id, planned_meal_id, day, slot, food_description, calories, protein_g, carbs_g, fats_g, planned, logged_by_agent, creation_time
        FROM actual_meals WHERE user_id=? ORDER BY creation_time DESC LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ActualMeal
	for rows.Next() {
		var m model.ActualMeal
		if err := rows.Scan(&m.ActualID, &m.UserID, &m.PlanID, &m.PlannedMealID, &m.Day, &m.Slot, &m.FoodDescription, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatsG, &m.Planned, &m.LoggedByAgent, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (t *tracking) LogModification(ctx context.Context, m *model.Modification) (*model.Modification, error) {
	out := *m
	if out.ModificationID == "" {
		out.ModificationID = uuid.New().String()
	}
	out.CreationTime = now()
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO plan_modifications (modification_id, user_id, plan_id, day, modification_type, original_calories, new_calories, reason, adjusted_by_agent, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, out.ModificationID, out.UserID, out.PlanID, out.Day, out.ModificationType, out.OriginalCalories, out.NewCalories, out.Reason, out.AdjustedByAgent, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *tracking) ListModifications(ctx context.Context, planID string) ([]*model.Modification, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT modification_id, user_id, plan_id, day, modification_type, original_calories, new_calories, reason, adjusted_by_agent, creation_time
        FROM plan_modifications WHERE plan_id=? ORDER BY creation_time
    `, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Modification
	for rows.Next() {
		var m model.Modification
		if err := rows.Scan(&m.ModificationID, &m.UserID, &m.PlanID, &m.Day, &m.ModificationType, &m.OriginalCalories, &m.NewCalories, &m.Reason, &m.AdjustedByAgent, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (t *tracking) LogDailyMacros(ctx context.Context, d *model.DailyMacroLog) (*model.DailyMacroLog, error) {
	out := *d
	if out.LogID == "" {
		out.LogID = uuid.New().String()
	}
	out.CreationTime = now()
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO daily_macro_logs (log_id, user_id, plan_id, date, planned_calories, actual_calories, planned_protein_g, actual_protein_g, planned_carbs_g, actual_carbs_g, planned_fats_g, actual_fats_g, adherence_score, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.LogID, out.UserID, out.PlanID, out.Date, out.PlannedCalories, out.ActualCalories, out.PlannedProteinG, out.ActualProteinG, out.PlannedCarbsG, out.ActualCarbsG, out.PlannedFatsG, out.ActualFatsG, out.AdherenceScore, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *tracking) ListDailyMacros(ctx context.Context, userID string, limit int) ([]*model.DailyMacroLog, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := t.db.QueryContext(ctx, `
        SELECT log_id, user_id, plan_id, date, planned_calories, actual_calories, planned_protein_g, actual_protein_g, planned_carbs_g, actual_carbs_g, planned_fats_g, actual_fats_g, adherence_score, creation_time
        FROM daily_macro_logs WHERE user_id=? ORDER BY date DESC LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.DailyMacroLog
	for rows.Next() {
		var m model.DailyMacroLog
		if err := rows.Scan(&m.LogID, &m.UserID, &m.PlanID, &m.Date, &m.PlannedCalories, &m.ActualCalories, &m.PlannedProteinG, &m.ActualProteinG, &m.PlannedCarbsG, &m.ActualCarbsG, &m.PlannedFatsG, &m.ActualFatsG, &m.AdherenceScore, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
