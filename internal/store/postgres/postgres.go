// Package postgres implements store.Store on the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap connects and applies the schema. Idempotent.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres bootstrap: %w", err)
	}
	return nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users               { return &users{db: s.db} }
func (s *pgStore) Goals() store.Goals               { return &goals{db: s.db} }
func (s *pgStore) Restrictions() store.Restrictions { return &restrictions{db: s.db} }
func (s *pgStore) Preferences() store.Preferences   { return &preferences{db: s.db} }
func (s *pgStore) MealPlans() store.MealPlans       { return &mealPlans{db: s.db} }
func (s *pgStore) Tracking() store.Tracking         { return &tracking{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

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

func unmarshalList(raw []byte) []string {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

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
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, name, email, age, sex, height_cm, weight_kg, country, ethnicity, activity_level, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'ACTIVE')
        RETURNING creation_time
    `, out.UserID, out.Name, out.Email, out.Age, out.Sex, out.HeightCm, out.WeightKg, out.Country, out.Ethnicity, out.ActivityLevel)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.Status = "ACTIVE"
	out.CreationTime = created
	out.UpdateTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	var out model.UserProfile
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, name, email, age, sex, height_cm, weight_kg, country, ethnicity, activity_level, status, creation_time, update_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Name, &out.Email, &out.Age, &out.Sex, &out.HeightCm, &out.WeightKg, &out.Country, &out.Ethnicity, &out.ActivityLevel, &out.Status, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err, "user")
	}
	return &out, nil
}

func (u *users) Update(ctx context.Context, m *model.UserProfile) (*model.UserProfile, error) {
	out := *m
	var updated time.Time
	row := u.db.QueryRowContext(ctx, `
        UPDATE users SET name=$1, email=$2, age=$3, sex=$4, height_cm=$5, weight_kg=$6, country=$7, ethnicity=$8, activity_level=$9, update_time=now()
        WHERE user_id=$10
        RETURNING update_time
    `, out.Name, out.Email, out.Age, out.Sex, out.HeightCm, out.WeightKg, out.Country, out.Ethnicity, out.ActivityLevel, out.UserID)
	if err := row.Scan(&updated); err != nil {
		return nil, notFound(err, "user")
	}
	out.UpdateTime = updated
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM daily_macro_logs WHERE user_id=$1`,
		`DELETE FROM plan_modifications WHERE user_id=$1`,
		`DELETE FROM actual_meals WHERE user_id=$1`,
		`DELETE FROM planned_meals WHERE user_id=$1`,
		`DELETE FROM meal_plans WHERE user_id=$1`,
		`DELETE FROM preferences WHERE user_id=$1`,
		`DELETE FROM restrictions WHERE user_id=$1`,
		`DELETE FROM goals WHERE user_id=$1`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, userID)
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

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE goals SET active=FALSE WHERE user_id=$1 AND active`, out.UserID); err != nil {
		return nil, err
	}
	var created time.Time
	row := tx.QueryRowContext(ctx, `
        INSERT INTO goals (goal_id, user_id, goal_type, target_weight_kg, timeline_weeks, daily_calories, protein_g, carbs_g, fats_g, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE)
        RETURNING creation_time
    `, out.GoalID, out.UserID, out.GoalType, out.TargetWeightKg, out.TimelineWeeks, out.DailyCalories, out.ProteinG, out.CarbsG, out.FatsG)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

const goalCols = `goal_id, user_id, goal_type, target_weight_kg, timeline_weeks, daily_calories, protein_g, carbs_g, fats_g, active, creation_time`

func scanGoal(row interface{ Scan(...any) error }) (*model.Goal, error) {
	var out model.Goal
	if err := row.Scan(&out.GoalID, &out.UserID, &out.GoalType, &out.TargetWeightKg, &out.TimelineWeeks, &out.DailyCalories, &out.ProteinG, &out.CarbsG, &out.FatsG, &out.Active, &out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *goals) GetActive(ctx context.Context, userID string) (*model.Goal, error) {
	row := g.db.QueryRowContext(ctx, `SELECT `+goalCols+` FROM goals WHERE user_id=$1 AND active`, userID)
	out, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, "active goal")
	}
	return out, nil
}

func (g *goals) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT `+goalCols+` FROM goals WHERE user_id=$1 ORDER BY creation_time DESC`, userID)
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
	var created time.Time
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO restrictions (restriction_id, user_id, kind, value, severity)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, out.RestrictionID, out.UserID, out.Kind, out.Value, out.Severity)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (r *restrictions) List(ctx context.Context, userID string) ([]*model.Restriction, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT restriction_id, user_id, kind, value, severity, creation_time
        FROM restrictions WHERE user_id=$1 ORDER BY creation_time
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
	var created, updated time.Time
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO preferences (preference_id, user_id, diet_type, cuisines, meals_per_day, max_cooking_time_min, weekly_budget, meal_complexity)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (user_id) DO UPDATE SET
            diet_type=EXCLUDED.diet_type,
            cuisines=EXCLUDED.cuisines,
            meals_per_day=EXCLUDED.meals_per_day,
            max_cooking_time_min=EXCLUDED.max_cooking_time_min,
            weekly_budget=EXCLUDED.weekly_budget,
            meal_complexity=EXCLUDED.meal_complexity,
            update_time=now()
        RETURNING preference_id, creation_time, update_time
    `, out.PreferenceID, out.UserID, out.DietType, marshalList(out.Cuisines), out.MealsPerDay, out.MaxCookingTimeMin, out.WeeklyBudget, out.MealComplexity)
	if err := row.Scan(&out.PreferenceID, &created, &updated); err != nil {
		return nil, err
	}
	out.CreationTime = created
	out.UpdateTime = updated
	return &out, nil
}

func (p *preferences) Get(ctx context.Context, userID string) (*model.Preference, error) {
	var out model.Preference
	var cuisines []byte
	row := p.db.QueryRowContext(ctx, `
        SELECT preference_id, user_id, diet_type, cuisines, meals_per_day, max_cooking_time_min, weekly_budget, meal_complexity, creation_time, update_time
        FROM preferences WHERE user_id=$1
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

	tx, err := mp.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE meal_plans SET active=FALSE WHERE user_id=$1 AND active`, out.UserID); err != nil {
		return nil, err
	}
	var created time.Time
	row := tx.QueryRowContext(ctx, `
        INSERT INTO meal_plans (plan_id, user_id, week_start, active, total_cost, created_by_agent)
        VALUES ($1,$2,$3,TRUE,$4,$5)
        RETURNING creation_time
    `, out.PlanID, out.UserID, out.WeekStart, out.TotalCost, out.CreatedByAgent)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created

	out.Meals = make([]*model.PlannedMeal, 0, len(meals))
	for _, m := range meals {
		pm := *m
		if pm.MealID == "" {
			pm.MealID = uuid.New().String()
		}
		pm.PlanID = out.PlanID
		pm.UserID = out.UserID
		pm.CreationTime = created
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO planned_meals (meal_id, plan_id, user_id, day, slot, recipe_name, calories, protein_g, carbs_g, fats_g, prep_time_min, ingredients, completed, creation_time)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,FALSE,$13)
        `, pm.MealID, pm.PlanID, pm.UserID, pm.Day, pm.Slot, pm.RecipeName, pm.Calories, pm.ProteinG, pm.CarbsG, pm.FatsG, pm.PrepTimeMin, marshalList(pm.Ingredients), created); err != nil {
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
        FROM planned_meals WHERE plan_id=$1 `+mealOrder, plan.PlanID)
	if err != nil {
		return err
	}
	defer rows.Close()
	plan.Meals = []*model.PlannedMeal{}
	for rows.Next() {
		var m model.PlannedMeal
		var ingredients []byte
		if err := rows.Scan(&m.MealID, &m.PlanID, &m.UserID, &m.Day, &m.Slot, &m.RecipeName, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatsG, &m.PrepTimeMin, &ingredients, &m.Completed, &m.CreationTime); err != nil {
			return err
		}
		m.Ingredients = unmarshalList(ingredients)
		plan.Meals = append(plan.Meals, &m)
	}
	return rows.Err()
}

func (mp *mealPlans) GetByID(ctx context.Context, planID string) (*model.MealPlan, error) {
	row := mp.db.QueryRowContext(ctx, `SELECT `+planCols+` FROM meal_plans WHERE plan_id=$1`, planID)
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
	row := mp.db.QueryRowContext(ctx, `SELECT `+planCols+` FROM meal_plans WHERE user_id=$1 AND active`, userID)
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
	row := mp.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meal_plans WHERE user_id=$1 AND active`, userID)
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
	var created time.Time
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO actual_meals (actual_id, user_id, plan_id, planned_meal_id, day, slot, food_description, calories, protein_g, carbs_g, fats_g, planned, logged_by_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING creation_time
    `, out.ActualID, out.UserID, out.PlanID, out.PlannedMealID, out.Day, out.Slot, out.FoodDescription, out.Calories, out.ProteinG, out.CarbsG, out.FatsG, out.Planned, out.LoggedByAgent)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (t *tracking) ListActualMeals(ctx context.Context, userID string, limit int) ([]*model.ActualMeal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := t.db.QueryContext(ctx, `
        SELECT actual_id, user_id, plan_id, planned_meal_id, day, slot, food_description, calories, protein_g, carbs_g, fats_g, planned, logged_by_agent, creation_time
        FROM actual_meals WHERE user_id=$1 ORDER BY creation_time DESC LIMIT $2
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
	var created time.Time
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO plan_modifications (modification_id, user_id, plan_id, day, modification_type, original_calories, new_calories, reason, adjusted_by_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING creation_time
    `, out.ModificationID, out.UserID, out.PlanID, out.Day, out.ModificationType, out.OriginalCalories, out.NewCalories, out.Reason, out.AdjustedByAgent)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (t *tracking) ListModifications(ctx context.Context, planID string) ([]*model.Modification, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT modification_id, user_id, plan_id, day, modification_type, original_calories, new_calories, reason, adjusted_by_agent, creation_time
        FROM plan_modifications WHERE plan_id=$1 ORDER BY creation_time
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
	var created time.Time
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO daily_macro_logs (log_id, user_id, plan_id, date, planned_calories, actual_calories, planned_protein_g, actual_protein_g, planned_carbs_g, actual_carbs_g, planned_fats_g, actual_fats_g, adherence_score)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING creation_time
    `, out.LogID, out.UserID, out.PlanID, out.Date, out.PlannedCalories, out.ActualCalories, out.PlannedProteinG, out.ActualProteinG, out.PlannedCarbsG, out.ActualCarbsG, out.PlannedFatsG, out.ActualFatsG, out.AdherenceScore)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (t *tracking) ListDailyMacros(ctx context.Context, userID string, limit int) ([]*model.DailyMacroLog, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := t.db.QueryContext(ctx, `
        SELECT log_id, user_id, plan_id, date, planned_calories, actual_calories, planned_protein_g, actual_protein_g, planned_carbs_g, actual_carbs_g, planned_fats_g, actual_fats_g, adherence_score, creation_time
        FROM daily_macro_logs WHERE user_id=$1 ORDER BY date DESC LIMIT $2
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
