package postgres

// Schema applied by Bootstrap. Kept in lockstep with the SQLite schema;
// server-side timestamps here, returned via RETURNING on insert.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id        TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    email          TEXT,
    age            INT NOT NULL,
    sex            TEXT NOT NULL,
    height_cm      DOUBLE PRECISION NOT NULL,
    weight_kg      DOUBLE PRECISION NOT NULL,
    country        TEXT,
    ethnicity      TEXT,
    activity_level TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'ACTIVE',
    creation_time  TIMESTAMPTZ NOT NULL DEFAULT now(),
    update_time    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS goals (
    goal_id          TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id),
    goal_type        TEXT NOT NULL,
    target_weight_kg DOUBLE PRECISION,
    timeline_weeks   INT,
    daily_calories   INT NOT NULL,
    protein_g        INT NOT NULL,
    carbs_g          INT NOT NULL,
    fats_g           INT NOT NULL,
    active           BOOLEAN NOT NULL DEFAULT TRUE,
    creation_time    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_goals_user_active ON goals(user_id, active);

CREATE TABLE IF NOT EXISTS restrictions (
    restriction_id TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL REFERENCES users(user_id),
    kind           TEXT NOT NULL,
    value          TEXT NOT NULL,
    severity       TEXT NOT NULL,
    creation_time  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_restrictions_user ON restrictions(user_id);

CREATE TABLE IF NOT EXISTS preferences (
    preference_id        TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL UNIQUE REFERENCES users(user_id),
    diet_type            TEXT NOT NULL,
    cuisines             JSONB NOT NULL DEFAULT '[]',
    meals_per_day        INT NOT NULL DEFAULT 3,
    max_cooking_time_min INT,
    weekly_budget        DOUBLE PRECISION,
    meal_complexity      TEXT NOT NULL DEFAULT 'moderate',
    creation_time        TIMESTAMPTZ NOT NULL DEFAULT now(),
    update_time          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS meal_plans (
    plan_id          TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id),
    week_start       TEXT NOT NULL,
    active           BOOLEAN NOT NULL DEFAULT TRUE,
    total_cost       DOUBLE PRECISION,
    created_by_agent TEXT NOT NULL,
    creation_time    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_meal_plans_user_active ON meal_plans(user_id, active);

CREATE TABLE IF NOT EXISTS planned_meals (
    meal_id       TEXT PRIMARY KEY,
    plan_id       TEXT NOT NULL REFERENCES meal_plans(plan_id),
    user_id       TEXT NOT NULL REFERENCES users(user_id),
    day           INT NOT NULL,
    slot          TEXT NOT NULL,
    recipe_name   TEXT NOT NULL,
    calories      INT NOT NULL,
    protein_g     DOUBLE PRECISION NOT NULL,
    carbs_g       DOUBLE PRECISION NOT NULL,
    fats_g        DOUBLE PRECISION NOT NULL,
    prep_time_min INT NOT NULL DEFAULT 0,
    ingredients   JSONB NOT NULL DEFAULT '[]',
    completed     BOOLEAN NOT NULL DEFAULT FALSE,
    creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_planned_meals_plan ON planned_meals(plan_id);

CREATE TABLE IF NOT EXISTS actual_meals (
    actual_id        TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id),
    plan_id          TEXT,
    planned_meal_id  TEXT,
    day              INT NOT NULL,
    slot             TEXT NOT NULL,
    food_description TEXT NOT NULL,
    calories         INT NOT NULL,
    protein_g        DOUBLE PRECISION NOT NULL,
    carbs_g          DOUBLE PRECISION NOT NULL,
    fats_g           DOUBLE PRECISION NOT NULL,
    planned          BOOLEAN NOT NULL DEFAULT FALSE,
    logged_by_agent  TEXT NOT NULL,
    creation_time    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_actual_meals_user ON actual_meals(user_id);

CREATE TABLE IF NOT EXISTS plan_modifications (
    modification_id   TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(user_id),
    plan_id           TEXT NOT NULL REFERENCES meal_plans(plan_id),
    day               INT NOT NULL,
    modification_type TEXT NOT NULL,
    original_calories INT NOT NULL,
    new_calories      INT NOT NULL,
    reason            TEXT NOT NULL,
    adjusted_by_agent TEXT NOT NULL,
    creation_time     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_plan_modifications_plan ON plan_modifications(plan_id);

CREATE TABLE IF NOT EXISTS daily_macro_logs (
    log_id            TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(user_id),
    plan_id           TEXT,
    date              TEXT NOT NULL,
    planned_calories  INT NOT NULL,
    actual_calories   INT NOT NULL,
    planned_protein_g DOUBLE PRECISION NOT NULL,
    actual_protein_g  DOUBLE PRECISION NOT NULL,
    planned_carbs_g   DOUBLE PRECISION NOT NULL,
    actual_carbs_g    DOUBLE PRECISION NOT NULL,
    planned_fats_g    DOUBLE PRECISION NOT NULL,
    actual_fats_g     DOUBLE PRECISION NOT NULL,
    adherence_score   DOUBLE PRECISION NOT NULL,
    creation_time     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_daily_macro_logs_user ON daily_macro_logs(user_id);
`
