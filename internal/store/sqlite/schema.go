package sqlite

// Schema is applied on Open. Mirrors the Postgres migrations; types relaxed
// to SQLite affinities. JSON arrays (ingredients, cuisines) are stored as TEXT.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id        TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    email          TEXT,
    age            INTEGER NOT NULL,
    sex            TEXT NOT NULL,
    height_cm      REAL NOT NULL,
    weight_kg      REAL NOT NULL,
    country        TEXT,
    ethnicity      TEXT,
    activity_level TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'ACTIVE',
    creation_time  TIMESTAMP NOT NULL,
    update_time    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
    goal_id          TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id),
    goal_type        TEXT NOT NULL,
    target_weight_kg REAL,
    timeline_weeks   INTEGER,
    daily_calories   INTEGER NOT NULL,
    protein_g        INTEGER NOT NULL,
    carbs_g          INTEGER NOT NULL,
    fats_g           INTEGER NOT NULL,
    active           INTEGER NOT NULL DEFAULT 1,
    creation_time    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_goals_user_active ON goals(user_id, active);

CREATE TABLE IF NOT EXISTS restrictions (
    restriction_id TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL REFERENCES users(user_id),
    kind           TEXT NOT NULL,
    value          TEXT NOT NULL,
    severity       TEXT NOT NULL,
    creation_time  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_restrictions_user ON restrictions(user_id);

CREATE TABLE IF NOT EXISTS preferences (
    preference_id        TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL UNIQUE REFERENCES users(user_id),
    diet_type            TEXT NOT NULL,
    cuisines             TEXT NOT NULL DEFAULT '[]',
    meals_per_day        INTEGER NOT NULL DEFAULT 3,
    max_cooking_time_min INTEGER,
    weekly_budget        REAL,
    meal_complexity      TEXT NOT NULL DEFAULT 'moderate',
    creation_time        TIMESTAMP NOT NULL,
    update_time          TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS meal_plans (
    plan_id          TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id),
    week_start       TEXT NOT NULL,
    active           INTEGER NOT NULL DEFAULT 1,
    total_cost       REAL,
    created_by_agent TEXT NOT NULL,
    creation_time    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meal_plans_user_active ON meal_plans(user_id, active);

CREATE TABLE IF NOT EXISTS planned_meals (
    meal_id       TEXT PRIMARY KEY,
    plan_id       TEXT NOT NULL REFERENCES meal_plans(plan_id),
    user_id       TEXT NOT NULL REFERENCES users(user_id),
    day           INTEGER NOT NULL,
    slot          TEXT NOT NULL,
    recipe_name   TEXT NOT NULL,
    calories      INTEGER NOT NULL,
    protein_g     REAL NOT NULL,
    carbs_g       REAL NOT NULL,
    fats_g        REAL NOT NULL,
    prep_time_min INTEGER NOT NULL DEFAULT 0,
    ingredients   TEXT NOT NULL DEFAULT '[]',
    completed     INTEGER NOT NULL DEFAULT 0,
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_planned_meals_plan ON planned_meals(plan_id);

CREATE TABLE IF NOT EXISTS actual_meals (
    actual_id        TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(user_id),
    plan_id          TEXT,
    planned_meal_id  TEXT,
    day              INTEGER NOT NULL,
    slot             TEXT NOT NULL,
    food_description TEXT NOT NULL,
    calories         INTEGER NOT NULL,
    protein_g        REAL NOT NULL,
    carbs_g          REAL NOT NULL,
    fats_g           REAL NOT NULL,
    planned          INTEGER NOT NULL DEFAULT 0,
    logged_by_agent  TEXT NOT NULL,
    creation_time    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actual_meals_user ON actual_meals(user_id);

CREATE TABLE IF NOT EXISTS plan_modifications (
    modification_id   TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(user_id),
    plan_id           TEXT NOT NULL REFERENCES meal_plans(plan_id),
    day               INTEGER NOT NULL,
    modification_type TEXT NOT NULL,
    original_calories INTEGER NOT NULL,
    new_calories      INTEGER NOT NULL,
    reason            TEXT NOT NULL,
    adjusted_by_agent TEXT NOT NULL,
    creation_time     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plan_modifications_plan ON plan_modifications(plan_id);

CREATE TABLE IF NOT EXISTS daily_macro_logs (
    log_id            TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(user_id),
    plan_id           TEXT,
    date              TEXT NOT NULL,
    planned_calories  INTEGER NOT NULL,
    actual_calories   INTEGER NOT NULL,
    planned_protein_g REAL NOT NULL,
    actual_protein_g  REAL NOT NULL,
    planned_carbs_g   REAL NOT NULL,
    actual_carbs_g    REAL NOT NULL,
    planned_fats_g    REAL NOT NULL,
    actual_fats_g     REAL NOT NULL,
    adherence_score   REAL NOT NULL,
    creation_time     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_daily_macro_logs_user ON daily_macro_logs(user_id);
`
