// Package api exposes the memory facade and the planner over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/api/respond"
	"github.com/nutrigenie/nutrigenie/internal/memory"
	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/planner"
)

// HealthReporter reports aggregate service health.
type HealthReporter interface {
	IsHealthy() bool
}

// Handler serves all API routes.
type Handler struct {
	svc     *memory.Service
	planner planner.Planner
	health  HealthReporter
	retries int
	log     zerolog.Logger
}

func NewHandler(svc *memory.Service, p planner.Planner, health HealthReporter, plannerRetries int, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, planner: p, health: health, retries: plannerRetries, log: log}
}

// writeDomainError maps facade and planner errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrSafetyViolation):
		respond.WriteUnprocessable(w, err.Error())
	case errors.Is(err, planner.ErrUnavailable), errors.Is(err, planner.ErrBadPlan):
		respond.WriteBadGateway(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// onboardResponse is the payload for user creation: the computed targets plus
// the first generated plan.
type onboardResponse struct {
	UserID     string             `json:"userId"`
	Targets    model.MacroTargets `json:"targets"`
	Plan       *model.MealPlan    `json:"plan,omitempty"`
	Advisories []string           `json:"advisories,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// CreateUser handles POST /api/users. It creates the profile, then generates
// and stores the first weekly plan. The profile write is authoritative: if
// plan generation fails after retries the profile survives and the client can
// retry via POST /api/users/{userId}/meal-plans.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		memory.CreateUserRequest
		WeekStart string `json:"weekStart,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}

	created, err := h.svc.CreateUserProfile(r.Context(), &req.CreateUserRequest)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := onboardResponse{
		UserID:   created.UserID,
		Targets:  created.Targets,
		Warnings: created.Warnings,
	}

	planResult, err := h.generatePlan(r, created.UserID, req.WeekStart)
	if err != nil {
		h.log.Error().Err(err).Str("userId", created.UserID).Msg("initial plan generation failed")
		out.Warnings = append(out.Warnings, "meal plan generation failed: "+err.Error())
		respond.WriteJSON(w, http.StatusCreated, out)
		return
	}
	out.Plan = planResult.Plan
	for _, a := range planResult.Advisories {
		out.Advisories = append(out.Advisories, a.String())
	}
	out.Warnings = append(out.Warnings, planResult.Warnings...)
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GeneratePlan handles POST /api/users/{userId}/meal-plans. It regenerates
// the weekly plan for an existing user and activates it.
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req struct {
		WeekStart string `json:"weekStart,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "Invalid request body")
			return
		}
	}

	result, err := h.generatePlan(r, userID, req.WeekStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, result)
}

// generatePlan loads user context, calls the planner with bounded retries on
// transient failures, screens and stores the result.
func (h *Handler) generatePlan(r *http.Request, userID, weekStart string) (*memory.CreatePlanResult, error) {
	ctx := r.Context()

	uc, err := h.svc.GetUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	targets := model.MacroTargets{}
	if uc.Goal != nil {
		targets = model.MacroTargets{
			DailyCalories: uc.Goal.DailyCalories,
			ProteinG:      uc.Goal.ProteinG,
			CarbsG:        uc.Goal.CarbsG,
			FatsG:         uc.Goal.FatsG,
		}
	}
	if weekStart == "" {
		weekStart = nextMonday(time.Now().UTC())
	}

	var meals []*model.PlannedMeal
	for attempt := 0; ; attempt++ {
		meals, err = h.planner.GenerateMealPlan(ctx, uc, targets, weekStart)
		if err == nil {
			break
		}
		if !errors.Is(err, planner.ErrUnavailable) || attempt >= h.retries {
			return nil, err
		}
		h.log.Warn().Err(err).Int("attempt", attempt+1).Msg("planner retry")
	}

	return h.svc.CreateMealPlan(ctx, &memory.CreatePlanRequest{
		UserID:    userID,
		WeekStart: weekStart,
		Meals:     meals,
		CreatedBy: "planner",
	})
}

// nextMonday returns the date of the upcoming Monday (today if Monday).
func nextMonday(now time.Time) string {
	offset := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, offset).Format("2006-01-02")
}

// GetUser handles GET /api/users/{userId}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/{userId}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.svc.DeleteUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, struct {
		Status   string   `json:"status"`
		Warnings []string `json:"warnings,omitempty"`
	}{Status: "deleted", Warnings: warnings})
}

// GetUserContext handles GET /api/users/{userId}/context.
func (h *Handler) GetUserContext(w http.ResponseWriter, r *http.Request) {
	uc, err := h.svc.GetUserContext(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, uc)
}

// GetActivePlan handles GET /api/users/{userId}/meal-plans/active.
func (h *Handler) GetActivePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.GetActiveMealPlan(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, plan)
}

// GetPlan handles GET /api/meal-plans/{planId}.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.GetMealPlan(r.Context(), mux.Vars(r)["planId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, plan)
}

// SaveConversation handles POST /api/users/{userId}/conversations.
func (h *Handler) SaveConversation(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req struct {
		Agent   string `json:"agent"`
		Role    string `json:"role"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.svc.SaveConversation(r.Context(), userID, req.Agent, req.Role, req.Message); err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, struct {
		Status string `json:"status"`
	}{Status: "saved"})
}

// SearchConversations handles POST /api/users/{userId}/conversations/search.
func (h *Handler) SearchConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req struct {
		Query string `json:"query"`
		TopK  int    `json:"topK,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	hits, err := h.svc.SearchConversationContext(r.Context(), userID, req.Query, req.TopK)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, struct {
		Hits []model.SemanticHit `json:"hits"`
	}{Hits: hits})
}

// SaveFeedback handles POST /api/users/{userId}/feedback.
func (h *Handler) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req struct {
		MealName string `json:"mealName"`
		Feedback string `json:"feedback"`
		Rating   int    `json:"rating"`
		Cuisine  string `json:"cuisine,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.svc.SaveMealFeedback(r.Context(), userID, req.MealName, req.Feedback, req.Rating, req.Cuisine); err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, struct {
		Status string `json:"status"`
	}{Status: "saved"})
}

// SavePreferenceStatement handles POST /api/users/{userId}/preferences/statements.
func (h *Handler) SavePreferenceStatement(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req struct {
		Text string `json:"text"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := h.svc.SavePreferenceStatement(r.Context(), userID, req.Text, req.Kind); err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, struct {
		Status string `json:"status"`
	}{Status: "saved"})
}

// FoodPreferenceContext handles GET /api/users/{userId}/food-context?query=...&topK=N.
func (h *Handler) FoodPreferenceContext(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	query := r.URL.Query().Get("query")
	topK, _ := strconv.Atoi(r.URL.Query().Get("topK"))
	result, err := h.svc.FoodPreferenceContext(r.Context(), userID, query, topK)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}

// LogActualMeal handles POST /api/users/{userId}/actual-meals.
func (h *Handler) LogActualMeal(w http.ResponseWriter, r *http.Request) {
	var meal model.ActualMeal
	if err := json.NewDecoder(r.Body).Decode(&meal); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	meal.UserID = mux.Vars(r)["userId"]
	result, err := h.svc.LogActualMeal(r.Context(), &meal)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, result)
}

// ListActualMeals handles GET /api/users/{userId}/actual-meals?limit=N.
func (h *Handler) ListActualMeals(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	meals, err := h.svc.RecentActualMeals(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, struct {
		Meals []*model.ActualMeal `json:"meals"`
	}{Meals: meals})
}

// LogModification handles POST /api/users/{userId}/modifications.
func (h *Handler) LogModification(w http.ResponseWriter, r *http.Request) {
	var m model.Modification
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	m.UserID = mux.Vars(r)["userId"]
	result, err := h.svc.LogModification(r.Context(), &m)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, result)
}

// LogDailyMacros handles POST /api/users/{userId}/daily-macros.
func (h *Handler) LogDailyMacros(w http.ResponseWriter, r *http.Request) {
	var d model.DailyMacroLog
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respond.WriteBadRequest(w, "Invalid request body")
		return
	}
	d.UserID = mux.Vars(r)["userId"]
	stored, err := h.svc.LogDailyMacros(r.Context(), &d)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, stored)
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && !h.health.IsHealthy() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, struct {
			Status string `json:"status"`
		}{Status: "unhealthy"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}
