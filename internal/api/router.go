package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers all API routes on a fresh mux router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/api/users", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userId}", h.DeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/api/users/{userId}/context", h.GetUserContext).Methods(http.MethodGet)

	r.HandleFunc("/api/users/{userId}/meal-plans", h.GeneratePlan).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/meal-plans/active", h.GetActivePlan).Methods(http.MethodGet)
	r.HandleFunc("/api/meal-plans/{planId}", h.GetPlan).Methods(http.MethodGet)

	r.HandleFunc("/api/users/{userId}/conversations", h.SaveConversation).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/conversations/search", h.SearchConversations).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/feedback", h.SaveFeedback).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/preferences/statements", h.SavePreferenceStatement).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/food-context", h.FoodPreferenceContext).Methods(http.MethodGet)

	r.HandleFunc("/api/users/{userId}/actual-meals", h.LogActualMeal).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/actual-meals", h.ListActualMeals).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userId}/modifications", h.LogModification).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userId}/daily-macros", h.LogDailyMacros).Methods(http.MethodPost)

	return r
}
