// Package memory is the unified entry point over the structured store, the
// semantic index, and the embedder. It owns the cross-store invariants:
// semantic records only for existing users, the allergen safety gate, the
// single-active-plan rule, and the degraded-success policy (structured writes
// are authoritative; semantic failures surface as warnings, not errors).
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/embeddings"
	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/nutrition"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
	"github.com/nutrigenie/nutrigenie/internal/store"
)

// Service composes the two stores behind one facade.
type Service struct {
	store store.Store
	index semantic.Index
	emb   embeddings.Provider
	log   zerolog.Logger

	// per-user locks serialize the deactivate/activate plan transition
	userLocks sync.Map
}

func NewService(s store.Store, idx semantic.Index, emb embeddings.Provider, log zerolog.Logger) *Service {
	return &Service{store: s, index: idx, emb: emb, log: log}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RestrictionInput is one dietary restriction at onboarding.
type RestrictionInput struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Severity string `json:"severity"`
}

// PreferenceInput is the preference snapshot at onboarding.
type PreferenceInput struct {
	DietType          string   `json:"dietType"`
	Cuisines          []string `json:"cuisines"`
	MealsPerDay       int      `json:"mealsPerDay"`
	MaxCookingTimeMin *int     `json:"maxCookingTimeMin,omitempty"`
	WeeklyBudget      *float64 `json:"weeklyBudget,omitempty"`
	MealComplexity    string   `json:"mealComplexity"`
}

// CreateUserRequest carries everything the onboarding form posts.
type CreateUserRequest struct {
	Name           string             `json:"name"`
	Email          *string            `json:"email,omitempty"`
	Age            int                `json:"age"`
	Sex            string             `json:"sex"`
	HeightCm       float64            `json:"heightCm"`
	WeightKg       float64            `json:"weightKg"`
	Country        *string            `json:"country,omitempty"`
	Ethnicity      *string            `json:"ethnicity,omitempty"`
	ActivityLevel  string             `json:"activityLevel"`
	GoalType       string             `json:"goalType"`
	TargetWeightKg *float64           `json:"targetWeightKg,omitempty"`
	TimelineWeeks  *int               `json:"timelineWeeks,omitempty"`
	Restrictions   []RestrictionInput `json:"restrictions,omitempty"`
	Preferences    *PreferenceInput   `json:"preferences,omitempty"`
}

// CreateUserResult reports the new user and their computed daily budget.
type CreateUserResult struct {
	UserID   string             `json:"userId"`
	Targets  model.MacroTargets `json:"targets"`
	Warnings []string           `json:"warnings,omitempty"`
}

func validateCreateUser(req *CreateUserRequest) error {
	switch {
	case req.Name == "":
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	case req.Age < 13 || req.Age > 100:
		return fmt.Errorf("%w: age must be between 13 and 100", model.ErrValidation)
	case req.Sex != nutrition.SexMale && req.Sex != nutrition.SexFemale:
		return fmt.Errorf("%w: sex must be male or female", model.ErrValidation)
	case req.HeightCm < 100 || req.HeightCm > 250:
		return fmt.Errorf("%w: height must be between 100 and 250 cm", model.ErrValidation)
	case req.WeightKg < 30 || req.WeightKg > 300:
		return fmt.Errorf("%w: weight must be between 30 and 300 kg", model.ErrValidation)
	case !nutrition.ValidActivityLevel(req.ActivityLevel):
		return fmt.Errorf("%w: unknown activity level %q", model.ErrValidation, req.ActivityLevel)
	case !nutrition.ValidGoalType(req.GoalType):
		return fmt.Errorf("%w: unknown goal type %q", model.ErrValidation, req.GoalType)
	}
	for _, r := range req.Restrictions {
		if r.Value == "" {
			return fmt.Errorf("%w: restriction value is required", model.ErrValidation)
		}
		switch r.Severity {
		case model.SeverityCritical, model.SeverityModerate, model.SeverityMild:
		default:
			return fmt.Errorf("%w: unknown restriction severity %q", model.ErrValidation, r.Severity)
		}
	}
	return nil
}

// CreateUserProfile validates the onboarding form, computes macro targets,
// and persists profile, goal, restrictions, and preferences. A semantic
// preference summary is indexed best-effort afterwards.
func (s *Service) CreateUserProfile(ctx context.Context, req *CreateUserRequest) (*CreateUserResult, error) {
	if err := validateCreateUser(req); err != nil {
		return nil, err
	}

	targets, err := nutrition.Targets(req.Sex, req.Age, req.HeightCm, req.WeightKg, req.ActivityLevel, req.GoalType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	user, err := s.store.Users().Create(ctx, &model.UserProfile{
		Name:          req.Name,
		Email:         req.Email,
		Age:           req.Age,
		Sex:           req.Sex,
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		Country:       req.Country,
		Ethnicity:     req.Ethnicity,
		ActivityLevel: req.ActivityLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %v", model.ErrStorage, err)
	}

	if _, err := s.store.Goals().Create(ctx, &model.Goal{
		UserID:         user.UserID,
		GoalType:       req.GoalType,
		TargetWeightKg: req.TargetWeightKg,
		TimelineWeeks:  req.TimelineWeeks,
		DailyCalories:  targets.DailyCalories,
		ProteinG:       targets.ProteinG,
		CarbsG:         targets.CarbsG,
		FatsG:          targets.FatsG,
	}); err != nil {
		return nil, fmt.Errorf("%w: create goal: %v", model.ErrStorage, err)
	}

	for _, r := range req.Restrictions {
		if _, err := s.store.Restrictions().Add(ctx, &model.Restriction{
			UserID:   user.UserID,
			Kind:     r.Kind,
			Value:    r.Value,
			Severity: r.Severity,
		}); err != nil {
			return nil, fmt.Errorf("%w: add restriction: %v", model.ErrStorage, err)
		}
	}

	if p := req.Preferences; p != nil {
		if _, err := s.store.Preferences().Put(ctx, &model.Preference{
			UserID:            user.UserID,
			DietType:          p.DietType,
			Cuisines:          p.Cuisines,
			MealsPerDay:       p.MealsPerDay,
			MaxCookingTimeMin: p.MaxCookingTimeMin,
			WeeklyBudget:      p.WeeklyBudget,
			MealComplexity:    p.MealComplexity,
		}); err != nil {
			return nil, fmt.Errorf("%w: put preferences: %v", model.ErrStorage, err)
		}
	}

	result := &CreateUserResult{UserID: user.UserID, Targets: targets}

	// Structured writes succeeded; the semantic summary is best-effort.
	if p := req.Preferences; p != nil && p.DietType != "" {
		summary := fmt.Sprintf("User follows a %s diet", p.DietType)
		if len(p.Cuisines) > 0 {
			summary += fmt.Sprintf(" and enjoys %s cuisine", strings.Join(p.Cuisines, ", "))
		}
		if err := s.indexRecord(ctx, semantic.CollectionPreferences, user.UserID, summary, map[string]string{
			"kind":   "onboarding",
			"source": "profile",
		}); err != nil {
			s.warnIndex(&result.Warnings, "preference summary not indexed", err)
		}
	}
	return result, nil
}

// GetUserContext aggregates the structured profile with recent semantic
// memory. A missing user is ErrNotFound; a degraded semantic index only
// produces warnings.
func (s *Service) GetUserContext(ctx context.Context, userID string) (*model.UserContext, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	uc := &model.UserContext{
		User:                 user,
		Restrictions:         []*model.Restriction{},
		RecentConversations:  []model.SemanticHit{},
		FoodFeedback:         []model.SemanticHit{},
		PreferenceStatements: []model.SemanticHit{},
	}

	if goal, err := s.store.Goals().GetActive(ctx, userID); err == nil {
		uc.Goal = goal
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("%w: load goal: %v", model.ErrStorage, err)
	}

	restrictions, err := s.store.Restrictions().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load restrictions: %v", model.ErrStorage, err)
	}
	uc.Restrictions = restrictions
	if uc.Restrictions == nil {
		uc.Restrictions = []*model.Restriction{}
	}

	if prefs, err := s.store.Preferences().Get(ctx, userID); err == nil {
		uc.Preferences = prefs
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("%w: load preferences: %v", model.ErrStorage, err)
	}

	const recentLimit = 5
	if hits, err := s.index.Recent(ctx, semantic.CollectionConversations, userID, recentLimit); err == nil {
		uc.RecentConversations = hits
	} else {
		s.warnIndex(&uc.Warnings, "recent conversations unavailable", err)
	}
	if hits, err := s.index.Recent(ctx, semantic.CollectionFoodFeedback, userID, recentLimit); err == nil {
		uc.FoodFeedback = hits
	} else {
		s.warnIndex(&uc.Warnings, "food feedback unavailable", err)
	}
	if hits, err := s.index.Recent(ctx, semantic.CollectionPreferences, userID, recentLimit); err == nil {
		uc.PreferenceStatements = hits
	} else {
		s.warnIndex(&uc.Warnings, "preference statements unavailable", err)
	}

	return uc, nil
}

// GetUser returns the structured profile only.
func (s *Service) GetUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	return s.store.Users().Get(ctx, userID)
}

// DeleteUser removes the user everywhere: cascading structured delete plus
// a purge of all semantic collections. A semantic purge failure after the
// structured delete is reported as a warning.
func (s *Service) DeleteUser(ctx context.Context, userID string) ([]string, error) {
	if err := s.store.Users().Delete(ctx, userID); err != nil {
		return nil, err
	}
	var warnings []string
	if err := s.index.DeleteUser(ctx, userID); err != nil {
		s.warnIndex(&warnings, "semantic purge incomplete", err)
	}
	return warnings, nil
}

// indexRecord embeds text and inserts it into a collection.
func (s *Service) indexRecord(ctx context.Context, collection, userID, text string, metadata map[string]string) error {
	vec, err := s.emb.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: embed: %v", model.ErrSemanticIndex, err)
	}
	rec := semantic.Record{
		ID:       uuid.New().String(),
		UserID:   userID,
		Text:     text,
		Metadata: metadata,
	}
	if err := s.index.Insert(ctx, collection, rec, vec); err != nil {
		return fmt.Errorf("%w: insert: %v", model.ErrSemanticIndex, err)
	}
	return nil
}

func (s *Service) warnIndex(warnings *[]string, msg string, err error) {
	s.log.Warn().Err(err).Msg(msg)
	*warnings = append(*warnings, msg)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
