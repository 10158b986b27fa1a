package memory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nutrigenie/nutrigenie/internal/model"
	"github.com/nutrigenie/nutrigenie/internal/semantic"
)

// Search defaults. topK is clamped to keep result payloads bounded; minScore
// drops hits that are barely related to the query.
const (
	defaultTopK     = 5
	maxTopK         = 25
	defaultMinScore = 0.3
)

// SaveConversation indexes one conversation turn. Semantic-only: there is no
// structured row, so an index failure fails the operation.
func (s *Service) SaveConversation(ctx context.Context, userID, agent, role, message string) error {
	if message == "" {
		return fmt.Errorf("%w: message is required", model.ErrValidation)
	}
	if role != "user" && role != "agent" {
		return fmt.Errorf("%w: role must be user or agent", model.ErrValidation)
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return err
	}
	return s.indexRecord(ctx, semantic.CollectionConversations, userID, message, map[string]string{
		"role":  role,
		"agent": agent,
	})
}

// SearchConversationContext runs a similarity search over the user's
// conversation history. Results come back in descending score order.
func (s *Service) SearchConversationContext(ctx context.Context, userID, query string, topK int) ([]model.SemanticHit, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	vec, err := s.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", model.ErrSemanticIndex, err)
	}
	hits, err := s.index.Query(ctx, semantic.CollectionConversations, userID, query, vec, topK, defaultMinScore)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", model.ErrSemanticIndex, err)
	}
	return hits, nil
}

// SaveMealFeedback indexes a food feedback record (text + 1..5 rating).
func (s *Service) SaveMealFeedback(ctx context.Context, userID, mealName, feedback string, rating int, cuisine string) error {
	if feedback == "" && mealName == "" {
		return fmt.Errorf("%w: feedback text is required", model.ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", model.ErrValidation)
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return err
	}

	text := feedback
	if mealName != "" {
		text = fmt.Sprintf("%s: %s", mealName, feedback)
	}
	metadata := map[string]string{
		"rating": strconv.Itoa(rating),
		"meal":   mealName,
	}
	if cuisine != "" {
		metadata["cuisine"] = cuisine
	}
	return s.indexRecord(ctx, semantic.CollectionFoodFeedback, userID, text, metadata)
}

// SavePreferenceStatement indexes a standalone like/dislike statement.
func (s *Service) SavePreferenceStatement(ctx context.Context, userID, text, kind string) error {
	if text == "" {
		return fmt.Errorf("%w: text is required", model.ErrValidation)
	}
	if kind != "like" && kind != "dislike" {
		return fmt.Errorf("%w: kind must be like or dislike", model.ErrValidation)
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return err
	}
	return s.indexRecord(ctx, semantic.CollectionPreferences, userID, text, map[string]string{"kind": kind})
}

// FoodPreferenceResult aggregates remembered taste signals for the planner.
type FoodPreferenceResult struct {
	Liked       []model.SemanticHit `json:"liked"`
	Disliked    []model.SemanticHit `json:"disliked"`
	Preferences []model.SemanticHit `json:"preferences"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// FoodPreferenceContext queries feedback and preference statements relevant
// to query and splits feedback into liked (rating >= 4) and disliked
// (rating <= 2). Degraded index access yields warnings, not failure.
func (s *Service) FoodPreferenceContext(ctx context.Context, userID, query string, topK int) (*FoodPreferenceResult, error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	result := &FoodPreferenceResult{
		Liked:       []model.SemanticHit{},
		Disliked:    []model.SemanticHit{},
		Preferences: []model.SemanticHit{},
	}

	vec, err := s.emb.Embed(ctx, query)
	if err != nil {
		s.warnIndex(&result.Warnings, "food preference context unavailable", err)
		return result, nil
	}

	if hits, err := s.index.Query(ctx, semantic.CollectionFoodFeedback, userID, query, vec, topK, defaultMinScore); err == nil {
		for _, h := range hits {
			rating, _ := strconv.Atoi(h.Metadata["rating"])
			switch {
			case rating >= 4:
				result.Liked = append(result.Liked, h)
			case rating > 0 && rating <= 2:
				result.Disliked = append(result.Disliked, h)
			}
		}
	} else {
		s.warnIndex(&result.Warnings, "food feedback unavailable", err)
	}

	if hits, err := s.index.Query(ctx, semantic.CollectionPreferences, userID, query, vec, topK, defaultMinScore); err == nil {
		result.Preferences = hits
	} else {
		s.warnIndex(&result.Warnings, "preference statements unavailable", err)
	}

	return result, nil
}
