// Package semantic provides the embedding-indexed memory store. Records live
// in three logical collections and are always scoped to a user.
package semantic

import (
	"context"
	"time"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// Collection names. Each maps to a Weaviate class or chromem collection.
const (
	CollectionConversations = "ConversationTurn"
	CollectionFoodFeedback  = "FoodFeedback"
	CollectionPreferences   = "PreferenceStatement"
)

// Collections lists every collection, for purge and bootstrap loops.
var Collections = []string{CollectionConversations, CollectionFoodFeedback, CollectionPreferences}

// Record is one semantic memory item. Metadata keys are free-form
// (role, agent, rating, kind); userId and timestamps are carried separately.
type Record struct {
	ID           string
	UserID       string
	Text         string
	Metadata     map[string]string
	CreationTime time.Time
}

// Index provides vector insert, similarity search, recency reads and purge.
type Index interface {
	// Insert stores one record with its embedding.
	Insert(ctx context.Context, collection string, rec Record, vec []float32) error
	// Query runs a similarity search scoped to userID. Results are ordered
	// by descending score, capped at topK, and filtered by minScore.
	Query(ctx context.Context, collection, userID, query string, vec []float32, topK int, minScore float64) ([]model.SemanticHit, error)
	// Recent returns the most recently inserted records for a user,
	// newest first.
	Recent(ctx context.Context, collection, userID string, limit int) ([]model.SemanticHit, error)
	// DeleteUser hard-deletes every record of the user across the collection.
	DeleteUser(ctx context.Context, userID string) error
}
