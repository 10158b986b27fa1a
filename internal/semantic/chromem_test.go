package semantic

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Orthogonal unit vectors make similarity scores predictable: identical
// vectors score 1, orthogonal vectors score 0.5 after chromem normalization.
func vecA() []float32 { return []float32{1, 0, 0} }
func vecB() []float32 { return []float32{0, 1, 0} }
func vecC() []float32 { return []float32{0, 0, 1} }

func TestChromemInsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()

	recA := Record{ID: uuid.New().String(), UserID: "u1", Text: "loved the pad thai", Metadata: map[string]string{"rating": "5"}}
	recB := Record{ID: uuid.New().String(), UserID: "u1", Text: "disliked the oatmeal", Metadata: map[string]string{"rating": "2"}}

	require.NoError(t, idx.Insert(ctx, CollectionFoodFeedback, recA, vecA()))
	require.NoError(t, idx.Insert(ctx, CollectionFoodFeedback, recB, vecB()))

	hits, err := idx.Query(ctx, CollectionFoodFeedback, "u1", "thai food", vecA(), 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, recA.ID, hits[0].RecordID)
	assert.Equal(t, "loved the pad thai", hits[0].Text)
	assert.Equal(t, "5", hits[0].Metadata["rating"])
	// descending score order
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestChromemQueryMetadataExcludesBookkeepingKeys(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()

	rec := Record{ID: uuid.New().String(), UserID: "u1", Text: "spicy curry", Metadata: map[string]string{"rating": "4"}}
	require.NoError(t, idx.Insert(ctx, CollectionFoodFeedback, rec, vecA()))

	hits, err := idx.Query(ctx, CollectionFoodFeedback, "u1", "curry", vecA(), 5, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "4", hits[0].Metadata["rating"])
	assert.NotContains(t, hits[0].Metadata, "userId")
	assert.NotContains(t, hits[0].Metadata, "creationTime")
}

func TestChromemQueryScopedToUser(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()

	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u1", Text: "mine"}, vecA()))
	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u2", Text: "theirs"}, vecA()))

	hits, err := idx.Query(ctx, CollectionConversations, "u1", "anything", vecA(), 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mine", hits[0].Text)
}

func TestChromemQueryEmptyCollection(t *testing.T) {
	idx := NewChromemIndex()
	hits, err := idx.Query(context.Background(), CollectionPreferences, "u1", "q", vecA(), 5, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestChromemQueryTopKExceedsCount(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()
	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u1", Text: "only one"}, vecA()))

	hits, err := idx.Query(ctx, CollectionConversations, "u1", "q", vecA(), 50, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestChromemMinScoreFilter(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()
	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u1", Text: "close match"}, vecA()))
	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u1", Text: "far"}, vecB()))

	hits, err := idx.Query(ctx, CollectionConversations, "u1", "q", vecA(), 5, 0.9)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.GreaterOrEqual(t, hits[0].Score, 0.9)
}

func TestChromemRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()
	for i, text := range []string{"first", "second", "third"} {
		vec := []float32{float32(i + 1), 1, 0}
		require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u1", Text: text}, vec))
	}

	hits, err := idx.Recent(ctx, CollectionConversations, "u1", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "third", hits[0].Text)
	assert.Equal(t, "second", hits[1].Text)
}

func TestChromemDeleteUser(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex()
	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u1", Text: "a"}, vecA()))
	require.NoError(t, idx.Insert(ctx, CollectionFoodFeedback, Record{ID: uuid.New().String(), UserID: "u1", Text: "b"}, vecB()))
	require.NoError(t, idx.Insert(ctx, CollectionConversations, Record{ID: uuid.New().String(), UserID: "u2", Text: "keep"}, vecC()))

	require.NoError(t, idx.DeleteUser(ctx, "u1"))

	hits, err := idx.Query(ctx, CollectionConversations, "u1", "q", vecA(), 5, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	recent, err := idx.Recent(ctx, CollectionFoodFeedback, "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	kept, err := idx.Query(ctx, CollectionConversations, "u2", "q", vecC(), 5, 0)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0].Text)
}
