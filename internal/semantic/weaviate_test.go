package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func graphQLData(collection string, items ...interface{}) map[string]models.JSONObject {
	return map[string]models.JSONObject{
		"Get": map[string]interface{}{collection: items},
	}
}

func TestParseHitsDecodesRecords(t *testing.T) {
	data := graphQLData(CollectionFoodFeedback,
		map[string]interface{}{
			"recordId":    "r1",
			"text":        "loved the pad thai",
			"extra":       `{"rating":"5","meal":"Pad Thai"}`,
			"_additional": map[string]interface{}{"score": "0.82"},
		},
		map[string]interface{}{
			"recordId":    "r2",
			"text":        "disliked the oatmeal",
			"extra":       "",
			"_additional": map[string]interface{}{"score": 0.41},
		},
	)

	hits := parseHits(data, CollectionFoodFeedback)
	require.Len(t, hits, 2)

	assert.Equal(t, "r1", hits[0].RecordID)
	assert.Equal(t, "loved the pad thai", hits[0].Text)
	assert.Equal(t, "5", hits[0].Metadata["rating"])
	assert.Equal(t, "Pad Thai", hits[0].Metadata["meal"])
	// score arrives as a string from some server versions
	assert.InDelta(t, 0.82, hits[0].Score, 1e-9)

	assert.Equal(t, "r2", hits[1].RecordID)
	assert.Nil(t, hits[1].Metadata)
	assert.InDelta(t, 0.41, hits[1].Score, 1e-9)
}

func TestParseHitsEmptyOnMissingData(t *testing.T) {
	assert.Empty(t, parseHits(map[string]models.JSONObject{}, CollectionConversations))
	assert.Empty(t, parseHits(graphQLData(CollectionPreferences), CollectionConversations))
}

func TestParseHitsSkipsMalformedItems(t *testing.T) {
	data := graphQLData(CollectionConversations,
		"not-an-object",
		map[string]interface{}{"recordId": "ok", "text": "hello"},
	)
	hits := parseHits(data, CollectionConversations)
	require.Len(t, hits, 1)
	assert.Equal(t, "ok", hits[0].RecordID)
}
