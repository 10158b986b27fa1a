package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// weavIndex implements Index on the Weaviate Go client with hybrid queries.
type weavIndex struct {
	client  *weaviate.Client
	baseURL string // host:port without scheme
	alpha   float32
}

// NewWeaviateIndex constructs an Index backed by Weaviate at baseURL.
// baseURL should be host:port (without scheme), e.g. "localhost:8080".
// alpha balances keyword vs vector scoring in hybrid search.
func NewWeaviateIndex(baseURL string, alpha float32) (Index, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavIndex{client: cl, baseURL: baseURL, alpha: alpha}, nil
}

func (w *weavIndex) Insert(ctx context.Context, collection string, rec Record, vec []float32) error {
	ts := rec.CreationTime
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	extra, _ := json.Marshal(rec.Metadata)
	props := map[string]interface{}{
		"recordId":     rec.ID,
		"userId":       rec.UserID,
		"text":         rec.Text,
		"extra":        string(extra),
		"creationTime": ts.Format(time.RFC3339),
	}
	_, err := w.client.Data().Creator().
		WithClassName(collection).
		WithID(rec.ID).
		WithProperties(props).
		WithVector(vec).
		Do(ctx)
	return err
}

func (w *weavIndex) Query(ctx context.Context, collection, userID, query string, vec []float32, topK int, minScore float64) ([]model.SemanticHit, error) {
	hy := (&gql.HybridArgumentBuilder{}).
		WithQuery(query).
		WithVector(vec).
		WithAlpha(w.alpha).
		WithProperties([]string{"text"})

	where := filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(userID)

	req := w.client.GraphQL().Get().
		WithClassName(collection).
		WithWhere(where).
		WithHybrid(hy).
		WithLimit(topK).
		WithFields(
			gql.Field{Name: "recordId"},
			gql.Field{Name: "text"},
			gql.Field{Name: "extra"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "score"}}},
		)

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	hits := parseHits(resp.Data, collection)
	out := make([]model.SemanticHit, 0, len(hits))
	for _, h := range hits {
		if h.Score >= minScore {
			out = append(out, h)
		}
	}
	return out, nil
}

func (w *weavIndex) Recent(ctx context.Context, collection, userID string, limit int) ([]model.SemanticHit, error) {
	where := filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(userID)
	req := w.client.GraphQL().Get().
		WithClassName(collection).
		WithWhere(where).
		WithSort(gql.Sort{Path: []string{"creationTime"}, Order: gql.Desc}).
		WithLimit(limit).
		WithFields(
			gql.Field{Name: "recordId"},
			gql.Field{Name: "text"},
			gql.Field{Name: "extra"},
		)
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	return parseHits(resp.Data, collection), nil
}

func (w *weavIndex) DeleteUser(ctx context.Context, userID string) error {
	for _, collection := range Collections {
		where := filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(userID)
		req := w.client.GraphQL().Get().
			WithClassName(collection).
			WithWhere(where).
			WithFields(gql.Field{Name: "recordId"})
		resp, err := req.Do(ctx)
		if err != nil || len(resp.Errors) > 0 {
			continue
		}
		getData, ok := resp.Data["Get"].(map[string]interface{})
		if !ok {
			continue
		}
		arr, ok := getData[collection].([]interface{})
		if !ok {
			continue
		}
		for _, item := range arr {
			id, _ := item.(map[string]interface{})["recordId"].(string)
			if id != "" {
				_ = w.client.Data().Deleter().WithClassName(collection).WithID(id).Do(ctx)
			}
		}
	}
	return nil
}

// HealthPing implements health.HealthPinger for the Weaviate index.
// It calls GET http://<baseURL>/v1/meta and expects 200 OK.
func (w *weavIndex) HealthPing(ctx context.Context) error {
	if w == nil || w.baseURL == "" {
		return fmt.Errorf("weaviate baseURL missing")
	}
	url := w.baseURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/meta", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weaviate status %d", resp.StatusCode)
	}
	return nil
}

func parseHits(data map[string]models.JSONObject, collection string) []model.SemanticHit {
	getData, ok := data["Get"].(map[string]interface{})
	if !ok {
		return []model.SemanticHit{}
	}
	arr, ok := getData[collection].([]interface{})
	if !ok {
		return []model.SemanticHit{}
	}
	out := make([]model.SemanticHit, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		hit := model.SemanticHit{}
		hit.RecordID, _ = m["recordId"].(string)
		hit.Text, _ = m["text"].(string)
		if extra, ok := m["extra"].(string); ok && extra != "" {
			var md map[string]string
			if err := json.Unmarshal([]byte(extra), &md); err == nil {
				hit.Metadata = md
			}
		}
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			switch v := add["score"].(type) {
			case float64:
				hit.Score = v
			case string:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					hit.Score = f
				}
			}
		}
		out = append(out, hit)
	}
	return out
}

func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}
