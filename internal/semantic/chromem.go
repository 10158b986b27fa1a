package semantic

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// chromemIndex implements Index on chromem-go, a pure Go embedded vector
// database. Used by the local build target and tests; everything lives in
// process memory. Recency reads are served from a side log because chromem
// only exposes similarity queries.
type chromemIndex struct {
	db *chromem.DB

	mu      sync.Mutex
	cols    map[string]*chromem.Collection
	counts  map[string]int      // docs per collection, for nResults clamping
	recency map[string][]Record // keyed by collection + "/" + userID, newest last
}

// NewChromemIndex constructs an embedded in-memory Index.
func NewChromemIndex() Index {
	return &chromemIndex{
		db:      chromem.NewDB(),
		cols:    make(map[string]*chromem.Collection),
		counts:  make(map[string]int),
		recency: make(map[string][]Record),
	}
}

func recencyKey(collection, userID string) string { return collection + "/" + userID }

func (c *chromemIndex) collection(name string) (*chromem.Collection, error) {
	if col, ok := c.cols[name]; ok {
		return col, nil
	}
	col, err := c.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	c.cols[name] = col
	return col, nil
}

func (c *chromemIndex) Insert(ctx context.Context, collection string, rec Record, vec []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.collection(collection)
	if err != nil {
		return err
	}

	ts := rec.CreationTime
	if ts.IsZero() {
		ts = time.Now().UTC()
		rec.CreationTime = ts
	}
	metadata := map[string]string{
		"userId":       rec.UserID,
		"creationTime": ts.Format(time.RFC3339Nano),
	}
	for k, v := range rec.Metadata {
		metadata[k] = v
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: vec,
		Metadata:  metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	c.counts[collection]++

	key := recencyKey(collection, rec.UserID)
	c.recency[key] = append(c.recency[key], rec)
	return nil
}

func (c *chromemIndex) Query(ctx context.Context, collection, userID, query string, vec []float32, topK int, minScore float64) ([]model.SemanticHit, error) {
	c.mu.Lock()
	col, err := c.collection(collection)
	total := c.counts[collection]
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// chromem requires nResults <= collection size
	n := topK
	if n > total {
		n = total
	}
	if n <= 0 {
		return []model.SemanticHit{}, nil
	}

	where := map[string]string{"userId": userID}
	results, err := col.QueryEmbedding(ctx, vec, n, where, nil)
	if err != nil {
		if isInsufficientDocsError(err) {
			return []model.SemanticHit{}, nil
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]model.SemanticHit, 0, len(results))
	for _, r := range results {
		score := float64(r.Similarity)
		if score < minScore {
			continue
		}
		out = append(out, model.SemanticHit{
			RecordID: r.ID,
			Text:     r.Content,
			Score:    score,
			Metadata: stripInternalKeys(r.Metadata),
		})
	}
	return out, nil
}

func (c *chromemIndex) Recent(ctx context.Context, collection, userID string, limit int) ([]model.SemanticHit, error) {
	c.mu.Lock()
	log := c.recency[recencyKey(collection, userID)]
	c.mu.Unlock()

	if limit <= 0 || limit > len(log) {
		limit = len(log)
	}
	out := make([]model.SemanticHit, 0, limit)
	for i := len(log) - 1; i >= len(log)-limit; i-- {
		rec := log[i]
		out = append(out, model.SemanticHit{
			RecordID: rec.ID,
			Text:     rec.Text,
			Metadata: rec.Metadata,
		})
	}
	return out, nil
}

func (c *chromemIndex) DeleteUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range Collections {
		col, ok := c.cols[name]
		if !ok {
			continue
		}
		key := recencyKey(name, userID)
		removed := len(c.recency[key])
		if err := col.Delete(ctx, map[string]string{"userId": userID}, nil); err != nil {
			return fmt.Errorf("delete from %s: %w", name, err)
		}
		c.counts[name] -= removed
		if c.counts[name] < 0 {
			c.counts[name] = 0
		}
		delete(c.recency, key)
	}
	return nil
}

// HealthPing implements health.HealthPinger. The embedded index is healthy
// whenever the process is up.
func (c *chromemIndex) HealthPing(ctx context.Context) error { return nil }

// stripInternalKeys drops the bookkeeping keys added at insert so callers
// see only the metadata they stored, matching the weaviate read path.
func stripInternalKeys(md map[string]string) map[string]string {
	out := make(map[string]string, len(md))
	for k, v := range md {
		if k == "userId" || k == "creationTime" {
			continue
		}
		out[k] = v
	}
	return out
}

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
