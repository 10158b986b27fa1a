package semantic

import (
	"context"
	"fmt"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// BootstrapWeaviate ensures the three collection classes exist. Idempotent.
func BootstrapWeaviate(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	for _, name := range Collections {
		cls := &models.Class{
			Class:      name,
			Vectorizer: "none",
			Properties: []*models.Property{
				{Name: "recordId", DataType: []string{"uuid"}},
				{Name: "userId", DataType: []string{"text"}},
				{Name: "text", DataType: []string{"text"}},
				{Name: "extra", DataType: []string{"text"}},
				{Name: "creationTime", DataType: []string{"date"}},
			},
		}
		if err := ensureClass(cctx, cl, cls); err != nil {
			return fmt.Errorf("bootstrap %s: %w", name, err)
		}
	}
	return nil
}

func ensureClass(ctx context.Context, cl *weaviate.Client, desired *models.Class) error {
	ex, err := cl.Schema().ClassGetter().WithClassName(desired.Class).Do(ctx)
	if err == nil && ex != nil {
		return nil
	}
	if err := cl.Schema().ClassCreator().WithClass(desired).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", desired.Class, err)
	}
	return nil
}
