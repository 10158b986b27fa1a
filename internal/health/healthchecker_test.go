package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name    string
	healthy atomic.Bool
}

func (s *stubChecker) Name() string    { return s.name }
func (s *stubChecker) IsHealthy() bool { return s.healthy.Load() }

func (s *stubChecker) Start(ctx context.Context, interval time.Duration) {}

func TestServiceHealthRequiresAllDependencies(t *testing.T) {
	store := &stubChecker{name: "store"}
	index := &stubChecker{name: "semantic-index"}
	store.healthy.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), store, index)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx, 5*time.Millisecond)

	assert.Never(t, svc.IsHealthy, 50*time.Millisecond, 5*time.Millisecond)

	index.healthy.Store(true)
	assert.Eventually(t, svc.IsHealthy, time.Second, 5*time.Millisecond)

	store.healthy.Store(false)
	assert.Eventually(t, func() bool { return !svc.IsHealthy() }, time.Second, 5*time.Millisecond)
}
