package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventQueueDeliversEvents(t *testing.T) {
	var mu sync.Mutex
	var got []Event
	done := make(chan struct{})

	q := NewEventQueue("test", func(ctx context.Context, e Event) error {
		mu.Lock()
		got = append(got, e)
		count := len(got)
		mu.Unlock()
		if count == 2 {
			close(done)
		}
		return nil
	}, Options{Workers: 2, Logger: zap.NewNop()})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Publish(Event{ID: "1", Kind: "score.recorded"}))
	require.NoError(t, q.Publish(Event{ID: "2", Kind: "groups.drawn"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events not delivered")
	}
}

func TestEventQueueRetriesThenDrops(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	q := NewEventQueue("test", func(ctx context.Context, e Event) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("downstream unavailable")
	}, Options{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond, Logger: zap.NewNop()})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Publish(Event{ID: "1", Kind: "score.recorded"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 3 // first try + two retries
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventQueuePublishBeforeStart(t *testing.T) {
	q := NewEventQueue("test", func(ctx context.Context, e Event) error { return nil }, Options{})
	require.Error(t, q.Publish(Event{ID: "1"}))
}
