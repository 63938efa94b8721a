package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsJob(t *testing.T) {
	p := New(1)
	done := make(chan string, 1)

	ok := p.Submit(context.Background(), Job{Name: "capture", Run: func(ctx context.Context) { done <- "ran" }})
	require.True(t, ok)

	select {
	case got := <-done:
		assert.Equal(t, "ran", got)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	p.Close()
}

func TestSubmitBackPressure(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, p.Submit(context.Background(), Job{Name: "first", Run: func(ctx context.Context) {
		close(started)
		<-release
	}}))
	<-started

	// One job fills the queue slot; the next is dropped.
	require.True(t, p.Submit(context.Background(), Job{Name: "second", Run: func(ctx context.Context) {}}))
	assert.False(t, p.Submit(context.Background(), Job{Name: "third", Run: func(ctx context.Context) {}}))

	close(release)
	p.Close()
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	p := New(1)
	var ran atomic.Bool

	require.True(t, p.Submit(context.Background(), Job{Name: "bad", Run: func(ctx context.Context) { panic("boom") }}))
	require.Eventually(t, func() bool {
		return p.Submit(context.Background(), Job{Name: "good", Run: func(ctx context.Context) { ran.Store(true) }})
	}, 2*time.Second, 10*time.Millisecond)
	p.Close()
	assert.True(t, ran.Load())
}
