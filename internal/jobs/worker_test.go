package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorker_RunsJobs(t *testing.T) {
	w := NewWorker(2)
	defer w.Stop()

	var ran atomic.Int32
	done := make(chan struct{})
	ok := w.Enqueue("test", func(ctx context.Context) error {
		ran.Add(1)
		close(done)
		return nil
	})
	assert.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Equal(t, int32(1), ran.Load())
}

func TestWorker_RecoverFromPanic(t *testing.T) {
	w := NewWorker(1)
	defer w.Stop()

	w.Enqueue("panics", func(ctx context.Context) error {
		panic("boom")
	})

	// the pool survives a panicking job
	done := make(chan struct{})
	w.Enqueue("after", func(ctx context.Context) error {
		close(done)
		return nil
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
}

func TestWorker_ScheduleEvery(t *testing.T) {
	w := NewWorker(1)
	defer w.Stop()

	var ran atomic.Int32
	w.ScheduleEvery("tick", 20*time.Millisecond, func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	time.Sleep(150 * time.Millisecond)
	assert.GreaterOrEqual(t, ran.Load(), int32(2), "runs immediately and on ticks")
}

func TestWorker_EnqueueAfterStop(t *testing.T) {
	w := NewWorker(1)
	w.Stop()
	ok := w.Enqueue("late", func(ctx context.Context) error { return nil })
	assert.False(t, ok)
}
