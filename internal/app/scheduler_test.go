package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingExpirer struct {
	calls atomic.Int64
	err   error
}

func (e *countingExpirer) ExpireStale(context.Context) (int64, error) {
	e.calls.Add(1)
	return 2, e.err
}

func TestScheduler_SweepsUntilStopped(t *testing.T) {
	expirer := &countingExpirer{}
	s := NewScheduler(expirer, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return expirer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	calls := expirer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, expirer.calls.Load())

	// повторный Stop безопасен
	s.Stop()
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	expirer := &countingExpirer{}
	s := NewScheduler(expirer, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
	assert.Equal(t, int64(1), expirer.calls.Load())
}

func TestScheduler_DisabledAndErrors(t *testing.T) {
	expirer := &countingExpirer{}
	NewScheduler(expirer, 0, zap.NewNop()).Start(context.Background())
	assert.Zero(t, expirer.calls.Load())

	core, logs := observer.New(zap.ErrorLevel)
	failing := &countingExpirer{err: errors.New("db down")}
	s := NewScheduler(failing, time.Hour, zap.New(core))
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, "Failed to expire stale requests", logs.All()[0].Message)
}
