package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGroup_AllSucceed(t *testing.T) {
	var ran int32
	tasks := []Task{
		{Name: "a", Run: func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
		{Name: "b", Run: func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
	}
	err := RunGroup(context.Background(), tasks, 2, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&ran))
}

func TestRunGroup_RetriesOnlyFailedTasks(t *testing.T) {
	var aAttempts, bAttempts int32
	tasks := []Task{
		{Name: "a", Run: func(ctx context.Context) error {
			atomic.AddInt32(&aAttempts, 1)
			return nil
		}},
		{Name: "b", Run: func(ctx context.Context) error {
			n := atomic.AddInt32(&bAttempts, 1)
			if n < 2 {
				return errors.New("transient failure")
			}
			return nil
		}},
	}
	err := RunGroup(context.Background(), tasks, 2, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&aAttempts))
	assert.Equal(t, int32(2), atomic.LoadInt32(&bAttempts))
}

func TestRunGroup_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []Task{{Name: "a", Run: func(ctx context.Context) error { return errors.New("fails") }}}
	err := RunGroup(ctx, tasks, 1, time.Hour)
	assert.Error(t, err)
}
