package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPool_Execute verifies results stay aligned with their inputs.
func TestPool_Execute(t *testing.T) {
	pool := NewPool(4, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	jobs := pool.Execute(context.Background(), inputs)
	require.Len(t, jobs, len(inputs))

	for i, job := range jobs {
		assert.Equal(t, inputs[i], job.Input)
		assert.Equal(t, inputs[i]*inputs[i], job.Result)
		assert.NoError(t, job.Err)
	}
}

// TestPool_Errors verifies per-job errors are recorded without stopping
// the other jobs.
func TestPool_Errors(t *testing.T) {
	wantErr := errors.New("boom")
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		if n%2 == 0 {
			return 0, wantErr
		}
		return n, nil
	})

	jobs := pool.Execute(context.Background(), []int{1, 2, 3, 4})
	require.Len(t, jobs, 4)
	assert.NoError(t, jobs[0].Err)
	assert.ErrorIs(t, jobs[1].Err, wantErr)
	assert.NoError(t, jobs[2].Err)
	assert.ErrorIs(t, jobs[3].Err, wantErr)
}

// TestPool_MinimumWorkers verifies a non-positive worker count still runs.
func TestPool_MinimumWorkers(t *testing.T) {
	var calls atomic.Int32
	pool := NewPool(0, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	jobs := pool.Execute(context.Background(), []int{1, 2, 3})
	require.Len(t, jobs, 3)
	assert.Equal(t, int32(3), calls.Load())
}

// TestPool_Cancellation verifies cancelling mid-run stops further
// processing instead of hanging.
func TestPool_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	started := make(chan struct{})
	pool := NewPool(1, func(ctx context.Context, n int) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	})

	done := make(chan []Job[int, int])
	go func() {
		done <- pool.Execute(ctx, []int{1, 2, 3, 4})
	}()

	<-started
	cancel()
	jobs := <-done

	require.Len(t, jobs, 4)
	assert.ErrorIs(t, jobs[0].Err, context.Canceled)
}
