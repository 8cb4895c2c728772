package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testJob struct {
	id    int
	delay time.Duration
	err   error
	runs  *int32
}

type testResult struct {
	id  int
	err error
}

func (r *testResult) GetError() error { return r.err }

func (j *testJob) Execute(ctx context.Context) Result {
	if j.runs != nil {
		atomic.AddInt32(j.runs, 1)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &testResult{id: j.id, err: ctx.Err()}
		}
	}
	return &testResult{id: j.id, err: j.err}
}

func TestPool_AllJobsExecute(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var runs int32
	for i := 0; i < 10; i++ {
		pool.Submit(&testJob{id: i, runs: &runs})
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Errorf("Expected 10 results, got %d", len(results))
	}
	if got := atomic.LoadInt32(&runs); got != 10 {
		t.Errorf("Expected 10 executions, got %d", got)
	}
}

func TestPool_ErrorsPropagate(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&testJob{id: 1})
	pool.Submit(&testJob{id: 2, err: errors.New("job failed")})

	failed := 0
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected 1 failed result, got %d", failed)
	}
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	pool.Submit(&testJob{id: 1})
	results := pool.Wait()
	if len(results) != 1 {
		t.Errorf("Expected the clamped pool to run the job, got %d results", len(results))
	}
}

func TestPool_WaitWithNoJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestPool_ShutdownStopsWorkers(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	pool.Submit(&testJob{id: 1, delay: 50 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return")
	}
}
