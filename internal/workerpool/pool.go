// Package workerpool bounds how many CPU-bound jobs run at once so that
// image work cannot starve request handling.
package workerpool

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool admits at most Size jobs concurrently.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New creates a pool with the given number of slots; non-positive values
// mean runtime.NumCPU().
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers)), size: workers}
}

func (p *Pool) Size() int { return p.size }

// Do waits for a free slot and runs fn on its own goroutine. If ctx ends
// first, Do returns ctx.Err(); a job that already started still runs to
// completion and holds its slot until then. A panic in fn is returned as an
// error.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("job panicked: %v", r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is Do for jobs that produce a value.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
