// Package async runs independent tasks on a bounded set of workers.
package async

import (
	"context"
	"sync"
)

// Task is a named unit of work producing a T.
type Task[T any] struct {
	Name    string
	Execute func(ctx context.Context) (T, error)
}

// Result is the outcome of one Task.
type Result[T any] struct {
	Name string
	Data T
	Err  error
}

// Pool runs tasks with at most workerCount in flight.
type Pool[T any] struct {
	workerCount int
}

// NewPool returns a pool with workerCount workers (at least one).
func NewPool[T any](workerCount int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool[T]{workerCount: workerCount}
}

func (p *Pool[T]) worker(ctx context.Context, wg *sync.WaitGroup, tasks <-chan Task[T], results chan<- Result[T]) {
	defer wg.Done()
	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				return
			}
			data, err := task.Execute(ctx)
			select {
			case results <- Result[T]{Name: task.Name, Data: data, Err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Execute runs tasks and returns their results keyed by name. When ctx is
// cancelled it returns whatever finished so far.
func (p *Pool[T]) Execute(ctx context.Context, tasks []Task[T]) map[string]Result[T] {
	var wg sync.WaitGroup
	results := make(map[string]Result[T], len(tasks))
	taskCh := make(chan Task[T])
	resultCh := make(chan Result[T])

	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, taskCh, resultCh)
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for result := range resultCh {
		results[result.Name] = result
	}

	return results
}
