package async

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecute(t *testing.T) {
	pool := NewPool[int](3)

	var tasks []Task[int]
	for i := 0; i < 10; i++ {
		n := i
		tasks = append(tasks, Task[int]{
			Name: fmt.Sprintf("task-%d", n),
			Execute: func(ctx context.Context) (int, error) {
				if n == 7 {
					return 0, errors.New("seven")
				}
				return n * n, nil
			},
		})
	}

	results := pool.Execute(context.Background(), tasks)
	require.Len(t, results, 10)
	assert.Equal(t, 16, results["task-4"].Data)
	assert.EqualError(t, results["task-7"].Err, "seven")
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool[struct{}](2)

	var inFlight, peak int32
	var tasks []Task[struct{}]
	for i := 0; i < 8; i++ {
		tasks = append(tasks, Task[struct{}]{
			Name: fmt.Sprint(i),
			Execute: func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return struct{}{}, nil
			},
		})
	}

	results := pool.Execute(context.Background(), tasks)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPool[int](2).Execute(ctx, []Task[int]{
		{Name: "a", Execute: func(ctx context.Context) (int, error) { return 1, nil }},
	})
	assert.LessOrEqual(t, len(results), 1)
}

func TestPoolReusable(t *testing.T) {
	pool := NewPool[string](1)
	task := []Task[string]{{Name: "x", Execute: func(ctx context.Context) (string, error) { return "ok", nil }}}

	assert.Equal(t, "ok", pool.Execute(context.Background(), task)["x"].Data)
	assert.Equal(t, "ok", pool.Execute(context.Background(), task)["x"].Data)
}
