package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	items := []int{5, 3, 8, 1, 9, 2}

	results := Run(context.Background(), 3, items, func(_ context.Context, n int) (string, error) {
		// Stagger completion so faster items finish out of order.
		time.Sleep(time.Duration(n) * time.Millisecond)
		return fmt.Sprintf("item-%d", n), nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, n := range items {
		if results[i].Err != nil {
			t.Errorf("results[%d].Err = %v, want nil", i, results[i].Err)
		}
		if want := fmt.Sprintf("item-%d", n); results[i].Value != want {
			t.Errorf("results[%d].Value = %q, want %q", i, results[i].Value, want)
		}
	}
}

func TestRun_CollectsPerItemErrors(t *testing.T) {
	t.Parallel()

	errOdd := errors.New("odd number")

	results := Run(context.Background(), 2, []int{1, 2, 3, 4}, func(_ context.Context, n int) (int, error) {
		if n%2 == 1 {
			return 0, errOdd
		}
		return n * 10, nil
	})

	for i, want := range []error{errOdd, nil, errOdd, nil} {
		if !errors.Is(results[i].Err, want) && !(results[i].Err == nil && want == nil) {
			t.Errorf("results[%d].Err = %v, want %v", i, results[i].Err, want)
		}
	}
	if results[1].Value != 20 || results[3].Value != 40 {
		t.Errorf("success values = %d, %d; want 20, 40", results[1].Value, results[3].Value)
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	const workers = 2
	var active, peak atomic.Int32

	Run(context.Background(), workers, make([]int, 10), func(_ context.Context, _ int) (struct{}, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return struct{}{}, nil
	})

	if got := peak.Load(); got > workers {
		t.Errorf("peak concurrency = %d, want <= %d", got, workers)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := atomic.Int32{}
	results := Run(ctx, 1, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		started.Add(1)
		return n, nil
	})

	// With a pre-canceled context at most the goroutines that win the
	// semaphore race run; the rest record ctx.Err().
	canceled := 0
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			canceled++
		}
	}
	if canceled+int(started.Load()) != len(results) {
		t.Errorf("canceled (%d) + ran (%d) != total (%d)", canceled, started.Load(), len(results))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	results := Run(context.Background(), 4, []int{}, func(_ context.Context, n int) (int, error) {
		return n, nil
	})

	if results == nil || len(results) != 0 {
		t.Errorf("Run with empty input = %v, want empty non-nil slice", results)
	}
}
