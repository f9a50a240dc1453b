package parallel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewWorkerPool(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pool with max workers", func(t *testing.T) {
		pool := NewWorkerPool[int](ctx, 4, false)
		if pool.maxWorkers != 4 {
			t.Errorf("expected maxWorkers=4, got %d", pool.maxWorkers)
		}
		if pool.failFast {
			t.Error("expected failFast=false")
		}
	})

	t.Run("negative workers means unlimited", func(t *testing.T) {
		pool := NewWorkerPool[int](ctx, -3, false)
		if pool.maxWorkers != 0 {
			t.Errorf("expected maxWorkers=0, got %d", pool.maxWorkers)
		}
	})
}

func TestWorkerPool_SubmitAndWait(t *testing.T) {
	ctx := context.Background()

	t.Run("multiple jobs", func(t *testing.T) {
		pool := NewWorkerPool[string](ctx, 4, false)
		ids := []string{"a.md", "b.md", "c.md"}
		for _, id := range ids {
			id := id
			pool.Submit(id, func(context.Context) (string, error) {
				return "parsed " + id, nil
			})
		}

		results, errs := pool.Wait()
		if len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
		if len(results) != len(ids) {
			t.Fatalf("expected %d results, got %d", len(ids), len(results))
		}
		for _, r := range results {
			if r.Value != "parsed "+r.ID {
				t.Errorf("result %q has value %q", r.ID, r.Value)
			}
			if ids[r.Index] != r.ID {
				t.Errorf("result %q has index %d", r.ID, r.Index)
			}
		}
	})

	t.Run("respects max workers limit", func(t *testing.T) {
		pool := NewWorkerPool[int](ctx, 2, false)

		var mu sync.Mutex
		current, peak := 0, 0
		for i := 0; i < 6; i++ {
			i := i
			pool.Submit(strconv.Itoa(i), func(context.Context) (int, error) {
				mu.Lock()
				current++
				if current > peak {
					peak = current
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				current--
				mu.Unlock()
				return i, nil
			})
		}
		pool.Wait()

		if peak > 2 {
			t.Errorf("expected at most 2 concurrent jobs, got %d", peak)
		}
	})
}

func TestWorkerPool_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("continue on error without failFast", func(t *testing.T) {
		pool := NewWorkerPool[int](ctx, 4, false)
		for i := 0; i < 5; i++ {
			i := i
			pool.Submit(fmt.Sprintf("job-%d", i), func(context.Context) (int, error) {
				if i == 2 {
					return 0, errors.New("broken")
				}
				return i, nil
			})
		}

		results, errs := pool.Wait()
		if len(results) != 5 {
			t.Errorf("expected 5 results, got %d", len(results))
		}
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %d", len(errs))
		}
		if errs[0].Error() != "job-2: broken" {
			t.Errorf("unexpected error %q", errs[0])
		}
	})

	t.Run("failFast stops execution", func(t *testing.T) {
		pool := NewWorkerPool[int](ctx, 1, true)
		var executed int32
		for i := 0; i < 5; i++ {
			pool.Submit("", func(context.Context) (int, error) {
				if atomic.AddInt32(&executed, 1) == 1 {
					return 0, errors.New("fail fast")
				}
				time.Sleep(20 * time.Millisecond)
				return 0, nil
			})
		}

		_, errs := pool.Wait()
		if atomic.LoadInt32(&executed) == 5 {
			t.Error("failFast did not stop execution early")
		}
		if len(errs) == 0 {
			t.Error("expected at least one error")
		}
	})
}

func TestWorkerPool_Cancel(t *testing.T) {
	pool := NewWorkerPool[int](context.Background(), 1, false)
	pool.Cancel()

	ran := false
	pool.Submit("late", func(context.Context) (int, error) {
		ran = true
		return 1, nil
	})
	results, _ := pool.Wait()
	if ran || len(results) != 0 {
		t.Errorf("job ran after Cancel: ran=%v results=%d", ran, len(results))
	}
}

func TestMap(t *testing.T) {
	items := []string{"one", "two", "three", "four", "five"}
	out, errs := Map(context.Background(), 2, items,
		func(s string) string { return s },
		func(_ context.Context, s string) (int, error) {
			if s == "three" {
				return 0, errors.New("skip")
			}
			return len(s), nil
		})

	if diff := cmp.Diff([]int{3, 3, 0, 4, 4}, out); diff != "" {
		t.Errorf("Map() output (-want +got):\n%s", diff)
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %v", errs)
	}
}
