package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func batchKey(s string) string { return s }

func TestRunBatch_EmptyInput(t *testing.T) {
	called := false
	result := RunBatch(context.Background(), zerolog.Nop(), nil, "noop", batchKey,
		func(context.Context, string) (int, error) {
			called = true
			return 0, nil
		}, BatchOptions{Concurrency: 4})

	if called {
		t.Error("Expected process to never run for empty input")
	}
	if len(result.Successes) != 0 || len(result.Failures) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestRunBatch_AllItemsAttemptedExactlyOnce(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	var mu sync.Mutex
	attempts := make(map[string]int)

	RunBatch(context.Background(), zerolog.Nop(), items, "count", batchKey,
		func(_ context.Context, item string) (string, error) {
			mu.Lock()
			attempts[item]++
			mu.Unlock()
			if item == "c" {
				return "", errors.New("boom")
			}
			return strings.ToUpper(item), nil
		}, BatchOptions{Concurrency: 3})

	for _, item := range items {
		if attempts[item] != 1 {
			t.Errorf("Expected item %q attempted exactly once, got %d", item, attempts[item])
		}
	}
}

func TestRunBatch_FailureIsolation(t *testing.T) {
	items := []string{"ok-1", "bad", "ok-2"}

	result := RunBatch(context.Background(), zerolog.Nop(), items, "apply", batchKey,
		func(_ context.Context, item string) (string, error) {
			if item == "bad" {
				return "", errors.New("rejected")
			}
			return item, nil
		}, BatchOptions{Concurrency: 2})

	if len(result.Successes) != 2 {
		t.Fatalf("Expected 2 successes, got %d", len(result.Successes))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].Item != "bad" {
		t.Errorf("Expected bad to fail, got %q", result.Failures[0].Item)
	}
	if result.Failures[0].Err == nil || result.Failures[0].Err.Error() != "rejected" {
		t.Errorf("Expected the process error to be preserved, got %v", result.Failures[0].Err)
	}
}

func TestRunBatch_PreservesInputOrder(t *testing.T) {
	items := []string{"e", "d", "c", "b", "a"}

	result := RunBatch(context.Background(), zerolog.Nop(), items, "order", batchKey,
		func(_ context.Context, item string) (string, error) {
			// Earlier items finish later.
			if item > "c" {
				time.Sleep(20 * time.Millisecond)
			}
			if item == "c" {
				return "", errors.New("boom")
			}
			return item, nil
		}, BatchOptions{Concurrency: 5})

	got := make([]string, len(result.Successes))
	for i, s := range result.Successes {
		got[i] = s.Item
	}
	want := []string{"e", "d", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected successes in input order %v, got %v", want, got)
		}
	}
}

func TestRunBatch_PanicBecomesFailure(t *testing.T) {
	items := []string{"fine", "explosive"}

	result := RunBatch(context.Background(), zerolog.Nop(), items, "apply", batchKey,
		func(_ context.Context, item string) (string, error) {
			if item == "explosive" {
				panic("kaboom")
			}
			return item, nil
		}, BatchOptions{Concurrency: 2})

	if len(result.Successes) != 1 || result.Successes[0].Item != "fine" {
		t.Fatalf("Expected fine to succeed, got %+v", result.Successes)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(result.Failures))
	}
	if !strings.Contains(result.Failures[0].Err.Error(), "kaboom") {
		t.Errorf("Expected the panic value in the failure, got %v", result.Failures[0].Err)
	}
}

func TestRunBatch_SequentialRunsInOrder(t *testing.T) {
	items := []string{"first", "second", "third"}
	var order []string

	RunBatch(context.Background(), zerolog.Nop(), items, "seq", batchKey,
		func(_ context.Context, item string) (string, error) {
			order = append(order, item)
			return item, nil
		}, BatchOptions{Sequential: true, Concurrency: 8})

	for i, item := range items {
		if order[i] != item {
			t.Fatalf("Expected sequential order %v, got %v", items, order)
		}
	}
}

func TestRunBatch_SequentialDelayBetweenItems(t *testing.T) {
	items := []string{"a", "b", "c"}
	start := time.Now()

	RunBatch(context.Background(), zerolog.Nop(), items, "seq", batchKey,
		func(context.Context, string) (string, error) { return "", nil },
		BatchOptions{Sequential: true, Delay: 15 * time.Millisecond})

	// Two gaps between three items, no trailing delay.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Expected at least 30ms of inter-item delay, got %v", elapsed)
	}
}

func TestRunBatch_ConcurrencyIsBounded(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}

	var inFlight, peak int64
	result := RunBatch(context.Background(), zerolog.Nop(), items, "bounded", batchKey,
		func(context.Context, string) (string, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return "", nil
		}, BatchOptions{Concurrency: 3})

	if len(result.Successes) != len(items) {
		t.Fatalf("Expected all items to succeed, got %d", len(result.Successes))
	}
	if p := atomic.LoadInt64(&peak); p > 3 {
		t.Errorf("Expected at most 3 items in flight, observed %d", p)
	}
}
