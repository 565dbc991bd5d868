package lock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLockUnlockAndIdleCleanup(t *testing.T) {
	ctx := context.Background()
	tb := New(Options{})

	if !tb.Lock(ctx, "k") {
		t.Fatalf("first Lock should succeed")
	}
	if tb.Len() != 1 {
		t.Fatalf("expected 1 tracked key, got %d", tb.Len())
	}
	tb.Unlock("k")
	if tb.Len() != 0 {
		t.Fatalf("idle key should be removed, got %d", tb.Len())
	}

	// unheld unlock is a no-op
	tb.Unlock("k")
	tb.Unlock("never")
	if !tb.Lock(ctx, "k") {
		t.Fatalf("Lock after release should succeed")
	}
	tb.Unlock("k")
}

func TestLockTimesOutWhenHeld(t *testing.T) {
	ctx := context.Background()
	tb := New(Options{Timeout: 20 * time.Millisecond})

	if !tb.Lock(ctx, "k") {
		t.Fatalf("Lock should succeed")
	}
	start := time.Now()
	if tb.Lock(ctx, "k") {
		t.Fatalf("reentrant Lock must not succeed")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("Lock returned before timeout")
	}
	if n := tb.waiting("k"); n != 0 {
		t.Fatalf("timed-out waiter left in queue: %d", n)
	}
	tb.Unlock("k")
	if tb.Len() != 0 {
		t.Fatalf("expected empty table, got %d", tb.Len())
	}
}

func TestLockHonorsContext(t *testing.T) {
	tb := New(Options{Timeout: -1})
	if !tb.Lock(context.Background(), "k") {
		t.Fatalf("Lock should succeed")
	}
	defer tb.Unlock("k")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() { done <- tb.Lock(ctx, "k") }()

	waitFor(t, func() bool { return tb.waiting("k") == 1 })
	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("Lock should fail on cancelled ctx")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Lock did not return after cancel")
	}
}

func TestLockIndependentKeys(t *testing.T) {
	ctx := context.Background()
	tb := New(Options{Shards: 1, Timeout: 10 * time.Millisecond})

	if !tb.Lock(ctx, "a") {
		t.Fatalf("Lock a")
	}
	if !tb.Lock(ctx, "b") {
		t.Fatalf("Lock b must not be blocked by a (same shard)")
	}
	tb.Unlock("a")
	tb.Unlock("b")
}

func TestLockFIFOHandoff(t *testing.T) {
	ctx := context.Background()
	tb := New(Options{Timeout: 5 * time.Second})

	if !tb.Lock(ctx, "k") {
		t.Fatalf("Lock should succeed")
	}

	const n = 5
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if !tb.Lock(ctx, "k") {
				t.Errorf("waiter %d failed to lock", id)
				return
			}
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			tb.Unlock("k")
		}(i)
		// enqueue strictly one after another
		want := i + 1
		waitFor(t, func() bool { return tb.waiting("k") == want })
	}

	tb.Unlock("k")
	wg.Wait()

	for i, id := range order {
		if id != i {
			t.Fatalf("lock not granted in FIFO order: %v", order)
		}
	}
	if tb.Len() != 0 {
		t.Fatalf("expected empty table, got %d", tb.Len())
	}
}

func TestLockMutualExclusion(t *testing.T) {
	ctx := context.Background()
	tb := New(Options{Timeout: 5 * time.Second})

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !tb.Lock(ctx, "hot") {
				t.Errorf("Lock failed")
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(100 * time.Microsecond)

			mu.Lock()
			inside--
			mu.Unlock()
			tb.Unlock("hot")
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("more than one holder at a time: %d", maxSeen)
	}
}
