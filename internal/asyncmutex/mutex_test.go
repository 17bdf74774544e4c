package asyncmutex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLockUnlock(t *testing.T) {
	m := New()

	g, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	g.Unlock()

	// Must be acquirable again after release.
	g2, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() after Unlock() failed: %v", err)
	}
	g2.Unlock()
}

func TestLockExclusive(t *testing.T) {
	m := New()

	g, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		g2, err := m.Lock(context.Background())
		if err != nil {
			t.Errorf("second Lock() failed: %v", err)
			close(acquired)
			return
		}
		close(acquired)
		g2.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock() succeeded while mutex held")
	case <-time.After(50 * time.Millisecond):
		// Still blocked, as expected.
	}

	g.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock() did not complete after release")
	}
}

func TestLockCancelled(t *testing.T) {
	m := New()

	g, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	defer g.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := m.Lock(ctx)
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Lock() did not return")
	}
}

func TestLockTimeout(t *testing.T) {
	m := New()

	g, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	defer g.Unlock()

	_, err = m.LockTimeout(context.Background(), 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestLockTimeoutCallerCancel(t *testing.T) {
	m := New()

	g, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	defer g.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.LockTimeout(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTryLock(t *testing.T) {
	m := New()

	g, ok := m.TryLock()
	if !ok {
		t.Fatal("TryLock() failed on unlocked mutex")
	}

	if _, ok := m.TryLock(); ok {
		t.Fatal("TryLock() succeeded while held")
	}

	g.Unlock()

	g2, ok := m.TryLock()
	if !ok {
		t.Fatal("TryLock() failed after release")
	}
	g2.Unlock()
}

func TestUnlockIdempotent(t *testing.T) {
	m := New()

	g, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	// Double release must not free the mutex twice.
	g.Unlock()
	g.Unlock()

	g2, err := m.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock() after double Unlock() failed: %v", err)
	}

	if _, ok := m.TryLock(); ok {
		t.Fatal("mutex acquirable twice after redundant Unlock")
	}
	g2.Unlock()
}

func TestLockContention(t *testing.T) {
	m := New()

	var held, max int
	var stateMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := m.Lock(context.Background())
			if err != nil {
				t.Errorf("Lock() failed: %v", err)
				return
			}
			defer g.Unlock()

			stateMu.Lock()
			held++
			if held > max {
				max = held
			}
			stateMu.Unlock()

			time.Sleep(time.Millisecond)

			stateMu.Lock()
			held--
			stateMu.Unlock()
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Errorf("observed %d concurrent holders, want 1", max)
	}
}
