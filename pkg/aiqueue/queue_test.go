package aiqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/actionsense/pkg/battery"
)

type fixedProbe struct {
	st  battery.Status
	err error
}

func (p fixedProbe) Status(context.Context) (battery.Status, error) { return p.st, p.err }

func TestQueueRunsOneAtATime(t *testing.T) {
	q := New(Options{})

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Enqueue(context.Background(), func(context.Context) (any, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxRunning)
					if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil, nil
			})
			if err != nil {
				t.Errorf("Enqueue() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Errorf("max concurrent tasks = %d, want 1", maxRunning)
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d after drain", q.Pending())
	}
}

func TestQueueFIFO(t *testing.T) {
	q := New(Options{})

	release := make(chan struct{})
	started := make(chan struct{})
	go q.Enqueue(context.Background(), func(context.Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		// Wait until the previous submission is queued so arrival order is fixed.
		for q.Pending() != i {
			time.Sleep(time.Millisecond)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Enqueue(context.Background(), func(context.Context) (any, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil, nil
			})
		}(i)
	}
	for q.Pending() != 5 {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestQueueReturnsTaskResult(t *testing.T) {
	q := New(Options{})
	wantErr := errors.New("model offline")

	v, err := q.Enqueue(context.Background(), func(context.Context) (any, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Errorf("Enqueue() = %v, %v", v, err)
	}
	_, err = q.Enqueue(context.Background(), func(context.Context) (any, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Enqueue() error = %v, want %v", err, wantErr)
	}
	_, err = q.Enqueue(context.Background(), func(context.Context) (any, error) { panic("boom") })
	if err == nil {
		t.Error("expected panic to surface as error")
	}
}

func TestRunWithTimeout(t *testing.T) {
	finished := make(chan struct{})
	_, err := RunWithTimeout(context.Background(), "generateOneLiner", 10*time.Millisecond,
		func(context.Context) (any, error) {
			time.Sleep(50 * time.Millisecond)
			close(finished)
			return "late", nil
		})

	var te *TimeoutError
	if !errors.As(err, &te) || te.Label != "generateOneLiner" {
		t.Fatalf("error = %v, want TimeoutError for generateOneLiner", err)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if err.Error() != "AI_TIMEOUT:generateOneLiner" {
		t.Errorf("Error() = %q", err.Error())
	}

	// The underlying call is not cancelled.
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("task never completed after timeout")
	}
}

func TestRunWithTimeoutInBudget(t *testing.T) {
	v, err := RunWithTimeout(context.Background(), "default", time.Second,
		func(context.Context) (any, error) { return 42, nil })
	if err != nil || v != 42 {
		t.Errorf("RunWithTimeout() = %v, %v", v, err)
	}
}

func TestSubmitBatteryGate(t *testing.T) {
	tests := []struct {
		name    string
		probe   fixedProbe
		wantErr error
	}{
		{"low and discharging", fixedProbe{st: battery.Status{Present: true, Level: 0.1}}, ErrBatteryLow},
		{"low but charging", fixedProbe{st: battery.Status{Present: true, Level: 0.1, Charging: true}}, nil},
		{"above threshold", fixedProbe{st: battery.Status{Present: true, Level: 0.5}}, nil},
		{"no battery", fixedProbe{}, nil},
		{"probe error", fixedProbe{err: errors.New("unreadable")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(Options{Gate: &Gate{Probe: tt.probe, Threshold: 0.25}})
			var ran bool
			_, err := q.Submit(context.Background(), "default", func(context.Context) (any, error) {
				ran = true
				return nil, nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
			if ran == (tt.wantErr != nil) {
				t.Errorf("task ran = %v", ran)
			}
			if q.Pending() != 0 {
				t.Errorf("Pending() = %d, want 0", q.Pending())
			}
		})
	}
}

func TestSubmitUsesLabelBudget(t *testing.T) {
	q := New(Options{
		Timeouts:       map[string]time.Duration{"fast": 5 * time.Millisecond},
		DefaultTimeout: time.Second,
	})
	slow := func(context.Context) (any, error) {
		time.Sleep(30 * time.Millisecond)
		return nil, nil
	}

	if _, err := q.Submit(context.Background(), "fast", slow); !errors.Is(err, ErrTimeout) {
		t.Errorf("fast label error = %v, want timeout", err)
	}
	if _, err := q.Submit(context.Background(), "other", slow); err != nil {
		t.Errorf("default label error = %v", err)
	}
}

func TestDo(t *testing.T) {
	q := New(Options{})
	got, err := Do(context.Background(), q, "default", func(context.Context) (string, error) {
		return "summary", nil
	})
	if err != nil || got != "summary" {
		t.Errorf("Do() = %q, %v", got, err)
	}
}
