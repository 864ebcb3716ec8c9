package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_JoinsInFlightCall(t *testing.T) {
	var g SingleFlight[[]byte]
	var calls, shared atomic.Int32

	const callers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, joined := g.Do("fixtures:8", func() ([]byte, error) {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				return []byte(`{"data":[]}`), nil
			})
			if err != nil || string(v) != `{"data":[]}` {
				t.Errorf("unexpected result %q err=%v", v, err)
			}
			if joined {
				shared.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
	if shared.Load() != callers {
		t.Fatalf("expected every caller to see a shared result, got %d", shared.Load())
	}
}

func TestSingleFlight_ZeroValueOnError(t *testing.T) {
	var g SingleFlight[int]
	v, err, shared := g.Do("k", func() (int, error) { return 0, errors.New("boom") })
	if err == nil || v != 0 || shared {
		t.Fatalf("expected error with zero value, got v=%d err=%v shared=%v", v, err, shared)
	}
}
