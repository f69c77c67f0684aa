package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("chart-key", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_DoIfIdle(t *testing.T) {
	var g SingleFlight
	var counter int32

	blocker := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.DoIfIdle("refresh", func() (any, error) {
			atomic.AddInt32(&counter, 1)
			<-blocker
			return nil, nil
		})
	}()

	for !g.InFlight("refresh") {
		time.Sleep(time.Millisecond)
	}

	if started := g.DoIfIdle("refresh", func() (any, error) {
		atomic.AddInt32(&counter, 1)
		return nil, nil
	}); started {
		t.Fatal("second call started while first was in flight")
	}

	close(blocker)
	<-done

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}

	if started := g.DoIfIdle("refresh", func() (any, error) { return nil, nil }); !started {
		t.Fatal("expected call to start once flight is idle")
	}
}
