package manager

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// Repeated concurrent Reload/Execute must never observe a half-swapped or
// closed handle. Run with -race.
func TestConcurrentReloadAndExecute(t *testing.T) {
	fa := &fakeAdapter{genDelay: time.Millisecond}
	m := newReadyManager(t, fa)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200 && ctx.Err() == nil; i++ {
				res, err := m.Execute(ctx, validRequest(t, "ping"))
				if err != nil {
					if !IsEngineNotReady(err) {
						t.Errorf("unexpected error: %v", err)
						return
					}
					continue
				}
				if !strings.HasPrefix(res.Text, "echo: ping") {
					t.Errorf("garbage output: %q", res.Text)
					return
				}
			}
		}()
	}
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20 && ctx.Err() == nil; i++ {
				if err := m.Reload(context.Background()); err != nil {
					t.Errorf("reload: %v", err)
					return
				}
				_ = m.Health()
			}
		}()
	}
	wg.Wait()
	if !m.Ready() {
		t.Fatalf("expected ready at the end, got %+v", m.Snapshot())
	}
}
