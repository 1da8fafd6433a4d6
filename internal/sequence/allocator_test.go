package sequence

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryAllocator_Sequential(t *testing.T) {
	a := NewMemoryAllocator()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := a.Next(ctx, ScopeIncident)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestMemoryAllocator_ScopesAreIndependent(t *testing.T) {
	a := NewMemoryAllocator()
	ctx := context.Background()

	if _, err := a.Next(ctx, ScopeIncident); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	got, err := a.Next(ctx, ScopeInspection)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected inspection scope to start at 1, got %d", got)
	}
}

func TestMemoryAllocator_UniqueUnderConcurrency(t *testing.T) {
	a := NewMemoryAllocator()
	ctx := context.Background()

	const n = 200
	results := make(chan int64, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.Next(ctx, ScopeIncident)
			if err != nil {
				t.Errorf("Next failed: %v", err)
				return
			}
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool, n)
	for v := range results {
		if seen[v] {
			t.Fatalf("duplicate counter %d", v)
		}
		seen[v] = true
	}

	// Gapless: every value in [1, n] was handed out exactly once.
	for i := int64(1); i <= n; i++ {
		if !seen[i] {
			t.Errorf("missing counter %d", i)
		}
	}
}
