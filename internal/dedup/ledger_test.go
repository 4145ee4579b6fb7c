package dedup

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryTryClaim(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	claimed, err := mem.TryClaim(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claimed {
		t.Fatal("first claim rejected")
	}

	claimed, err = mem.TryClaim(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed {
		t.Fatal("replay accepted")
	}

	claimed, _ = mem.TryClaim(ctx, "0xbbb")
	if !claimed {
		t.Fatal("distinct hash rejected")
	}
}

func TestMemoryTryClaimConcurrent(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := mem.TryClaim(ctx, "0xccc")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if claimed {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if got := len(wins); got != 1 {
		t.Fatalf("claims granted = %d, want exactly 1", got)
	}
}
