package analysis

import (
	"sync"
	"testing"
)

func TestGeneration_Next(t *testing.T) {
	g := NewGeneration()

	if current := g.Current(); current != 0 {
		t.Errorf("Expected initial generation to be 0, got %d", current)
	}
	first := g.Next()
	second := g.Next()
	if first != 1 || second != 2 {
		t.Errorf("Expected 1 and 2, got %d and %d", first, second)
	}
	if g.IsCurrent(first) {
		t.Errorf("Expected generation %d to be stale after %d was issued", first, second)
	}
	if !g.IsCurrent(second) {
		t.Errorf("Expected generation %d to be current", second)
	}
}

func TestGeneration_ConcurrentSafety(t *testing.T) {
	g := NewGeneration()
	const numGoroutines = 50
	const tagsPerGoroutine = 200

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, tagsPerGoroutine)
			for j := 0; j < tagsPerGoroutine; j++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, tag := range local {
				if seen[tag] {
					t.Errorf("Duplicate generation %d", tag)
				}
				seen[tag] = true
			}
		}()
	}
	wg.Wait()

	if want := int64(numGoroutines * tagsPerGoroutine); g.Current() != want {
		t.Errorf("Expected final generation %d, got %d", want, g.Current())
	}
}
