package sequence

import (
	"sync"
	"testing"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

func TestNextPerKey(t *testing.T) {
	c := NewCounter()

	if got := c.Next("Acme", model.TypeMSA); got != 1 {
		t.Errorf("Expected 1, got %d", got)
	}
	if got := c.Next("Acme", model.TypeMSA); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	if got := c.Next("Acme", model.TypeSOW); got != 1 {
		t.Errorf("Expected independent SOW counter, got %d", got)
	}
	if got := c.Current("Globex", model.TypeMSA); got != 0 {
		t.Errorf("Expected 0 for unused key, got %d", got)
	}
}

func TestNextConcurrentUnique(t *testing.T) {
	c := NewCounter()
	const workers, perWorker = 16, 50

	var mu sync.Mutex
	seen := make(map[int]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n := c.Next("Acme", model.TypeNDA)
				mu.Lock()
				if seen[n] {
					t.Errorf("Ordinal %d handed out twice", n)
				}
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d ordinals, got %d", workers*perWorker, len(seen))
	}
	if got := c.Current("Acme", model.TypeNDA); got != workers*perWorker {
		t.Errorf("Expected current %d, got %d", workers*perWorker, got)
	}
}
