package wire

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGeneratorFormat(t *testing.T) {
	g := NewSequenceGenerator("")
	assert.Equal(t, "hass-1", g.NextID())
	assert.Equal(t, "hass-2", g.NextID())
	assert.Equal(t, uint64(2), g.Last())

	custom := NewSequenceGenerator("cli")
	assert.Equal(t, "cli-1", custom.NextID())
}

func TestSequenceGeneratorConcurrentUnique(t *testing.T) {
	g := NewSequenceGenerator("t")

	const workers = 16
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]string, 0, perWorker)
			for n := 0; n < perWorker; n++ {
				ids = append(ids, g.NextID())
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, uint64(workers*perWorker), g.Last())
}
