package univerconv

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	ids := SequentialIDs()
	assert.Equal(t, "sheet_1", ids("sheet"))
	assert.Equal(t, "sheet_2", ids("sheet"))
	assert.Equal(t, "style_1", ids("style"))
	assert.Equal(t, "sheet_1", SequentialIDs()("sheet"), "counters are per generator")
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	ids := SequentialIDs()
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids("task")
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestUUIDs(t *testing.T) {
	ids := UUIDs()
	a, b := ids("doc"), ids("doc")
	assert.True(t, strings.HasPrefix(a, "doc_"))
	assert.Len(t, a, len("doc_")+12)
	assert.NotEqual(t, a, b)
}
