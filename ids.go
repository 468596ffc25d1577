package univerconv

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh id for an entity of the given kind
// ("workbook", "sheet", "style", "doc", "task").
type IDGenerator func(kind string) string

// UUIDs returns a generator of random, collision-free ids such as "sheet_1b9d6bcd3b".
func UUIDs() IDGenerator {
	return func(kind string) string {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		return kind + "_" + id[:12]
	}
}

// SequentialIDs returns a deterministic generator: "sheet_1", "sheet_2", "style_1", ...
// Counters are per kind and per generator. It is safe for concurrent use.
func SequentialIDs() IDGenerator {
	var mu sync.Mutex
	counters := make(map[string]int)
	return func(kind string) string {
		mu.Lock()
		defer mu.Unlock()
		counters[kind]++
		return kind + "_" + strconv.Itoa(counters[kind])
	}
}
