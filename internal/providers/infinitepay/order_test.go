package infinitepay

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRefsUniqueWithinSameInstant(t *testing.T) {
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	refs := NewOrderRefs(func() time.Time { return frozen })

	const workers, perWorker = 8, 250
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ref := refs.Next()
				mu.Lock()
				seen[ref] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestOrderRefsFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ref := NewOrderRefs(func() time.Time { return now }).Next()

	require.True(t, strings.HasPrefix(ref, OrderPrefix))
	id, err := ulid.Parse(strings.TrimPrefix(ref, OrderPrefix))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(now), id.Time())
}
