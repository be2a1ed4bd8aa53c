package infinitepay

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// OrderPrefix marks order references created for contributions.
const OrderPrefix = "CONTRIBUTION_"

// OrderRefs issues order references that stay unique under concurrent
// submissions within the same millisecond.
type OrderRefs struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewOrderRefs creates a generator; a nil clock defaults to time.Now.
func NewOrderRefs(now func() time.Time) *OrderRefs {
	if now == nil {
		now = time.Now
	}
	return &OrderRefs{now: now, entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a fresh reference such as CONTRIBUTION_01J9Z3....
func (o *OrderRefs) Next() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(o.now()), o.entropy)
	return OrderPrefix + id.String()
}
