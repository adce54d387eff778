package agent

import (
	"sync"
	"time"
)

// routerCooldown is how long the router model is bypassed after a rate limit.
const routerCooldown = 5 * time.Minute

// RouterBreaker is a circuit breaker for the fast router model. When the
// router model gets rate limited, requests route through the responder model
// until the cool-down expires. One instance is shared by all requests.
type RouterBreaker struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

// NewRouterBreaker creates a closed breaker.
func NewRouterBreaker() *RouterBreaker {
	return &RouterBreaker{now: time.Now}
}

// Trip opens the breaker for the cool-down period.
func (b *RouterBreaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.until = b.now().Add(routerCooldown)
}

// Open reports whether the breaker is currently open.
func (b *RouterBreaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().Before(b.until)
}

// Reset closes the breaker. Called when the router model succeeds again.
func (b *RouterBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.until = time.Time{}
}
