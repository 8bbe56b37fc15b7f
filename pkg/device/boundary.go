package device

import "sync"

// Boundary is the host-orchestration guard. Higher-level callers hold it
// while walking column lists and building views; operations that perform
// meaningful device work release it for their duration so other host
// threads can make progress while the device executes, and reacquire it
// before returning control with results.
type Boundary struct {
	mu sync.Mutex
}

// Acquire takes the guard for host orchestration.
func (b *Boundary) Acquire() {
	b.mu.Lock()
}

// Release drops the guard.
func (b *Boundary) Release() {
	b.mu.Unlock()
}

// Cross runs fn with the guard released, reacquiring it before returning.
// The caller must hold the guard.
func (b *Boundary) Cross(fn func() error) error {
	b.mu.Unlock()
	defer b.mu.Lock()
	return fn()
}
