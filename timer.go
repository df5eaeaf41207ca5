package kernel

import "context"

// TickSource is the tick driver interface consumed by the kernel:
// a board-specific output-compare timer on real hardware,
// reduced here to "produce a tick event every TICK_CYCLES counts."
// The kernel reprograms nothing itself; whatever implements
// TickSource owns its own deadline bookkeeping, the way an ISR
// reprograms the next compare match before returning.
type TickSource interface {
	// Start begins producing ticks and returns the channel the kernel
	// reads from. The channel is closed or abandoned when ctx is done.
	Start(ctx context.Context) (<-chan struct{}, error)
	// Stop releases any resources Start acquired.
	Stop()
}

// ManualTickSource is a portable, allocation-free tick source driven
// entirely by the caller invoking [ManualTickSource.Fire]. It is the
// default [TickSource]; the single tick event is the only external
// signal the scheduler core actually depends on.
type ManualTickSource struct {
	ch chan struct{}
}

// NewManualTickSource constructs a [ManualTickSource].
func NewManualTickSource() *ManualTickSource {
	return &ManualTickSource{ch: make(chan struct{})}
}

func (m *ManualTickSource) Start(ctx context.Context) (<-chan struct{}, error) {
	return m.ch, nil
}

func (m *ManualTickSource) Stop() {}

// Fire delivers exactly one tick event, blocking until the kernel's
// main loop consumes it. Calling Fire concurrently with [Kernel.Run]
// shutting down via context cancellation may block forever; callers
// should race it against ctx.Done() in that case.
func (m *ManualTickSource) Fire() {
	m.ch <- struct{}{}
}
