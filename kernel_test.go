package kernel

import (
	"context"
	"sync"
)

// recorder is a thread-safe append-only log used by task bodies in
// tests to report what they observed, since multiple task goroutines
// (though never concurrently *active* ones, per the single-active-
// context invariant) may append across the lifetime of a test.
type recorder struct {
	mu  sync.Mutex
	log []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, s)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.log))
	copy(out, r.log)
	return out
}

// startKernel runs k.Run in the background and returns a channel that
// receives its terminal error (the context's error on ctx cancellation).
func startKernel(ctx context.Context, k *Kernel) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- k.Run(ctx)
	}()
	return errCh
}
