package kernel

import (
	"errors"
	"sync"
)

// BlinkCode is the abort signalling format consumed by the board's LED
// driver: CompileTime
// selects the long steady preamble versus the run-time preamble, and
// Count is the error's position within its class, plus one.
type BlinkCode struct {
	CompileTime bool
	Count       int
}

func blinkCodeFor(f *Fault) BlinkCode {
	return BlinkCode{CompileTime: f.Kind.compileTime(), Count: f.Kind.position() + 1}
}

// AbortHandler is notified once when the kernel reaches a fatal
// condition. It stands in for the GPIO/LED blink routine the original
// design drives directly from the abort path; this package only computes
// the [BlinkCode] and hands it to registered handlers, since driving
// actual hardware is left to the board layer.
type AbortHandler func(err error, code BlinkCode)

type abortNotifier struct {
	mu       sync.Mutex
	handlers []AbortHandler
}

func (a *abortNotifier) register(h AbortHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, h)
}

func (a *abortNotifier) dispatch(err error, code BlinkCode) {
	a.mu.Lock()
	handlers := append([]AbortHandler(nil), a.handlers...)
	a.mu.Unlock()
	for _, h := range handlers {
		h(err, code)
	}
}

// OnAbort registers h to run when [Kernel.Run] terminates with a fatal
// [Fault]. Handlers run synchronously, in registration order, before
// Run returns.
func (k *Kernel) OnAbort(h AbortHandler) {
	k.abort.register(h)
}

// fault routes err through the abort path: every fatal condition
// is terminal, so this always returns a non-nil error for [Kernel.Run]
// to propagate after notifying abort handlers.
func (k *Kernel) fault(err error) error {
	var f *Fault
	if !errors.As(err, &f) {
		f = wrapFault(RtosInternal, err.Error(), err)
	}
	code := blinkCodeFor(f)
	k.opts.logger.Log(Entry{Level: LevelError, Category: "abort", Message: f.Error()})
	k.abort.dispatch(f, code)
	return f
}
