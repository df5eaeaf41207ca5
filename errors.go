package kernel

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the kernel's fatal-error taxonomy. Every
// Kind is terminal: the kernel has no recovery path for a scheduling
// violation, only the abort path (abort.go).
type Kind int

const (
	// WcetGreaterThanPeriod: a Periodic task was created with wcet > period.
	WcetGreaterThanPeriod Kind = iota
	// MaxServicesReached: Service_Init was called beyond the service table's capacity.
	MaxServicesReached
	// UserAbort: application code explicitly aborted the kernel.
	UserAbort
	// TooManyTasks: a create request found the free list empty.
	TooManyTasks
	// PeriodicOverran: ticksRemaining reached zero while a periodic task was still running.
	PeriodicOverran
	// RtosInternal: the request dispatcher reached an unreachable branch.
	RtosInternal
	// PeriodicCollision: two periodic tasks were simultaneously due in the same tick.
	PeriodicCollision
	// PeriodicSubscribed: a Periodic task attempted Service_Subscribe.
	PeriodicSubscribed
	// PeriodicFoundSubscribed: Service_Publish found a Periodic task on a waiter queue.
	PeriodicFoundSubscribed
)

// compileTime reports whether k is detected during task/service setup
// as opposed to during scheduling at runtime.
// This only affects which blink preamble abort.go selects.
func (k Kind) compileTime() bool {
	switch k {
	case WcetGreaterThanPeriod, MaxServicesReached:
		return true
	default:
		return false
	}
}

// position returns k's zero-based index within its class (compile-time or
// run-time), used by abort.go to compute the blink count (position + 1).
func (k Kind) position() int {
	switch k {
	case WcetGreaterThanPeriod:
		return 0
	case MaxServicesReached:
		return 1
	case UserAbort:
		return 0
	case TooManyTasks:
		return 1
	case PeriodicOverran:
		return 2
	case RtosInternal:
		return 3
	case PeriodicCollision:
		return 4
	case PeriodicSubscribed:
		return 5
	case PeriodicFoundSubscribed:
		return 6
	default:
		return -1
	}
}

func (k Kind) String() string {
	switch k {
	case WcetGreaterThanPeriod:
		return "WcetGreaterThanPeriod"
	case MaxServicesReached:
		return "MaxServicesReached"
	case UserAbort:
		return "UserAbort"
	case TooManyTasks:
		return "TooManyTasks"
	case PeriodicOverran:
		return "PeriodicOverran"
	case RtosInternal:
		return "RtosInternal"
	case PeriodicCollision:
		return "PeriodicCollision"
	case PeriodicSubscribed:
		return "PeriodicSubscribed"
	case PeriodicFoundSubscribed:
		return "PeriodicFoundSubscribed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Fault is the error type carried by every fatal condition the kernel
// raises. It is always terminal; see [Kernel.Run].
type Fault struct {
	Kind   Kind
	Detail string
	Cause  error
}

func newFault(k Kind, detail string) *Fault {
	return &Fault{Kind: k, Detail: detail}
}

func wrapFault(k Kind, detail string, cause error) *Fault {
	return &Fault{Kind: k, Detail: detail, Cause: cause}
}

func (f *Fault) Error() string {
	if f.Detail == "" {
		return "rtos: " + f.Kind.String()
	}
	return "rtos: " + f.Kind.String() + ": " + f.Detail
}

// Unwrap exposes the underlying cause, if any, for use with [errors.Is]
// and [errors.As].
func (f *Fault) Unwrap() error {
	return f.Cause
}

// Is reports whether target is a *Fault with the same Kind. This lets
// callers write errors.Is(err, kernel.ErrPeriodicOverran) without caring
// about the Detail/Cause fields.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if errors.As(target, &other) {
		return other.Kind == f.Kind
	}
	return false
}

// Sentinel *Fault values for errors.Is matching, one per [Kind].
var (
	ErrWcetGreaterThanPeriod   = &Fault{Kind: WcetGreaterThanPeriod}
	ErrMaxServicesReached      = &Fault{Kind: MaxServicesReached}
	ErrUserAbort               = &Fault{Kind: UserAbort}
	ErrTooManyTasks            = &Fault{Kind: TooManyTasks}
	ErrPeriodicOverran         = &Fault{Kind: PeriodicOverran}
	ErrRtosInternal            = &Fault{Kind: RtosInternal}
	ErrPeriodicCollision       = &Fault{Kind: PeriodicCollision}
	ErrPeriodicSubscribed      = &Fault{Kind: PeriodicSubscribed}
	ErrPeriodicFoundSubscribed = &Fault{Kind: PeriodicFoundSubscribed}
)
