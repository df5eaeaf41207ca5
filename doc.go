// Package kernel implements the scheduling core of a small preemptive
// real-time operating system for a single-core target with no dynamic
// memory allocator at runtime.
//
// # Architecture
//
// The kernel is built around a [Kernel] core that dispatches a fixed
// number of tasks across three scheduling classes — System, Periodic,
// and RoundRobin — plus a distinguished Idle task. A task runs until it
// either issues a system call via its [TaskContext] (see [TaskContext.Next],
// [TaskContext.Terminate], [TaskContext.Subscribe]) or is preempted by the
// timer tick. Both paths converge on the same request dispatcher
// (request.go) after passing through the context-switch fabric
// (contextswitch.go), which stands in for the save/restore of CPU
// registers a real MCU port would perform in assembly.
//
// # Scheduling classes
//
// Priority is strict: System tasks always run before a ready Periodic
// release, which always runs before RoundRobin tasks, which always run
// before Idle. Within System and RoundRobin, peers are served FIFO,
// except that [Service] publication restarts woken waiters LIFO to
// minimise wake latency. Periodic tasks are scheduled by countdown, not
// by queue position; at most one may be due in a given tick, or the
// kernel aborts with [PeriodicCollision].
//
// # Execution model
//
// Exactly one of {the kernel, a task} is ever logically running: the
// main loop dispatches a task, hands it control, and blocks until either
// that task re-enters the kernel via a system call or the tick source
// fires. This mirrors "interrupts disabled in the kernel, enabled in the
// task" without requiring real hardware interrupt control — see
// contextswitch.go for how task bodies are modelled as goroutines
// strictly alternating with the kernel via unbuffered channels.
//
// # Fatal errors
//
// The kernel does not recover from scheduling violations. The nine-member
// error taxonomy in errors.go (WcetGreaterThanPeriod, PeriodicOverran,
// PeriodicCollision, and so on) all terminate [Kernel.Run] through the
// abort path (abort.go), which also drives any registered blink-code
// handlers the way a board's LED abort indicator would.
package kernel
