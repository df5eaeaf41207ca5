package kernel

import "runtime"

// taskRuntime is the context-switch fabric reimagined for a
// hosted, allocation-light simulation: instead of saving CPU registers
// to a stack and restoring the kernel's, a task body runs on its own
// goroutine and the two sides hand off control over a pair of
// unbuffered channels. At any instant exactly one of {kernel, task
// goroutine} is runnable, which is the property the original
// register-save protocol exists to guarantee; an unbuffered channel
// send blocks until the other side is ready to receive, so the
// alternation is enforced by the Go scheduler rather than by disabling
// interrupts.
//
// resume is "exit kernel, to task": the kernel sends on it once
// the task has been dispatched. request is "enter kernel, from task":
// the task goroutine sends a populated *request the moment it issues a
// system call, standing in for the canonical register-block push plus
// stack-pointer swap.
type taskRuntime struct {
	resume  chan struct{}
	request chan *request
}

// buildInitialFrame fabricates a task's first stack frame by
// launching its entry function on a
// parked goroutine. The goroutine blocks on resume until the
// scheduler's first dispatch, which mirrors the fabricated frame
// "returning into the task's entry function" on real hardware; when
// entry returns (or calls [TaskContext.Terminate]), the fabric
// synthesizes the Task_Terminate request, just as a fabricated frame
// on real hardware would pop the termination address and land in the
// terminate system call.
func buildInitialFrame(k *Kernel, t *task) *taskRuntime {
	rt := &taskRuntime{
		resume:  make(chan struct{}),
		request: make(chan *request),
	}
	t.parked = true
	go func() {
		<-rt.resume
		ctx := &TaskContext{k: k, t: t, rt: rt}
		defer func() {
			if !ctx.sent {
				ctx.sent = true
				rt.request <- &request{kind: reqTaskTerminate, task: t}
			}
		}()
		t.entry(ctx)
	}()
	return rt
}

// enterKernel delivers req to the kernel's request dispatcher, blocking
// the calling task goroutine only until the kernel has received it.
// Callers that continue afterwards then block in waitResume until the
// kernel resumes them; [TaskContext.Terminate] and [TaskContext.Abort]
// instead exit the goroutine.
func (rt *taskRuntime) enterKernel(req *request) {
	rt.request <- req
}

func (rt *taskRuntime) waitResume() {
	<-rt.resume
}

// TaskContext is the handle a task's [EntryFunc] uses to issue system
// calls. It is the system-call stub side of the context-switch fabric:
// every method here is the hosted equivalent of a trap instruction
// that would enter the kernel on real hardware.
type TaskContext struct {
	k    *Kernel
	t    *task
	rt   *taskRuntime
	sent bool
}

// Arg returns the task's 16-bit user argument (Task_GetArg). This
// is a direct field read rather than a round trip through the request
// dispatcher: the argument is immutable after Create and nothing else
// ever writes it, so there is no synchronization hazard to arbitrate
// under the single-active-context model, unlike every other method
// here which touches scheduler-owned state.
func (c *TaskContext) Arg() Arg {
	return c.t.arg
}

// Next issues Task_Next: a voluntary yield. It returns once
// the task is dispatched again.
func (c *TaskContext) Next() {
	c.rt.enterKernel(&request{kind: reqTaskNext, task: c.t})
	c.rt.waitResume()
}

// Terminate issues Task_Terminate and does not return: the
// descriptor is handed back to the free list and the underlying
// goroutine exits via [runtime.Goexit], running exactly like a task
// whose entry function simply returned.
func (c *TaskContext) Terminate() {
	c.sent = true
	c.rt.enterKernel(&request{kind: reqTaskTerminate, task: c.t})
	runtime.Goexit()
}

// Abort issues OS_Abort: application code's own decision
// that the system cannot continue. Like Terminate it does not return;
// the kernel's next loop iteration turns it into a fatal [UserAbort]
// [Fault] and routes it to the abort path (abort.go) instead of
// resuming any task.
func (c *TaskContext) Abort(detail string) {
	c.sent = true
	c.rt.enterKernel(&request{kind: reqUserAbort, task: c.t, abortDetail: detail})
	runtime.Goexit()
}

// Subscribe issues Service_Subscribe: out receives the
// published value when a publisher wakes this task. Subscribe blocks
// until that happens. Only System and RoundRobin tasks may call it; a
// Periodic caller causes the kernel to abort with [PeriodicSubscribed].
func (c *TaskContext) Subscribe(svc *Service, out *Arg) {
	c.rt.enterKernel(&request{kind: reqServiceSubscribe, task: c.t, service: svc, out: out})
	c.rt.waitResume()
}

// Publish issues Service_Publish, waking every subscriber of
// svc with value. It returns after the kernel has drained the waiter
// queue and, if a woken System task outranks this one, after that task
// has run to its own next yield (see service.go's handling of
// [reqServicePublish]).
func (c *TaskContext) Publish(svc *Service, value Arg) {
	c.rt.enterKernel(&request{kind: reqServicePublish, task: c.t, service: svc, publishValue: value})
	c.rt.waitResume()
}

// CreateSystem issues the "Create System task" system call. The
// returned id is always valid: exhaustion of the free list is a fatal
// [TooManyTasks] abort of the whole kernel, not a recoverable return
// value; callers never see a zero id.
func (c *TaskContext) CreateSystem(entry EntryFunc, arg Arg) TaskID {
	return c.create(System, entry, arg, 0, 0, 0)
}

// CreateRoundRobin issues the "Create RR task" system call.
func (c *TaskContext) CreateRoundRobin(entry EntryFunc, arg Arg) TaskID {
	return c.create(RoundRobin, entry, arg, 0, 0, 0)
}

// CreatePeriodic issues the "Create Periodic task" system call.
// start is the ticks-until-first-release. Aborts the kernel with
// [WcetGreaterThanPeriod] if wcet > period.
func (c *TaskContext) CreatePeriodic(entry EntryFunc, arg Arg, period, wcet, start int) TaskID {
	return c.create(Periodic, entry, arg, period, wcet, start)
}

func (c *TaskContext) create(class TaskClass, entry EntryFunc, arg Arg, period, wcet, start int) TaskID {
	req := &request{
		kind:         reqTaskCreate,
		task:         c.t,
		createClass:  class,
		createEntry:  entry,
		createArg:    arg,
		createPeriod: period,
		createWCET:   wcet,
		createStart:  start,
	}
	c.rt.enterKernel(req)
	c.rt.waitResume()
	return req.createResult
}
