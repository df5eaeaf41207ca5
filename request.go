package kernel

// requestKind identifies the pending kernel request left by a system
// call or the timer ISR. Service subscribe/publish are folded into the
// same taxonomy as the task-lifecycle requests rather than left as a
// side channel: service mutation happens inside a system call, with
// the kernel in sole control, exactly like every other kind below.
type requestKind int

const (
	reqTimerExpired requestKind = iota
	reqTaskCreate
	reqTaskTerminate
	reqTaskInterrupt
	reqTaskNext
	reqServiceSubscribe
	reqServicePublish
	reqUserAbort
)

func (k requestKind) String() string {
	switch k {
	case reqTimerExpired:
		return "TimerExpired"
	case reqTaskCreate:
		return "TaskCreate"
	case reqTaskTerminate:
		return "TaskTerminate"
	case reqTaskInterrupt:
		return "TaskInterrupt"
	case reqTaskNext:
		return "TaskNext"
	case reqServiceSubscribe:
		return "ServiceSubscribe"
	case reqServicePublish:
		return "ServicePublish"
	case reqUserAbort:
		return "UserAbort"
	default:
		return "Unknown"
	}
}

// request is the single tagged variant carrying a pending kernel
// request plus whatever arguments and return slot its kind requires.
// Exactly one request is in flight at a time: a task goroutine
// builds one, hands it to the kernel over [taskRuntime.request], and
// (except for terminate and abort) blocks until resumed.
type request struct {
	kind requestKind
	task *task // the task that issued the request (or was running, for TimerExpired)

	// reqTaskCreate
	createClass  TaskClass
	createEntry  EntryFunc
	createArg    Arg
	createPeriod int
	createWCET   int
	createStart  int
	createResult TaskID

	// reqServiceSubscribe / reqServicePublish
	service      *Service
	out          *Arg
	publishValue Arg

	// reqUserAbort
	abortDetail string
}

// handleRequest is the request-handle half of the scheduler.
// It runs immediately after the kernel re-enters, before the next
// dispatch. Returning a non-nil error means the condition is fatal;
// the caller ([Kernel.Run]) routes it to the abort path.
func (k *Kernel) handleRequest(req *request) error {
	switch req.kind {
	case reqTimerExpired:
		return k.handleTimerExpired()
	case reqTaskCreate:
		return k.handleTaskCreate(req)
	case reqTaskTerminate:
		return k.handleTaskTerminate(req)
	case reqTaskInterrupt:
		k.preemptCurrent(req.task)
		return nil
	case reqTaskNext:
		return k.handleTaskNext(req)
	case reqServiceSubscribe:
		return k.handleServiceSubscribe(req)
	case reqServicePublish:
		return k.handleServicePublish(req)
	case reqUserAbort:
		return newFault(UserAbort, req.abortDetail)
	default:
		return newFault(RtosInternal, "unknown request kind")
	}
}

// handleTimerExpired implements the TimerExpired request: charge
// one tick against the current task's release if it is Periodic, advance every
// periodic task's countdown, and unconditionally preempt a running
// RoundRobin task back to the tail of the RR queue.
func (k *Kernel) handleTimerExpired() error {
	cur := k.current
	if cur.class == Periodic {
		if overran := cur.chargeTick(); overran {
			return newFault(PeriodicOverran, "task "+cur.id.String())
		}
	}
	for p := k.periodicList.head; p != nil; p = p.next {
		p.periodic.countdown--
	}
	if cur.class == RoundRobin {
		cur.state = Ready
		k.rrQueue.pushBack(cur)
	}
	return nil
}

// handleTaskCreate implements the TaskCreate request.
func (k *Kernel) handleTaskCreate(req *request) error {
	if req.createClass == Periodic && req.createWCET > req.createPeriod {
		return newFault(WcetGreaterThanPeriod, "wcet > period")
	}
	t, ok := k.table.allocate()
	if !ok {
		return newFault(TooManyTasks, "free list exhausted")
	}
	t.class = req.createClass
	t.state = Ready
	t.arg = req.createArg
	t.entry = req.createEntry
	t.rt = buildInitialFrame(k, t)

	switch t.class {
	case System:
		k.sysQueue.pushBack(t)
	case RoundRobin:
		k.rrQueue.pushBack(t)
	case Periodic:
		t.periodic.period = req.createPeriod
		t.periodic.wcet = req.createWCET
		t.periodic.countdown = req.createStart
		k.periodicList.pushBack(t)
	}

	req.createResult = t.id

	cur := req.task
	immediateStart := t.class == Periodic && req.createStart <= 0
	if (t.class == System && cur.class != System) || (cur.class == RoundRobin && immediateStart) {
		k.preemptCurrent(cur)
	}
	return nil
}

// handleTaskTerminate implements the TaskTerminate request.
func (k *Kernel) handleTaskTerminate(req *request) error {
	t := req.task
	if t.class == Periodic {
		k.periodicList.remove(t)
	}
	k.table.release(t)
	return nil
}

// handleTaskNext implements the TaskNext request: a voluntary yield.
// System and RoundRobin peers cycle to the tail of their ready queue;
// a Periodic task simply closes its in-flight release without being
// re-enqueued anywhere.
func (k *Kernel) handleTaskNext(req *request) error {
	t := req.task
	switch t.class {
	case System:
		t.state = Ready
		k.sysQueue.pushBack(t)
	case RoundRobin:
		t.state = Ready
		k.rrQueue.pushBack(t)
	case Periodic:
		t.state = Ready
		k.opts.metrics.recordRelease(t.id, t.periodic.ticksRemaining)
		t.closeRelease()
	}
	return nil
}

// preemptCurrent demotes cur to Ready and re-enqueues it the way
// TaskInterrupt does: a System task is never preempted here; a
// RoundRobin task is pushed to the front of the RR queue, preserving
// its effective position; a Periodic task has its slot accounting
// rewound since it is being displaced mid-release by a
// higher-priority task rather than yielding voluntarily.
func (k *Kernel) preemptCurrent(cur *task) {
	if cur.class == System {
		return
	}
	cur.state = Ready
	switch cur.class {
	case RoundRobin:
		k.rrQueue.pushFront(cur)
	case Periodic:
		cur.rewindRelease()
	}
}
