package kernel

import (
	"context"
	"errors"
	"strconv"
)

// Kernel is the scheduling core. One Kernel drives exactly one
// set of tasks on one simulated core; it is not safe to call [Kernel.Run]
// more than once concurrently.
type Kernel struct {
	opts options

	table    *table
	services *serviceTable

	sysQueue     taskList
	rrQueue      taskList
	periodicList taskList

	current *task

	tickCount uint64

	abort abortNotifier
}

// New constructs a Kernel from the supplied [Option]s. Task and service
// tables are sized once here and never reallocated.
func New(opts ...Option) *Kernel {
	o := resolveOptions(opts)
	k := &Kernel{
		opts:     o,
		table:    newTable(o.maxProcess),
		services: newServiceTable(o.maxServices),
	}
	k.current = k.table.idle
	k.table.idle.state = Running
	return k
}

// FreeTaskCount reports the task table's current free-list depth.
func (k *Kernel) FreeTaskCount() int { return k.table.freeLen() }

// NewService issues Service_Init: hands out the next unused
// service slot. Call this before [Kernel.Run] starts, or from within a
// task body between system calls — it only touches the service table's
// own bump pointer, not scheduler state, so it never needs to round
// trip through the request dispatcher (unlike Subscribe/Publish, which
// mutate ready queues and task state).
func (k *Kernel) NewService() (*Service, error) {
	svc, ok := k.services.init()
	if !ok {
		return nil, newFault(MaxServicesReached, "capacity "+strconv.Itoa(len(k.services.services)))
	}
	return svc, nil
}

// CreateSystem, CreateRoundRobin and CreatePeriodic let the owning
// goroutine seed the initial task population before [Kernel.Run]
// starts, the same way [TaskContext]'s identically-named methods let a
// running task create peers. Before Run starts there is no current
// task to preempt, so these are a direct table mutation rather than a
// request round trip.
func (k *Kernel) CreateSystem(entry EntryFunc, arg Arg) (TaskID, error) {
	return k.seed(System, entry, arg, 0, 0, 0)
}

func (k *Kernel) CreateRoundRobin(entry EntryFunc, arg Arg) (TaskID, error) {
	return k.seed(RoundRobin, entry, arg, 0, 0, 0)
}

func (k *Kernel) CreatePeriodic(entry EntryFunc, arg Arg, period, wcet, start int) (TaskID, error) {
	return k.seed(Periodic, entry, arg, period, wcet, start)
}

func (k *Kernel) seed(class TaskClass, entry EntryFunc, arg Arg, period, wcet, start int) (TaskID, error) {
	if class == Periodic && wcet > period {
		return 0, newFault(WcetGreaterThanPeriod, "wcet > period")
	}
	t, ok := k.table.allocate()
	if !ok {
		return 0, newFault(TooManyTasks, "free list exhausted")
	}
	t.class = class
	t.state = Ready
	t.arg = arg
	t.entry = entry
	t.rt = buildInitialFrame(k, t)
	switch class {
	case System:
		k.sysQueue.pushBack(t)
	case RoundRobin:
		k.rrQueue.pushBack(t)
	case Periodic:
		t.periodic.period = period
		t.periodic.wcet = wcet
		t.periodic.countdown = start
		k.periodicList.pushBack(t)
	}
	return t.id, nil
}

// Run drives the main loop: `loop { dispatch(); exit_to_task();
// handle_request(); }`. It returns when ctx is cancelled (with the
// context's error), when the tick source fails to start, or when a fatal
// [Fault] reaches the abort path (see abort.go).
func (k *Kernel) Run(ctx context.Context) error {
	ticks, err := k.opts.tickSource.Start(ctx)
	if err != nil {
		return err
	}
	defer k.opts.tickSource.Stop()

	for {
		if err := k.dispatch(); err != nil {
			return k.fault(err)
		}
		req, err := k.exitAndWait(ctx, ticks)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return k.fault(err)
		}
		if err := k.handleRequest(req); err != nil {
			return k.fault(err)
		}
		switch req.kind {
		case reqTimerExpired, reqTaskTerminate:
			// cur never parked (TimerExpired) or its descriptor is
			// already back on the free list (TaskTerminate).
		default:
			req.task.parked = true
		}
		k.opts.logger.Log(Entry{Level: LevelDebug, Category: "dispatch", Message: req.kind.String()})
	}
}

// exitAndWait is "exit kernel, to task" followed by the blocking half
// of "enter kernel": hand control to the current task (or, for
// idle, simply wait — idle never issues a system call) and block until
// either that task's next request arrives or the tick source fires.
// cur.parked tracks whether its goroutine is actually blocked on
// rt.resume: true right after [buildInitialFrame] and after every
// system call that didn't terminate it, false when it is still
// mid-instruction (e.g. a System or Periodic task that survived a
// tick without making a call) — only a parked goroutine has anything
// to receive a resume send.
func (k *Kernel) exitAndWait(ctx context.Context, ticks <-chan struct{}) (*request, error) {
	cur := k.current
	if cur == k.table.idle {
		select {
		case <-ticks:
			k.tickCount++
			return &request{kind: reqTimerExpired, task: cur}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if cur.parked {
		cur.rt.resume <- struct{}{}
		cur.parked = false
	}
	select {
	case req := <-cur.rt.request:
		return req, nil
	case <-ticks:
		k.tickCount++
		return &request{kind: reqTimerExpired, task: cur}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dispatch implements the dispatch policy: System beats due
// Periodic beats RoundRobin beats Idle, and a task already Running
// that isn't Idle keeps the core without a queue round trip.
func (k *Kernel) dispatch() error {
	if k.current.state == Running && k.current.class != Idle {
		return nil
	}

	if t := k.sysQueue.popFront(); t != nil {
		t.state = Running
		k.current = t
		return nil
	}

	due, collision := k.duePeriodic()
	if collision {
		return newFault(PeriodicCollision, "two periodic tasks due simultaneously")
	}
	if due != nil {
		due.release()
		due.state = Running
		k.current = due
		return nil
	}

	if t := k.rrQueue.popFront(); t != nil {
		t.state = Running
		k.current = t
		return nil
	}

	k.table.idle.state = Running
	k.current = k.table.idle
	return nil
}

// duePeriodic scans the periodic list for the unique task with
// countdown <= 0. Two or more simultaneously due is the
// [PeriodicCollision] fatal condition.
func (k *Kernel) duePeriodic() (due *task, collision bool) {
	for p := k.periodicList.head; p != nil; p = p.next {
		if !p.dueNow() {
			continue
		}
		if due != nil {
			return nil, true
		}
		due = p
	}
	return due, false
}
