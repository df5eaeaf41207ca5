package kernel

// release credits a periodic task with a fresh slot of execution at
// the tick on which dispatch selects it:
// its countdown is pushed out by another full period, and if no
// release was already in flight its ticksRemaining budget is set to
// wcet.
func (t *task) release() {
	t.periodic.countdown += t.periodic.period
	if t.periodic.ticksRemaining == 0 {
		t.periodic.ticksRemaining = t.periodic.wcet
	}
}

// chargeTick applies one tick of wall-clock time to t's in-flight
// release. It reports overran=true if the budget reached zero
// while t was still the running task, which the caller turns into a
// [PeriodicOverran] abort.
func (t *task) chargeTick() (overran bool) {
	if t.periodic.ticksRemaining == 0 {
		return false
	}
	t.periodic.ticksRemaining--
	return t.periodic.ticksRemaining == 0
}

// closeRelease marks voluntary completion of the current release
// (Task_Next): the budget is cleared and the task is not
// re-enqueued anywhere — it remains on the periodic list and becomes
// eligible again only once countdown drops to zero or below.
func (t *task) closeRelease() {
	t.periodic.ticksRemaining = 0
}

// rewindRelease undoes one tick's worth of accounting against a
// periodic task whose release is interrupted by a higher-priority
// task (System creation, or a System waiter woken by Publish).
// countdown is bumped by exactly one, and ticksRemaining by exactly one
// if a release is in flight, regardless of how long the preemption
// actually lasts. countdown keeps decreasing on every tick of a longer
// preemption; ticksRemaining is charged only on ticks where t itself is
// the current task.
func (t *task) rewindRelease() {
	t.periodic.countdown++
	if t.periodic.ticksRemaining > 0 {
		t.periodic.ticksRemaining++
	}
}

// dueNow reports whether t's countdown has reached its release point.
func (t *task) dueNow() bool {
	return t.periodic.countdown <= 0
}
