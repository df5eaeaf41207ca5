package kernel

// taskList is the single generalised intrusive doubly-linked structure
// used for the containers of task descriptors in the kernel: the
// system queue, the RR queue, the periodic list, and every service's
// waiter queue. The free list is the exception; table (task.go) threads
// it through the same prev/next fields itself. A descriptor's prev/next fields belong to at
// most one taskList at a time; pushBack/pushFront/remove all clear the
// fields of whichever list last held it.
type taskList struct {
	head, tail *task
	len        int
}

// empty reports whether the list holds no descriptors.
func (q *taskList) empty() bool {
	return q.head == nil
}

// pushBack enqueues t at the tail.
func (q *taskList) pushBack(t *task) {
	t.prev = q.tail
	t.next = nil
	if q.tail != nil {
		q.tail.next = t
	} else {
		q.head = t
	}
	q.tail = t
	q.len++
}

// pushFront enqueues t at the head, used for LIFO
// service-waiter restart and for TaskInterrupt's RR-head preemption.
func (q *taskList) pushFront(t *task) {
	t.next = q.head
	t.prev = nil
	if q.head != nil {
		q.head.prev = t
	} else {
		q.tail = t
	}
	q.head = t
	q.len++
}

// popFront dequeues and returns the head, or nil
// if the list is empty.
func (q *taskList) popFront() *task {
	t := q.head
	if t == nil {
		return nil
	}
	q.remove(t)
	return t
}

// remove unlinks t from q by pointer, wherever in the list it sits.
// Used by popFront and by the periodic list's removal on terminate.
// t must currently be a member of q.
func (q *taskList) remove(t *task) {
	if t.prev != nil {
		t.prev.next = t.next
	} else {
		q.head = t.next
	}
	if t.next != nil {
		t.next.prev = t.prev
	} else {
		q.tail = t.prev
	}
	t.prev = nil
	t.next = nil
	q.len--
}
