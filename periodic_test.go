package kernel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestPeriodicOverran: a periodic task with
// wcet=2 that never yields overruns its slot and aborts the kernel.
func TestPeriodicOverran(t *testing.T) {
	ts := NewManualTickSource()
	k := New(WithMaxProcess(2), WithTickSource(ts))

	block := make(chan struct{})
	spin := func(ctx *TaskContext) {
		<-block // never yields; simulates spinning past its budget
	}
	_, err := k.CreatePeriodic(spin, 0, 10, 2, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := startKernel(ctx, k)

	ts.Fire() // dispatched and released before this tick; ticksRemaining 2 -> 1
	ts.Fire() // ticksRemaining 1 -> 0 while still Running: overrun

	select {
	case err := <-errCh:
		var f *Fault
		require.True(t, errors.As(err, &f))
		require.Equal(t, PeriodicOverran, f.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected PeriodicOverran abort")
	}
	close(block)
}

// TestPeriodicCollision: two periodic tasks
// both release at tick 5.
func TestPeriodicCollision(t *testing.T) {
	ts := NewManualTickSource()
	k := New(WithMaxProcess(2), WithTickSource(ts))

	block := make(chan struct{})
	noop := func(ctx *TaskContext) { <-block }
	_, err := k.CreatePeriodic(noop, 0, 10, 1, 5)
	require.NoError(t, err)
	_, err = k.CreatePeriodic(noop, 0, 10, 1, 5)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := startKernel(ctx, k)

	for i := 0; i < 5; i++ {
		ts.Fire()
	}

	select {
	case err := <-errCh:
		var f *Fault
		require.True(t, errors.As(err, &f))
		require.Equal(t, PeriodicCollision, f.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected PeriodicCollision abort")
	}
	close(block)
}

// TestCreateFromPeriodicIsSafe: a periodic
// task creates an RR task inside its release and yields within wcet;
// no overrun should be raised.
func TestCreateFromPeriodicIsSafe(t *testing.T) {
	rec := &recorder{}
	ts := NewManualTickSource()
	k := New(WithMaxProcess(4), WithTickSource(ts))

	periodicEntry := func(ctx *TaskContext) {
		ctx.CreateRoundRobin(func(rctx *TaskContext) {
			rec.add("rr-child")
		}, 0)
		rec.add("periodic-yield")
		ctx.Next()
	}
	_, err := k.CreatePeriodic(periodicEntry, 0, 10, 5, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := startKernel(ctx, k)

	ts.Fire()

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("kernel did not shut down")
	}
}
