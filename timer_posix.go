//go:build linux

package kernel

import (
	"context"
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// PosixTickSource drives the kernel's simulated tick interrupt from a
// Linux timerfd, standing in for the board's output-compare timer.
// It fires at a fixed period and is the one platform-specific file in
// this package, gated by a build tag.
type PosixTickSource struct {
	period time.Duration
	fd     int
	cancel context.CancelFunc
	ch     chan struct{}
}

// NewPosixTickSource builds a tick source that fires once every
// period via CLOCK_MONOTONIC.
func NewPosixTickSource(period time.Duration) *PosixTickSource {
	return &PosixTickSource{period: period, fd: -1}
}

func (p *PosixTickSource) Start(ctx context.Context) (<-chan struct{}, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, err
	}
	spec := &unix.ItimerSpec{
		Interval: unix.NsecToTimespec(p.period.Nanoseconds()),
		Value:    unix.NsecToTimespec(p.period.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, spec, nil); err != nil {
		unix.Close(fd)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.fd = fd
	p.cancel = cancel
	p.ch = make(chan struct{})

	go p.run(runCtx, fd)

	return p.ch, nil
}

func (p *PosixTickSource) run(ctx context.Context, fd int) {
	defer close(p.ch)
	buf := make([]byte, 8)
	for {
		n, err := unix.Read(fd, buf)
		if err != nil || n != 8 {
			return
		}
		expirations := binary.LittleEndian.Uint64(buf)
		for i := uint64(0); i < expirations; i++ {
			select {
			case p.ch <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (p *PosixTickSource) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.fd >= 0 {
		unix.Close(p.fd)
		p.fd = -1
	}
}

