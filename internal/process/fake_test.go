package process

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/pstop/internal/errors"
)

// fakeSource is an in-memory Source that counts expensive calls.
type fakeSource struct {
	base      []BaseInfo
	listErr   error
	attrs     map[int32]Attributes
	io        map[int32]IOCounters
	cpu       map[int32]time.Duration
	threads   map[int32][]Thread
	attrCalls int
	cpuCalls  int
	ioCalls   int
}

func newFakeSource(base ...BaseInfo) *fakeSource {
	return &fakeSource{
		base:    base,
		attrs:   make(map[int32]Attributes),
		io:      make(map[int32]IOCounters),
		cpu:     make(map[int32]time.Duration),
		threads: make(map[int32][]Thread),
	}
}

func (f *fakeSource) List(context.Context) ([]BaseInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]BaseInfo(nil), f.base...), nil
}

func (f *fakeSource) Attributes(_ context.Context, pid int32) (Attributes, error) {
	f.attrCalls++
	a, ok := f.attrs[pid]
	if !ok {
		return Attributes{}, fmt.Errorf("pid %d: %w", pid, errors.ErrPermission)
	}
	return a, nil
}

func (f *fakeSource) IO(_ context.Context, pid int32) (IOCounters, error) {
	f.ioCalls++
	c, ok := f.io[pid]
	if !ok {
		return IOCounters{}, errors.ErrPermission
	}
	return c, nil
}

func (f *fakeSource) CPUTime(_ context.Context, pid int32) (time.Duration, error) {
	f.cpuCalls++
	d, ok := f.cpu[pid]
	if !ok {
		return 0, errors.ErrPermission
	}
	return d, nil
}

func (f *fakeSource) Threads(_ context.Context, pid int32) ([]Thread, error) {
	th, ok := f.threads[pid]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return th, nil
}
