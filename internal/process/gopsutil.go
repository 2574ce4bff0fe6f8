package process

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rileyhilliard/pstop/internal/errors"
	"github.com/shirou/gopsutil/v4/process"
)

// basePriority is the kernel priority of a task at nice 0.
const basePriority = 20

// GopsutilSource reads processes through gopsutil. It keeps one
// *process.Process per pid so CPU percentages are computed against the
// previous call rather than since process start.
type GopsutilSource struct {
	procs map[int32]tracked
	// createTime reads a pid's start time in epoch milliseconds, bypassing
	// the cached handle.
	createTime func(ctx context.Context, pid int32) (int64, error)
}

// tracked is a cached handle and the start time it was opened with.
type tracked struct {
	proc    *process.Process
	created int64
}

// NewGopsutilSource creates a gopsutil-backed process source.
func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{
		procs:      make(map[int32]tracked),
		createTime: readCreateTime,
	}
}

func readCreateTime(ctx context.Context, pid int32) (int64, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return 0, err
	}
	return p.CreateTimeWithContext(ctx)
}

func (s *GopsutilSource) List(ctx context.Context) ([]BaseInfo, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pids: %w", err)
	}

	live := make(map[int32]struct{}, len(pids))
	out := make([]BaseInfo, 0, len(pids))
	for _, pid := range pids {
		p, err := s.current(ctx, pid)
		if err != nil {
			continue
		}
		live[pid] = struct{}{}

		// Name is the only field a listing cannot do without
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}

		info := BaseInfo{PID: pid, Name: name}
		info.PPID, _ = p.PpidWithContext(ctx)
		info.Command, _ = p.CmdlineWithContext(ctx)
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			info.Status = ParseStatus(st[0])
		}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			info.VirtBytes = mi.VMS
			info.ResBytes = mi.RSS
		}
		info.CPUPercent, _ = p.PercentWithContext(ctx, 0)
		if ms, err := p.CreateTimeWithContext(ctx); err == nil {
			info.StartedAt = time.UnixMilli(ms)
		}
		out = append(out, info)
	}

	for pid := range s.procs {
		if _, ok := live[pid]; !ok {
			delete(s.procs, pid)
		}
	}
	return out, nil
}

func (s *GopsutilSource) Attributes(ctx context.Context, pid int32) (Attributes, error) {
	p, err := s.handle(ctx, pid)
	if err != nil {
		return Attributes{}, err
	}

	var (
		attrs Attributes
		read  int
	)
	if nice, err := p.NiceWithContext(ctx); err == nil {
		attrs.Nice = nice
		attrs.Priority = basePriority + nice
		read++
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		attrs.User = user
		read++
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		attrs.Threads = n
		read++
	}
	if priv, err := privateBytes(ctx, p); err == nil {
		attrs.PrivateBytes = priv
	}

	if read == 0 {
		return Attributes{}, fmt.Errorf("attributes of pid %d: %w", pid, errors.ErrPermission)
	}
	return attrs, nil
}

func (s *GopsutilSource) IO(ctx context.Context, pid int32) (IOCounters, error) {
	p, err := s.handle(ctx, pid)
	if err != nil {
		return IOCounters{}, err
	}
	io, err := p.IOCountersWithContext(ctx)
	if err != nil {
		return IOCounters{}, fmt.Errorf("io counters of pid %d: %w", pid, err)
	}
	return IOCounters{ReadBytes: io.ReadBytes, WriteBytes: io.WriteBytes}, nil
}

func (s *GopsutilSource) CPUTime(ctx context.Context, pid int32) (time.Duration, error) {
	p, err := s.handle(ctx, pid)
	if err != nil {
		return 0, err
	}
	t, err := p.TimesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("cpu times of pid %d: %w", pid, err)
	}
	return seconds(t.User + t.System), nil
}

func (s *GopsutilSource) Threads(ctx context.Context, pid int32) ([]Thread, error) {
	p, err := s.handle(ctx, pid)
	if err != nil {
		return nil, err
	}
	stats, err := p.ThreadsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("threads of pid %d: %w", pid, err)
	}

	threads := make([]Thread, 0, len(stats))
	for tid, st := range stats {
		th := Thread{TID: tid, Name: threadName(pid, tid)}
		if st != nil {
			th.CPUTime = seconds(st.User + st.System)
		}
		threads = append(threads, th)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].TID < threads[j].TID })
	return threads, nil
}

// Details reads the executable path, working directory and environment of
// pid. Fields the caller may not read are left empty.
func (s *GopsutilSource) Details(ctx context.Context, pid int32) (Details, error) {
	p, err := s.handle(ctx, pid)
	if err != nil {
		return Details{}, err
	}

	var (
		d    Details
		errs int
	)
	if d.Exe, err = p.ExeWithContext(ctx); err != nil {
		errs++
	}
	if d.Cwd, err = p.CwdWithContext(ctx); err != nil {
		errs++
	}
	if d.Environ, err = p.EnvironWithContext(ctx); err != nil {
		errs++
	}
	if errs == 3 {
		return Details{}, fmt.Errorf("details of pid %d: %w", pid, errors.ErrPermission)
	}
	sort.Strings(d.Environ)
	return d, nil
}

// OpenFiles lists the files pid holds open, ordered by descriptor.
func (s *GopsutilSource) OpenFiles(ctx context.Context, pid int32) ([]OpenFile, error) {
	p, err := s.handle(ctx, pid)
	if err != nil {
		return nil, err
	}
	stats, err := p.OpenFilesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("open files of pid %d: %w", pid, errors.ErrPermission)
	}

	files := make([]OpenFile, 0, len(stats))
	for _, st := range stats {
		files = append(files, OpenFile{FD: st.Fd, Path: st.Path})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].FD < files[j].FD })
	return files, nil
}

// handle returns the cached handle for pid, opening one on first use.
func (s *GopsutilSource) handle(ctx context.Context, pid int32) (*process.Process, error) {
	if t, ok := s.procs[pid]; ok {
		return t.proc, nil
	}
	return s.open(ctx, pid)
}

// current is handle with a start time check. A pid reused by a new process
// gets a fresh handle instead of the old name and CPU baseline.
func (s *GopsutilSource) current(ctx context.Context, pid int32) (*process.Process, error) {
	if t, ok := s.procs[pid]; ok {
		created, err := s.createTime(ctx, pid)
		if err == nil && created == t.created {
			return t.proc, nil
		}
		delete(s.procs, pid)
	}
	return s.open(ctx, pid)
}

func (s *GopsutilSource) open(ctx context.Context, pid int32) (*process.Process, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("pid %d: %w", pid, errors.ErrNotFound)
	}
	created, _ := s.createTime(ctx, pid)
	s.procs[pid] = tracked{proc: p, created: created}
	return p, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
