package process

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/rileyhilliard/pstop/internal/rate"
)

// Options carry the per-tick context a snapshot needs from the rest of the host.
type Options struct {
	TotalMemory uint64
	Uptime      time.Duration
	ShowThreads bool
	// FreezeNames keeps the name and command first seen for a process
	// instead of re-reading them every tick.
	FreezeNames bool
}

// seenName is the name and command a process had when first sampled.
type seenName struct {
	started time.Time
	name    string
	command string
}

// Sampler builds a fresh Snapshot on every call, serving expensive
// attributes from an AttributeCache on the configured cadence.
type Sampler struct {
	src     Source
	cache   *AttributeCache
	io      *rate.Tracker[int32]
	cadence Cadence
	tick    uint64
	names   map[int32]seenName
	log     logger.Logger
}

// NewSampler creates a sampler. A nil logger discards messages.
func NewSampler(src Source, cadence Cadence, defaults Defaults, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{
		src:     src,
		cache:   NewAttributeCache(defaults, log),
		io:      rate.NewTracker[int32](),
		cadence: cadence,
		names:   make(map[int32]seenName),
		log:     log,
	}
}

// Tick returns the number of completed samples.
func (s *Sampler) Tick() uint64 {
	return s.tick
}

// Sample enumerates processes and returns the snapshot for this tick.
func (s *Sampler) Sample(ctx context.Context, now time.Time, opts Options) (Snapshot, error) {
	base, err := s.src.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sample processes: %w", err)
	}

	pids := make([]int32, len(base))
	live := make(map[int32]struct{}, len(base))
	for i, b := range base {
		pids[i] = b.PID
		live[b.PID] = struct{}{}
	}

	if s.cadence.AttributesDue(s.tick) {
		s.cache.Refresh(ctx, s.src, pids)
	}
	if s.cadence.CPUTimeDue(s.tick) {
		s.cache.RefreshCPUTimes(ctx, s.src, pids)
	}

	snap := Snapshot{At: now, Records: make([]Record, 0, len(base))}
	if !opts.FreezeNames {
		clear(s.names)
	}
	for _, b := range base {
		if opts.FreezeNames {
			b = s.freezeName(b)
		}
		rec := s.record(ctx, b, now, opts)
		snap.Records = append(snap.Records, rec)

		snap.Tasks.Total++
		snap.Tasks.Threads += int(rec.Threads)
		switch rec.Status {
		case StatusRunning:
			snap.Tasks.Running++
		case StatusSleeping, StatusDiskSleep:
			snap.Tasks.Sleeping++
		}

		if opts.ShowThreads {
			snap.Records = append(snap.Records, s.threadRecords(ctx, rec)...)
		}
	}

	s.io.Retain(live)
	for pid := range s.names {
		if _, ok := live[pid]; !ok {
			delete(s.names, pid)
		}
	}
	s.tick++
	return snap, nil
}

// freezeName replaces b's name and command with the first ones seen for the
// same process. A different start time means the pid was reused.
func (s *Sampler) freezeName(b BaseInfo) BaseInfo {
	seen, ok := s.names[b.PID]
	if !ok || !seen.started.Equal(b.StartedAt) {
		s.names[b.PID] = seenName{started: b.StartedAt, name: b.Name, command: b.Command}
		return b
	}
	b.Name, b.Command = seen.name, seen.command
	return b
}

func (s *Sampler) record(ctx context.Context, b BaseInfo, now time.Time, opts Options) Record {
	attrs := s.cache.Get(b.PID)

	rec := Record{
		PID:        b.PID,
		PPID:       b.PPID,
		Name:       b.Name,
		Command:    b.Command,
		User:       attrs.User,
		Status:     b.Status,
		Priority:   attrs.Priority,
		Nice:       attrs.Nice,
		VirtBytes:  b.VirtBytes,
		ResBytes:   b.ResBytes,
		CPUPercent: b.CPUPercent,
		Threads:    attrs.Threads,
	}
	if rec.Command == "" {
		rec.Command = b.Name
	}
	if attrs.PrivateBytes > 0 && attrs.PrivateBytes < b.ResBytes {
		rec.SharedBytes = b.ResBytes - attrs.PrivateBytes
	}
	if opts.TotalMemory > 0 {
		rec.MemPercent = float64(b.ResBytes) / float64(opts.TotalMemory) * 100
	}
	rec.RunTime = runTime(b.StartedAt, now, opts.Uptime)
	if d, ok := s.cache.CPUTime(b.PID); ok {
		rec.CPUTime = d
	}

	// I/O counters are read every tick regardless of cadence
	if io, err := s.src.IO(ctx, b.PID); err == nil {
		rates := s.io.Sample(b.PID, now, io.ReadBytes, io.WriteBytes)
		rec.IOReadRate, rec.IOWriteRate = rates[0], rates[1]
	}
	return rec
}

func (s *Sampler) threadRecords(ctx context.Context, owner Record) []Record {
	threads, err := s.src.Threads(ctx, owner.PID)
	if err != nil {
		s.log.Debug("threads of pid %d: %v", owner.PID, err)
		return nil
	}

	out := make([]Record, 0, len(threads))
	for _, th := range threads {
		if th.TID == owner.PID {
			continue
		}
		name := th.Name
		if name == "" {
			name = fmt.Sprintf("tid:%d", th.TID)
		}
		out = append(out, Record{
			PID:      th.TID,
			PPID:     owner.PID,
			Name:     name,
			Command:  name,
			User:     owner.User,
			Status:   StatusRunning,
			Priority: owner.Priority,
			Nice:     owner.Nice,
			CPUTime:  th.CPUTime,
			Threads:  1,
			IsThread: true,
		})
	}
	return out
}

func runTime(started, now time.Time, uptime time.Duration) time.Duration {
	if started.IsZero() {
		return 0
	}
	d := now.Sub(started)
	if d < 0 {
		return 0
	}
	if uptime > 0 && d > uptime {
		return uptime
	}
	return d
}
