package gpu

import (
	"context"
	"math"
	"sort"

	"github.com/rileyhilliard/pstop/internal/logger"
)

// ProcessUsage is one process's GPU usage.
type ProcessUsage struct {
	PID             int32
	Usage           float64 // busiest engine, percent
	Engine          string  // label of the busiest engine
	DedicatedMemory uint64
	SharedMemory    uint64
}

// AdapterInfo is the whole-adapter summary.
type AdapterInfo struct {
	Name            string
	Usage           float64 // min(100, sum of per-process usage)
	DedicatedMemory uint64
	SharedMemory    uint64
}

type samplerState int

const (
	stateUnopened samplerState = iota
	stateOpen
	stateDisabled
)

// Sampler turns raw counters into per-process usage.
type Sampler struct {
	src      CounterSource
	log      logger.Logger
	state    samplerState
	primed   bool
	adapter  AdapterInfo
	nameRead bool
}

// NewSampler creates a sampler over src. The source is opened lazily on the
// first Collect.
func NewSampler(src CounterSource, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{src: src, log: log}
}

// Available reports whether the sampler is still live.
func (s *Sampler) Available() bool {
	return s.state != stateDisabled
}

// Ready reports whether the source is open and primed, so the next Collect
// returns real usage.
func (s *Sampler) Ready() bool {
	return s.state == stateOpen && s.primed
}

// Adapter returns the summary from the latest collection.
func (s *Sampler) Adapter() AdapterInfo {
	return s.adapter
}

// Collect returns per-process usage sorted by usage, highest first. It
// returns nil while priming, after a failed collection, and once disabled.
func (s *Sampler) Collect(ctx context.Context) []ProcessUsage {
	switch s.state {
	case stateDisabled:
		return nil
	case stateUnopened:
		if err := s.src.Open(ctx); err != nil {
			s.log.Info("gpu sampling disabled: %v", err)
			s.state = stateDisabled
			return nil
		}
		s.state = stateOpen
	}

	set, err := s.src.Collect(ctx)
	if err != nil {
		s.log.Debug("gpu collect failed: %v", err)
		return nil
	}
	if !s.primed {
		s.primed = true
		return nil
	}

	usage := Aggregate(set)
	s.updateAdapter(ctx, usage)
	return usage
}

func (s *Sampler) updateAdapter(ctx context.Context, usage []ProcessUsage) {
	if !s.nameRead {
		s.nameRead = true
		name, err := s.src.AdapterName(ctx)
		if err != nil {
			s.log.Debug("gpu adapter name: %v", err)
		}
		s.adapter.Name = name
	}

	var total float64
	var dedicated, shared uint64
	for _, u := range usage {
		total += u.Usage
		dedicated += u.DedicatedMemory
		shared += u.SharedMemory
	}
	s.adapter.Usage = math.Min(100, total)
	s.adapter.DedicatedMemory = dedicated
	s.adapter.SharedMemory = shared
}

// Aggregate folds one counter set into per-process rows. Utilization is the
// maximum across a process's engines; memory is summed across adapters.
func Aggregate(set CounterSet) []ProcessUsage {
	byPID := make(map[int32]*ProcessUsage)
	row := func(pid int32) *ProcessUsage {
		if u, ok := byPID[pid]; ok {
			return u
		}
		u := &ProcessUsage{PID: pid}
		byPID[pid] = u
		return u
	}

	for _, item := range set.Engine {
		pid, engine, ok := ParseEngineInstance(item.Instance)
		if !ok {
			continue
		}
		u := row(pid)
		if u.Engine == "" || item.Value > u.Usage {
			u.Usage = item.Value
			u.Engine = engine
		}
	}
	for _, item := range set.Dedicated {
		if pid, ok := ParseMemoryInstance(item.Instance); ok {
			row(pid).DedicatedMemory += clampBytes(item.Value)
		}
	}
	for _, item := range set.Shared {
		if pid, ok := ParseMemoryInstance(item.Instance); ok {
			row(pid).SharedMemory += clampBytes(item.Value)
		}
	}

	out := make([]ProcessUsage, 0, len(byPID))
	for _, u := range byPID {
		if u.Usage < 0 {
			u.Usage = 0
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Usage != out[j].Usage {
			return out[i].Usage > out[j].Usage
		}
		return out[i].PID < out[j].PID
	})
	return out
}

func clampBytes(v float64) uint64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return uint64(v)
}
