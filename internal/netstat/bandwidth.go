package netstat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/rileyhilliard/pstop/internal/rate"
)

// Counters are cumulative bytes for one connection.
type Counters struct {
	BytesIn  uint64
	BytesOut uint64
}

// ByteCounter provides per-connection byte counters.
type ByteCounter interface {
	// Enable asks the OS to start counting bytes for c. It fails when the
	// capability is missing or the caller lacks privilege.
	Enable(c Connection) error
	// Read returns the cumulative counters for an enabled connection.
	Read(c Connection) (Counters, error)
}

// Refresher is implemented by byte counters that load all counters at once.
// Refresh is called once per tick before any Enable or Read.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Instrumentation is the tri-state availability of per-connection counters.
type Instrumentation int

const (
	Untested Instrumentation = iota
	Enabled
	Disabled
)

func (i Instrumentation) String() string {
	switch i {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "untested"
	}
}

// ProcessBandwidth is the per-process network summary.
type ProcessBandwidth struct {
	PID          int32
	Name         string
	DownloadRate float64 // bytes per second
	UploadRate   float64
	Connections  int
}

// TotalRate is the combined download and upload rate.
func (p ProcessBandwidth) TotalRate() float64 {
	return p.DownloadRate + p.UploadRate
}

// Tracker turns connection tables into per-process bandwidth.
type Tracker struct {
	enum    Enumerator
	counter ByteCounter
	state   Instrumentation
	enabled map[Key]struct{}
	rates   *rate.Tracker[Key]
	log     logger.Logger
}

// NewTracker creates a tracker. A nil counter starts in count-only mode.
func NewTracker(enum Enumerator, counter ByteCounter, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Noop()
	}
	t := &Tracker{
		enum:    enum,
		counter: counter,
		enabled: make(map[Key]struct{}),
		rates:   rate.NewTracker[Key](),
		log:     log,
	}
	if counter == nil {
		t.state = Disabled
	}
	return t
}

// State returns the current instrumentation state.
func (t *Tracker) State() Instrumentation {
	return t.state
}

// HasBandwidthData reports whether rates may be non-zero.
func (t *Tracker) HasBandwidthData() bool {
	return t.state != Disabled
}

type accum struct {
	down, up float64
	conns    int
}

// Collect enumerates connections and returns per-process bandwidth ordered
// by total rate, then connection count. names maps pids to display names.
func (t *Tracker) Collect(ctx context.Context, now time.Time, names map[int32]string) ([]ProcessBandwidth, error) {
	conns, err := t.enum.Connections(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect connections: %w", err)
	}

	if r, ok := t.counter.(Refresher); ok && t.state != Disabled {
		if err := r.Refresh(ctx); err != nil {
			t.log.Debug("refresh byte counters: %v", err)
		}
	}

	live := make(map[Key]struct{}, len(conns))
	acc := make(map[int32]*accum)
	for _, c := range conns {
		key := c.Key()
		live[key] = struct{}{}

		a, ok := acc[c.PID]
		if !ok {
			a = &accum{}
			acc[c.PID] = a
		}
		a.conns++

		if c.Established() && t.state != Disabled {
			t.count(c, key, now, a)
		}
	}

	t.rates.Retain(live)
	for k := range t.enabled {
		if _, ok := live[k]; !ok {
			delete(t.enabled, k)
		}
	}

	out := make([]ProcessBandwidth, 0, len(acc))
	for pid, a := range acc {
		if pid == 0 {
			continue
		}
		out = append(out, ProcessBandwidth{
			PID:          pid,
			Name:         displayName(pid, names),
			DownloadRate: a.down,
			UploadRate:   a.up,
			Connections:  a.conns,
		})
	}
	SortBandwidth(out)
	return out, nil
}

func (t *Tracker) count(c Connection, key Key, now time.Time, a *accum) {
	if _, ok := t.enabled[key]; !ok {
		if err := t.counter.Enable(c); err != nil {
			if t.state == Untested {
				t.state = Disabled
				t.log.Info("per-connection byte counters unavailable, showing connection counts only: %v", err)
			}
			return
		}
		t.enabled[key] = struct{}{}
		if t.state == Untested {
			t.state = Enabled
		}
	}

	counters, err := t.counter.Read(c)
	if err != nil {
		return
	}
	rates := t.rates.Sample(key, now, counters.BytesIn, counters.BytesOut)
	a.down += rates[0]
	a.up += rates[1]
}

// SortBandwidth orders by total rate descending, then connection count
// descending, then pid ascending.
func SortBandwidth(list []ProcessBandwidth) {
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := list[i].TotalRate(), list[j].TotalRate()
		if ri != rj {
			return ri > rj
		}
		if list[i].Connections != list[j].Connections {
			return list[i].Connections > list[j].Connections
		}
		return list[i].PID < list[j].PID
	})
}

func displayName(pid int32, names map[int32]string) string {
	if n, ok := names[pid]; ok && n != "" {
		return n
	}
	switch pid {
	case 0:
		return "System Idle"
	case 4:
		return "System"
	default:
		return fmt.Sprintf("PID:%d", pid)
	}
}
