package process

import (
	"context"
	"runtime"
	"time"

	"github.com/rileyhilliard/pstop/internal/logger"
)

// Cadence controls how often expensive per-process queries run.
type Cadence struct {
	// RefreshEvery is the number of ticks between attribute refreshes.
	RefreshEvery uint64
	// CPUTimeOffset is the tick phase, modulo RefreshEvery, on which
	// precise CPU time is sampled. It is kept off the attribute phase so
	// the two costs never land on the same tick.
	CPUTimeOffset uint64
}

// DefaultCadence refreshes attributes every third tick and CPU time one tick later.
func DefaultCadence() Cadence {
	return Cadence{RefreshEvery: 3, CPUTimeOffset: 1}
}

func (c Cadence) every() uint64 {
	if c.RefreshEvery == 0 {
		return 1
	}
	return c.RefreshEvery
}

// AttributesDue reports whether attributes refresh on tick.
func (c Cadence) AttributesDue(tick uint64) bool {
	return tick%c.every() == 0
}

// CPUTimeDue reports whether CPU time is sampled on tick.
func (c Cadence) CPUTimeDue(tick uint64) bool {
	return tick%c.every() == c.CPUTimeOffset%c.every()
}

// Defaults are served for processes whose attributes could not be read.
type Defaults struct {
	Priority int32
	Nice     int32
	Threads  int32
	User     string
	// Sentinels are pids that never have readable attributes.
	Sentinels []int32
}

// PlatformDefaults returns the fallback attributes for the running OS.
func PlatformDefaults() Defaults {
	if runtime.GOOS == "windows" {
		return Defaults{Priority: 8, Threads: 1, User: "SYSTEM", Sentinels: []int32{0, 4}}
	}
	return Defaults{Priority: basePriority, Threads: 1, User: "root", Sentinels: []int32{0}}
}

// AttributeCache holds per-pid attributes and CPU times between refreshes.
type AttributeCache struct {
	defaults  Defaults
	sentinels map[int32]struct{}
	attrs     map[int32]Attributes
	cpuTimes  map[int32]time.Duration
	log       logger.Logger
}

// NewAttributeCache creates an empty cache. A nil logger discards messages.
func NewAttributeCache(defaults Defaults, log logger.Logger) *AttributeCache {
	if log == nil {
		log = logger.Noop()
	}
	sentinels := make(map[int32]struct{}, len(defaults.Sentinels))
	for _, pid := range defaults.Sentinels {
		sentinels[pid] = struct{}{}
	}
	return &AttributeCache{
		defaults:  defaults,
		sentinels: sentinels,
		attrs:     make(map[int32]Attributes),
		cpuTimes:  make(map[int32]time.Duration),
		log:       log,
	}
}

// Refresh re-reads attributes for every pid and drops entries for pids not
// in the list. Unreadable pids are left out and fall back to defaults.
func (c *AttributeCache) Refresh(ctx context.Context, src Source, pids []int32) {
	next := make(map[int32]Attributes, len(pids))
	var failed int
	for _, pid := range pids {
		if _, ok := c.sentinels[pid]; ok {
			continue
		}
		a, err := src.Attributes(ctx, pid)
		if err != nil {
			failed++
			continue
		}
		next[pid] = a
	}
	c.attrs = next
	if failed > 0 {
		c.log.Debug("attributes unavailable for %d of %d processes", failed, len(pids))
	}
}

// RefreshCPUTimes re-reads precise CPU time for every pid.
func (c *AttributeCache) RefreshCPUTimes(ctx context.Context, src Source, pids []int32) {
	next := make(map[int32]time.Duration, len(pids))
	for _, pid := range pids {
		if _, ok := c.sentinels[pid]; ok {
			continue
		}
		if d, err := src.CPUTime(ctx, pid); err == nil {
			next[pid] = d
		}
	}
	c.cpuTimes = next
}

// Get returns the cached attributes for pid or the defaults.
func (c *AttributeCache) Get(pid int32) Attributes {
	if a, ok := c.attrs[pid]; ok {
		if a.User == "" {
			a.User = c.defaults.User
		}
		if a.Threads == 0 {
			a.Threads = c.defaults.Threads
		}
		return a
	}
	return Attributes{
		Priority: c.defaults.Priority,
		Nice:     c.defaults.Nice,
		Threads:  c.defaults.Threads,
		User:     c.defaults.User,
	}
}

// CPUTime returns the last measured CPU time for pid.
func (c *AttributeCache) CPUTime(pid int32) (time.Duration, bool) {
	d, ok := c.cpuTimes[pid]
	return d, ok
}

// Len returns the number of pids with cached attributes.
func (c *AttributeCache) Len() int {
	return len(c.attrs)
}
