package monitor

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"syscall"
	"time"

	"github.com/rileyhilliard/pstop/internal/errors"
	"github.com/rileyhilliard/pstop/internal/gpu"
	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/rileyhilliard/pstop/internal/netstat"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/system"
)

// Sources are the OS capabilities a Collector samples and controls.
type Sources struct {
	System      system.Source
	Process     process.Source
	Connections netstat.Enumerator
	// Bytes may be nil, which leaves bandwidth in count-only mode.
	Bytes   netstat.ByteCounter
	GPU     gpu.CounterSource
	Control process.Controller
	// Inspect may be nil, which disables the details and open files views.
	Inspect process.Inspector
}

// Cadence sets how often the slower samplers run, in ticks.
type Cadence struct {
	Process process.Cadence
	// GPUEvery is the number of ticks between GPU counter reads.
	GPUEvery uint64
}

// DefaultCadence reads process attributes and GPU counters every third tick.
func DefaultCadence() Cadence {
	return Cadence{Process: process.DefaultCadence(), GPUEvery: 3}
}

// Collector runs one sample pass per tick across every sampler and applies
// process control intents. It is driven from the dashboard's update loop
// and is not safe for concurrent use.
type Collector struct {
	system  *system.Sampler
	procs   *process.Sampler
	net     *netstat.Tracker
	gpu     *gpu.Sampler
	ctrl    process.Controller
	inspect process.Inspector
	log     logger.Logger

	gpuEvery  uint64
	gpuTicks  uint64
	gpuActive bool

	freezeNames bool
	paused      bool
	last        Snapshot
}

// NewCollector wires samplers over src. A nil logger discards messages.
func NewCollector(src Sources, cadence Cadence, defaults process.Defaults, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	if cadence.GPUEvery == 0 {
		cadence.GPUEvery = 1
	}
	return &Collector{
		system:   system.NewSampler(src.System, log),
		procs:    process.NewSampler(src.Process, cadence.Process, defaults, log),
		net:      netstat.NewTracker(src.Connections, src.Bytes, log),
		gpu:      gpu.NewSampler(src.GPU, log),
		ctrl:     src.Control,
		inspect:  src.Inspect,
		log:      log,
		gpuEvery: cadence.GPUEvery,
	}
}

// DefaultSources returns the gopsutil and OS backed capabilities for the
// running platform.
func DefaultSources(log logger.Logger) Sources {
	if log == nil {
		log = logger.Noop()
	}
	procs := process.NewGopsutilSource()
	src := Sources{
		System:      system.NewGopsutilSource(),
		Process:     procs,
		Connections: netstat.NewGopsutilEnumerator(),
		GPU:         gpu.DefaultSource(),
		Control:     process.NewOSController(log),
		Inspect:     procs,
	}
	// A typed nil must not reach the tracker as a non-nil interface.
	if counter, err := netstat.NewInetDiagCounter(); err == nil {
		src.Bytes = counter
	} else {
		log.Info("per-connection byte counters unavailable: %v", err)
	}
	return src
}

// NewDefaultCollector is NewCollector over DefaultSources.
func NewDefaultCollector(cadence Cadence, log logger.Logger) *Collector {
	return NewCollector(DefaultSources(log), cadence, process.PlatformDefaults(), log)
}

// Collect samples every source once and returns the result. While paused it
// makes no OS calls and returns the previous snapshot. Sampling failures
// keep the previous values for the affected part. GPU counters are read only
// while the GPU view is active, every GPUEvery ticks.
func (c *Collector) Collect(ctx context.Context, now time.Time, showThreads bool) Snapshot {
	if c.paused {
		return c.last
	}

	snap := Snapshot{At: now}
	snap.System = c.system.Sample(ctx, now)

	procs, err := c.procs.Sample(ctx, now, process.Options{
		TotalMemory: snap.System.Memory.Total,
		Uptime:      snap.System.Uptime,
		ShowThreads: showThreads,
		FreezeNames: c.freezeNames,
	})
	if err != nil {
		c.log.Debug("%v", err)
		procs = c.last.Processes
	}
	snap.Processes = procs

	bw, err := c.net.Collect(ctx, now, procs.Names())
	if err != nil {
		c.log.Debug("%v", err)
		bw = c.last.Bandwidth
	}
	snap.Bandwidth = bw
	snap.Instrumentation = c.net.State()

	if c.gpuDue() {
		primed := c.gpu.Ready()
		snap.GPU = c.gpu.Collect(ctx)
		if !primed && c.gpu.Ready() {
			// The priming read has no usage yet; take the real one next tick.
			c.gpuTicks = 0
		}
	} else {
		snap.GPU = c.last.GPU
	}
	snap.Adapter = c.gpu.Adapter()
	snap.GPUAvailable = c.gpu.Available()

	c.last = snap
	return snap
}

// SetUpdateNames chooses between re-reading process names every tick and
// keeping the first name seen for each process.
func (c *Collector) SetUpdateNames(update bool) {
	c.freezeNames = !update
}

// SetGPUActive turns GPU sampling on or off. Activating restarts the
// cadence so the first tick after switching to the GPU view samples.
func (c *Collector) SetGPUActive(active bool) {
	if active && !c.gpuActive {
		c.gpuTicks = 0
	}
	c.gpuActive = active
}

// gpuDue advances the GPU cadence and reports whether this tick reads the
// counters.
func (c *Collector) gpuDue() bool {
	if !c.gpuActive || !c.gpu.Available() {
		return false
	}
	due := c.gpuTicks%c.gpuEvery == 0
	c.gpuTicks++
	return due
}

// Last returns the most recent snapshot.
func (c *Collector) Last() Snapshot {
	return c.last
}

// TogglePause flips the pause flag and returns the new value.
func (c *Collector) TogglePause() bool {
	c.paused = !c.paused
	return c.paused
}

// Resume clears the pause flag.
func (c *Collector) Resume() {
	c.paused = false
}

// Paused reports whether sampling is paused.
func (c *Collector) Paused() bool {
	return c.paused
}

// Signal sends sig to every pid. Pids that have already exited are skipped;
// any other failures are joined into the returned error.
func (c *Collector) Signal(ctx context.Context, pids []int32, sig syscall.Signal) error {
	var errs []error
	for _, pid := range pids {
		if err := c.ctrl.Signal(ctx, pid, sig); err != nil {
			errs = c.collectControlErr(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// StepPriority adds delta to the nice value of every pid.
func (c *Collector) StepPriority(pids []int32, delta int) error {
	var errs []error
	for _, pid := range pids {
		if err := c.ctrl.StepPriority(pid, delta); err != nil {
			errs = c.collectControlErr(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Affinity returns the CPUs pid may run on.
func (c *Collector) Affinity(pid int32) ([]int, error) {
	return c.ctrl.Affinity(pid)
}

// SetAffinity restricts pid to cpus.
func (c *Collector) SetAffinity(pid int32, cpus []int) error {
	var errs []error
	if err := c.ctrl.SetAffinity(pid, cpus); err != nil {
		errs = c.collectControlErr(errs, err)
	}
	return stderrors.Join(errs...)
}

// SetIOPriority applies prio to every pid.
func (c *Collector) SetIOPriority(pids []int32, prio process.IOPriority) error {
	var errs []error
	for _, pid := range pids {
		if err := c.ctrl.SetIOPriority(pid, prio); err != nil {
			errs = c.collectControlErr(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Details reads the executable, working directory and environment of pid.
func (c *Collector) Details(ctx context.Context, pid int32) (process.Details, error) {
	if c.inspect == nil {
		return process.Details{}, fmt.Errorf("details of pid %d: %w", pid, errors.ErrUnsupported)
	}
	return c.inspect.Details(ctx, pid)
}

// OpenFiles lists the files pid holds open.
func (c *Collector) OpenFiles(ctx context.Context, pid int32) ([]process.OpenFile, error) {
	if c.inspect == nil {
		return nil, fmt.Errorf("open files of pid %d: %w", pid, errors.ErrUnsupported)
	}
	return c.inspect.OpenFiles(ctx, pid)
}

func (c *Collector) collectControlErr(errs []error, err error) []error {
	if stderrors.Is(err, errors.ErrNotFound) {
		c.log.Debug("ignored: %v", err)
		return errs
	}
	c.log.Warn("%v", err)
	return append(errs, err)
}

func itoa(pid int32) string {
	return strconv.FormatInt(int64(pid), 10)
}
