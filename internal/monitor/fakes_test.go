package monitor

import (
	"context"
	stderrors "errors"
	"syscall"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pstop/internal/gpu"
	"github.com/rileyhilliard/pstop/internal/netstat"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/system"
)

var errBoom = stderrors.New("boom")

type fakeSystem struct {
	cores []float64
	mem   system.MemoryStats
	calls int
}

func (f *fakeSystem) CPUPercent(context.Context) ([]float64, error) {
	f.calls++
	return f.cores, nil
}

func (f *fakeSystem) CPUInfo(context.Context) (system.CPUInfo, error) {
	return system.CPUInfo{Brand: "Test CPU", Logical: len(f.cores), Physical: len(f.cores)}, nil
}

func (f *fakeSystem) Memory(context.Context) (system.MemoryStats, error) {
	return f.mem, nil
}

func (f *fakeSystem) NetCounters(context.Context) (system.NetCounters, error) {
	return system.NetCounters{}, nil
}

func (f *fakeSystem) Load(context.Context) (system.LoadAvg, error) {
	return system.LoadAvg{One: 0.5, Five: 0.25, Fifteen: 0.1}, nil
}

func (f *fakeSystem) Uptime(context.Context) (time.Duration, error) {
	return 3 * time.Hour, nil
}

type fakeProcesses struct {
	list    []process.BaseInfo
	threads map[int32][]process.Thread
	listErr error
	calls   int
}

func (f *fakeProcesses) List(context.Context) ([]process.BaseInfo, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeProcesses) Attributes(_ context.Context, pid int32) (process.Attributes, error) {
	user := "alice"
	if pid == 1 {
		user = "root"
	}
	return process.Attributes{Priority: 20, User: user, Threads: 1}, nil
}

func (f *fakeProcesses) IO(context.Context, int32) (process.IOCounters, error) {
	return process.IOCounters{}, nil
}

func (f *fakeProcesses) CPUTime(context.Context, int32) (time.Duration, error) {
	return time.Second, nil
}

func (f *fakeProcesses) Threads(_ context.Context, pid int32) ([]process.Thread, error) {
	return f.threads[pid], nil
}

type fakeConnections struct {
	conns []netstat.Connection
	err   error
}

func (f *fakeConnections) Connections(context.Context) ([]netstat.Connection, error) {
	return f.conns, f.err
}

type fakeGPU struct {
	openErr error
	set     gpu.CounterSet
	calls   int
}

func (f *fakeGPU) Open(context.Context) error { return f.openErr }

func (f *fakeGPU) Collect(context.Context) (gpu.CounterSet, error) {
	f.calls++
	return f.set, nil
}

func (f *fakeGPU) AdapterName(context.Context) (string, error) { return "Test GPU", nil }

type signalCall struct {
	pid int32
	sig syscall.Signal
}

type fakeController struct {
	signals  []signalCall
	steps    map[int32]int
	affinity map[int32][]int
	ioprio   map[int32]process.IOPriority
	errs     map[int32]error
}

func newFakeController() *fakeController {
	return &fakeController{
		steps:    make(map[int32]int),
		affinity: make(map[int32][]int),
		ioprio:   make(map[int32]process.IOPriority),
		errs:     make(map[int32]error),
	}
}

func (f *fakeController) Signal(_ context.Context, pid int32, sig syscall.Signal) error {
	if err := f.errs[pid]; err != nil {
		return err
	}
	f.signals = append(f.signals, signalCall{pid: pid, sig: sig})
	return nil
}

func (f *fakeController) StepPriority(pid int32, delta int) error {
	if err := f.errs[pid]; err != nil {
		return err
	}
	f.steps[pid] += delta
	return nil
}

func (f *fakeController) Affinity(pid int32) ([]int, error) {
	if err := f.errs[pid]; err != nil {
		return nil, err
	}
	return f.affinity[pid], nil
}

func (f *fakeController) SetAffinity(pid int32, cpus []int) error {
	if err := f.errs[pid]; err != nil {
		return err
	}
	f.affinity[pid] = cpus
	return nil
}

func (f *fakeController) SetIOPriority(pid int32, prio process.IOPriority) error {
	if err := f.errs[pid]; err != nil {
		return err
	}
	f.ioprio[pid] = prio
	return nil
}

type fakeInspector struct {
	details map[int32]process.Details
	files   map[int32][]process.OpenFile
}

func (f *fakeInspector) Details(_ context.Context, pid int32) (process.Details, error) {
	d, ok := f.details[pid]
	if !ok {
		return process.Details{}, errBoom
	}
	return d, nil
}

func (f *fakeInspector) OpenFiles(_ context.Context, pid int32) ([]process.OpenFile, error) {
	files, ok := f.files[pid]
	if !ok {
		return nil, errBoom
	}
	return files, nil
}

// testProcesses is a small tree: init, a shell under it, and two children.
func testProcesses() []process.BaseInfo {
	return []process.BaseInfo{
		{PID: 1, PPID: 0, Name: "init", Command: "/sbin/init", Status: process.StatusSleeping, ResBytes: 4 << 20, CPUPercent: 0.1},
		{PID: 100, PPID: 1, Name: "bash", Command: "/bin/bash --login", Status: process.StatusSleeping, ResBytes: 8 << 20, CPUPercent: 1.5},
		{PID: 200, PPID: 100, Name: "nginx", Command: "/usr/sbin/nginx -g daemon", Status: process.StatusRunning, ResBytes: 64 << 20, CPUPercent: 42},
		{PID: 300, PPID: 100, Name: "vim", Command: "/usr/bin/vim notes.txt", Status: process.StatusSleeping, ResBytes: 16 << 20, CPUPercent: 3},
	}
}

type fixture struct {
	system  *fakeSystem
	procs   *fakeProcesses
	conns   *fakeConnections
	gpu     *fakeGPU
	ctrl    *fakeController
	inspect *fakeInspector
}

func newFixture() *fixture {
	return &fixture{
		system: &fakeSystem{
			cores: []float64{10, 20, 30, 40},
			mem:   system.MemoryStats{Total: 8 << 30, Used: 2 << 30, Free: 5 << 30, Available: 6 << 30, SwapTotal: 1 << 30},
		},
		procs: &fakeProcesses{list: testProcesses()},
		conns: &fakeConnections{},
		gpu:   &fakeGPU{openErr: errBoom},
		ctrl:  newFakeController(),
		inspect: &fakeInspector{
			details: map[int32]process.Details{
				200: {Exe: "/usr/sbin/nginx", Cwd: "/var/www", Environ: []string{"HOME=/root", "PATH=/usr/bin"}},
			},
			files: map[int32][]process.OpenFile{
				200: {{FD: 0, Path: "/dev/null"}, {FD: 4, Path: "/var/log/nginx/access.log"}},
			},
		},
	}
}

func (f *fixture) collector() *Collector {
	return NewCollector(Sources{
		System:      f.system,
		Process:     f.procs,
		Connections: f.conns,
		GPU:         f.gpu,
		Control:     f.ctrl,
		Inspect:     f.inspect,
	}, DefaultCadence(), process.PlatformDefaults(), nil)
}

func stripANSI(s string) string {
	return ansi.Strip(s)
}
