package process

import (
	"context"
	"fmt"
	"syscall"

	"github.com/rileyhilliard/pstop/internal/errors"
	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/shirou/gopsutil/v4/process"
)

// Signal is one entry of the termination severity menu.
type Signal struct {
	Number syscall.Signal
	Name   string
	Label  string
}

// Signals lists the selectable termination signals, gentlest first.
var Signals = []Signal{
	{Number: syscall.SIGTERM, Name: "SIGTERM", Label: "graceful"},
	{Number: syscall.SIGKILL, Name: "SIGKILL", Label: "force"},
	{Number: syscall.SIGHUP, Name: "SIGHUP", Label: "hangup"},
	{Number: syscall.SIGINT, Name: "SIGINT", Label: "interrupt"},
	{Number: syscall.SIGQUIT, Name: "SIGQUIT", Label: "quit"},
}

// Nice bounds for priority stepping.
const (
	MinNice = -20
	MaxNice = 19
)

// Linux I/O scheduling classes.
const (
	IOClassBestEffort = 2
	IOClassIdle       = 3
)

// IOPriority is one entry of the I/O priority menu.
type IOPriority struct {
	Class int
	// Level is 0 (highest) to 7 within the best-effort class.
	Level int
	Label string
}

// IOPriorities lists the selectable I/O priorities.
var IOPriorities = []IOPriority{
	{Class: IOClassBestEffort, Level: 4, Label: "Normal I/O Priority"},
	{Class: IOClassIdle, Label: "Background Mode (Low I/O)"},
}

// ioprioValue packs a class and level the way ioprio_set expects them.
func ioprioValue(p IOPriority) int {
	return p.Class<<13 | p.Level
}

// Controller changes the state of running processes.
type Controller interface {
	Signal(ctx context.Context, pid int32, sig syscall.Signal) error
	// StepPriority adds delta to the nice value of pid. Negative delta
	// raises scheduling priority.
	StepPriority(pid int32, delta int) error
	Affinity(pid int32) ([]int, error)
	SetAffinity(pid int32, cpus []int) error
	SetIOPriority(pid int32, prio IOPriority) error
}

// OSController applies control intents to real processes.
type OSController struct {
	log logger.Logger
}

// NewOSController creates a controller. A nil logger discards messages.
func NewOSController(log logger.Logger) *OSController {
	if log == nil {
		log = logger.Noop()
	}
	return &OSController{log: log}
}

func (c *OSController) Signal(ctx context.Context, pid int32, sig syscall.Signal) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, errors.ErrNotFound)
	}
	if err := p.SendSignalWithContext(ctx, sig); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, classify(err))
	}
	c.log.Debug("sent %v to pid %d", sig, pid)
	return nil
}

func (c *OSController) StepPriority(pid int32, delta int) error {
	nice, err := getNice(pid)
	if err != nil {
		return fmt.Errorf("priority of pid %d: %w", pid, classify(err))
	}
	next := clampNice(nice + delta)
	if next == nice {
		return nil
	}
	if err := setNice(pid, next); err != nil {
		return fmt.Errorf("set priority of pid %d: %w", pid, classify(err))
	}
	c.log.Debug("pid %d nice %d -> %d", pid, nice, next)
	return nil
}

func (c *OSController) Affinity(pid int32) ([]int, error) {
	cpus, err := getAffinity(pid)
	if err != nil {
		return nil, fmt.Errorf("affinity of pid %d: %w", pid, classify(err))
	}
	return cpus, nil
}

func (c *OSController) SetAffinity(pid int32, cpus []int) error {
	if len(cpus) == 0 {
		return fmt.Errorf("set affinity of pid %d: empty cpu set", pid)
	}
	if err := setAffinity(pid, cpus); err != nil {
		return fmt.Errorf("set affinity of pid %d: %w", pid, classify(err))
	}
	c.log.Debug("pid %d affinity %v", pid, cpus)
	return nil
}

func (c *OSController) SetIOPriority(pid int32, prio IOPriority) error {
	if err := setIOPriority(pid, ioprioValue(prio)); err != nil {
		return fmt.Errorf("set i/o priority of pid %d: %w", pid, classify(err))
	}
	c.log.Debug("pid %d i/o priority %q", pid, prio.Label)
	return nil
}

func clampNice(n int) int {
	if n < MinNice {
		return MinNice
	}
	if n > MaxNice {
		return MaxNice
	}
	return n
}
