package process

import (
	"context"
	"time"
)

// BaseInfo holds the fields that are cheap enough to read every tick.
type BaseInfo struct {
	PID        int32
	PPID       int32
	Name       string
	Command    string
	Status     Status
	VirtBytes  uint64
	ResBytes   uint64
	CPUPercent float64
	StartedAt  time.Time
}

// Attributes are the expensive, privilege-sensitive fields that are cached
// between refreshes.
type Attributes struct {
	Priority     int32
	Nice         int32
	User         string
	Threads      int32
	PrivateBytes uint64
}

// IOCounters are cumulative bytes read and written by a process.
type IOCounters struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// Thread is one thread of a process.
type Thread struct {
	TID     int32
	Name    string
	CPUTime time.Duration
}

// Source reads process information from the OS.
type Source interface {
	// List enumerates every live process with its base fields. Processes
	// that vanish or deny access mid-read are skipped.
	List(ctx context.Context) ([]BaseInfo, error)
	Attributes(ctx context.Context, pid int32) (Attributes, error)
	IO(ctx context.Context, pid int32) (IOCounters, error)
	CPUTime(ctx context.Context, pid int32) (time.Duration, error)
	Threads(ctx context.Context, pid int32) ([]Thread, error)
}

// Details is the on-demand detail of one process.
type Details struct {
	Exe     string
	Cwd     string
	Environ []string
}

// OpenFile is one open file descriptor.
type OpenFile struct {
	FD   uint64
	Path string
}

// Inspector reads per-process detail that is only shown on request.
type Inspector interface {
	Details(ctx context.Context, pid int32) (Details, error)
	OpenFiles(ctx context.Context, pid int32) ([]OpenFile, error)
}
