package process

import (
	"strings"
	"time"
)

// Status is the scheduler state of a process.
type Status int

const (
	StatusUnknown Status = iota
	StatusRunning
	StatusSleeping
	StatusDiskSleep
	StatusStopped
	StatusZombie
)

// Symbol returns the single-letter column value used by top-style tools.
func (s Status) Symbol() string {
	switch s {
	case StatusRunning:
		return "R"
	case StatusSleeping:
		return "S"
	case StatusDiskSleep:
		return "D"
	case StatusStopped:
		return "T"
	case StatusZombie:
		return "Z"
	default:
		return "?"
	}
}

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSleeping:
		return "sleeping"
	case StatusDiskSleep:
		return "disk-sleep"
	case StatusStopped:
		return "stopped"
	case StatusZombie:
		return "zombie"
	default:
		return "unknown"
	}
}

// ParseStatus maps an OS status letter or gopsutil status word to a Status.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "running":
		return StatusRunning
	case "s", "i", "sleep", "idle":
		return StatusSleeping
	case "d", "u", "blocked", "wait":
		return StatusDiskSleep
	case "t", "stop":
		return StatusStopped
	case "z", "zombie":
		return StatusZombie
	default:
		return StatusUnknown
	}
}

// Record is one row of the process table for a single tick.
// Records are rebuilt every tick; Depth and IsLastChild are only set by
// tree construction.
type Record struct {
	PID     int32
	PPID    int32
	Name    string
	Command string
	User    string
	Status  Status

	Priority int32
	Nice     int32

	VirtBytes   uint64
	ResBytes    uint64
	SharedBytes uint64

	CPUPercent float64
	MemPercent float64

	// RunTime is wall time since the process started, clamped to uptime.
	RunTime time.Duration
	// CPUTime is accumulated user+system time; zero until first measured.
	CPUTime time.Duration

	Threads int32

	IOReadRate  float64 // bytes per second
	IOWriteRate float64

	Depth       int
	IsLastChild bool
	IsThread    bool
}

// IORate is the combined read and write rate.
func (r Record) IORate() float64 {
	return r.IOReadRate + r.IOWriteRate
}

// TaskCounts summarize a snapshot for the header.
type TaskCounts struct {
	Total    int
	Running  int
	Sleeping int
	Threads  int
}

// Snapshot is the full process list for one tick.
type Snapshot struct {
	Records []Record
	Tasks   TaskCounts
	At      time.Time
}

// Names returns a pid to name index for the snapshot.
func (s Snapshot) Names() map[int32]string {
	names := make(map[int32]string, len(s.Records))
	for _, r := range s.Records {
		if r.IsThread {
			continue
		}
		names[r.PID] = r.Name
	}
	return names
}
