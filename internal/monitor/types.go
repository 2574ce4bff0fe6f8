package monitor

import (
	"time"

	"github.com/rileyhilliard/pstop/internal/gpu"
	"github.com/rileyhilliard/pstop/internal/netstat"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/system"
)

// Snapshot is everything sampled on one tick. Processes are raw; the
// dashboard's procview.State turns them into the rows it paints.
type Snapshot struct {
	System    system.Stats
	Processes process.Snapshot

	// Bandwidth is ordered by total rate, then connection count.
	Bandwidth       []netstat.ProcessBandwidth
	Instrumentation netstat.Instrumentation

	// GPU is ordered by usage, highest first.
	GPU          []gpu.ProcessUsage
	Adapter      gpu.AdapterInfo
	GPUAvailable bool

	At time.Time
}

// ProcessName returns the name of pid in the snapshot, or "PID <n>" when
// the process is not listed.
func (s Snapshot) ProcessName(pid int32) string {
	for _, r := range s.Processes.Records {
		if r.PID == pid && !r.IsThread {
			return r.Name
		}
	}
	return "PID " + itoa(pid)
}
