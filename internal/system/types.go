package system

import "time"

// CPUStats holds per-core and aggregate utilization.
type CPUStats struct {
	PerCore  []float64 // percent, 0-100
	FreqMHz  []float64 // per core when available, otherwise a single value
	Total    float64   // mean of PerCore
	Physical int
	Logical  int
	Brand    string
}

// MemoryStats holds physical memory and swap usage in bytes.
type MemoryStats struct {
	Total     uint64
	Used      uint64
	Free      uint64
	Available uint64
	Cached    uint64
	Buffers   uint64
	SwapTotal uint64
	SwapUsed  uint64
}

// UsedPercent returns used memory as a percentage of total.
func (m MemoryStats) UsedPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Used) / float64(m.Total) * 100
}

// SwapPercent returns used swap as a percentage of total swap.
func (m MemoryStats) SwapPercent() float64 {
	if m.SwapTotal == 0 {
		return 0
	}
	return float64(m.SwapUsed) / float64(m.SwapTotal) * 100
}

// NetworkStats holds host-wide interface totals and their rates.
type NetworkStats struct {
	RxBytes uint64
	TxBytes uint64
	RxRate  float64 // bytes per second
	TxRate  float64
}

// LoadAvg holds the 1, 5 and 15 minute load averages.
type LoadAvg struct {
	One     float64
	Five    float64
	Fifteen float64
}

// Stats is one tick's worth of host-level measurements.
type Stats struct {
	CPU     CPUStats
	Memory  MemoryStats
	Network NetworkStats
	Load    LoadAvg
	Uptime  time.Duration
	At      time.Time
}

// CPUInfo is the slow-changing processor description.
type CPUInfo struct {
	Brand    string
	Physical int
	Logical  int
	FreqMHz  []float64
}

// NetCounters are cumulative byte totals summed across interfaces.
type NetCounters struct {
	RxBytes uint64
	TxBytes uint64
}
