package system

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Source reads raw host counters. GopsutilSource is the production
// implementation; tests substitute fakes.
type Source interface {
	CPUPercent(ctx context.Context) ([]float64, error)
	CPUInfo(ctx context.Context) (CPUInfo, error)
	Memory(ctx context.Context) (MemoryStats, error)
	NetCounters(ctx context.Context) (NetCounters, error)
	Load(ctx context.Context) (LoadAvg, error)
	Uptime(ctx context.Context) (time.Duration, error)
}

// GopsutilSource reads host counters through gopsutil.
type GopsutilSource struct{}

// NewGopsutilSource creates a gopsutil-backed source.
func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{}
}

// CPUPercent returns per-core utilization since the previous call.
// The first call measures since boot.
func (GopsutilSource) CPUPercent(ctx context.Context) ([]float64, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-cpu percent: %w", err)
	}
	return pct, nil
}

func (GopsutilSource) CPUInfo(ctx context.Context) (CPUInfo, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("failed to get cpu info: %w", err)
	}

	var out CPUInfo
	for _, ci := range infos {
		out.FreqMHz = append(out.FreqMHz, ci.Mhz)
	}
	if len(infos) > 0 {
		out.Brand = infos[0].ModelName
	}

	// Core counts might not be available on all systems
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		out.Physical = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		out.Logical = n
	}
	return out, nil
}

func (GopsutilSource) Memory(ctx context.Context) (MemoryStats, error) {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStats{}, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	out := MemoryStats{
		Total:     vmem.Total,
		Used:      vmem.Used,
		Free:      vmem.Free,
		Available: vmem.Available,
		Cached:    vmem.Cached,
		Buffers:   vmem.Buffers,
	}

	// Swap might not be available
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		out.SwapTotal = swap.Total
		out.SwapUsed = swap.Used
	}
	return out, nil
}

func (GopsutilSource) NetCounters(ctx context.Context) (NetCounters, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetCounters{}, fmt.Errorf("failed to get network io counters: %w", err)
	}

	var out NetCounters
	for _, c := range counters {
		out.RxBytes += c.BytesRecv
		out.TxBytes += c.BytesSent
	}
	return out, nil
}

func (GopsutilSource) Load(ctx context.Context) (LoadAvg, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAvg{}, fmt.Errorf("failed to get load average: %w", err)
	}
	return LoadAvg{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}, nil
}

func (GopsutilSource) Uptime(ctx context.Context) (time.Duration, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get uptime: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}
