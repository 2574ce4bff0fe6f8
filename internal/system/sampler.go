// Package system samples host-wide CPU, memory, network, load and uptime.
package system

import (
	"context"
	"time"

	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/rileyhilliard/pstop/internal/rate"
)

// netKey is the single rate-tracker key for host-wide interface totals.
const netKey = "total"

// DefaultInfoEvery is how many samples pass between processor info refreshes.
const DefaultInfoEvery = 3

// Sampler produces Stats from a Source. Each section is read independently:
// a failing section keeps its last good value and the rest still update.
type Sampler struct {
	src       Source
	log       logger.Logger
	net       *rate.Tracker[string]
	infoEvery int
	samples   int
	last      Stats
}

// NewSampler creates a sampler over src. A nil logger discards messages.
func NewSampler(src Source, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{
		src:       src,
		log:       log,
		net:       rate.NewTracker[string](),
		infoEvery: DefaultInfoEvery,
	}
}

// SetInfoEvery changes how often processor info (brand, frequency) is re-read.
func (s *Sampler) SetInfoEvery(n int) {
	if n < 1 {
		n = 1
	}
	s.infoEvery = n
}

// Sample reads every section and returns the combined stats.
func (s *Sampler) Sample(ctx context.Context, now time.Time) Stats {
	st := s.last
	st.At = now

	if pct, err := s.src.CPUPercent(ctx); err == nil {
		st.CPU.PerCore = pct
		st.CPU.Total = mean(pct)
	} else {
		s.log.Debug("cpu percent: %v", err)
	}

	if s.samples%s.infoEvery == 0 {
		if info, err := s.src.CPUInfo(ctx); err == nil {
			st.CPU.Brand = info.Brand
			st.CPU.FreqMHz = info.FreqMHz
			st.CPU.Physical = info.Physical
			st.CPU.Logical = info.Logical
		} else {
			s.log.Debug("cpu info: %v", err)
		}
	}
	if st.CPU.Logical == 0 {
		st.CPU.Logical = len(st.CPU.PerCore)
	}

	if m, err := s.src.Memory(ctx); err == nil {
		// Some platforms fold the page cache into Available without reporting it.
		if m.Cached == 0 && m.Available > m.Free {
			m.Cached = m.Available - m.Free
		}
		st.Memory = m
	} else {
		s.log.Debug("memory: %v", err)
	}

	if nc, err := s.src.NetCounters(ctx); err == nil {
		rates := s.net.Sample(netKey, now, nc.RxBytes, nc.TxBytes)
		st.Network = NetworkStats{
			RxBytes: nc.RxBytes,
			TxBytes: nc.TxBytes,
			RxRate:  rates[0],
			TxRate:  rates[1],
		}
	} else {
		s.log.Debug("net counters: %v", err)
	}

	if l, err := s.src.Load(ctx); err == nil {
		st.Load = l
	} else {
		s.log.Debug("load average: %v", err)
	}

	if up, err := s.src.Uptime(ctx); err == nil {
		st.Uptime = up
	} else {
		s.log.Debug("uptime: %v", err)
	}

	s.samples++
	s.last = st
	return st
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
