package netstat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnum struct {
	conns []Connection
	err   error
}

func (f *fakeEnum) Connections(context.Context) ([]Connection, error) {
	return f.conns, f.err
}

type fakeCounter struct {
	enableErr   error
	counters    map[Key]Counters
	enableCalls int
	readCalls   int
	refreshes   int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counters: make(map[Key]Counters)}
}

func (f *fakeCounter) Refresh(context.Context) error {
	f.refreshes++
	return nil
}

func (f *fakeCounter) Enable(Connection) error {
	f.enableCalls++
	return f.enableErr
}

func (f *fakeCounter) Read(c Connection) (Counters, error) {
	f.readCalls++
	v, ok := f.counters[c.Key()]
	if !ok {
		return Counters{}, errors.New("missing")
	}
	return v, nil
}

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func tcpConn(pid int32, lport, rport uint32) Connection {
	return Connection{
		Protocol: TCP,
		Local:    Endpoint{IP: "10.0.0.2", Port: lport},
		Remote:   Endpoint{IP: "1.2.3.4", Port: rport},
		State:    StateEstablished,
		PID:      pid,
	}
}

func TestTracker_CountsAndRates(t *testing.T) {
	a := tcpConn(100, 50000, 443)
	b := tcpConn(100, 50001, 443)
	listen := Connection{Protocol: TCP, Local: Endpoint{IP: "0.0.0.0", Port: 80}, State: "LISTEN", PID: 200}
	udp := Connection{Protocol: UDP, Local: Endpoint{IP: "0.0.0.0", Port: 53}, PID: 200}

	enum := &fakeEnum{conns: []Connection{a, b, listen, udp}}
	counter := newFakeCounter()
	counter.counters[a.Key()] = Counters{BytesIn: 1000, BytesOut: 100}
	counter.counters[b.Key()] = Counters{BytesIn: 0, BytesOut: 0}

	tr := NewTracker(enum, counter, nil)
	names := map[int32]string{100: "browser", 200: "dns"}

	first, err := tr.Collect(context.Background(), t0, names)
	require.NoError(t, err)
	assert.Equal(t, Enabled, tr.State())
	require.Len(t, first, 2)
	for _, pb := range first {
		assert.Equal(t, 0.0, pb.TotalRate(), "first observation is a baseline")
	}
	assert.Equal(t, 2, counter.enableCalls, "only established tcp is instrumented")

	counter.counters[a.Key()] = Counters{BytesIn: 3000, BytesOut: 300}
	counter.counters[b.Key()] = Counters{BytesIn: 1000, BytesOut: 0}
	second, err := tr.Collect(context.Background(), t0.Add(time.Second), names)
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, ProcessBandwidth{PID: 100, Name: "browser", DownloadRate: 3000, UploadRate: 200, Connections: 2}, second[0])
	assert.Equal(t, ProcessBandwidth{PID: 200, Name: "dns", Connections: 2}, second[1])
	assert.Equal(t, 2, counter.enableCalls, "enabled connections are not re-enabled")
	assert.Equal(t, 2, counter.refreshes)
}

func TestTracker_DowngradesOnFirstFailure(t *testing.T) {
	enum := &fakeEnum{conns: []Connection{tcpConn(100, 1, 2), tcpConn(100, 3, 4)}}
	counter := newFakeCounter()
	counter.enableErr = errors.New("operation not permitted")
	log := logger.NewBufferLogger()

	tr := NewTracker(enum, counter, log)
	out, err := tr.Collect(context.Background(), t0, nil)
	require.NoError(t, err)

	assert.Equal(t, Disabled, tr.State())
	assert.False(t, tr.HasBandwidthData())
	assert.Equal(t, 1, counter.enableCalls, "probing stops after the downgrade")
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Connections, "connection counts survive the downgrade")
	assert.True(t, log.HasLevel("info"))

	// Disabled is permanent even if the capability appears later.
	counter.enableErr = nil
	_, err = tr.Collect(context.Background(), t0.Add(time.Second), nil)
	require.NoError(t, err)
	assert.Equal(t, Disabled, tr.State())
	assert.Equal(t, 1, counter.enableCalls)
	assert.Equal(t, 1, counter.refreshes, "disabled tracker skips refresh")
}

func TestTracker_FailureAfterEnabledDoesNotDowngrade(t *testing.T) {
	first := tcpConn(100, 1, 2)
	enum := &fakeEnum{conns: []Connection{first}}
	counter := newFakeCounter()

	tr := NewTracker(enum, counter, nil)
	_, err := tr.Collect(context.Background(), t0, nil)
	require.NoError(t, err)
	require.Equal(t, Enabled, tr.State())

	counter.enableErr = errors.New("transient")
	enum.conns = append(enum.conns, tcpConn(100, 5, 6))
	_, err = tr.Collect(context.Background(), t0.Add(time.Second), nil)
	require.NoError(t, err)

	assert.Equal(t, Enabled, tr.State())
}

func TestTracker_PrunesClosedConnections(t *testing.T) {
	c := tcpConn(100, 1, 2)
	enum := &fakeEnum{conns: []Connection{c}}
	counter := newFakeCounter()
	counter.counters[c.Key()] = Counters{BytesIn: 5000}

	tr := NewTracker(enum, counter, nil)
	_, err := tr.Collect(context.Background(), t0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.rates.Len())
	assert.Len(t, tr.enabled, 1)

	enum.conns = nil
	_, err = tr.Collect(context.Background(), t0.Add(time.Second), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.rates.Len())
	assert.Empty(t, tr.enabled)

	// Same 4-tuple reopened: fresh baseline, no burst from stale counters.
	enum.conns = []Connection{c}
	counter.counters[c.Key()] = Counters{BytesIn: 900000}
	out, err := tr.Collect(context.Background(), t0.Add(2*time.Second), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0].DownloadRate)
}

func TestTracker_OmitsPidZeroAndNamesFallback(t *testing.T) {
	enum := &fakeEnum{conns: []Connection{tcpConn(0, 1, 2), tcpConn(4, 3, 4), tcpConn(77, 5, 6)}}
	tr := NewTracker(enum, nil, nil)

	out, err := tr.Collect(context.Background(), t0, map[int32]string{})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "System", out[0].Name)
	assert.Equal(t, "PID:77", out[1].Name)
	assert.Equal(t, Disabled, tr.State(), "nil counter is count-only")
}

func TestTracker_EnumerateError(t *testing.T) {
	tr := NewTracker(&fakeEnum{err: errors.New("no /proc/net")}, nil, nil)

	_, err := tr.Collect(context.Background(), t0, nil)

	assert.ErrorContains(t, err, "no /proc/net")
}

func TestSortBandwidth(t *testing.T) {
	list := []ProcessBandwidth{
		{PID: 3, Connections: 1},
		{PID: 2, DownloadRate: 10, Connections: 1},
		{PID: 5, Connections: 4},
		{PID: 1, Connections: 1},
		{PID: 4, UploadRate: 10, Connections: 9},
	}

	SortBandwidth(list)

	pids := make([]int32, len(list))
	for i, p := range list {
		pids[i] = p.PID
	}
	assert.Equal(t, []int32{4, 2, 5, 1, 3}, pids)
}

func TestConnection_KeyAndEstablished(t *testing.T) {
	c := Connection{
		Protocol: TCP,
		Local:    Endpoint{IP: "::1", Port: 22},
		Remote:   Endpoint{IP: "::1", Port: 50000},
		State:    StateEstablished,
	}

	assert.Equal(t, Key{Protocol: TCP, Local: "[::1]:22", Remote: "[::1]:50000"}, c.Key())
	assert.True(t, c.Established())

	c.Protocol = UDP
	assert.False(t, c.Established())
	assert.Equal(t, "UDP", c.Protocol.String())
}
