package netstat

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// Protocol is the transport of a connection.
type Protocol int

const (
	TCP Protocol = iota
	UDP
)

func (p Protocol) String() string {
	if p == UDP {
		return "UDP"
	}
	return "TCP"
}

// StateEstablished is the TCP state string reported for open connections.
const StateEstablished = "ESTABLISHED"

// Endpoint is one side of a connection.
type Endpoint struct {
	IP   string
	Port uint32
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP, strconv.FormatUint(uint64(e.Port), 10))
}

// Connection is a socket with its owning process.
type Connection struct {
	Protocol Protocol
	Local    Endpoint
	Remote   Endpoint
	State    string // TCP only
	PID      int32
}

// Key identifies a connection across ticks.
type Key struct {
	Protocol Protocol
	Local    string
	Remote   string
}

// Key returns the identity of the connection.
func (c Connection) Key() Key {
	return Key{Protocol: c.Protocol, Local: c.Local.String(), Remote: c.Remote.String()}
}

// Established reports whether c is an open TCP connection.
func (c Connection) Established() bool {
	return c.Protocol == TCP && c.State == StateEstablished
}

// Enumerator lists the current connection table.
type Enumerator interface {
	Connections(ctx context.Context) ([]Connection, error)
}

// GopsutilEnumerator lists TCP and UDP sockets for IPv4 and IPv6 through gopsutil.
type GopsutilEnumerator struct{}

// NewGopsutilEnumerator creates a gopsutil-backed enumerator.
func NewGopsutilEnumerator() *GopsutilEnumerator {
	return &GopsutilEnumerator{}
}

func (GopsutilEnumerator) Connections(ctx context.Context) ([]Connection, error) {
	stats, err := gnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	out := make([]Connection, 0, len(stats))
	for _, s := range stats {
		c, ok := fromStat(s)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func fromStat(s gnet.ConnectionStat) (Connection, bool) {
	c := Connection{
		Local:  Endpoint{IP: s.Laddr.IP, Port: s.Laddr.Port},
		Remote: Endpoint{IP: s.Raddr.IP, Port: s.Raddr.Port},
		PID:    s.Pid,
	}
	switch s.Type {
	case syscall.SOCK_STREAM:
		c.Protocol = TCP
		c.State = s.Status
	case syscall.SOCK_DGRAM:
		c.Protocol = UDP
	default:
		return Connection{}, false
	}
	return c, true
}
