//go:build linux

package netstat

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/pstop/internal/errors"
	"golang.org/x/sys/unix"
)

const recvBufSize = 1 << 16

// InetDiagCounter reads tcp_info byte counters for every established TCP
// socket through a NETLINK_SOCK_DIAG dump. The kernel keeps these counters
// unconditionally, so Enable only reports whether the last dump worked.
type InetDiagCounter struct {
	counters map[Key]Counters
	lastErr  error
	seq      uint32
}

// NewInetDiagCounter creates a sock_diag byte counter.
func NewInetDiagCounter() (*InetDiagCounter, error) {
	return &InetDiagCounter{
		counters: make(map[Key]Counters),
		lastErr:  fmt.Errorf("byte counters not loaded"),
	}, nil
}

// Refresh dumps both address families and replaces the counter table.
func (d *InetDiagCounter) Refresh(ctx context.Context) error {
	next := make(map[Key]Counters, len(d.counters))
	for _, family := range []uint8{afInet, afInet6} {
		records, err := d.dump(ctx, family)
		if err != nil {
			d.lastErr = err
			return err
		}
		for _, r := range records {
			if r.HasInfo {
				next[r.Key()] = r.Counters
			}
		}
	}
	d.counters = next
	d.lastErr = nil
	return nil
}

func (d *InetDiagCounter) Enable(_ Connection) error {
	return d.lastErr
}

func (d *InetDiagCounter) Read(c Connection) (Counters, error) {
	v, ok := d.counters[c.Key()]
	if !ok {
		return Counters{}, fmt.Errorf("connection %s -> %s: %w", c.Local, c.Remote, errors.ErrNotFound)
	}
	return v, nil
}

func (d *InetDiagCounter) dump(ctx context.Context, family uint8) ([]DiagRecord, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_SOCK_DIAG)
	if err != nil {
		return nil, fmt.Errorf("open sock_diag socket: %w", err)
	}
	defer unix.Close(fd)

	tv := unix.Timeval{Sec: 1}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return nil, fmt.Errorf("set sock_diag timeout: %w", err)
	}

	d.seq++
	req := EncodeInetDiagRequest(family, d.seq)
	if err := unix.Sendto(fd, req, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return nil, fmt.Errorf("send sock_diag request: %w", err)
	}

	var out []DiagRecord
	buf := make([]byte, recvBufSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, _, err := unix.Recvfrom(fd, buf, 0)
		if err != nil {
			return nil, fmt.Errorf("receive sock_diag reply: %w", err)
		}
		records, done, err := DecodeInetDiag(buf[:n])
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
		if done {
			return out, nil
		}
	}
}
