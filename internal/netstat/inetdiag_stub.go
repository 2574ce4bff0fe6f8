//go:build !linux

package netstat

import (
	"context"

	"github.com/rileyhilliard/pstop/internal/errors"
)

// InetDiagCounter is a placeholder on non-Linux platforms.
type InetDiagCounter struct{}

// NewInetDiagCounter fails because sock_diag is Linux only.
func NewInetDiagCounter() (*InetDiagCounter, error) {
	return nil, errors.ErrUnsupported
}

func (d *InetDiagCounter) Refresh(_ context.Context) error {
	return errors.ErrUnsupported
}

func (d *InetDiagCounter) Enable(_ Connection) error {
	return errors.ErrUnsupported
}

func (d *InetDiagCounter) Read(_ Connection) (Counters, error) {
	return Counters{}, errors.ErrUnsupported
}
