//go:build !linux

package process

import (
	"context"

	"github.com/rileyhilliard/pstop/internal/errors"
	"github.com/shirou/gopsutil/v4/process"
)

func privateBytes(_ context.Context, _ *process.Process) (uint64, error) {
	return 0, errors.ErrUnsupported
}

func threadName(_, _ int32) string {
	return ""
}
