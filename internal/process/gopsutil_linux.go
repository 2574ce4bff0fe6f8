//go:build linux

package process

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// privateBytes returns resident memory not shared with other processes.
func privateBytes(ctx context.Context, p *process.Process) (uint64, error) {
	ex, err := p.MemoryInfoExWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if ex.Shared >= ex.RSS {
		return 0, nil
	}
	return ex.RSS - ex.Shared, nil
}

func threadName(pid, tid int32) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/task/%d/comm", pid, tid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
