package gpu

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	perrors "github.com/rileyhilliard/pstop/internal/errors"
)

// CounterSource supplies raw GPU counters.
type CounterSource interface {
	// Open prepares the source. A failure disables GPU sampling.
	Open(ctx context.Context) error
	// Collect reads one set of counters.
	Collect(ctx context.Context) (CounterSet, error)
	// AdapterName returns the primary adapter's display name.
	AdapterName(ctx context.Context) (string, error)
}

// DefaultSource returns the counter source for the running platform.
func DefaultSource() CounterSource {
	switch runtime.GOOS {
	case "windows":
		return NewPowerShellSource()
	case "linux":
		return NewPmonSource()
	default:
		return unavailableSource{}
	}
}

type unavailableSource struct{}

func (unavailableSource) Open(context.Context) error {
	return fmt.Errorf("gpu counters: %w", perrors.ErrUnsupported)
}

func (unavailableSource) Collect(context.Context) (CounterSet, error) {
	return CounterSet{}, perrors.ErrUnsupported
}

func (unavailableSource) AdapterName(context.Context) (string, error) {
	return "", perrors.ErrUnsupported
}

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// PmonSource reads per-process usage from nvidia-smi.
type PmonSource struct {
	path string
	run  runner
}

// NewPmonSource creates a source backed by `nvidia-smi pmon`.
func NewPmonSource() *PmonSource {
	return &PmonSource{run: execRunner}
}

// Open locates nvidia-smi and checks that it can see a device.
func (s *PmonSource) Open(ctx context.Context) error {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return fmt.Errorf("nvidia-smi not found: %w", perrors.ErrUnsupported)
	}
	if _, err := s.run(ctx, path, "-L"); err != nil {
		return err
	}
	s.path = path
	return nil
}

// Collect runs one pmon sample.
func (s *PmonSource) Collect(ctx context.Context) (CounterSet, error) {
	out, err := s.run(ctx, s.path, "pmon", "-c", "1", "-s", "um")
	if err != nil {
		return CounterSet{}, err
	}
	return ParsePmon(string(out))
}

// AdapterName returns the first GPU's product name.
func (s *PmonSource) AdapterName(ctx context.Context) (string, error) {
	out, err := s.run(ctx, s.path, "--query-gpu=name", "--format=csv,noheader")
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}

const counterScript = `(Get-Counter -Counter @('\GPU Engine(*)\Utilization Percentage','\GPU Process Memory(*)\Dedicated Usage','\GPU Process Memory(*)\Shared Usage') -MaxSamples 1 -ErrorAction SilentlyContinue).CounterSamples | ForEach-Object { "$($_.Path);$($_.CookedValue)" }`

const adapterScript = `(Get-CimInstance Win32_VideoController | Select-Object -First 1).Name`

// PowerShellSource reads the GPU Engine and GPU Process Memory performance
// counters through Get-Counter.
type PowerShellSource struct {
	path string
	run  runner
}

// NewPowerShellSource creates a source backed by PowerShell Get-Counter.
func NewPowerShellSource() *PowerShellSource {
	return &PowerShellSource{run: execRunner}
}

// Open checks that the GPU Engine counter set exists.
func (s *PowerShellSource) Open(ctx context.Context) error {
	path, err := exec.LookPath("powershell")
	if err != nil {
		return fmt.Errorf("powershell not found: %w", perrors.ErrUnsupported)
	}
	if _, err := s.run(ctx, path, "-NoProfile", "-Command", "Get-Counter -ListSet 'GPU Engine' -ErrorAction Stop | Out-Null"); err != nil {
		return err
	}
	s.path = path
	return nil
}

// Collect reads all three counters in one PowerShell invocation.
func (s *PowerShellSource) Collect(ctx context.Context) (CounterSet, error) {
	out, err := s.run(ctx, s.path, "-NoProfile", "-Command", counterScript)
	if err != nil {
		return CounterSet{}, err
	}
	return ParseCounterOutput(string(out)), nil
}

// AdapterName returns the first video controller's name.
func (s *PowerShellSource) AdapterName(ctx context.Context) (string, error) {
	out, err := s.run(ctx, s.path, "-NoProfile", "-Command", adapterScript)
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
