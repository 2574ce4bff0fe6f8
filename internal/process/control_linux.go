//go:build linux

package process

import (
	stderrors "errors"
	"os"
	"runtime"

	"github.com/rileyhilliard/pstop/internal/errors"
	"golang.org/x/sys/unix"
)

// The raw getpriority syscall returns 20 - nice so the result is never negative.
func getNice(pid int32) (int, error) {
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, int(pid))
	if err != nil {
		return 0, err
	}
	return 20 - prio, nil
}

func setNice(pid int32, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(pid), nice)
}

func getAffinity(pid int32) ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(int(pid), &set); err != nil {
		return nil, err
	}
	var cpus []int
	for i := 0; i < runtime.NumCPU(); i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}

func setAffinity(pid int32, cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		set.Set(c)
	}
	return unix.SchedSetaffinity(int(pid), &set)
}

const ioprioWhoProcess = 1

func setIOPriority(pid int32, value int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOPRIO_SET, ioprioWhoProcess, uintptr(pid), uintptr(value))
	if errno != 0 {
		return errno
	}
	return nil
}

// classify maps OS errors onto the shared sentinels.
func classify(err error) error {
	switch {
	case stderrors.Is(err, unix.ESRCH), stderrors.Is(err, os.ErrProcessDone):
		return stderrors.Join(errors.ErrNotFound, err)
	case stderrors.Is(err, unix.EPERM), stderrors.Is(err, unix.EACCES):
		return stderrors.Join(errors.ErrPermission, err)
	default:
		return err
	}
}
