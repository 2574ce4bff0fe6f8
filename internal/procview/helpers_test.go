package procview

import "github.com/rileyhilliard/pstop/internal/process"

func rec(pid, ppid int32, name string) process.Record {
	return process.Record{PID: pid, PPID: ppid, Name: name, Command: "/usr/bin/" + name, User: "alice"}
}

func pids(records []process.Record) []int32 {
	out := make([]int32, len(records))
	for i, r := range records {
		out[i] = r.PID
	}
	return out
}
