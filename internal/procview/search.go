package procview

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/pstop/internal/process"
)

// Matches reports whether query is a case-insensitive substring of the
// record's name or command line. An all-digit query also matches pids
// that start with it.
func Matches(r process.Record, query string) bool {
	if isNumeric(query) && strings.HasPrefix(strconv.FormatInt(int64(r.PID), 10), query) {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Command), q)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SearchNext scans forward from from+1, wrapping once, for the next match.
func SearchNext(records []process.Record, from int, query string) (int, bool) {
	n := len(records)
	if query == "" || n == 0 {
		return from, false
	}
	for off := 0; off < n; off++ {
		i := mod(from+1+off, n)
		if Matches(records[i], query) {
			return i, true
		}
	}
	return from, false
}

// SearchPrev scans backward from from-1, wrapping once.
func SearchPrev(records []process.Record, from int, query string) (int, bool) {
	n := len(records)
	if query == "" || n == 0 {
		return from, false
	}
	for off := 0; off < n; off++ {
		i := mod(from-1-off, n)
		if Matches(records[i], query) {
			return i, true
		}
	}
	return from, false
}

// SearchFirst returns the first match from the top.
func SearchFirst(records []process.Record, query string) (int, bool) {
	if query == "" {
		return 0, false
	}
	for i, r := range records {
		if Matches(r, query) {
			return i, true
		}
	}
	return 0, false
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Subtree returns pid and every descendant reachable through the parent
// links in records, breadth first. Each pid appears once even if the
// parent graph has cycles.
func Subtree(records []process.Record, pid int32) []int32 {
	children := make(map[int32][]int32, len(records))
	for _, r := range records {
		children[r.PPID] = append(children[r.PPID], r.PID)
	}

	out := []int32{pid}
	visited := map[int32]struct{}{pid: {}}
	for i := 0; i < len(out); i++ {
		for _, c := range children[out[i]] {
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Users returns the distinct owners in records, sorted case-insensitively.
func Users(records []process.Record) []string {
	seen := make(map[string]struct{})
	var users []string
	for _, r := range records {
		if r.User == "" {
			continue
		}
		if _, ok := seen[r.User]; ok {
			continue
		}
		seen[r.User] = struct{}{}
		users = append(users, r.User)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i]) < strings.ToLower(users[j])
	})
	return users
}
