package procview

import (
	"math"
	"slices"
	"strings"

	"github.com/rileyhilliard/pstop/internal/process"
)

// DefaultKernelMarkers are the user-name fragments hidden by hide-kernel.
var DefaultKernelMarkers = []string{"system", "nt authority"}

// Criteria selects which records survive Filter.
type Criteria struct {
	// Query is a `|` separated list of OR-terms matched against name and
	// command line. Empty keeps everything.
	Query string
	// User keeps only records owned by this user (case-insensitive).
	User string
	// HideKernel drops records whose user contains any KernelMarkers entry.
	HideKernel    bool
	KernelMarkers []string
}

// Filter returns the records matching c, in their original order.
func Filter(records []process.Record, c Criteria) []process.Record {
	user := strings.ToLower(c.User)

	var terms []string
	for _, t := range strings.Split(strings.ToLower(c.Query), "|") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	hasQuery := c.Query != ""

	markers := make([]string, 0, len(c.KernelMarkers))
	for _, m := range c.KernelMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}

	out := make([]process.Record, 0, len(records))
	for _, r := range records {
		if user != "" && strings.ToLower(r.User) != user {
			continue
		}
		if c.HideKernel && containsAny(strings.ToLower(r.User), markers) {
			continue
		}
		if hasQuery && !matchesAny(r, terms) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func matchesAny(r process.Record, terms []string) bool {
	name := strings.ToLower(r.Name)
	cmd := strings.ToLower(r.Command)
	for _, t := range terms {
		if strings.Contains(name, t) || strings.Contains(cmd, t) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of records. Descending order reverses
// the comparator, so equal keys keep their input order in both directions.
func Sort(records []process.Record, field SortField, ascending bool) []process.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b process.Record) int {
		c := Compare(a, b, field)
		if ascending {
			return c
		}
		return -c
	})
	return out
}

// Compare orders two records by field in ascending order.
func Compare(a, b process.Record, field SortField) int {
	switch field {
	case FieldPID:
		return compareOrdered(a.PID, b.PID)
	case FieldPPID:
		return compareOrdered(a.PPID, b.PPID)
	case FieldUser:
		return compareFold(a.User, b.User)
	case FieldPriority:
		return compareOrdered(a.Priority, b.Priority)
	case FieldNice:
		return compareOrdered(a.Nice, b.Nice)
	case FieldVirt:
		return compareOrdered(a.VirtBytes, b.VirtBytes)
	case FieldRes:
		return compareOrdered(a.ResBytes, b.ResBytes)
	case FieldShared:
		return compareOrdered(a.SharedBytes, b.SharedBytes)
	case FieldStatus:
		return compareOrdered(a.Status, b.Status)
	case FieldCPU:
		return compareFloat(a.CPUPercent, b.CPUPercent)
	case FieldMem:
		return compareFloat(a.MemPercent, b.MemPercent)
	case FieldTime:
		return compareOrdered(a.RunTime, b.RunTime)
	case FieldThreads:
		return compareOrdered(a.Threads, b.Threads)
	case FieldIORead:
		return compareFloat(a.IOReadRate, b.IOReadRate)
	case FieldIOWrite:
		return compareFloat(a.IOWriteRate, b.IOWriteRate)
	case FieldIO:
		return compareFloat(a.IORate(), b.IORate())
	case FieldCommand:
		return compareFold(a.Name, b.Name)
	default:
		return 0
	}
}

type ordered interface {
	~int | ~int32 | ~int64 | ~uint64 | ~float64
}

func compareOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareFloat treats NaN as equal to everything.
func compareFloat(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	return compareOrdered(a, b)
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// BuildTree reorders records into depth-first preorder. A record is a root
// when its parent pid is 0 or not present in records. Roots and siblings
// keep their input order. Depth and IsLastChild are set on the returned
// copies. Descendants of a collapsed pid are omitted from the output.
//
// Records that no root reaches (a parent cycle) are promoted to roots in
// input order so every record stays in the tree.
func BuildTree(records []process.Record, collapsed map[int32]struct{}) []process.Record {
	index := make(map[int32]int, len(records))
	for i, r := range records {
		if _, dup := index[r.PID]; !dup {
			index[r.PID] = i
		}
	}

	children := make(map[int32][]int, len(records))
	var roots []int
	for i, r := range records {
		if _, ok := index[r.PPID]; r.PPID == 0 || !ok {
			roots = append(roots, i)
			continue
		}
		children[r.PPID] = append(children[r.PPID], i)
	}

	reached := make([]bool, len(records))
	markReached := func(start int) {
		queue := []int{start}
		reached[start] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			for _, c := range children[records[i].PID] {
				if !reached[c] {
					reached[c] = true
					queue = append(queue, c)
				}
			}
		}
	}
	for _, i := range roots {
		markReached(i)
	}
	for i := range records {
		if !reached[i] {
			roots = append(roots, i)
			markReached(i)
		}
	}

	out := make([]process.Record, 0, len(records))
	visited := make([]bool, len(records))

	var walk func(i, depth int, last bool)
	walk = func(i, depth int, last bool) {
		visited[i] = true
		r := records[i]
		r.Depth = depth
		r.IsLastChild = last
		out = append(out, r)

		if _, folded := collapsed[r.PID]; folded {
			return
		}
		kids := unvisited(children[r.PID], visited)
		for n, c := range kids {
			if !visited[c] {
				walk(c, depth+1, n == len(kids)-1)
			}
		}
	}

	for n, i := range roots {
		if !visited[i] {
			walk(i, 0, n == len(roots)-1)
		}
	}
	return out
}

func unvisited(idx []int, visited []bool) []int {
	out := idx[:0:0]
	for _, i := range idx {
		if !visited[i] {
			out = append(out, i)
		}
	}
	return out
}
