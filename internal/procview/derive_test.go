package procview

import (
	"math"
	"testing"

	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	records := []process.Record{
		{PID: 1, Name: "systemd", Command: "/sbin/init", User: "root"},
		{PID: 2, Name: "nginx", Command: "nginx: master process", User: "www-data"},
		{PID: 3, Name: "bash", Command: "-bash", User: "Alice"},
		{PID: 4, Name: "svchost.exe", Command: "svchost -k netsvcs", User: "NT AUTHORITY\\SYSTEM"},
		{PID: 5, Name: "python3", Command: "python3 serve.py", User: "alice"},
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []int32
	}{
		{name: "empty criteria keeps all", want: []int32{1, 2, 3, 4, 5}},
		{name: "name substring", criteria: Criteria{Query: "NGINX"}, want: []int32{2}},
		{name: "command substring", criteria: Criteria{Query: "serve"}, want: []int32{5}},
		{name: "or terms", criteria: Criteria{Query: "bash | python"}, want: []int32{3, 5}},
		{name: "blank terms ignored", criteria: Criteria{Query: "bash||  "}, want: []int32{3}},
		{name: "only separators matches nothing", criteria: Criteria{Query: " | "}, want: []int32{}},
		{name: "whitespace query matches nothing", criteria: Criteria{Query: "   "}, want: []int32{}},
		{name: "user case-insensitive", criteria: Criteria{User: "ALICE"}, want: []int32{3, 5}},
		{
			name:     "hide kernel markers",
			criteria: Criteria{HideKernel: true, KernelMarkers: DefaultKernelMarkers},
			want:     []int32{1, 2, 3, 5},
		},
		{
			name:     "hide kernel with custom marker",
			criteria: Criteria{HideKernel: true, KernelMarkers: []string{"root"}},
			want:     []int32{2, 3, 4, 5},
		},
		{
			name:     "combined",
			criteria: Criteria{User: "alice", Query: "py"},
			want:     []int32{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.criteria)
			assert.Equal(t, tt.want, pids(got))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	records := []process.Record{rec(1, 0, "svc"), rec(2, 1, "svc-worker"), rec(3, 0, "other"), rec(4, 3, "svcctl")}
	c := Criteria{Query: "svc|oth", HideKernel: true, KernelMarkers: DefaultKernelMarkers}

	once := Filter(records, c)
	twice := Filter(once, c)
	assert.Equal(t, once, twice)
}

func TestSort(t *testing.T) {
	records := []process.Record{
		{PID: 3, Name: "beta", User: "bob", CPUPercent: 10, ResBytes: 300},
		{PID: 1, Name: "Alpha", User: "Alice", CPUPercent: 50, ResBytes: 100},
		{PID: 2, Name: "gamma", User: "carol", CPUPercent: 10, ResBytes: 200},
	}

	tests := []struct {
		name      string
		field     SortField
		ascending bool
		want      []int32
	}{
		{name: "pid ascending", field: FieldPID, ascending: true, want: []int32{1, 2, 3}},
		{name: "pid descending", field: FieldPID, want: []int32{3, 2, 1}},
		{name: "cpu descending keeps tie order", field: FieldCPU, want: []int32{1, 3, 2}},
		{name: "cpu ascending keeps tie order", field: FieldCPU, ascending: true, want: []int32{3, 2, 1}},
		{name: "command case-insensitive", field: FieldCommand, ascending: true, want: []int32{1, 3, 2}},
		{name: "user case-insensitive", field: FieldUser, ascending: true, want: []int32{1, 3, 2}},
		{name: "res descending", field: FieldRes, want: []int32{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(records, tt.field, tt.ascending)
			assert.Equal(t, tt.want, pids(got))
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	records := []process.Record{rec(2, 0, "b"), rec(1, 0, "a")}
	Sort(records, FieldPID, true)
	assert.Equal(t, []int32{2, 1}, pids(records))
}

func TestSort_Idempotent(t *testing.T) {
	records := []process.Record{
		{PID: 1, CPUPercent: 5},
		{PID: 2, CPUPercent: 5},
		{PID: 3, CPUPercent: 9},
		{PID: 4, CPUPercent: 1},
	}
	for _, f := range Fields() {
		once := Sort(records, f, false)
		assert.Equal(t, once, Sort(once, f, false), f.String())
	}
}

func TestSort_DoubleToggleRestoresOrder(t *testing.T) {
	records := []process.Record{
		{PID: 4, CPUPercent: 1.5},
		{PID: 1, CPUPercent: 9},
		{PID: 3, CPUPercent: 3},
		{PID: 2, CPUPercent: 7},
	}
	desc := Sort(records, FieldCPU, false)
	asc := Sort(desc, FieldCPU, true)
	again := Sort(asc, FieldCPU, false)
	assert.Equal(t, pids(desc), pids(again))
}

func TestSort_NaNIsEqual(t *testing.T) {
	records := []process.Record{
		{PID: 1, CPUPercent: 3},
		{PID: 2, CPUPercent: math.NaN()},
		{PID: 3, CPUPercent: 1},
	}
	assert.NotPanics(t, func() { Sort(records, FieldCPU, false) })
	assert.Equal(t, 0, Compare(records[0], records[1], FieldCPU))
	assert.Equal(t, 0, Compare(records[1], records[2], FieldCPU))
}

func TestBuildTree_Scenario(t *testing.T) {
	records := []process.Record{rec(1, 0, "svc"), rec(2, 1, "svc-worker"), rec(3, 0, "other")}

	filtered := Filter(records, Criteria{Query: "svc"})
	require.Equal(t, []int32{1, 2}, pids(filtered))

	tree := BuildTree(filtered, nil)
	require.Len(t, tree, 2)
	assert.Equal(t, int32(1), tree[0].PID)
	assert.Equal(t, 0, tree[0].Depth)
	assert.Equal(t, int32(2), tree[1].PID)
	assert.Equal(t, 1, tree[1].Depth)
	assert.True(t, tree[1].IsLastChild)
}

func TestBuildTree_ParentBeforeDescendants(t *testing.T) {
	records := []process.Record{
		rec(7, 3, "g"),
		rec(5, 1, "e"),
		rec(3, 1, "c"),
		rec(1, 0, "a"),
		rec(9, 3, "i"),
		rec(4, 2, "orphan"),
		rec(8, 5, "h"),
	}

	tree := BuildTree(records, nil)
	require.Len(t, tree, len(records))

	pos := make(map[int32]int)
	for i, r := range tree {
		pos[r.PID] = i
	}
	for _, r := range tree {
		if parent, ok := pos[r.PPID]; ok {
			assert.Less(t, parent, pos[r.PID], "parent %d before %d", r.PPID, r.PID)
			assert.Equal(t, tree[parent].Depth+1, r.Depth)
		}
	}

	lastChildren := make(map[int32]int)
	for _, r := range tree {
		if r.IsLastChild && r.Depth > 0 {
			lastChildren[r.PPID]++
		}
	}
	for _, parent := range []int32{1, 3, 5} {
		assert.Equal(t, 1, lastChildren[parent], "parent %d", parent)
	}

	// orphan (parent 2 absent) is a root
	assert.Equal(t, 0, tree[pos[4]].Depth)
}

func TestBuildTree_SiblingOrderFollowsInput(t *testing.T) {
	records := []process.Record{rec(1, 0, "root"), rec(30, 1, "c"), rec(10, 1, "a"), rec(20, 1, "b")}
	tree := BuildTree(records, nil)
	assert.Equal(t, []int32{1, 30, 10, 20}, pids(tree))
	assert.True(t, tree[3].IsLastChild)
	assert.False(t, tree[1].IsLastChild)
}

func TestBuildTree_Collapsed(t *testing.T) {
	records := []process.Record{rec(1, 0, "a"), rec(2, 1, "b"), rec(3, 2, "c"), rec(4, 0, "d")}
	tree := BuildTree(records, map[int32]struct{}{2: {}})
	assert.Equal(t, []int32{1, 2, 4}, pids(tree))
	assert.Equal(t, int32(3), records[2].PID, "input untouched")
}

func TestBuildTree_CycleKeepsEveryRecord(t *testing.T) {
	records := []process.Record{rec(1, 0, "root"), rec(2, 3, "x"), rec(3, 2, "y"), rec(4, 4, "self")}
	tree := BuildTree(records, nil)
	assert.ElementsMatch(t, []int32{1, 2, 3, 4}, pids(tree))
}
