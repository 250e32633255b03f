package scc

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sliceGraph is adjacency backed by a slice of edge lists.
type sliceGraph [][]int32

func (g sliceGraph) NumNodes() int32           { return int32(len(g)) }
func (g sliceGraph) Neighbors(n int32) []int32 { return g[n] }

// normalize sorts each component and the component list so tests do not
// depend on the traversal order.
func normalize(comps [][]int32) [][]int32 {
	for _, c := range comps {
		sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

func TestComponents(t *testing.T) {
	tests := []struct {
		name  string
		graph sliceGraph
		want  [][]int32
	}{
		{
			name:  "empty graph",
			graph: sliceGraph{},
			want:  nil,
		},
		{
			name:  "no edges",
			graph: sliceGraph{nil, nil, nil},
			want:  [][]int32{{0}, {1}, {2}},
		},
		{
			name:  "two-cycle",
			graph: sliceGraph{{1}, {0}},
			want:  [][]int32{{0, 1}},
		},
		{
			name: "cycle plus tail",
			// 0 -> 1 -> 2 -> 0, 2 -> 3
			graph: sliceGraph{{1}, {2}, {0, 3}, nil},
			want:  [][]int32{{0, 1, 2}, {3}},
		},
		{
			name: "two components linked",
			// {0,1} -> {2,3}
			graph: sliceGraph{{1}, {0, 2}, {3}, {2}},
			want:  [][]int32{{0, 1}, {2, 3}},
		},
		{
			name:  "self loop",
			graph: sliceGraph{{0}},
			want:  [][]int32{{0}},
		},
	}
	for _, tt := range tests {
		got := normalize(Components(tt.graph))
		want := normalize(tt.want)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: components mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestComponentsReverseTopologicalOrder(t *testing.T) {
	// Every edge between distinct components must go from a component
	// emitted later to one emitted earlier.
	g := sliceGraph{{1}, {2}, {0, 3}, {4}, {3, 5}, nil}
	comps := Components(g)
	pos := make(map[int32]int)
	for i, comp := range comps {
		for _, n := range comp {
			pos[n] = i
		}
	}
	for n, succs := range g {
		for _, m := range succs {
			if pos[int32(n)] < pos[m] {
				t.Errorf("edge %d->%d goes from component %d to later component %d", n, m, pos[int32(n)], pos[m])
			}
		}
	}
}
