package presolve

import (
	"sort"
	"testing"

	"github.com/crillab/gopresolve/solver"
)

// lits builds a sorted clause from CNF-style integers.
func lits(vals ...int) []solver.Lit {
	res := make([]solver.Lit, len(vals))
	for i, v := range vals {
		res[i] = solver.IntToLit(int32(v))
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func sameLits(a, b []solver.Lit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSimplifyClause(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []solver.Lit
		want      simplifyResult
		wantPivot []int // CNF value of the removed pivot, if any
		wantB     []int // b's content after the call
	}{
		{name: "subsumes", a: lits(1, 2), b: lits(1, 2, 3), want: simplifySubsumes, wantB: []int{1, 2, 3}},
		{name: "equal clauses subsume", a: lits(1, 2), b: lits(1, 2), want: simplifySubsumes, wantB: []int{1, 2}},
		{name: "ssr", a: lits(-1, 2), b: lits(1, 2, 3), want: simplifySSR, wantPivot: []int{1}, wantB: []int{2, 3}},
		{name: "ssr on last lit", a: lits(1, -3), b: lits(1, 2, 3), want: simplifySSR, wantPivot: []int{3}, wantB: []int{1, 2}},
		{name: "two opposites", a: lits(-1, -2), b: lits(1, 2, 3), want: simplifyNo, wantB: []int{1, 2, 3}},
		{name: "a not included", a: lits(1, 4), b: lits(1, 2, 3), want: simplifyNo, wantB: []int{1, 2, 3}},
		{name: "a longer than b", a: lits(1, 2, 3), b: lits(1, 2), want: simplifyNo, wantB: []int{1, 2}},
		{name: "unit subsumes", a: lits(2), b: lits(1, 2, 3), want: simplifySubsumes, wantB: []int{1, 2, 3}},
		{name: "unit ssr", a: lits(-2), b: lits(1, 2), want: simplifySSR, wantPivot: []int{2}, wantB: []int{1}},
	}
	for _, tt := range tests {
		b := append([]solver.Lit(nil), tt.b...)
		res, pivot := simplifyClause(tt.a, &b)
		if res != tt.want {
			t.Errorf("%s: simplifyClause answered %d, want %d", tt.name, res, tt.want)
			continue
		}
		if res == simplifySSR && pivot != lits(tt.wantPivot[0])[0] {
			t.Errorf("%s: pivot is %d, want %d", tt.name, pivot.Int(), tt.wantPivot[0])
		}
		if !sameLits(b, lits(tt.wantB...)) {
			t.Errorf("%s: b is %v after the call, want %v", tt.name, b, lits(tt.wantB...))
		}
	}
}

func TestComputeResolvant(t *testing.T) {
	tests := []struct {
		name    string
		pivot   int
		a, b    []solver.Lit
		want    []int // expected resolvent; unused when trivial is set
		trivial bool
	}{
		{name: "basic", pivot: 1, a: lits(1, 2), b: lits(-1, 3), want: []int{2, 3}},
		{name: "shared lit deduplicated", pivot: 1, a: lits(1, 2), b: lits(-1, 2, 3), want: []int{2, 3}},
		{name: "trivially true", pivot: 1, a: lits(1, 2), b: lits(-1, -2), trivial: true},
		{name: "units resolve to empty", pivot: 1, a: lits(1), b: lits(-1), want: []int{}},
		{name: "negative pivot", pivot: -2, a: lits(-2, 3), b: lits(2, 4), want: []int{3, 4}},
	}
	for _, tt := range tests {
		pivot := solver.IntToLit(int32(tt.pivot))
		size := computeResolvantSize(pivot, tt.a, tt.b)
		out, ok := computeResolvant(pivot, tt.a, tt.b, nil)
		if tt.trivial {
			if size != -1 || ok {
				t.Errorf("%s: expected trivially true resolvent, got size %d, ok %v", tt.name, size, ok)
			}
			continue
		}
		if !ok {
			t.Errorf("%s: unexpected trivially true resolvent", tt.name)
			continue
		}
		if !sameLits(out, lits(tt.want...)) {
			t.Errorf("%s: resolvent is %v, want %v", tt.name, out, lits(tt.want...))
		}
		if size != len(out) {
			t.Errorf("%s: computeResolvantSize answered %d but resolvent has %d lits", tt.name, size, len(out))
		}
		for i := 1; i < len(out); i++ {
			if out[i-1] >= out[i] {
				t.Errorf("%s: resolvent %v is not sorted", tt.name, out)
			}
		}
	}
}
