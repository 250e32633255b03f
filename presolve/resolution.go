package presolve

import "github.com/crillab/gopresolve/solver"

// simplifyResult classifies the outcome of comparing two sorted clauses.
type simplifyResult int

const (
	// simplifyNo means a does not subsume b and is not a self-subsuming
	// resolvent against it.
	simplifyNo simplifyResult = iota
	// simplifySubsumes means every literal of a is in b, so b is redundant.
	simplifySubsumes
	// simplifySSR means a differs from b in exactly one literal, of
	// opposite polarity; that literal (named pivot in the return value)
	// has already been removed from b.
	simplifySSR
)

// simplifyClause compares sorted, duplicate-free clauses a and *b. It
// returns simplifySubsumes if a subsumes *b, simplifySSR(pivot) if a is
// a self-subsuming resolvent that strengthens *b by removing pivot
// (already done in place, shrinking *b), or simplifyNo otherwise. *b is
// mutated only in the SSR case; it is a pointer so the caller's clause
// store sees the shrunk length.
func simplifyClause(a []solver.Lit, b *[]solver.Lit) (simplifyResult, solver.Lit) {
	if len(a) > len(*b) {
		return simplifyNo, 0
	}
	var pivot solver.Lit = -1
	foundOpposite := false
	i, j := 0, 0
	for i < len(a) {
		if len(*b)-j < len(a)-i {
			return simplifyNo, 0
		}
		if j >= len(*b) {
			return simplifyNo, 0
		}
		switch {
		case a[i] == (*b)[j]:
			i++
			j++
		case a[i] == (*b)[j].Negation():
			if foundOpposite {
				return simplifyNo, 0
			}
			foundOpposite = true
			pivot = (*b)[j]
			i++
			j++
		case a[i] < (*b)[j]:
			return simplifyNo, 0
		default: // a[i] > (*b)[j]: advance b only
			j++
		}
	}
	if !foundOpposite {
		return simplifySubsumes, 0
	}
	removeLit(b, pivot)
	return simplifySSR, pivot
}

// removeLit deletes the single occurrence of lit from the sorted slice
// pointed to by s, shifting later elements down. s is shrunk in place;
// the caller's backing array is reused (no allocation).
func removeLit(s *[]solver.Lit, lit solver.Lit) {
	lits := *s
	for i, l := range lits {
		if l == lit {
			copy(lits[i:], lits[i+1:])
			*s = lits[:len(lits)-1]
			return
		}
	}
}

// computeResolvantSize returns the size of the resolvent of a and b on
// pivot x (x must appear in a and its negation in b), or -1 if the
// resolvent is trivially true because some
// non-pivot variable appears with both polarities across a and b.
func computeResolvantSize(x solver.Lit, a, b []solver.Lit) int {
	notX := x.Negation()
	size := 0
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		la, lb := peek(a, i), peek(b, j)
		switch {
		case la == x:
			i++
		case lb == notX:
			j++
		case la == maxLit:
			size++
			j++
		case lb == maxLit:
			size++
			i++
		case la == lb:
			size++
			i++
			j++
		case la == lb.Negation():
			return -1 // trivially true: both polarities of a non-pivot var present
		case la < lb:
			size++
			i++
		default:
			size++
			j++
		}
	}
	return size
}

const maxLit = solver.Lit(1<<31 - 1)

func peek(lits []solver.Lit, i int) solver.Lit {
	if i < len(lits) {
		return lits[i]
	}
	return maxLit
}

// computeResolvant builds the sorted, duplicate-free resolvent of a and b
// on pivot x into out (truncating/reusing its backing array), returning
// false when the resolvent is trivially true, in which case out's
// contents are unspecified.
func computeResolvant(x solver.Lit, a, b []solver.Lit, out []solver.Lit) ([]solver.Lit, bool) {
	notX := x.Negation()
	out = out[:0]
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		la, lb := peek(a, i), peek(b, j)
		switch {
		case la == x:
			i++
		case lb == notX:
			j++
		case la == maxLit:
			out = append(out, lb)
			j++
		case lb == maxLit:
			out = append(out, la)
			i++
		case la == lb:
			out = append(out, la)
			i++
			j++
		case la == lb.Negation():
			return out, false
		case la < lb:
			out = append(out, la)
			i++
		default:
			out = append(out, lb)
			j++
		}
	}
	return out, true
}
