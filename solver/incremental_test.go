package solver

import "testing"

func TestResetAndSolveWithAssumptions(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 2}, {1, -2, 3}})
	s := New(pb)
	if status := s.ResetAndSolveWithAssumptions(nil); status != Sat {
		t.Fatalf("expected sat without assumptions, got %v", status)
	}
	if status := s.ResetAndSolveWithAssumptions([]Lit{IntToLit(-2)}); status != Unsat {
		t.Errorf("expected unsat under assumption -2, got %v", status)
	}
	// The solver must be reusable after an unsat assumption set.
	if status := s.ResetAndSolveWithAssumptions([]Lit{IntToLit(2)}); status != Sat {
		t.Errorf("expected sat under assumption 2, got %v", status)
	}
}

func TestGetLastIncompatibleDecisions(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2, 3}, {4, 5}})
	s := New(pb)
	assumps := []Lit{IntToLit(-1), IntToLit(-2), IntToLit(-3), IntToLit(-4)}
	if status := s.ResetAndSolveWithAssumptions(assumps); status != Unsat {
		t.Fatalf("expected unsat, got %v", status)
	}
	core := s.GetLastIncompatibleDecisions()
	if len(core) == 0 {
		t.Fatal("expected a non-empty core")
	}
	inCore := map[Lit]bool{}
	for _, lit := range core {
		found := false
		for _, a := range assumps {
			if a == lit {
				found = true
			}
		}
		if !found {
			t.Errorf("core literal %d is not an assumption", lit.Int())
		}
		inCore[lit] = true
	}
	// {4,5} is satisfiable under the assumptions, so -4 cannot be part
	// of a correct conflict explanation.
	if inCore[IntToLit(-4)] {
		t.Errorf("core %v mentions -4, which is unrelated to the conflict", core)
	}
}

func TestAddUnitClauseSurvivesReset(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {3, -1}})
	s := New(pb)
	s.AddUnitClause(IntToLit(1))
	if status := s.ResetAndSolveWithAssumptions(nil); status != Sat {
		t.Fatalf("expected sat, got %v", status)
	}
	if s.ResetToBase() != Indet {
		t.Fatal("expected indeterminate base")
	}
	if status := s.FixedLitStatus(IntToLit(1)); status != Sat {
		t.Errorf("unit 1 lost across reset, status is %v", status)
	}
	if status := s.FixedLitStatus(IntToLit(3)); status != Sat {
		t.Errorf("expected 3 to be implied by the permanent unit, got %v", status)
	}
}

func TestAddUnitClauseConflict(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}})
	s := New(pb)
	s.AddUnitClause(IntToLit(1))
	s.AddUnitClause(IntToLit(-1))
	if s.CurrentStatus() != Unsat {
		t.Errorf("contradicting permanent units must make the solver unsat")
	}
}

func TestEnqueueDecisionAndBackjumpOnConflict(t *testing.T) {
	pb := ParseSlice([][]int{{-1, 2}, {-2, 3}, {4, 5}})
	s := New(pb)
	if s.ResetToBase() != Indet {
		t.Fatal("expected indeterminate base")
	}
	implied := s.EnqueueDecisionAndBackjumpOnConflict(IntToLit(1))
	want := map[Lit]bool{IntToLit(2): true, IntToLit(3): true}
	if len(implied) != len(want) {
		t.Fatalf("implied lits are %v, want 2 and 3", implied)
	}
	for _, lit := range implied {
		if !want[lit] {
			t.Errorf("unexpected implied literal %d", lit.Int())
		}
	}
	// The decision must have been undone.
	if s.FixedLitStatus(IntToLit(1)) != Indet {
		t.Errorf("decision 1 leaked into the base level")
	}
}

func TestEnqueueDecisionFailedLiteral(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {1, -2}, {3, 4}})
	s := New(pb)
	if s.ResetToBase() != Indet {
		t.Fatal("expected indeterminate base")
	}
	if implied := s.EnqueueDecisionAndBackjumpOnConflict(IntToLit(-1)); implied != nil {
		t.Fatalf("expected a failed literal, got implications %v", implied)
	}
	if s.FixedLitStatus(IntToLit(1)) != Sat {
		t.Errorf("failed literal must assert its negation as a unit")
	}
}

func TestNewVarGrowsSolver(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}})
	s := New(pb)
	v := s.NewVar()
	if int(v) != 2 || s.NbVars() != 3 {
		t.Fatalf("expected var 2 in a 3-var solver, got var %d of %d", v, s.NbVars())
	}
	s.AddPermanentClause([]Lit{v.Lit()})
	if s.ResetToBase() != Indet {
		t.Fatal("expected indeterminate base")
	}
	if s.FixedLitStatus(v.Lit()) != Sat {
		t.Errorf("unit on a fresh variable must be fixed at the base level")
	}
	if status := s.Solve(); status != Sat {
		t.Errorf("expected sat, got %v", status)
	}
	if len(s.Model()) != 3 {
		t.Errorf("model must cover the grown variable space, got %d vars", len(s.Model()))
	}
}

func TestDeterministicTimeAdvances(t *testing.T) {
	pb := ParseSlice([][]int{{-1, 2}, {-2, 3}, {1, 3}})
	s := New(pb)
	before := s.DeterministicTime()
	if s.Solve() != Sat {
		t.Fatal("expected sat")
	}
	if s.DeterministicTime() < before {
		t.Errorf("deterministic time went backwards")
	}
}
