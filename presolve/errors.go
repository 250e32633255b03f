package presolve

import "github.com/pkg/errors"

// ErrUnsatDetected is returned whenever inserting, strengthening, or
// resolving clauses would produce (or already produced) an empty clause.
// It is a sentinel: callers should compare with errors.Is, not by value,
// since it is frequently wrapped with context via errors.Wrap.
var ErrUnsatDetected = errors.New("presolve: unsat detected")

// InvariantViolation is a programmer-error class failure: it is only ever
// raised through panic, never returned, because the conditions it guards
// (a literal whose variable has already been eliminated being
// reverse-mapped, a duplicate variable in a remapping, a mis-indexed
// associated literal during postsolve) can only happen if a caller broke
// one of this package's documented preconditions.
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string { return "presolve: invariant violation: " + e.msg }

func invariantf(format string, args ...interface{}) error {
	return &InvariantViolation{msg: errors.Errorf(format, args...).Error()}
}

func panicInvariant(format string, args ...interface{}) {
	panic(invariantf(format, args...))
}
