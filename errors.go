package maclane

import "errors"

// Construction and algorithm errors. All failures are deterministic and
// reproducible from the same inputs; nothing here is retried or recovered
// silently.
var (
	// ErrInvalidKeyPolynomial reports that a polynomial failed the key
	// polynomial test of the valuation it was meant to augment.
	ErrInvalidKeyPolynomial = errors.New("maclane: not a key polynomial")

	// ErrNonIncreasingValue reports an augmentation whose prescribed value
	// does not strictly exceed the base valuation of the key polynomial.
	ErrNonIncreasingValue = errors.New("maclane: value of the key polynomial must strictly increase")

	// ErrNotInductive reports an augmentation over a missing base valuation.
	ErrNotInductive = errors.New("maclane: base valuation is not inductive")

	// ErrNotInValueGroup reports a requested value that the value group (or
	// semigroup, over non-field coefficient domains) cannot realize exactly.
	ErrNotInValueGroup = errors.New("maclane: value not in the value group")

	// ErrNegativeValuation reports an input of negative valuation to an
	// operation that requires non-negative valuation.
	ErrNegativeValuation = errors.New("maclane: negative valuation")

	// ErrInvalidResidue reports a residue ring element that is not eligible
	// for LiftToKey: constant, non-monic, or reducible.
	ErrInvalidResidue = errors.New("maclane: residue element is not liftable to a key polynomial")

	// ErrNoKeysOverTerminalValuation reports an attempt to augment, or to
	// lift a key over, a valuation that cannot be augmented further.
	ErrNoKeysOverTerminalValuation = errors.New("maclane: no key polynomials over a terminal valuation")

	// ErrUnsupportedCoefficientDomain reports an operation that requires the
	// polynomial ring to be over a field invoked over an integral domain.
	ErrUnsupportedCoefficientDomain = errors.New("maclane: operation requires a field coefficient domain")

	// ErrDivisionByZero reports inversion or division of a zero element.
	ErrDivisionByZero = errors.New("maclane: division by zero")
)

// debugChecks enables internal consistency assertions. These represent
// implementation bugs when they fire, not caller errors, and are not part of
// the public error taxonomy.
var debugChecks = false

func assertInvariant(cond bool, msg string) {
	if debugChecks && !cond {
		panic("maclane: internal invariant violated: " + msg)
	}
}
