package maclane

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// InductiveValuation is a valuation on the polynomial ring ℚ[x] built up
// from a valuation of the constants by a chain of augmentations. The two
// implementations are GaussValuation, the start of every chain, and
// AugmentedValuation.
//
// Implementations are immutable and safe for concurrent use.
type InductiveValuation interface {
	// Constant returns the valuation of the constants underlying the chain.
	Constant() ConstantValuation

	// Phi returns the last key polynomial of the chain; x for a Gauss
	// valuation.
	Phi() *Poly

	// Value returns the valuation of f, +∞ for f = 0.
	Value(f *Poly) Value

	// Valuations returns the values of the terms f_i·phi^i of the phi-adic
	// expansion of f. The minimum of the slice is Value(f).
	Valuations(f *Poly) []Value

	// ResidueField returns the field over which reductions live. The residue
	// ring is the polynomial ring over this field, except for final
	// valuations where it is the field itself (reductions are then constant).
	ResidueField() ResidueField

	// Reduce maps f of non-negative valuation to the residue ring. Fails
	// with ErrNegativeValuation otherwise. Reduce(f) is zero exactly when
	// Value(f) > 0, and Reduce(f·g) = Reduce(f)·Reduce(g).
	Reduce(f *Poly) (*RPoly, error)

	// Lift is a right inverse of Reduce: Reduce(Lift(F)) = F.
	Lift(F *RPoly) *Poly

	// LiftToKey lifts a monic irreducible non-constant residue polynomial to
	// a key polynomial over this valuation.
	LiftToKey(F *RPoly) (*Poly, error)

	// IsKey reports whether phi is a key polynomial: monic, minimal, and
	// equivalence-irreducible. A nil return means yes; otherwise the error
	// wraps ErrInvalidKeyPolynomial (or ErrNoKeysOverTerminalValuation) and
	// names the failing property.
	IsKey(phi *Poly) error

	// EffectiveDegree returns the largest index i for which v(f_i·phi^i) is
	// minimal in the phi-adic expansion of f.
	EffectiveDegree(f *Poly) int

	// IsEquivalenceUnit reports whether f has effective degree zero and
	// finite valuation.
	IsEquivalenceUnit(f *Poly) bool

	// EquivalenceUnit returns an equivalence unit of valuation s and minimal
	// degree. Fails with ErrNotInValueGroup when no unit of that valuation
	// exists.
	EquivalenceUnit(s Value) (*Poly, error)

	// EquivalenceReciprocal returns g with f·g equivalent to 1. f must be an
	// equivalence unit.
	EquivalenceReciprocal(f *Poly) (*Poly, error)

	// ElementWithValuation returns an element of valuation exactly s and
	// minimal degree. Fails with ErrNotInValueGroup when s is not in the
	// value group.
	ElementWithValuation(s Value) (*Poly, error)

	// Uniformizer returns an element whose valuation generates the value
	// group. Fails over a trivial value group.
	Uniformizer() (*Poly, error)

	// E returns the ramification index over the underlying Gauss valuation:
	// the index of the constant value group in the value group. Fails over a
	// trivial chain.
	E() (int, error)

	// F returns the degree of the residue field over the residue field of
	// the constants.
	F() int

	// ValueGroup returns the group generated by the values of non-zero
	// elements (of the fraction field when the coefficient domain is not a
	// field).
	ValueGroup() *ValueGroup

	// ValueSemigroup returns the semigroup of values of non-zero elements of
	// the polynomial ring itself.
	ValueSemigroup() *ValueSemigroup

	// IsGauss reports whether this is a Gauss valuation.
	IsGauss() bool

	// IsFinal reports whether the valuation admits no key polynomials and
	// hence no further augmentation.
	IsFinal() bool

	// IsTrivial reports whether the valuation is zero on all non-zero
	// elements.
	IsTrivial() bool

	// LowerBound returns a cheap lower bound for Value(f), avoiding the
	// phi-adic expansion where possible.
	LowerBound(f *Poly) Value

	// UpperBound returns a cheap upper bound for Value(f).
	UpperBound(f *Poly) Value

	// Simplify returns g with Value(f - g) > err, preferring smaller
	// coefficients. An unset err defaults to UpperBound(f), which preserves
	// Value and Reduce.
	Simplify(f *Poly, err Value) *Poly

	// AugmentationChain returns the chain of valuations this one is built
	// from, starting at the underlying Gauss valuation and ending with the
	// receiver.
	AugmentationChain() []InductiveValuation

	// Restriction returns the restriction to the constants.
	Restriction() ConstantValuation

	// Ge reports whether this valuation is >= o everywhere.
	Ge(o InductiveValuation) bool

	// Equal reports whether both valuations are the same map, up to collapse
	// of degenerate augmentation steps.
	Equal(o InductiveValuation) bool

	// ScaleBy returns the valuation multiplied by a positive rational.
	ScaleBy(s *big.Rat) InductiveValuation

	fmt.Stringer
}

// IsEquivalent reports whether f and g are equivalent under v, that is
// whether v(f - g) > v(f).
func IsEquivalent(v InductiveValuation, f, g *Poly) bool {
	d := f.Sub(g)
	if d.IsZero() {
		return true
	}
	return v.Value(d).Cmp(v.Value(f)) > 0
}

// effectiveDegree is the shared implementation of EffectiveDegree.
func effectiveDegree(v InductiveValuation, f *Poly) int {
	vals := v.Valuations(f)
	min := minValue(vals)
	deg := 0
	for i, val := range vals {
		if val.Equal(min) {
			deg = i
		}
	}
	return deg
}

// isEquivalenceUnit is the shared implementation of IsEquivalenceUnit.
func isEquivalenceUnit(v InductiveValuation, f *Poly) bool {
	if f.IsZero() {
		return false
	}
	if v.Value(f).IsInf() {
		return false
	}
	return v.EffectiveDegree(f) == 0
}

// equivalenceReciprocal inverts an equivalence unit f: the reduction of f
// times a unit of opposite valuation is a non-zero constant, whose inverse
// lifts to the reciprocal. The terms of positive relative valuation in the
// product are then discarded by truncating to the constant phi-adic
// coefficient.
func equivalenceReciprocal(v InductiveValuation, f *Poly) (*Poly, error) {
	if !v.IsEquivalenceUnit(f) {
		return nil, fmt.Errorf("maclane: %s is not an equivalence unit of %s", f, v)
	}
	s := v.Value(f)
	u, err := v.EquivalenceUnit(s.Neg())
	if err != nil {
		return nil, err
	}
	red, err := v.Reduce(f.Mul(u))
	if err != nil {
		return nil, err
	}
	assertInvariant(red.IsConstant() && !red.IsZero(), "reduction of a unit times its co-unit must be a non-zero constant")
	inv, err := v.ResidueField().Inverse(red.Coeff(0))
	if err != nil {
		return nil, err
	}
	g := v.Lift(RPolyConstant(v.ResidueField(), inv)).Mul(u)
	g = g.PhiCoefficients(v.Phi())[0]
	return v.Simplify(g, s.Neg()), nil
}

// powUnit raises an equivalence unit f, of known valuation step, to the e-th
// power. Every intermediate is truncated to its constant phi-adic coefficient
// and simplified: the dropped terms of an equivalence unit all have strictly
// larger valuation, so the result stays equivalent to f^e while its degree
// stays below deg(phi).
func powUnit(v InductiveValuation, f *Poly, e int, step Value) *Poly {
	if e < 0 {
		panic("maclane: negative power")
	}
	phi := v.Phi()
	ret := PolyOne()
	retVal := IntValue(0)
	sq := v.Simplify(f.Mod(phi), step)
	sqVal := step
	for e > 0 {
		if e&1 == 1 {
			retVal = retVal.Add(sqVal)
			ret = v.Simplify(ret.Mul(sq).Mod(phi), retVal)
		}
		e >>= 1
		if e > 0 {
			sqVal = sqVal.Add(sqVal)
			sq = v.Simplify(sq.Mul(sq).Mod(phi), sqVal)
		}
	}
	return ret
}

// sharedIsKey implements the key polynomial test for non-final valuations.
//
// A key polynomial is monic, minimal (its phi-adic expansion is dominated by
// the leading term, so deg(phi) = EffectiveDegree(phi)·deg(Phi)), and
// equivalence-irreducible (its residual polynomial is irreducible).
func sharedIsKey(v InductiveValuation, phi *Poly) error {
	if phi.IsConstant() {
		return fmt.Errorf("%w: %s is constant", ErrInvalidKeyPolynomial, phi)
	}
	if !phi.IsMonic() {
		return fmt.Errorf("%w: %s is not monic", ErrInvalidKeyPolynomial, phi)
	}
	n := v.EffectiveDegree(phi)
	if n*v.Phi().Degree() != phi.Degree() {
		return fmt.Errorf("%w: %s is not minimal, its effective degree %d does not account for its degree", ErrInvalidKeyPolynomial, phi, n)
	}
	if n == 1 {
		// A minimal polynomial of effective degree one cannot factor into
		// polynomials of positive effective degree.
		return nil
	}
	val := v.Value(phi)
	u, err := v.EquivalenceUnit(val.Neg())
	if err != nil {
		return fmt.Errorf("%w: value %s of %s is not attainable by an equivalence unit", ErrInvalidKeyPolynomial, val, phi)
	}
	res, err := v.Reduce(phi.Mul(u))
	if err != nil {
		return err
	}
	if irred, known := isIrreducible(res); known && !irred {
		return fmt.Errorf("%w: the residual polynomial %s of %s is reducible", ErrInvalidKeyPolynomial, res, phi)
	}
	return nil
}

// EquivalenceFactor is one key polynomial factor of an equivalence
// decomposition together with its multiplicity.
type EquivalenceFactor struct {
	Key          *Poly
	Multiplicity int
}

// EquivalenceDecomposition expresses a polynomial as an equivalence unit
// times a product of powers of key polynomials, up to equivalence.
type EquivalenceDecomposition struct {
	Unit    *Poly
	Factors []EquivalenceFactor
}

// EquivalenceDecompose computes the equivalence decomposition of a non-zero
// polynomial over a non-final inductive valuation: f is equivalent to
// Unit · Π Key_i^Multiplicity_i, with the unit carrying the balance of the
// valuations.
func EquivalenceDecompose(v InductiveValuation, f *Poly) (*EquivalenceDecomposition, error) {
	if f.IsZero() {
		return nil, fmt.Errorf("maclane: cannot decompose the zero polynomial")
	}
	if v.IsFinal() {
		return nil, fmt.Errorf("%w: %s", ErrNoKeysOverTerminalValuation, v)
	}
	if v.IsEquivalenceUnit(f) {
		return &EquivalenceDecomposition{Unit: f}, nil
	}

	// Split off the power of phi dividing f in equivalence: the smallest
	// expansion index attaining the minimal value. The remaining part has its
	// valuation in the value group of the augmented chain's base, so an
	// equivalence unit of opposite valuation exists.
	vals := v.Valuations(f)
	min := minValue(vals)
	i0 := 0
	for i, val := range vals {
		if val.Equal(min) {
			i0 = i
			break
		}
	}
	g := f
	if i0 > 0 {
		coeffs := f.PhiCoefficients(v.Phi())[i0:]
		g = fromPhiCoefficients(coeffs, v.Phi())
	}

	u, err := v.EquivalenceUnit(v.Value(g).Neg())
	if err != nil {
		return nil, err
	}
	res, err := v.Reduce(g.Mul(u))
	if err != nil {
		return nil, err
	}
	assertInvariant(!v.ResidueField().IsZero(res.Coeff(0)), "constant term of the residual polynomial must not vanish")

	lead := res.Leading()
	var factors []rfactor
	if res.Degree() > 0 {
		// The stripped part can itself be an equivalence unit, with nothing
		// left to factor.
		factors, err = factorMonic(res.Monic())
		if err != nil {
			return nil, err
		}
	}

	dec := &EquivalenceDecomposition{}
	if i0 > 0 {
		dec.Factors = append(dec.Factors, EquivalenceFactor{Key: v.Phi(), Multiplicity: i0})
	}
	for _, fac := range factors {
		key, err := v.LiftToKey(fac.f)
		if err != nil {
			return nil, err
		}
		dec.Factors = append(dec.Factors, EquivalenceFactor{Key: key, Multiplicity: fac.mult})
	}

	// The unit lifts the leading coefficient of the residual polynomial and
	// is then adjusted so that the values of both sides agree.
	unit := v.Lift(RPolyConstant(v.ResidueField(), lead))
	total := v.Value(unit)
	for _, fac := range dec.Factors {
		total = total.Add(v.Value(fac.Key).MulInt(int64(fac.Multiplicity)))
	}
	if s := v.Value(f).Sub(total); !s.IsZero() {
		adj, err := v.EquivalenceUnit(s)
		if err != nil {
			return nil, err
		}
		unit = v.Simplify(unit.Mul(adj), NoValue)
	}
	dec.Unit = unit
	logger().Debug("equivalence decomposition",
		zap.Stringer("valuation", v),
		zap.Stringer("f", f),
		zap.Int("factors", len(dec.Factors)))

	if debugChecks {
		assertInvariant(v.IsEquivalenceUnit(dec.Unit), "the unit of a decomposition must be an equivalence unit")
	}
	return dec, nil
}
