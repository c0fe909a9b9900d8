package maclane

import (
	"fmt"
	"math/big"
)

// GaussValuation extends a valuation of the constants to the polynomial
// ring by taking the minimum over the coefficients: v(Σ a_i·x^i) =
// min_i v(a_i). It is the start of every augmentation chain.
type GaussValuation struct {
	c ConstantValuation
}

// NewGaussValuation returns the Gauss valuation induced by c.
func NewGaussValuation(c ConstantValuation) *GaussValuation {
	return &GaussValuation{c: c}
}

func (v *GaussValuation) Constant() ConstantValuation { return v.c }

func (v *GaussValuation) Phi() *Poly { return PolyX() }

func (v *GaussValuation) Value(f *Poly) Value {
	return minValue(v.Valuations(f))
}

func (v *GaussValuation) Valuations(f *Poly) []Value {
	if f.IsZero() {
		return []Value{Infinity()}
	}
	vals := make([]Value, f.Degree()+1)
	for i := range vals {
		vals[i] = v.c.Value(f.Coeff(i))
	}
	return vals
}

func (v *GaussValuation) ResidueField() ResidueField { return v.c.ResidueField() }

func (v *GaussValuation) Reduce(f *Poly) (*RPoly, error) {
	if val := v.Value(f); !val.IsInf() && val.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s has valuation %s under %s", ErrNegativeValuation, f, val, v)
	}
	k := v.c.ResidueField()
	c := make([]Residue, f.Degree()+1)
	for i := range c {
		r, err := v.c.Reduce(f.Coeff(i))
		if err != nil {
			return nil, err
		}
		c[i] = r
	}
	return NewRPoly(k, c...), nil
}

func (v *GaussValuation) Lift(F *RPoly) *Poly {
	c := make([]*big.Rat, F.Degree()+1)
	for i := range c {
		c[i] = v.c.Lift(F.Coeff(i))
	}
	return NewPoly(c...)
}

func (v *GaussValuation) LiftToKey(F *RPoly) (*Poly, error) {
	if F.IsConstant() {
		return nil, fmt.Errorf("%w: %s is constant", ErrInvalidResidue, F)
	}
	if !F.IsMonic() {
		return nil, fmt.Errorf("%w: %s is not monic", ErrInvalidResidue, F)
	}
	if irred, known := isIrreducible(F); known && !irred {
		return nil, fmt.Errorf("%w: %s is reducible", ErrInvalidResidue, F)
	}
	return v.Lift(F), nil
}

func (v *GaussValuation) IsKey(phi *Poly) error { return sharedIsKey(v, phi) }

func (v *GaussValuation) EffectiveDegree(f *Poly) int { return effectiveDegree(v, f) }

func (v *GaussValuation) IsEquivalenceUnit(f *Poly) bool { return isEquivalenceUnit(v, f) }

func (v *GaussValuation) EquivalenceUnit(s Value) (*Poly, error) {
	r, err := v.c.ElementWithValuation(s)
	if err != nil {
		return nil, err
	}
	return PolyConstant(r), nil
}

// EquivalenceReciprocal inverts an equivalence unit. For a Gauss valuation
// the constant coefficient dominates, so its exact inverse suffices.
func (v *GaussValuation) EquivalenceReciprocal(f *Poly) (*Poly, error) {
	if !v.IsEquivalenceUnit(f) {
		return nil, fmt.Errorf("maclane: %s is not an equivalence unit of %s", f, v)
	}
	if !v.c.IsField() {
		return nil, fmt.Errorf("%w: cannot invert %s", ErrUnsupportedCoefficientDomain, f.Coeff(0).RatString())
	}
	return PolyConstant(new(big.Rat).Inv(f.Coeff(0))), nil
}

func (v *GaussValuation) ElementWithValuation(s Value) (*Poly, error) {
	return v.EquivalenceUnit(s)
}

func (v *GaussValuation) Uniformizer() (*Poly, error) {
	g := v.ValueGroup()
	if g.IsTrivial() {
		return nil, fmt.Errorf("maclane: %s has no uniformizer", v)
	}
	return v.ElementWithValuation(RatValue(g.Generator()))
}

func (v *GaussValuation) E() (int, error) { return 1, nil }

func (v *GaussValuation) F() int { return 1 }

func (v *GaussValuation) ValueGroup() *ValueGroup { return v.c.ValueGroup() }

func (v *GaussValuation) ValueSemigroup() *ValueSemigroup {
	gen := v.c.ValueGroup().Generator()
	if gen.Sign() == 0 {
		return TrivialValueSemigroup()
	}
	if v.c.IsField() {
		return NewValueSemigroup(gen, new(big.Rat).Neg(gen))
	}
	return NewValueSemigroup(gen)
}

func (v *GaussValuation) IsGauss() bool   { return true }
func (v *GaussValuation) IsFinal() bool   { return false }
func (v *GaussValuation) IsTrivial() bool { return v.c.IsTrivial() }

func (v *GaussValuation) LowerBound(f *Poly) Value { return v.Value(f) }
func (v *GaussValuation) UpperBound(f *Poly) Value { return v.Value(f) }

func (v *GaussValuation) Simplify(f *Poly, err Value) *Poly {
	if !err.IsSet() {
		err = v.Value(f)
	}
	c := make([]*big.Rat, f.Degree()+1)
	for i := range c {
		c[i] = v.c.Simplify(f.Coeff(i), err)
	}
	return NewPoly(c...)
}

func (v *GaussValuation) AugmentationChain() []InductiveValuation {
	return []InductiveValuation{v}
}

func (v *GaussValuation) Restriction() ConstantValuation { return v.c }

func (v *GaussValuation) Ge(o InductiveValuation) bool {
	if o.IsTrivial() {
		return true
	}
	if w, ok := o.(*GaussValuation); ok {
		return v.c.Equal(w.c)
	}
	return false
}

func (v *GaussValuation) Equal(o InductiveValuation) bool {
	w, ok := o.(*GaussValuation)
	return ok && v.c.Equal(w.c)
}

func (v *GaussValuation) ScaleBy(s *big.Rat) InductiveValuation {
	return NewGaussValuation(v.c.Scale(s))
}

// Extensions returns the Gauss valuations over the given extensions of the
// constant valuation.
func (v *GaussValuation) Extensions(consts []ConstantValuation) []InductiveValuation {
	out := make([]InductiveValuation, len(consts))
	for i, c := range consts {
		out[i] = NewGaussValuation(c)
	}
	return out
}

func (v *GaussValuation) String() string {
	return fmt.Sprintf("Gauss valuation induced by %s", v.c)
}
