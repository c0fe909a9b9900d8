package maclane

import (
	"fmt"
	"math/big"
)

// ConstantValuation is an exact discrete valuation on the coefficients of
// the polynomial ring. It supplies the base of every inductive valuation:
// values of constants, their residues in an exact residue field, lifts back,
// and representatives of prescribed valuation.
type ConstantValuation interface {
	// Value returns the valuation of r, +∞ for r = 0.
	Value(r *big.Rat) Value

	// ResidueField returns the residue field of the valuation.
	ResidueField() ResidueField

	// Reduce maps an element of valuation >= 0 to its residue. Fails with
	// ErrNegativeValuation otherwise.
	Reduce(r *big.Rat) (Residue, error)

	// Lift returns a representative of a residue, of valuation 0 unless the
	// residue is zero.
	Lift(a Residue) *big.Rat

	// ElementWithValuation returns a constant of valuation exactly s. Fails
	// with ErrNotInValueGroup when s is not attainable.
	ElementWithValuation(s Value) (*big.Rat, error)

	// ValueGroup returns the group of attainable values (of the fraction
	// field when the coefficient domain is not a field).
	ValueGroup() *ValueGroup

	// IsField reports whether the coefficient domain is a field. Over a mere
	// integral domain, elements of negative valuation are not available.
	IsField() bool

	// IsTrivial reports whether the valuation is constant zero on non-zero
	// elements.
	IsTrivial() bool

	// Simplify returns a representative y with Value(r - y) > err, preferring
	// a smaller one. An unset err requires y = r exactly.
	Simplify(r *big.Rat, err Value) *big.Rat

	// Scale returns the valuation multiplied by a positive rational.
	Scale(s *big.Rat) ConstantValuation

	// Equal reports whether both valuations are the same map.
	Equal(o ConstantValuation) bool

	fmt.Stringer
}

// ============================================================
// p-adic valuation
// ============================================================

// PAdicValuation is the p-adic valuation on ℚ (or on ℤ when constructed
// over the integers), optionally scaled. The residue field is F_p.
type PAdicValuation struct {
	p         *big.Int
	scale     *big.Rat
	overField bool
	res       *PrimeField
}

// NewPAdicValuation returns the p-adic valuation on ℚ. p must be prime.
func NewPAdicValuation(p *big.Int) *PAdicValuation {
	return &PAdicValuation{
		p:         new(big.Int).Set(p),
		scale:     big.NewRat(1, 1),
		overField: true,
		res:       NewPrimeField(p),
	}
}

// NewPAdicValuationInt64 returns the p-adic valuation on ℚ for a small prime.
func NewPAdicValuationInt64(p int64) *PAdicValuation {
	return NewPAdicValuation(big.NewInt(p))
}

// NewPAdicValuationOnIntegers returns the p-adic valuation restricted to ℤ.
// Operations that need constants of negative valuation fail with
// ErrUnsupportedCoefficientDomain or ErrNotInValueGroup.
func NewPAdicValuationOnIntegers(p *big.Int) *PAdicValuation {
	v := NewPAdicValuation(p)
	v.overField = false
	return v
}

// P returns the prime.
func (v *PAdicValuation) P() *big.Int { return new(big.Int).Set(v.p) }

// ordP returns the exponent of p in a non-zero integer.
func (v *PAdicValuation) ordP(n *big.Int) int64 {
	var ord int64
	rem := new(big.Int)
	q := new(big.Int).Set(n)
	for {
		q2, _ := new(big.Int).QuoRem(q, v.p, rem)
		if rem.Sign() != 0 {
			return ord
		}
		ord++
		q = q2
	}
}

func (v *PAdicValuation) Value(r *big.Rat) Value {
	if r.Sign() == 0 {
		return Infinity()
	}
	ord := v.ordP(r.Num()) - v.ordP(r.Denom())
	return Value{r: new(big.Rat).Mul(big.NewRat(ord, 1), v.scale)}
}

func (v *PAdicValuation) ResidueField() ResidueField { return v.res }

func (v *PAdicValuation) Reduce(r *big.Rat) (Residue, error) {
	val := v.Value(r)
	if val.IsInf() {
		return v.res.Zero(), nil
	}
	if val.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s has valuation %s", ErrNegativeValuation, r.RatString(), val)
	}
	if val.Sign() > 0 {
		return v.res.Zero(), nil
	}
	// r = a/b with b prime to p; the residue is a * b^{-1} mod p.
	a := new(big.Int).Mod(r.Num(), v.p)
	b := new(big.Int).ModInverse(new(big.Int).Mod(r.Denom(), v.p), v.p)
	return v.res.FromBigInt(a.Mul(a, b)), nil
}

func (v *PAdicValuation) Lift(a Residue) *big.Rat {
	return new(big.Rat).SetInt(v.res.Int(a))
}

func (v *PAdicValuation) ElementWithValuation(s Value) (*big.Rat, error) {
	if s.IsInf() {
		return new(big.Rat), nil
	}
	n := new(big.Rat).Quo(s.Rat(), v.scale)
	if !n.IsInt() {
		return nil, fmt.Errorf("%w: %s is not attainable by powers of %s", ErrNotInValueGroup, s, v.p)
	}
	if !v.overField && n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative and the domain is not a field", ErrNotInValueGroup, s)
	}
	e := new(big.Int).Abs(n.Num())
	pe := new(big.Int).Exp(v.p, e, nil)
	if n.Sign() < 0 {
		return new(big.Rat).SetFrac(bigOne, pe), nil
	}
	return new(big.Rat).SetInt(pe), nil
}

func (v *PAdicValuation) ValueGroup() *ValueGroup { return NewValueGroup(v.scale) }

func (v *PAdicValuation) IsField() bool   { return v.overField }
func (v *PAdicValuation) IsTrivial() bool { return false }

// Simplify returns the centered representative of r modulo the power of p
// just beyond the requested error.
func (v *PAdicValuation) Simplify(r *big.Rat, err Value) *big.Rat {
	if !err.IsSet() || err.IsInf() || r.Sign() == 0 {
		return r
	}
	val := v.Value(r)
	if val.Cmp(err) > 0 {
		return new(big.Rat)
	}
	// Normalize to unscaled exponents of p.
	ord := new(big.Rat).Quo(val.Rat(), v.scale)
	bound := Value{r: new(big.Rat).Quo(err.Rat(), v.scale)}
	// Keep r modulo p^m with m = floor(bound) + 1.
	m := new(big.Int).Add(bound.Floor(), bigOne)
	if m.Sign() <= 0 || !ord.Num().IsInt64() {
		return r
	}
	// r = p^ord * u with u a unit; replace u by its centered residue modulo
	// p^(m - ord).
	e := new(big.Int).Sub(m, ord.Num())
	pe := new(big.Int).Exp(v.p, e, nil)
	pord := new(big.Int).Exp(v.p, new(big.Int).Abs(ord.Num()), nil)
	u := new(big.Rat).Set(r)
	if ord.Sign() >= 0 {
		u.Quo(u, new(big.Rat).SetInt(pord))
	} else {
		u.Mul(u, new(big.Rat).SetInt(pord))
	}
	// u = a/b with both prime to p; centered a * b^{-1} mod p^e.
	a := new(big.Int).Mod(u.Num(), pe)
	b := new(big.Int).ModInverse(new(big.Int).Mod(u.Denom(), pe), pe)
	a.Mul(a, b).Mod(a, pe)
	half := new(big.Int).Rsh(pe, 1)
	if a.Cmp(half) > 0 {
		a.Sub(a, pe)
	}
	out := new(big.Rat).SetInt(a)
	if ord.Sign() >= 0 {
		out.Mul(out, new(big.Rat).SetInt(pord))
	} else {
		out.Quo(out, new(big.Rat).SetInt(pord))
	}
	return out
}

func (v *PAdicValuation) Scale(s *big.Rat) ConstantValuation {
	if s.Sign() <= 0 {
		panic("maclane: scale must be positive")
	}
	out := *v
	out.scale = new(big.Rat).Mul(v.scale, s)
	return &out
}

func (v *PAdicValuation) Equal(o ConstantValuation) bool {
	w, ok := o.(*PAdicValuation)
	return ok && v.p.Cmp(w.p) == 0 && v.scale.Cmp(w.scale) == 0 && v.overField == w.overField
}

func (v *PAdicValuation) String() string {
	if v.scale.Cmp(big.NewRat(1, 1)) != 0 {
		return fmt.Sprintf("%s * %s-adic valuation", v.scale.RatString(), v.p)
	}
	return fmt.Sprintf("%s-adic valuation", v.p)
}

// ============================================================
// Trivial valuation
// ============================================================

// TrivialValuation is the trivial valuation on ℚ: zero on every non-zero
// element. Its residue field is ℚ itself.
type TrivialValuation struct{}

func (TrivialValuation) Value(r *big.Rat) Value {
	if r.Sign() == 0 {
		return Infinity()
	}
	return IntValue(0)
}

func (TrivialValuation) ResidueField() ResidueField { return RationalField{} }

func (TrivialValuation) Reduce(r *big.Rat) (Residue, error) {
	return RationalField{}.FromRat(r), nil
}

func (TrivialValuation) Lift(a Residue) *big.Rat {
	return new(big.Rat).Set(RationalField{}.Rat(a))
}

func (TrivialValuation) ElementWithValuation(s Value) (*big.Rat, error) {
	if s.IsInf() {
		return new(big.Rat), nil
	}
	if !s.IsZero() {
		return nil, fmt.Errorf("%w: trivial valuation only attains 0, not %s", ErrNotInValueGroup, s)
	}
	return big.NewRat(1, 1), nil
}

func (TrivialValuation) ValueGroup() *ValueGroup { return TrivialValueGroup() }

func (TrivialValuation) IsField() bool   { return true }
func (TrivialValuation) IsTrivial() bool { return true }

func (TrivialValuation) Simplify(r *big.Rat, _ Value) *big.Rat {
	// Only zero exceeds any finite error bound, so nothing can be dropped.
	return r
}

func (v TrivialValuation) Scale(s *big.Rat) ConstantValuation {
	if s.Sign() <= 0 {
		panic("maclane: scale must be positive")
	}
	return v
}

func (TrivialValuation) Equal(o ConstantValuation) bool {
	_, ok := o.(TrivialValuation)
	return ok
}

func (TrivialValuation) String() string { return "Trivial valuation" }
