package maclane

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type augKind int

const (
	// augNonFinalFinite assigns a finite value to its key polynomial over a
	// non-trivial chain and can be augmented further.
	augNonFinalFinite augKind = iota
	// augFinalFinite assigns a finite value over a trivial chain; its
	// residue ring is a field and it admits no key polynomials.
	augFinalFinite
	// augInfinite assigns +∞ to its key polynomial.
	augInfinite
)

// AugmentedValuation extends an inductive valuation v by prescribing the
// value mu > v(phi) for a key polynomial phi: for f = Σ f_i·phi^i it assigns
// min_i (v(f_i) + i·mu).
//
// Values are immutable; derived data (the residual polynomial, the residue
// field, the periodicity units) is computed lazily under a lock, so a single
// valuation may be shared between goroutines.
type AugmentedValuation struct {
	base InductiveValuation
	phi  *Poly
	mu   Value
	kind augKind

	mtx  sync.Mutex
	memo augMemo
}

type augMemo struct {
	tau      int
	psi      *RPoly
	resField ResidueField
	resGen   Residue
	embed    func(Residue) Residue
	q        map[int]*Poly
	qRecip   map[int]*Poly
}

// Augment returns the valuation which agrees with base except that it
// assigns mu to the key polynomial phi. phi must be a key polynomial of
// base, and mu must strictly exceed base's value of phi (or be +∞).
//
// A degenerate augmentation whose key has the same degree as the base's key
// replaces the last link of the chain instead of growing it.
func Augment(base InductiveValuation, phi *Poly, mu Value) (*AugmentedValuation, error) {
	if base == nil {
		return nil, ErrNotInductive
	}
	if err := base.IsKey(phi); err != nil {
		return nil, err
	}
	if !mu.IsSet() {
		return nil, fmt.Errorf("%w: no value prescribed for %s", ErrNonIncreasingValue, phi)
	}
	if !mu.IsInf() && mu.Cmp(base.Value(phi)) <= 0 {
		return nil, fmt.Errorf("%w: %s is not larger than %s, the value of %s", ErrNonIncreasingValue, mu, base.Value(phi), phi)
	}

	for {
		b, ok := base.(*AugmentedValuation)
		if !ok || phi.Degree() != b.phi.Degree() {
			break
		}
		// phi takes over the role of the base's key, so the base link carries
		// no information anymore and is dropped. The dropped link's base must
		// accept phi and mu on its own terms.
		base = b.base
		if err := base.IsKey(phi); err != nil {
			return nil, err
		}
		if !mu.IsInf() && mu.Cmp(base.Value(phi)) <= 0 {
			return nil, fmt.Errorf("%w: %s is not larger than %s, the value of %s", ErrNonIncreasingValue, mu, base.Value(phi), phi)
		}
	}

	kind := augNonFinalFinite
	switch {
	case mu.IsInf():
		kind = augInfinite
	case base.IsTrivial():
		kind = augFinalFinite
	}
	logger().Debug("augmenting valuation",
		zap.Stringer("base", base),
		zap.Stringer("phi", phi),
		zap.Stringer("mu", mu))
	return &AugmentedValuation{base: base, phi: phi, mu: mu, kind: kind}, nil
}

// Base returns the augmented valuation's base.
func (v *AugmentedValuation) Base() InductiveValuation { return v.base }

// Mu returns the prescribed value of the key polynomial.
func (v *AugmentedValuation) Mu() Value { return v.mu }

func (v *AugmentedValuation) Constant() ConstantValuation { return v.base.Constant() }

func (v *AugmentedValuation) Phi() *Poly { return v.phi }

func (v *AugmentedValuation) Value(f *Poly) Value {
	return minValue(v.Valuations(f))
}

func (v *AugmentedValuation) Valuations(f *Poly) []Value {
	coeffs := f.PhiCoefficients(v.phi)
	vals := make([]Value, len(coeffs))
	for i, c := range coeffs {
		switch {
		case i == 0:
			vals[i] = v.base.Value(c)
		case v.mu.IsInf():
			vals[i] = Infinity()
		default:
			b := v.base.Value(c)
			if b.IsInf() {
				vals[i] = Infinity()
			} else {
				vals[i] = b.Add(v.mu.MulInt(int64(i)))
			}
		}
	}
	return vals
}

// tau returns the index of the base's value group in the value group of
// this valuation. It is 1 for infinite augmentations.
func (v *AugmentedValuation) tau() int {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	if v.memo.tau == 0 {
		if v.kind != augNonFinalFinite {
			v.memo.tau = 1
		} else {
			tau, err := v.ValueGroup().Index(v.base.ValueGroup())
			if err != nil {
				panic("maclane: " + err.Error())
			}
			v.memo.tau = tau
		}
	}
	return v.memo.tau
}

// Psi returns the residual polynomial of the key: the monic irreducible
// reduction of phi times an equivalence unit of opposite valuation, over the
// residue field of the base.
func (v *AugmentedValuation) Psi() (*RPoly, error) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	return v.psiLocked()
}

func (v *AugmentedValuation) psiLocked() (*RPoly, error) {
	if v.memo.psi != nil {
		return v.memo.psi, nil
	}
	u, err := v.base.EquivalenceUnit(v.base.Value(v.phi).Neg())
	if err != nil {
		return nil, err
	}
	red, err := v.base.Reduce(v.phi.Mul(u))
	if err != nil {
		return nil, err
	}
	psi := red.Monic()
	if irred, known := isIrreducible(psi); known {
		assertInvariant(irred, "the residual polynomial of a key must be irreducible")
	}
	v.memo.psi = psi
	return psi, nil
}

// residue returns the residue field of this valuation, the root of psi in
// it, and the embedding of the base's residue field.
func (v *AugmentedValuation) residue() (ResidueField, Residue, func(Residue) Residue) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	if v.memo.resField == nil {
		psi, err := v.psiLocked()
		if err != nil {
			panic("maclane: " + err.Error())
		}
		base := v.base.ResidueField()
		if psi.Degree() > 1 {
			ext, err := NewExtensionField(base, psi, "u"+itoa(v.depth()))
			if err != nil {
				panic("maclane: " + err.Error())
			}
			v.memo.resField = ext
			v.memo.resGen = ext.Gen()
			v.memo.embed = ext.Embed
		} else {
			v.memo.resField = base
			v.memo.resGen = base.Neg(psi.Coeff(0))
			v.memo.embed = func(a Residue) Residue { return a }
		}
	}
	return v.memo.resField, v.memo.resGen, v.memo.embed
}

// depth returns the number of augmentation links in the chain.
func (v *AugmentedValuation) depth() int {
	d := 1
	for b := v.base; ; {
		a, ok := b.(*AugmentedValuation)
		if !ok {
			return d
		}
		d++
		b = a.base
	}
}

func (v *AugmentedValuation) ResidueField() ResidueField {
	k, _, _ := v.residue()
	return k
}

func (v *AugmentedValuation) Reduce(f *Poly) (*RPoly, error) {
	k, gen, embed := v.residue()
	coeffs := f.PhiCoefficients(v.phi)
	vals := v.Valuations(f)
	min := minValue(vals)
	if !min.IsInf() && min.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s has valuation %s under %s", ErrNegativeValuation, f, min, v)
	}
	if min.IsInf() || min.Sign() > 0 {
		return RPolyZero(k), nil
	}

	if v.kind != augNonFinalFinite {
		// The residue ring is a field; only the constant term of the
		// expansion survives.
		red, err := v.base.Reduce(coeffs[0])
		if err != nil {
			return nil, err
		}
		return RPolyConstant(k, red.EvalInto(k, embed, gen)), nil
	}

	// Exponents attaining the minimum are multiples of tau. Each term
	// f_i·phi^i is rewritten as (f_i·Q^{i/tau})·(phi^tau·Q^{-1})^{i/tau};
	// the second factor reduces to the variable of the residue ring, the
	// first factor reduces through the base valuation.
	tau := v.tau()
	out := make([]Residue, len(coeffs)/tau+1)
	for j := range out {
		out[j] = k.Zero()
	}
	for i, c := range coeffs {
		if i%tau != 0 || !vals[i].IsZero() {
			continue
		}
		q, err := v.Q(i / tau)
		if err != nil {
			return nil, err
		}
		red, err := v.base.Reduce(c.Mul(q))
		if err != nil {
			return nil, err
		}
		out[i/tau] = red.EvalInto(k, embed, gen)
	}
	return NewRPoly(k, out...), nil
}

// liftCoefficients undoes the reduction coefficient by coefficient and
// returns the phi^tau-adic coefficients of the lift of F.
func (v *AugmentedValuation) liftCoefficients(F *RPoly) []*Poly {
	k, _, _ := v.residue()
	psi, err := v.Psi()
	if err != nil {
		panic("maclane: " + err.Error())
	}
	out := make([]*Poly, F.Degree()+1)
	for j := range out {
		c := F.Coeff(j)
		var base *RPoly
		if psi.Degree() > 1 {
			base = NewRPoly(v.base.ResidueField(), k.(*ExtensionField).Coordinates(c)...)
		} else {
			base = RPolyConstant(v.base.ResidueField(), c)
		}
		lifted := v.base.Lift(base)
		if j > 0 && !lifted.IsZero() {
			qr, err := v.QReciprocal(j)
			if err != nil {
				panic("maclane: " + err.Error())
			}
			lifted = lifted.Mul(qr)
		}
		out[j] = lifted
	}
	return out
}

func (v *AugmentedValuation) Lift(F *RPoly) *Poly {
	if F.IsZero() {
		return PolyZero()
	}
	if F.IsOne() {
		return PolyOne()
	}

	if v.kind != augNonFinalFinite {
		if !F.IsConstant() {
			panic("maclane: residue ring of a final valuation has no non-constant elements")
		}
		k, _, _ := v.residue()
		psi, err := v.Psi()
		if err != nil {
			panic("maclane: " + err.Error())
		}
		var base *RPoly
		if psi.Degree() > 1 {
			base = NewRPoly(v.base.ResidueField(), k.(*ExtensionField).Coordinates(F.Coeff(0))...)
		} else {
			base = RPolyConstant(v.base.ResidueField(), F.Coeff(0))
		}
		return v.base.Lift(base)
	}

	coeffs := v.liftCoefficients(F)
	return fromPhiCoefficients(coeffs, v.phi.Pow(v.tau()))
}

func (v *AugmentedValuation) LiftToKey(F *RPoly) (*Poly, error) {
	if v.kind != augNonFinalFinite {
		return nil, fmt.Errorf("%w: %s", ErrNoKeysOverTerminalValuation, v)
	}
	if F.IsConstant() {
		return nil, fmt.Errorf("%w: %s is constant", ErrInvalidResidue, F)
	}
	if !F.IsMonic() {
		return nil, fmt.Errorf("%w: %s is not monic", ErrInvalidResidue, F)
	}
	if irred, known := isIrreducible(F); known && !irred {
		return nil, fmt.Errorf("%w: %s is reducible", ErrInvalidResidue, F)
	}
	if F.IsGen() {
		return v.phi, nil
	}

	// Shift the valuations of all terms up by the value of phi^(tau·deg F)
	// and replace the leading coefficient by one. The second-highest
	// coefficient is reduced modulo phi since the multiplication by Q can
	// spill into the leading term.
	q, err := v.Q(F.Degree())
	if err != nil {
		return nil, err
	}
	coeffs := v.liftCoefficients(F)[:F.Degree()]
	for j := range coeffs {
		coeffs[j] = coeffs[j].Mul(q)
	}
	coeffs = append(coeffs, PolyOne())
	if len(coeffs) >= 2 {
		coeffs[len(coeffs)-2] = coeffs[len(coeffs)-2].Mod(v.phi)
	}
	tau := v.tau()
	ret := fromPhiCoefficients(coeffs, v.phi.Pow(tau))
	vf := v.mu.MulInt(int64(tau * F.Degree()))
	ret = v.Simplify(ret, vf)

	if debugChecks {
		assertInvariant(v.IsKey(ret) == nil, "a lifted residue polynomial must be a key")
	}
	return ret, nil
}

func (v *AugmentedValuation) IsKey(phi *Poly) error {
	if v.kind != augNonFinalFinite {
		return fmt.Errorf("%w: %s", ErrNoKeysOverTerminalValuation, v)
	}
	return sharedIsKey(v, phi)
}

func (v *AugmentedValuation) EffectiveDegree(f *Poly) int { return effectiveDegree(v, f) }

func (v *AugmentedValuation) IsEquivalenceUnit(f *Poly) bool { return isEquivalenceUnit(v, f) }

// EquivalenceUnit returns an equivalence unit of valuation s. Since phi must
// not divide a unit, s has to lie in the value group of the base.
func (v *AugmentedValuation) EquivalenceUnit(s Value) (*Poly, error) {
	return v.base.ElementWithValuation(s)
}

func (v *AugmentedValuation) EquivalenceReciprocal(f *Poly) (*Poly, error) {
	return equivalenceReciprocal(v, f)
}

func (v *AugmentedValuation) ElementWithValuation(s Value) (*Poly, error) {
	if !v.ValueGroup().Contains(s) {
		return nil, fmt.Errorf("%w: %s is not in %s", ErrNotInValueGroup, s, v.ValueGroup())
	}
	ret := PolyOne()
	rest := s
	for i := 0; !v.base.ValueGroup().Contains(rest); i++ {
		if i > v.tau() {
			return nil, fmt.Errorf("%w: %s cannot be decomposed over %s", ErrNotInValueGroup, s, v.base)
		}
		ret = ret.Mul(v.phi)
		rest = rest.Sub(v.mu)
	}
	c, err := v.base.ElementWithValuation(rest)
	if err != nil {
		return nil, err
	}
	return v.Simplify(ret.Mul(c), s), nil
}

func (v *AugmentedValuation) Uniformizer() (*Poly, error) {
	g := v.ValueGroup()
	if g.IsTrivial() {
		return nil, fmt.Errorf("maclane: %s has no uniformizer", v)
	}
	return v.ElementWithValuation(RatValue(g.Generator()))
}

// Q returns an equivalence unit with the same valuation as phi^(tau·e). It
// is the periodicity unit of the reduction maps; its degree stays below the
// degree of phi, which LiftToKey relies on when multiplying coefficients.
func (v *AugmentedValuation) Q(e int) (*Poly, error) {
	v.mtx.Lock()
	if v.memo.q == nil {
		v.memo.q = make(map[int]*Poly)
	}
	if q, ok := v.memo.q[e]; ok {
		v.mtx.Unlock()
		return q, nil
	}
	v.mtx.Unlock()

	step := v.mu.MulInt(int64(v.tau()))
	q1, err := v.EquivalenceUnit(step)
	if err != nil {
		return nil, err
	}
	q := powUnit(v, q1, e, step)
	if debugChecks {
		assertInvariant(v.IsEquivalenceUnit(q), "the periodicity unit must be an equivalence unit")
	}

	v.mtx.Lock()
	v.memo.q[e] = q
	v.mtx.Unlock()
	return q, nil
}

// QReciprocal returns the equivalence reciprocal of Q(e).
func (v *AugmentedValuation) QReciprocal(e int) (*Poly, error) {
	v.mtx.Lock()
	if v.memo.qRecip == nil {
		v.memo.qRecip = make(map[int]*Poly)
	}
	if q, ok := v.memo.qRecip[e]; ok {
		v.mtx.Unlock()
		return q, nil
	}
	v.mtx.Unlock()

	var ret *Poly
	if e == 1 {
		q1, err := v.Q(1)
		if err != nil {
			return nil, err
		}
		ret, err = v.EquivalenceReciprocal(q1)
		if err != nil {
			return nil, err
		}
	} else {
		r1, err := v.QReciprocal(1)
		if err != nil {
			return nil, err
		}
		step := v.mu.MulInt(int64(v.tau())).Neg()
		ret = powUnit(v, r1, e, step)
	}

	v.mtx.Lock()
	v.memo.qRecip[e] = ret
	v.mtx.Unlock()
	return ret, nil
}

func (v *AugmentedValuation) E() (int, error) {
	root := v.rootGauss()
	if root.IsTrivial() {
		return 0, fmt.Errorf("maclane: ramification index is not defined over a trivial chain")
	}
	baseE, err := v.base.E()
	if err != nil {
		return 0, err
	}
	if v.kind == augInfinite {
		return baseE, nil
	}
	return v.tau() * baseE, nil
}

func (v *AugmentedValuation) F() int {
	baseE, err := v.base.E()
	if err != nil {
		panic("maclane: " + err.Error())
	}
	return v.phi.Degree() / baseE
}

func (v *AugmentedValuation) rootGauss() InductiveValuation {
	var b InductiveValuation = v
	for {
		a, ok := b.(*AugmentedValuation)
		if !ok {
			return b
		}
		b = a.base
	}
}

func (v *AugmentedValuation) ValueGroup() *ValueGroup {
	if v.kind == augInfinite {
		return v.base.ValueGroup()
	}
	return v.base.ValueGroup().Extend(v.mu.Rat())
}

func (v *AugmentedValuation) ValueSemigroup() *ValueSemigroup {
	if v.kind == augInfinite {
		return v.base.ValueSemigroup()
	}
	return v.base.ValueSemigroup().Extend(v.mu.Rat())
}

func (v *AugmentedValuation) IsGauss() bool { return false }

func (v *AugmentedValuation) IsFinal() bool { return v.kind != augNonFinalFinite }

func (v *AugmentedValuation) IsTrivial() bool { return false }

func (v *AugmentedValuation) LowerBound(f *Poly) Value {
	if v.kind == augInfinite {
		return v.base.LowerBound(f.PhiCoefficients(v.phi)[0])
	}
	if v.phi.IsX() {
		c := v.Constant()
		ret := Infinity()
		for i := 0; i <= f.Degree(); i++ {
			val := c.Value(f.Coeff(i))
			if val.IsInf() {
				continue
			}
			val = val.Add(v.mu.MulInt(int64(i)))
			if val.Cmp(ret) < 0 {
				ret = val
			}
		}
		return ret
	}
	return v.base.LowerBound(f)
}

func (v *AugmentedValuation) UpperBound(f *Poly) Value {
	if f.IsZero() {
		return Infinity()
	}
	if v.kind == augInfinite {
		// Only the constant phi-adic coefficient contributes a finite value.
		return v.base.UpperBound(f.PhiCoefficients(v.phi)[0])
	}
	n := int64((f.Degree() + v.phi.Degree() - 1) / v.phi.Degree())
	ret := v.Constant().Value(f.Leading())
	if n > 0 {
		ret = ret.Add(v.mu.MulInt(n))
	}
	return ret
}

func (v *AugmentedValuation) Simplify(f *Poly, err Value) *Poly {
	if !err.IsSet() {
		err = v.UpperBound(f)
	}
	if v.kind == augInfinite {
		if err.IsInf() {
			return f
		}
		return v.base.Simplify(f.PhiCoefficients(v.phi)[0], err)
	}
	return v.base.Simplify(f, err)
}

func (v *AugmentedValuation) AugmentationChain() []InductiveValuation {
	return append(v.base.AugmentationChain(), v)
}

func (v *AugmentedValuation) Restriction() ConstantValuation { return v.base.Restriction() }

func (v *AugmentedValuation) Ge(o InductiveValuation) bool {
	if o.IsTrivial() {
		return true
	}
	switch w := o.(type) {
	case *GaussValuation:
		return v.base.Ge(w)
	case *AugmentedValuation:
		if v.Value(w.phi).Cmp(w.mu) >= 0 {
			return v.Ge(w.base)
		}
		return false
	}
	return false
}

func (v *AugmentedValuation) Equal(o InductiveValuation) bool {
	w, ok := o.(*AugmentedValuation)
	return ok && v.phi.Equal(w.phi) && v.mu.Equal(w.mu) && v.base.Equal(w.base)
}

func (v *AugmentedValuation) ScaleBy(s *big.Rat) InductiveValuation {
	if s.Sign() <= 0 {
		panic("maclane: scale must be positive")
	}
	mu := v.mu
	if !mu.IsInf() {
		mu = mu.MulRat(s)
	}
	w, err := Augment(v.base.ScaleBy(s), v.phi, mu)
	if err != nil {
		panic("maclane: " + err.Error())
	}
	return w
}

// Extensions returns the extensions of this valuation over the given
// extensions of its base valuation. Where the key polynomial stays a key it
// is carried over directly; otherwise it decomposes into keys over the new
// base and the prescribed value is distributed onto the factors.
func (v *AugmentedValuation) Extensions(bases []InductiveValuation) ([]InductiveValuation, error) {
	var ret []InductiveValuation
	for _, b := range bases {
		if b.IsKey(v.phi) == nil {
			w, err := Augment(b, v.phi, v.mu)
			if err != nil {
				return nil, err
			}
			ret = append(ret, w)
			continue
		}
		dec, err := EquivalenceDecompose(b, v.phi)
		if err != nil {
			return nil, err
		}
		for _, fac := range dec.Factors {
			// Solve v(phi) = mu for the value of this factor, with all other
			// factors and the unit keeping their values under b.
			rest := b.Value(dec.Unit)
			for _, other := range dec.Factors {
				if other.Key.Equal(fac.Key) {
					continue
				}
				rest = rest.Add(b.Value(other.Key).MulInt(int64(other.Multiplicity)))
			}
			mu := v.mu.Sub(rest).DivInt(int64(fac.Multiplicity))
			w, err := Augment(b, fac.Key, mu)
			if err != nil {
				return nil, err
			}
			ret = append(ret, w)
		}
	}
	logger().Debug("extended valuation",
		zap.Stringer("valuation", v),
		zap.Int("bases", len(bases)),
		zap.Int("extensions", len(ret)))
	return ret, nil
}

func (v *AugmentedValuation) String() string {
	var links []string
	var b InductiveValuation = v
	for {
		a, ok := b.(*AugmentedValuation)
		if !ok {
			links = append(links, b.String())
			break
		}
		links = append(links, fmt.Sprintf("v(%s) = %s", a.phi, a.mu))
		b = a.base
	}
	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}
	return "[ " + strings.Join(links, ", ") + " ]"
}
