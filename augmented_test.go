package maclane

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// half is the augmentation [ Gauss 2-adic, v(x) = 1/2 ].
func half(t *testing.T) *AugmentedValuation {
	t.Helper()
	w, err := Augment(gauss2(), PolyX(), NewValue(1, 2))
	require.NoError(t, err)
	return w
}

// chain is the augmentation [ Gauss 2-adic, v(x) = 1/2, v(x^2+2) = 5/3 ].
func chain(t *testing.T) *AugmentedValuation {
	t.Helper()
	w, err := Augment(half(t), PolyFromInt64(2, 0, 1), NewValue(5, 3))
	require.NoError(t, err)
	return w
}

func TestAugmentErrors(t *testing.T) {
	_, err := Augment(nil, PolyX(), IntValue(1))
	assert.ErrorIs(t, err, ErrNotInductive)

	// x^2 + 1 is not a key over the 2-adic Gauss valuation.
	_, err = Augment(gauss2(), PolyFromInt64(1, 0, 1), IntValue(2))
	assert.ErrorIs(t, err, ErrInvalidKeyPolynomial)

	// The prescribed value must strictly increase.
	_, err = Augment(gauss2(), PolyX(), IntValue(0))
	assert.ErrorIs(t, err, ErrNonIncreasingValue)
	_, err = Augment(gauss2(), PolyX(), NoValue)
	assert.ErrorIs(t, err, ErrNonIncreasingValue)
}

func TestAugmentedValue(t *testing.T) {
	w := half(t)

	assert.Equal(t, 0, w.Value(PolyX()).Cmp(NewValue(1, 2)))
	assert.Equal(t, 0, w.Value(PolyFromInt64(2)).Cmp(IntValue(1)))
	assert.True(t, w.Value(NewPoly(new(big.Rat), new(big.Rat), big.NewRat(1, 2))).IsZero())
	assert.True(t, w.Value(PolyZero()).IsInf())

	vals := w.Valuations(PolyFromInt64(2, 2, 1))
	require.Len(t, vals, 3)
	assert.Equal(t, 0, vals[0].Cmp(IntValue(1)))
	assert.Equal(t, 0, vals[1].Cmp(NewValue(3, 2)))
	assert.Equal(t, 0, vals[2].Cmp(IntValue(1)))

	assert.False(t, w.IsGauss())
	assert.False(t, w.IsFinal())
	assert.False(t, w.IsTrivial())
}

func TestAugmentedInvariants(t *testing.T) {
	w := half(t)

	assert.Equal(t, 0, w.ValueGroup().Generator().Cmp(big.NewRat(1, 2)))
	e, err := w.E()
	require.NoError(t, err)
	assert.Equal(t, 2, e)
	assert.Equal(t, 1, w.F())

	// The residual polynomial of x is the variable itself, so the residue
	// field does not grow.
	assert.Equal(t, int64(2), w.ResidueField().Order().Int64())

	ww := chain(t)
	assert.Equal(t, 0, ww.ValueGroup().Generator().Cmp(big.NewRat(1, 6)))
	e, err = ww.E()
	require.NoError(t, err)
	assert.Equal(t, 6, e)
	assert.Equal(t, 1, ww.F())

	psi, err := ww.Psi()
	require.NoError(t, err)
	assert.True(t, psi.Equal(RPolyFromInt64(NewPrimeField(big.NewInt(2)), 1, 1)))
	assert.Equal(t, int64(2), ww.ResidueField().Order().Int64())

	s := ww.ValueSemigroup()
	assert.True(t, s.Contains(NewValue(5, 3)))
	assert.True(t, s.Contains(NewValue(1, 2)))
	assert.True(t, s.Contains(NewValue(13, 6)))
}

func TestAugmentedReduce(t *testing.T) {
	w := half(t)
	k := w.ResidueField()

	// x^2/2 has value zero and reduces to the residue variable.
	red, err := w.Reduce(NewPoly(new(big.Rat), new(big.Rat), big.NewRat(1, 2)))
	require.NoError(t, err)
	assert.True(t, red.Equal(RPolyGen(k)))

	// Positive value reduces to zero.
	red, err = w.Reduce(PolyX())
	require.NoError(t, err)
	assert.True(t, red.IsZero())

	_, err = w.Reduce(NewPoly(new(big.Rat), big.NewRat(1, 2)))
	assert.ErrorIs(t, err, ErrNegativeValuation)

	// Reduction is multiplicative.
	f := NewPoly(big.NewRat(1, 1), new(big.Rat), big.NewRat(1, 2))
	g := NewPoly(big.NewRat(3, 1), new(big.Rat), big.NewRat(1, 2))
	rf, err := w.Reduce(f)
	require.NoError(t, err)
	rg, err := w.Reduce(g)
	require.NoError(t, err)
	rfg, err := w.Reduce(f.Mul(g))
	require.NoError(t, err)
	assert.True(t, rfg.Equal(rf.Mul(rg)))
}

func TestAugmentedLift(t *testing.T) {
	w := half(t)
	k := w.ResidueField()

	F := RPolyFromInt64(k, 1, 1)
	f := w.Lift(F)
	assert.True(t, f.Equal(NewPoly(big.NewRat(1, 1), new(big.Rat), big.NewRat(1, 2))))

	red, err := w.Reduce(f)
	require.NoError(t, err)
	assert.True(t, red.Equal(F))

	// Monic residues lift to polynomials of degree E·deg(F)·deg(phi).
	F = RPolyFromInt64(k, 1, 1, 1)
	f = w.Lift(F)
	assert.Equal(t, 4, f.Degree())
	red, err = w.Reduce(f)
	require.NoError(t, err)
	assert.True(t, red.Equal(F))
}

func TestAugmentedLiftApproximatesInput(t *testing.T) {
	w := half(t)

	// For f of value zero, lift(reduce(f)) agrees with f up to strictly
	// higher valuation.
	f := NewPoly(big.NewRat(3, 1), new(big.Rat), big.NewRat(1, 2))
	red, err := w.Reduce(f)
	require.NoError(t, err)
	diff := w.Lift(red).Sub(f)
	assert.Greater(t, w.Value(diff).Cmp(w.Value(f)), 0)
}

func TestAugmentedChainHigherResidueDegree(t *testing.T) {
	ww := chain(t)
	k := ww.ResidueField()
	F := RPolyFromInt64(k, 1, 1, 1)

	red, err := ww.Reduce(ww.Lift(F))
	require.NoError(t, err)
	assert.True(t, red.Equal(F))

	key, err := ww.LiftToKey(F)
	require.NoError(t, err)
	assert.Equal(t, 12, key.Degree())
	assert.NoError(t, ww.IsKey(key))
}

func TestAugmentedLiftToKeyHigherResidueDegree(t *testing.T) {
	ww, err := Augment(half(t), PolyFromInt64(2, 0, 1), NewValue(5, 4))
	require.NoError(t, err)
	require.Equal(t, 0, ww.ValueGroup().Generator().Cmp(big.NewRat(1, 4)))

	// Powers of the periodicity unit keep degree below deg(phi) however
	// large the exponent gets.
	q, err := ww.Q(6)
	require.NoError(t, err)
	assert.Less(t, q.Degree(), ww.Phi().Degree())
	assert.True(t, ww.IsEquivalenceUnit(q))

	k := ww.ResidueField()
	F := RPolyFromInt64(k, 1, 1, 0, 1, 1, 0, 1)

	key, err := ww.LiftToKey(F)
	require.NoError(t, err)
	assert.Equal(t, 24, key.Degree())
	assert.NoError(t, ww.IsKey(key))

	red, err := ww.Reduce(ww.Lift(F))
	require.NoError(t, err)
	assert.True(t, red.Equal(F))
}

func TestAugmentedChainReduceLift(t *testing.T) {
	ww := chain(t)
	k := ww.ResidueField()
	phi := PolyFromInt64(2, 0, 1)

	// phi^3 / 2^5 has value zero and reduces to the residue variable.
	f := phi.Pow(3).MulRat(big.NewRat(1, 32))
	red, err := ww.Reduce(f)
	require.NoError(t, err)
	assert.True(t, red.Equal(RPolyGen(k)))

	F := RPolyFromInt64(k, 1, 1)
	red, err = ww.Reduce(ww.Lift(F))
	require.NoError(t, err)
	assert.True(t, red.Equal(F))
}

func TestAugmentedLiftToKey(t *testing.T) {
	w := half(t)
	k := w.ResidueField()

	key, err := w.LiftToKey(RPolyFromInt64(k, 1, 1))
	require.NoError(t, err)
	assert.True(t, key.Equal(PolyFromInt64(2, 0, 1)))
	assert.NoError(t, w.IsKey(key))

	// The residue variable lifts back to phi itself.
	key, err = w.LiftToKey(RPolyGen(k))
	require.NoError(t, err)
	assert.True(t, key.Equal(PolyX()))

	_, err = w.LiftToKey(RPolyOne(k))
	assert.ErrorIs(t, err, ErrInvalidResidue)
	_, err = w.LiftToKey(RPolyFromInt64(k, 0, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidResidue)

	// Over a longer chain the degree of a lifted key is tau·deg(F)·deg(phi).
	ww := chain(t)
	key, err = ww.LiftToKey(RPolyFromInt64(ww.ResidueField(), 1, 1))
	require.NoError(t, err)
	assert.NoError(t, ww.IsKey(key))
	assert.Equal(t, 6, key.Degree())
}

func TestAugmentedElementWithValuation(t *testing.T) {
	w := half(t)

	f, err := w.ElementWithValuation(NewValue(1, 2))
	require.NoError(t, err)
	assert.True(t, f.Equal(PolyX()))

	f, err = w.ElementWithValuation(IntValue(1))
	require.NoError(t, err)
	assert.True(t, f.Equal(PolyFromInt64(2)))

	f, err = w.ElementWithValuation(NewValue(3, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, w.Value(f).Cmp(NewValue(3, 2)))

	_, err = w.ElementWithValuation(NewValue(1, 3))
	assert.ErrorIs(t, err, ErrNotInValueGroup)

	pi, err := w.Uniformizer()
	require.NoError(t, err)
	assert.True(t, pi.Equal(PolyX()))

	ww := chain(t)
	pi, err = ww.Uniformizer()
	require.NoError(t, err)
	assert.Equal(t, 0, ww.Value(pi).Cmp(NewValue(1, 6)))
}

func TestAugmentedPeriodicityUnits(t *testing.T) {
	w := half(t)

	q, err := w.Q(1)
	require.NoError(t, err)
	assert.True(t, q.Equal(PolyFromInt64(2)))

	qr, err := w.QReciprocal(1)
	require.NoError(t, err)
	assert.True(t, qr.Equal(PolyConstant(big.NewRat(1, 2))))

	q2, err := w.Q(2)
	require.NoError(t, err)
	qr2, err := w.QReciprocal(2)
	require.NoError(t, err)
	assert.True(t, IsEquivalent(w, q2.Mul(qr2), PolyOne()))

	ww := chain(t)
	q, err = ww.Q(1)
	require.NoError(t, err)
	assert.Equal(t, 0, ww.Value(q).Cmp(IntValue(5)))
	assert.True(t, ww.IsEquivalenceUnit(q))
	qr, err = ww.QReciprocal(1)
	require.NoError(t, err)
	assert.True(t, IsEquivalent(ww, q.Mul(qr), PolyOne()))
}

func TestAugmentedFinalFinite(t *testing.T) {
	triv := NewGaussValuation(TrivialValuation{})
	v, err := Augment(triv, PolyX(), IntValue(1))
	require.NoError(t, err)

	assert.True(t, v.IsFinal())
	assert.Equal(t, 0, v.Value(PolyX()).Cmp(IntValue(1)))
	assert.True(t, v.Value(PolyFromInt64(1, 1)).IsZero())
	assert.Equal(t, 0, v.ValueGroup().Generator().Cmp(big.NewRat(1, 1)))

	// The residue ring is the field itself; only the constant term of the
	// expansion survives the reduction.
	red, err := v.Reduce(PolyFromInt64(1, 1, 1))
	require.NoError(t, err)
	assert.True(t, red.IsOne())
	red, err = v.Reduce(PolyX())
	require.NoError(t, err)
	assert.True(t, red.IsZero())

	k := RationalField{}
	F := RPolyConstant(k, k.FromRat(big.NewRat(5, 3)))
	red, err = v.Reduce(v.Lift(F))
	require.NoError(t, err)
	assert.True(t, red.Equal(F))

	assert.ErrorIs(t, v.IsKey(PolyX()), ErrNoKeysOverTerminalValuation)
	_, err = v.LiftToKey(RPolyGen(k))
	assert.ErrorIs(t, err, ErrNoKeysOverTerminalValuation)
	_, err = v.E()
	assert.Error(t, err)
}

func TestAugmentedInfinite(t *testing.T) {
	v, err := Augment(gauss2(), PolyFromInt64(1, 1, 1), Infinity())
	require.NoError(t, err)

	assert.True(t, v.IsFinal())
	assert.True(t, v.Value(PolyFromInt64(1, 1, 1)).IsInf())
	assert.True(t, v.Value(PolyX()).IsZero())

	// The value group is unchanged by an infinite augmentation.
	assert.Equal(t, 0, v.ValueGroup().Generator().Cmp(big.NewRat(1, 1)))
	e, err := v.E()
	require.NoError(t, err)
	assert.Equal(t, 1, e)

	// The residue field is F_4, with x mapping to a root of y^2+y+1.
	k := v.ResidueField()
	assert.Equal(t, int64(4), k.Order().Int64())
	red, err := v.Reduce(PolyX())
	require.NoError(t, err)
	require.True(t, red.IsConstant())
	a := red.Coeff(0)
	assert.True(t, k.IsZero(k.Add(k.Mul(a, a), k.Add(a, k.One()))))

	_, err = v.Reduce(NewPoly(big.NewRat(1, 2)))
	assert.ErrorIs(t, err, ErrNegativeValuation)
	_, err = v.LiftToKey(RPolyGen(k))
	assert.ErrorIs(t, err, ErrNoKeysOverTerminalValuation)
	_, err = Augment(v, PolyX(), Infinity())
	assert.ErrorIs(t, err, ErrNoKeysOverTerminalValuation)

	assert.True(t, v.UpperBound(PolyFromInt64(1, 1, 1)).IsInf())

	// The upper bound comes from the constant phi-adic coefficient and is
	// exact, so the default-bound simplification drops multiples of phi.
	f := PolyFromInt64(3, 1, 1)
	assert.Equal(t, 0, v.UpperBound(f).Cmp(IntValue(1)))
	g := v.Simplify(f, NoValue)
	assert.Equal(t, 0, v.Value(g).Cmp(IntValue(1)))
	assert.True(t, v.Value(f.Sub(g)).Cmp(IntValue(1)) > 0)
}

func TestAugmentDegenerateCollapse(t *testing.T) {
	w, err := Augment(gauss2(), PolyX(), IntValue(1))
	require.NoError(t, err)
	assert.Equal(t, 0, w.Value(PolyX()).Cmp(IntValue(1)))
	assert.True(t, w.Value(PolyFromInt64(1, 1, 1)).IsZero())

	ww, err := Augment(w, PolyFromInt64(2, 1), IntValue(2))
	require.NoError(t, err)

	// A key of the same degree replaces the last link instead of growing the
	// chain.
	assert.True(t, ww.Base().IsGauss())
	assert.Equal(t, 0, ww.Value(PolyFromInt64(2, 1)).Cmp(IntValue(2)))
	assert.Equal(t, 0, ww.Value(PolyX()).Cmp(IntValue(1)))

	// Re-augmenting with the same key is indistinguishable from augmenting
	// the original base directly.
	same, err := Augment(w, PolyX(), IntValue(2))
	require.NoError(t, err)
	direct, err := Augment(gauss2(), PolyX(), IntValue(2))
	require.NoError(t, err)
	assert.True(t, same.Equal(direct))

	// After a collapse the key and value hold against the base the chain
	// actually lands on.
	assert.NoError(t, ww.Base().IsKey(ww.Phi()))
	assert.True(t, ww.Mu().Cmp(ww.Base().Value(ww.Phi())) > 0)
}

func TestAugmentedOrdering(t *testing.T) {
	w := half(t)
	one, err := Augment(gauss2(), PolyX(), IntValue(1))
	require.NoError(t, err)
	triv := NewGaussValuation(TrivialValuation{})

	assert.True(t, one.Ge(w))
	assert.False(t, w.Ge(one))
	assert.True(t, w.Ge(gauss2()))
	assert.True(t, w.Ge(triv))
	assert.True(t, w.Ge(half(t)))

	ww := chain(t)
	assert.True(t, ww.Ge(w))
	assert.False(t, w.Ge(ww))

	assert.True(t, w.Equal(half(t)))
	assert.False(t, w.Equal(one))
	assert.False(t, w.Equal(gauss2()))
	assert.True(t, ww.Equal(chain(t)))
}

func TestAugmentedScaleBy(t *testing.T) {
	w := half(t).ScaleBy(big.NewRat(3, 1))

	assert.Equal(t, 0, w.Value(PolyX()).Cmp(NewValue(3, 2)))
	assert.Equal(t, 0, w.Value(PolyFromInt64(2)).Cmp(IntValue(3)))
	assert.Contains(t, w.String(), "3 * 2-adic")

	assert.Panics(t, func() { half(t).ScaleBy(big.NewRat(-1, 1)) })
}

func TestAugmentationChain(t *testing.T) {
	ww := chain(t)

	links := ww.AugmentationChain()
	require.Len(t, links, 3)
	assert.True(t, links[0].IsGauss())
	assert.True(t, links[1].Equal(half(t)))
	assert.True(t, links[2].Equal(ww))

	g := gauss2()
	links = g.AugmentationChain()
	require.Len(t, links, 1)
	assert.True(t, links[0].Equal(g))
}

func TestAugmentedRestriction(t *testing.T) {
	ww := chain(t)
	assert.True(t, ww.Restriction().Equal(NewPAdicValuationInt64(2)))
	assert.True(t, ww.Constant().Equal(NewPAdicValuationInt64(2)))
}

func TestAugmentedSimplify(t *testing.T) {
	w := half(t)

	f := PolyFromInt64(9, 1)
	g := w.Simplify(f, IntValue(2))
	assert.True(t, g.Equal(PolyFromInt64(1, 1)))
	assert.Greater(t, w.Value(f.Sub(g)).Cmp(IntValue(2)), 0)

	// The default error bound preserves value and reduction.
	g = w.Simplify(f, NoValue)
	assert.Equal(t, 0, w.Value(g).Cmp(w.Value(f)))
	rf, err := w.Reduce(f)
	require.NoError(t, err)
	rg, err := w.Reduce(g)
	require.NoError(t, err)
	assert.True(t, rf.Equal(rg))
}

func TestAugmentedString(t *testing.T) {
	assert.Equal(t,
		"[ Gauss valuation induced by 2-adic valuation, v(x) = 1/2, v(x^2 + 2) = 5/3 ]",
		chain(t).String())
}

func TestIsEquivalent(t *testing.T) {
	w := half(t)

	assert.True(t, IsEquivalent(w, PolyX(), PolyX()))
	assert.True(t, IsEquivalent(w, PolyFromInt64(9, 1), PolyFromInt64(1, 1)))
	assert.False(t, IsEquivalent(w, PolyX(), PolyFromInt64(1, 1)))
}

func TestEquivalenceDecompose(t *testing.T) {
	v := NewGaussValuation(NewPAdicValuationInt64(5))
	f := PolyFromInt64(1, 0, 1)

	dec, err := EquivalenceDecompose(v, f)
	require.NoError(t, err)
	assert.True(t, v.IsEquivalenceUnit(dec.Unit))
	require.Len(t, dec.Factors, 2)
	prod := dec.Unit
	for _, fac := range dec.Factors {
		assert.NoError(t, v.IsKey(fac.Key))
		assert.Equal(t, 1, fac.Multiplicity)
		prod = prod.Mul(fac.Key.Pow(fac.Multiplicity))
	}
	assert.True(t, IsEquivalent(v, f, prod))
}

func TestEquivalenceDecomposeUnit(t *testing.T) {
	v := NewGaussValuation(NewPAdicValuationInt64(5))

	dec, err := EquivalenceDecompose(v, PolyFromInt64(3, 5))
	require.NoError(t, err)
	assert.Empty(t, dec.Factors)
	assert.True(t, dec.Unit.Equal(PolyFromInt64(3, 5)))
}

func TestEquivalenceDecomposePhiPower(t *testing.T) {
	w := half(t)
	f := PolyFromInt64(0, 1, 0, 1) // x^3 + x = x·(x^2 + 1)

	// x^2 + 1 is an equivalence unit here, so the decomposition is a unit
	// times the power of phi dividing f in equivalence.
	dec, err := EquivalenceDecompose(w, f)
	require.NoError(t, err)
	require.Len(t, dec.Factors, 1)
	assert.True(t, dec.Factors[0].Key.Equal(PolyX()))
	assert.Equal(t, 1, dec.Factors[0].Multiplicity)
	prod := dec.Unit.Mul(dec.Factors[0].Key)
	assert.True(t, IsEquivalent(w, f, prod))
}

func TestEquivalenceDecomposeErrors(t *testing.T) {
	v := NewGaussValuation(NewPAdicValuationInt64(5))
	_, err := EquivalenceDecompose(v, PolyZero())
	assert.Error(t, err)

	final, err := Augment(NewGaussValuation(TrivialValuation{}), PolyX(), IntValue(1))
	require.NoError(t, err)
	_, err = EquivalenceDecompose(final, PolyX())
	assert.ErrorIs(t, err, ErrNoKeysOverTerminalValuation)
}

func TestAugmentedExtensionsKeyCarried(t *testing.T) {
	v, err := Augment(NewGaussValuation(NewPAdicValuationInt64(3)), PolyFromInt64(1, 0, 1), IntValue(2))
	require.NoError(t, err)

	// x^2 + 1 stays irreducible modulo 7, so the key carries over.
	exts, err := v.Extensions([]InductiveValuation{NewGaussValuation(NewPAdicValuationInt64(7))})
	require.NoError(t, err)
	require.Len(t, exts, 1)
	a := exts[0].(*AugmentedValuation)
	assert.True(t, a.Phi().Equal(PolyFromInt64(1, 0, 1)))
	assert.Equal(t, 0, a.Mu().Cmp(IntValue(2)))
}

func TestAugmentedExtensionsKeySplits(t *testing.T) {
	v, err := Augment(NewGaussValuation(NewPAdicValuationInt64(3)), PolyFromInt64(1, 0, 1), IntValue(2))
	require.NoError(t, err)

	// x^2 + 1 factors into two linear keys modulo 5, each inheriting the
	// prescribed value.
	exts, err := v.Extensions([]InductiveValuation{NewGaussValuation(NewPAdicValuationInt64(5))})
	require.NoError(t, err)
	require.Len(t, exts, 2)
	for _, e := range exts {
		a := e.(*AugmentedValuation)
		assert.Equal(t, 1, a.Phi().Degree())
		assert.Equal(t, 0, a.Mu().Cmp(IntValue(2)))
	}
	assert.False(t, exts[0].(*AugmentedValuation).Phi().Equal(exts[1].(*AugmentedValuation).Phi()))
}

func TestAugmentedBounds(t *testing.T) {
	w := half(t)
	ww := chain(t)
	inf, err := Augment(gauss2(), PolyFromInt64(1, 1, 1), Infinity())
	require.NoError(t, err)

	polys := []*Poly{
		PolyX(),
		PolyFromInt64(2, 1),
		PolyFromInt64(6, 0, 3, 1),
		NewPoly(big.NewRat(1, 4), big.NewRat(1, 2)),
	}
	for _, v := range []InductiveValuation{w, ww, inf} {
		for _, f := range polys {
			val := v.Value(f)
			assert.LessOrEqual(t, v.LowerBound(f).Cmp(val), 0, "%s on %s", v, f)
			assert.GreaterOrEqual(t, v.UpperBound(f).Cmp(val), 0, "%s on %s", v, f)
		}
		assert.True(t, v.LowerBound(PolyZero()).IsInf())
		assert.True(t, v.UpperBound(PolyZero()).IsInf())
	}
}

func TestAugmentedConcurrentUse(t *testing.T) {
	ww := chain(t)
	f := PolyFromInt64(2, 0, 1).Pow(3).MulRat(big.NewRat(1, 32))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			red, err := ww.Reduce(f)
			assert.NoError(t, err)
			assert.True(t, red.Equal(RPolyGen(ww.ResidueField())))
		}()
	}
	wg.Wait()
}
