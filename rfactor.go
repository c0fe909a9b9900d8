package maclane

import (
	"fmt"
	"math/big"
	"math/rand"
)

// rfactor is one monic irreducible factor of a polynomial together with its
// multiplicity.
type rfactor struct {
	f    *RPoly
	mult int
}

var bigOne = big.NewInt(1)

// powResidue returns a^e in k for a non-negative big integer exponent.
func powResidue(k ResidueField, a Residue, e *big.Int) Residue {
	ret := k.One()
	sq := a
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			ret = k.Mul(ret, sq)
		}
		if i+1 < e.BitLen() {
			sq = k.Mul(sq, sq)
		}
	}
	return ret
}

// randomResidue draws a uniformly random element of a finite field from rng.
func randomResidue(k ResidueField, rng *rand.Rand) Residue {
	switch f := k.(type) {
	case *PrimeField:
		return f.FromBigInt(new(big.Int).Rand(rng, f.p))
	case *ExtensionField:
		c := make([]Residue, f.Degree())
		for i := range c {
			c[i] = randomResidue(f.base, rng)
		}
		return f.FromCoordinates(c)
	default:
		panic(fmt.Sprintf("maclane: cannot sample from %s", k))
	}
}

// isIrreducible decides irreducibility of a non-constant polynomial when the
// coefficient field admits an exact test. The second return is false when the
// question cannot be settled (large-degree polynomials over infinite fields).
func isIrreducible(p *RPoly) (irreducible, known bool) {
	if p.Degree() < 1 {
		return false, true
	}
	if p.Degree() == 1 {
		return true, true
	}
	k := p.k
	if k.Order() != nil {
		return rabinIrreducible(p.Monic()), true
	}
	// Infinite field: degree 2 and 3 reduce iff they have a root, which over ℚ
	// the rational root test settles exactly.
	if _, ok := k.(RationalField); ok && p.Degree() <= 3 {
		return len(rationalRoots(p)) == 0, true
	}
	return false, false
}

// rabinIrreducible tests a monic polynomial over a finite field.
func rabinIrreducible(f *RPoly) bool {
	k := f.k
	q := k.Order()
	n := f.Degree()
	x := RPolyGen(k)
	for _, d := range primeDivisors(n) {
		// x^(q^(n/d)) must not share a factor with f beyond x itself.
		e := new(big.Int).Exp(q, big.NewInt(int64(n/d)), nil)
		h := x.PowMod(e, f).Sub(x)
		if !f.GCD(h).IsOne() {
			return false
		}
	}
	e := new(big.Int).Exp(q, big.NewInt(int64(n)), nil)
	return x.PowMod(e, f).Sub(x).Mod(f).IsZero()
}

func primeDivisors(n int) []int {
	var out []int
	for p := 2; p*p <= n; p++ {
		if n%p == 0 {
			out = append(out, p)
			for n%p == 0 {
				n /= p
			}
		}
	}
	if n > 1 {
		out = append(out, n)
	}
	return out
}

// rationalRoots returns the distinct rational roots of a non-zero polynomial
// over ℚ, by the rational root theorem on the integer-scaled polynomial.
func rationalRoots(p *RPoly) []Residue {
	k := p.k.(RationalField)
	// Clear denominators.
	den := big.NewInt(1)
	for _, c := range p.c {
		den.Mul(den, k.Rat(c).Denom())
	}
	ic := make([]*big.Int, len(p.c))
	for i, c := range p.c {
		r := new(big.Rat).Mul(k.Rat(c), new(big.Rat).SetInt(den))
		ic[i] = new(big.Int).Set(r.Num())
	}
	// Strip trailing zero coefficients; x = 0 is then a root.
	var roots []Residue
	lo := 0
	for lo < len(ic)-1 && ic[lo].Sign() == 0 {
		lo++
	}
	if lo > 0 {
		roots = append(roots, k.Zero())
	}
	a0, an := new(big.Int).Abs(ic[lo]), new(big.Int).Abs(ic[len(ic)-1])
	for _, num := range divisors(a0) {
		for _, d := range divisors(an) {
			for _, sign := range []int64{1, -1} {
				cand := k.FromRat(new(big.Rat).SetFrac(new(big.Int).Mul(num, big.NewInt(sign)), d))
				if k.IsZero(p.Eval(cand)) {
					dup := false
					for _, r := range roots {
						if k.Equal(r, cand) {
							dup = true
							break
						}
					}
					if !dup {
						roots = append(roots, cand)
					}
				}
			}
		}
	}
	return roots
}

// divisors returns the positive divisors of |n|, with 1 for n = 0.
func divisors(n *big.Int) []*big.Int {
	a := new(big.Int).Abs(n)
	if a.Sign() == 0 || !a.IsInt64() {
		return []*big.Int{big.NewInt(1)}
	}
	m := a.Int64()
	var out []*big.Int
	for d := int64(1); d*d <= m; d++ {
		if m%d == 0 {
			out = append(out, big.NewInt(d))
			if d != m/d {
				out = append(out, big.NewInt(m/d))
			}
		}
	}
	return out
}

// factorMonic factors a monic non-constant polynomial into monic irreducible
// factors with multiplicities. Exact over finite fields; over ℚ it splits off
// rational roots and keeps the rootless remainder whole, which suffices for
// the residue polynomials arising over the valuations built here.
func factorMonic(p *RPoly) ([]rfactor, error) {
	if p.Degree() < 1 {
		return nil, fmt.Errorf("maclane: cannot factor constant polynomial %s", p)
	}
	if !p.IsMonic() {
		return nil, fmt.Errorf("maclane: cannot factor non-monic polynomial %s", p)
	}
	if p.k.Order() != nil {
		return factorFinite(p), nil
	}
	if _, ok := p.k.(RationalField); ok {
		return factorRational(p), nil
	}
	return nil, fmt.Errorf("maclane: factorization over %s is not supported", p.k)
}

func factorRational(p *RPoly) []rfactor {
	k := p.k
	var out []rfactor
	rem := p
	for _, root := range rationalRoots(p) {
		lin := NewRPoly(k, k.Neg(root), k.One())
		mult := 0
		for {
			q, r := rem.DivMod(lin)
			if !r.IsZero() {
				break
			}
			rem = q
			mult++
		}
		if mult > 0 {
			out = append(out, rfactor{f: lin, mult: mult})
		}
	}
	if rem.Degree() > 0 {
		out = append(out, rfactor{f: rem, mult: 1})
	}
	return out
}

// factorFinite is full factorization over a finite field: squarefree
// decomposition, then distinct-degree splitting, then equal-degree splitting.
func factorFinite(p *RPoly) []rfactor {
	// Randomness only steers the equal-degree splits; a fixed seed keeps the
	// whole factorization deterministic.
	rng := rand.New(rand.NewSource(0x6d61636c))
	var out []rfactor
	for _, sq := range squarefreeDecomposition(p) {
		for _, g := range distinctDegree(sq.f) {
			for _, h := range equalDegree(g.f, g.mult, rng) {
				out = append(out, rfactor{f: h, mult: sq.mult})
			}
		}
	}
	return out
}

// squarefreeDecomposition returns squarefree polynomials g_i and e_i with
// p = Π g_i^{e_i}, by Yun's method adapted to positive characteristic.
func squarefreeDecomposition(p *RPoly) []rfactor {
	ch := p.k.Characteristic()
	var out []rfactor
	var recurse func(f *RPoly, scale int)
	recurse = func(f *RPoly, scale int) {
		if f.Degree() < 1 {
			return
		}
		d := f.Derivative()
		if d.IsZero() {
			// f = g(x^ch); take the ch-th root of each surviving coefficient.
			recurse(pthRoot(f), scale*chInt(ch))
			return
		}
		// w holds the squarefree part not yet attributed to a multiplicity.
		w := f.GCD(d)
		c, _ := f.DivMod(w)
		for i := 1; !c.IsOne(); i++ {
			y := w.GCD(c)
			z, _ := c.DivMod(y)
			if z.Degree() > 0 {
				out = append(out, rfactor{f: z, mult: i * scale})
			}
			c = y
			w, _ = w.DivMod(y)
		}
		if w.Degree() > 0 {
			// Every factor of w has multiplicity divisible by ch.
			recurse(pthRoot(w), scale*chInt(ch))
		}
	}
	recurse(p.Monic(), 1)
	return out
}

func chInt(ch *big.Int) int {
	if !ch.IsInt64() {
		panic("maclane: characteristic overflows")
	}
	return int(ch.Int64())
}

// pthRoot inverts the Frobenius on a polynomial in x^ch: it returns g with
// g(x^ch) = f, taking the ch-th root of each coefficient (a^{q/ch}).
func pthRoot(f *RPoly) *RPoly {
	k := f.k
	ch := chInt(k.Characteristic())
	e := new(big.Int).Div(k.Order(), k.Characteristic())
	c := make([]Residue, f.Degree()/ch+1)
	for i := range c {
		a := f.Coeff(i * ch)
		if e.Cmp(bigOne) == 0 {
			c[i] = a // prime field: Frobenius is the identity
		} else {
			c[i] = powResidue(k, a, e)
		}
	}
	return NewRPoly(k, c...)
}

// distinctDegree splits a monic squarefree polynomial into products of
// irreducible factors of equal degree; mult carries that degree.
func distinctDegree(f *RPoly) []rfactor {
	k := f.k
	q := k.Order()
	x := RPolyGen(k)
	h := x
	var out []rfactor
	for d := 1; 2*d <= f.Degree(); d++ {
		h = h.PowMod(q, f)
		g := f.GCD(h.Sub(x))
		if g.Degree() > 0 {
			out = append(out, rfactor{f: g, mult: d})
			f, _ = f.DivMod(g)
			h = h.Mod(f)
		}
	}
	if f.Degree() > 0 {
		out = append(out, rfactor{f: f, mult: f.Degree()})
	}
	return out
}

// equalDegree splits a monic squarefree product of irreducible factors of
// known degree d into those factors (Cantor-Zassenhaus).
func equalDegree(f *RPoly, d int, rng *rand.Rand) []*RPoly {
	if f.Degree() == d {
		return []*RPoly{f}
	}
	k := f.k
	q := k.Order()
	split := func() *RPoly {
		for {
			a := randomRPoly(k, f.Degree()-1, rng)
			if a.Degree() < 1 {
				continue
			}
			g := f.GCD(a)
			if g.Degree() > 0 && g.Degree() < f.Degree() {
				return g
			}
			var b *RPoly
			if q.Bit(0) == 0 {
				// Characteristic 2: use the trace map over F_2.
				kk := new(big.Int).Exp(q, big.NewInt(int64(d)), nil).BitLen() - 1
				b = RPolyZero(k)
				t := a.Mod(f)
				for i := 0; i < kk; i++ {
					b = b.Add(t)
					t = t.Mul(t).Mod(f)
				}
			} else {
				e := new(big.Int).Exp(q, big.NewInt(int64(d)), nil)
				e.Sub(e, bigOne)
				e.Rsh(e, 1)
				b = a.PowMod(e, f).Sub(RPolyOne(k))
			}
			g = f.GCD(b)
			if g.Degree() > 0 && g.Degree() < f.Degree() {
				return g
			}
		}
	}
	g := split()
	h, _ := f.DivMod(g)
	out := equalDegree(g, d, rng)
	return append(out, equalDegree(h, d, rng)...)
}

func randomRPoly(k ResidueField, deg int, rng *rand.Rand) *RPoly {
	c := make([]Residue, deg+1)
	for i := range c {
		c[i] = randomResidue(k, rng)
	}
	return NewRPoly(k, c...)
}
