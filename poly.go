package maclane

import (
	"math/big"
	"strings"
)

// Poly is a dense univariate polynomial over ℚ. The coefficient of x^i is
// c[i]; the slice is trimmed so the last entry of a non-zero polynomial is
// non-zero, and the zero polynomial has an empty slice.
//
// Polynomials are immutable: no method mutates its receiver or arguments,
// and stored rationals are never written through.
type Poly struct {
	c []*big.Rat
}

var (
	ratZero = new(big.Rat)
	ratOne  = big.NewRat(1, 1)
)

// NewPoly builds a polynomial from coefficients in increasing degree order.
// The coefficients are copied.
func NewPoly(coeffs ...*big.Rat) *Poly {
	c := make([]*big.Rat, len(coeffs))
	for i, r := range coeffs {
		c[i] = new(big.Rat).Set(r)
	}
	return &Poly{c: trimRats(c)}
}

// PolyFromInt64 builds a polynomial from integer coefficients in increasing
// degree order.
func PolyFromInt64(coeffs ...int64) *Poly {
	c := make([]*big.Rat, len(coeffs))
	for i, n := range coeffs {
		c[i] = big.NewRat(n, 1)
	}
	return &Poly{c: trimRats(c)}
}

// PolyZero returns the zero polynomial.
func PolyZero() *Poly { return &Poly{} }

// PolyOne returns the constant polynomial 1.
func PolyOne() *Poly { return &Poly{c: []*big.Rat{big.NewRat(1, 1)}} }

// PolyX returns the generator x.
func PolyX() *Poly { return &Poly{c: []*big.Rat{new(big.Rat), big.NewRat(1, 1)}} }

// PolyConstant returns the constant polynomial r.
func PolyConstant(r *big.Rat) *Poly {
	if r.Sign() == 0 {
		return PolyZero()
	}
	return &Poly{c: []*big.Rat{new(big.Rat).Set(r)}}
}

func trimRats(c []*big.Rat) []*big.Rat {
	i := len(c)
	for i > 0 && c[i-1].Sign() == 0 {
		i--
	}
	return c[:i]
}

// Degree returns the degree of the polynomial, -1 for zero.
func (p *Poly) Degree() int { return len(p.c) - 1 }

// Coeff returns the coefficient of x^i. The caller must not mutate it.
func (p *Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.c) {
		return ratZero
	}
	return p.c[i]
}

// Leading returns the leading coefficient; zero for the zero polynomial.
func (p *Poly) Leading() *big.Rat { return p.Coeff(p.Degree()) }

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return len(p.c) == 0 }

// IsOne reports whether p is the constant polynomial 1.
func (p *Poly) IsOne() bool { return len(p.c) == 1 && p.c[0].Cmp(ratOne) == 0 }

// IsConstant reports whether deg(p) <= 0.
func (p *Poly) IsConstant() bool { return len(p.c) <= 1 }

// IsMonic reports whether the leading coefficient is 1.
func (p *Poly) IsMonic() bool { return !p.IsZero() && p.Leading().Cmp(ratOne) == 0 }

// IsX reports whether p is exactly the generator x.
func (p *Poly) IsX() bool {
	return len(p.c) == 2 && p.c[0].Sign() == 0 && p.c[1].Cmp(ratOne) == 0
}

// Equal reports coefficient-wise equality.
func (p *Poly) Equal(q *Poly) bool {
	if len(p.c) != len(q.c) {
		return false
	}
	for i := range p.c {
		if p.c[i].Cmp(q.c[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns p + q.
func (p *Poly) Add(q *Poly) *Poly {
	n := len(p.c)
	if len(q.c) > n {
		n = len(q.c)
	}
	c := make([]*big.Rat, n)
	for i := range c {
		c[i] = new(big.Rat).Add(p.Coeff(i), q.Coeff(i))
	}
	return &Poly{c: trimRats(c)}
}

// Sub returns p - q.
func (p *Poly) Sub(q *Poly) *Poly {
	n := len(p.c)
	if len(q.c) > n {
		n = len(q.c)
	}
	c := make([]*big.Rat, n)
	for i := range c {
		c[i] = new(big.Rat).Sub(p.Coeff(i), q.Coeff(i))
	}
	return &Poly{c: trimRats(c)}
}

// Neg returns -p.
func (p *Poly) Neg() *Poly {
	c := make([]*big.Rat, len(p.c))
	for i := range c {
		c[i] = new(big.Rat).Neg(p.c[i])
	}
	return &Poly{c: c}
}

// Mul returns p * q by schoolbook convolution.
func (p *Poly) Mul(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return PolyZero()
	}
	c := make([]*big.Rat, len(p.c)+len(q.c)-1)
	for i := range c {
		c[i] = new(big.Rat)
	}
	tmp := new(big.Rat)
	for i, a := range p.c {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range q.c {
			if b.Sign() == 0 {
				continue
			}
			c[i+j].Add(c[i+j], tmp.Mul(a, b))
		}
	}
	return &Poly{c: trimRats(c)}
}

// MulRat returns p scaled by the rational r.
func (p *Poly) MulRat(r *big.Rat) *Poly {
	if r.Sign() == 0 {
		return PolyZero()
	}
	c := make([]*big.Rat, len(p.c))
	for i := range c {
		c[i] = new(big.Rat).Mul(p.c[i], r)
	}
	return &Poly{c: trimRats(c)}
}

// Pow returns p^n for n >= 0.
func (p *Poly) Pow(n int) *Poly {
	if n < 0 {
		panic("maclane: negative polynomial power")
	}
	ret := PolyOne()
	sq := p
	for n > 0 {
		if n&1 == 1 {
			ret = ret.Mul(sq)
		}
		n >>= 1
		if n > 0 {
			sq = sq.Mul(sq)
		}
	}
	return ret
}

// DivMod returns q, r with p = q*b + r and deg(r) < deg(b). b must be
// non-zero; coefficients are exact rationals so division always succeeds.
func (p *Poly) DivMod(b *Poly) (quo, rem *Poly) {
	if b.IsZero() {
		panic("maclane: polynomial division by zero")
	}
	if p.Degree() < b.Degree() {
		return PolyZero(), p
	}
	inv := new(big.Rat).Inv(b.Leading())
	rc := make([]*big.Rat, len(p.c))
	for i := range rc {
		rc[i] = new(big.Rat).Set(p.c[i])
	}
	n, m := p.Degree(), b.Degree()
	qc := make([]*big.Rat, n-m+1)
	tmp := new(big.Rat)
	for i := n - m; i >= 0; i-- {
		qi := new(big.Rat).Mul(rc[m+i], inv)
		qc[i] = qi
		if qi.Sign() == 0 {
			continue
		}
		for j := 0; j <= m; j++ {
			rc[i+j].Sub(rc[i+j], tmp.Mul(qi, b.Coeff(j)))
		}
	}
	return &Poly{c: trimRats(qc)}, &Poly{c: trimRats(rc[:m])}
}

// Mod returns the remainder of p modulo b.
func (p *Poly) Mod(b *Poly) *Poly {
	_, r := p.DivMod(b)
	return r
}

// PhiCoefficients returns the phi-adic expansion of p: the unique
// polynomials f_i with p = Σ f_i·phi^i and deg(f_i) < deg(phi). The result
// is never empty; the expansion of zero is [0]. phi must be non-constant.
func (p *Poly) PhiCoefficients(phi *Poly) []*Poly {
	if phi.Degree() < 1 {
		panic("maclane: phi-adic expansion requires non-constant phi")
	}
	if p.IsZero() {
		return []*Poly{PolyZero()}
	}
	var out []*Poly
	f := p
	for !f.IsZero() {
		q, r := f.DivMod(phi)
		out = append(out, r)
		f = q
	}
	return out
}

// fromPhiCoefficients assembles Σ coeffs[i]·base^i.
func fromPhiCoefficients(coeffs []*Poly, base *Poly) *Poly {
	ret := PolyZero()
	pow := PolyOne()
	for i, c := range coeffs {
		if i > 0 {
			pow = pow.Mul(base)
		}
		if !c.IsZero() {
			ret = ret.Add(c.Mul(pow))
		}
	}
	return ret
}

func (p *Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	var parts []string
	for i := len(p.c) - 1; i >= 0; i-- {
		r := p.c[i]
		if r.Sign() == 0 {
			continue
		}
		parts = append(parts, formatTerm(r.RatString(), "x", i))
	}
	return strings.Join(parts, " + ")
}

// formatTerm renders coeff*name^deg with the usual omissions.
func formatTerm(coeff, name string, deg int) string {
	switch {
	case deg == 0:
		return coeff
	case coeff == "1":
		coeff = ""
	default:
		coeff += "*"
	}
	if deg == 1 {
		return coeff + name
	}
	return coeff + name + "^" + itoa(deg)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
