package maclane

import (
	"math/big"
	"strings"
)

// RPoly is a dense univariate polynomial over a ResidueField. The
// coefficient of the i-th power of the variable is c[i]; the slice is
// trimmed so the last entry of a non-zero polynomial is non-zero.
//
// Like Poly, RPoly values are immutable.
type RPoly struct {
	k ResidueField
	c []Residue
}

// NewRPoly builds a polynomial over k from coefficients in increasing degree
// order.
func NewRPoly(k ResidueField, coeffs ...Residue) *RPoly {
	c := make([]Residue, len(coeffs))
	copy(c, coeffs)
	return &RPoly{k: k, c: trimResidues(k, c)}
}

// RPolyFromInt64 builds a polynomial over k from integer coefficients in
// increasing degree order.
func RPolyFromInt64(k ResidueField, coeffs ...int64) *RPoly {
	c := make([]Residue, len(coeffs))
	for i, n := range coeffs {
		c[i] = k.FromInt64(n)
	}
	return &RPoly{k: k, c: trimResidues(k, c)}
}

// RPolyZero returns the zero polynomial over k.
func RPolyZero(k ResidueField) *RPoly { return &RPoly{k: k} }

// RPolyOne returns the constant polynomial 1 over k.
func RPolyOne(k ResidueField) *RPoly { return &RPoly{k: k, c: []Residue{k.One()}} }

// RPolyGen returns the generator of the polynomial ring over k.
func RPolyGen(k ResidueField) *RPoly {
	return &RPoly{k: k, c: []Residue{k.Zero(), k.One()}}
}

// RPolyConstant returns the constant polynomial a over k.
func RPolyConstant(k ResidueField, a Residue) *RPoly {
	if k.IsZero(a) {
		return RPolyZero(k)
	}
	return &RPoly{k: k, c: []Residue{a}}
}

func trimResidues(k ResidueField, c []Residue) []Residue {
	i := len(c)
	for i > 0 && k.IsZero(c[i-1]) {
		i--
	}
	return c[:i]
}

// Field returns the coefficient field.
func (p *RPoly) Field() ResidueField { return p.k }

// Degree returns the degree of the polynomial, -1 for zero.
func (p *RPoly) Degree() int { return len(p.c) - 1 }

// Coeff returns the coefficient of the i-th power of the variable.
func (p *RPoly) Coeff(i int) Residue {
	if i < 0 || i >= len(p.c) {
		return p.k.Zero()
	}
	return p.c[i]
}

// Leading returns the leading coefficient; zero for the zero polynomial.
func (p *RPoly) Leading() Residue { return p.Coeff(p.Degree()) }

// Coefficients returns the coefficient slice in increasing degree order.
// The caller must not mutate it.
func (p *RPoly) Coefficients() []Residue { return p.c }

// IsZero reports whether p is the zero polynomial.
func (p *RPoly) IsZero() bool { return len(p.c) == 0 }

// IsOne reports whether p is the constant polynomial 1.
func (p *RPoly) IsOne() bool { return len(p.c) == 1 && p.k.IsOne(p.c[0]) }

// IsConstant reports whether deg(p) <= 0.
func (p *RPoly) IsConstant() bool { return len(p.c) <= 1 }

// IsMonic reports whether the leading coefficient is 1.
func (p *RPoly) IsMonic() bool { return !p.IsZero() && p.k.IsOne(p.Leading()) }

// IsGen reports whether p is exactly the ring generator.
func (p *RPoly) IsGen() bool {
	return len(p.c) == 2 && p.k.IsZero(p.c[0]) && p.k.IsOne(p.c[1])
}

// Equal reports coefficient-wise equality.
func (p *RPoly) Equal(q *RPoly) bool {
	if len(p.c) != len(q.c) {
		return false
	}
	for i := range p.c {
		if !p.k.Equal(p.c[i], q.c[i]) {
			return false
		}
	}
	return true
}

// Add returns p + q.
func (p *RPoly) Add(q *RPoly) *RPoly {
	n := len(p.c)
	if len(q.c) > n {
		n = len(q.c)
	}
	c := make([]Residue, n)
	for i := range c {
		c[i] = p.k.Add(p.Coeff(i), q.Coeff(i))
	}
	return &RPoly{k: p.k, c: trimResidues(p.k, c)}
}

// Sub returns p - q.
func (p *RPoly) Sub(q *RPoly) *RPoly {
	n := len(p.c)
	if len(q.c) > n {
		n = len(q.c)
	}
	c := make([]Residue, n)
	for i := range c {
		c[i] = p.k.Sub(p.Coeff(i), q.Coeff(i))
	}
	return &RPoly{k: p.k, c: trimResidues(p.k, c)}
}

// Neg returns -p.
func (p *RPoly) Neg() *RPoly {
	c := make([]Residue, len(p.c))
	for i := range c {
		c[i] = p.k.Neg(p.c[i])
	}
	return &RPoly{k: p.k, c: c}
}

// Mul returns p * q by schoolbook convolution.
func (p *RPoly) Mul(q *RPoly) *RPoly {
	if p.IsZero() || q.IsZero() {
		return RPolyZero(p.k)
	}
	c := make([]Residue, len(p.c)+len(q.c)-1)
	for i := range c {
		c[i] = p.k.Zero()
	}
	for i, a := range p.c {
		if p.k.IsZero(a) {
			continue
		}
		for j, b := range q.c {
			if p.k.IsZero(b) {
				continue
			}
			c[i+j] = p.k.Add(c[i+j], p.k.Mul(a, b))
		}
	}
	return &RPoly{k: p.k, c: trimResidues(p.k, c)}
}

// MulScalar returns p scaled by a.
func (p *RPoly) MulScalar(a Residue) *RPoly {
	if p.k.IsZero(a) {
		return RPolyZero(p.k)
	}
	c := make([]Residue, len(p.c))
	for i := range c {
		c[i] = p.k.Mul(p.c[i], a)
	}
	return &RPoly{k: p.k, c: trimResidues(p.k, c)}
}

// Pow returns p^n for n >= 0.
func (p *RPoly) Pow(n int) *RPoly {
	if n < 0 {
		panic("maclane: negative polynomial power")
	}
	ret := RPolyOne(p.k)
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
// non-zero.
func (p *RPoly) DivMod(b *RPoly) (quo, rem *RPoly) {
	if b.IsZero() {
		panic("maclane: polynomial division by zero")
	}
	if p.Degree() < b.Degree() {
		return RPolyZero(p.k), p
	}
	k := p.k
	inv, err := k.Inverse(b.Leading())
	if err != nil {
		panic("maclane: non-invertible leading coefficient: " + err.Error())
	}
	rc := make([]Residue, len(p.c))
	copy(rc, p.c)
	n, m := p.Degree(), b.Degree()
	qc := make([]Residue, n-m+1)
	for i := n - m; i >= 0; i-- {
		qi := k.Mul(rc[m+i], inv)
		qc[i] = qi
		if k.IsZero(qi) {
			continue
		}
		for j := 0; j <= m; j++ {
			rc[i+j] = k.Sub(rc[i+j], k.Mul(qi, b.Coeff(j)))
		}
	}
	return &RPoly{k: k, c: trimResidues(k, qc)}, &RPoly{k: k, c: trimResidues(k, rc[:m])}
}

// Mod returns the remainder of p modulo b.
func (p *RPoly) Mod(b *RPoly) *RPoly {
	_, r := p.DivMod(b)
	return r
}

// Monic returns p scaled to leading coefficient 1. p must be non-zero.
func (p *RPoly) Monic() *RPoly {
	if p.IsZero() {
		panic("maclane: monic of zero polynomial")
	}
	if p.IsMonic() {
		return p
	}
	inv, err := p.k.Inverse(p.Leading())
	if err != nil {
		panic("maclane: non-invertible leading coefficient: " + err.Error())
	}
	return p.MulScalar(inv)
}

// GCD returns the monic greatest common divisor of p and q.
func (p *RPoly) GCD(q *RPoly) *RPoly {
	a, b := p, q
	for !b.IsZero() {
		a, b = b, a.Mod(b)
	}
	if a.IsZero() {
		return a
	}
	return a.Monic()
}

// XGCD returns g, s, t with g = s*p + t*q and g the (not necessarily monic)
// greatest common divisor of p and q.
func (p *RPoly) XGCD(q *RPoly) (g, s, t *RPoly, err error) {
	k := p.k
	r0, r1 := p, q
	s0, s1 := RPolyOne(k), RPolyZero(k)
	t0, t1 := RPolyZero(k), RPolyOne(k)
	for !r1.IsZero() {
		quo, rem := r0.DivMod(r1)
		r0, r1 = r1, rem
		s0, s1 = s1, s0.Sub(quo.Mul(s1))
		t0, t1 = t1, t0.Sub(quo.Mul(t1))
	}
	return r0, s0, t0, nil
}

// PowMod returns p^e modulo m for a non-negative big integer exponent.
func (p *RPoly) PowMod(e *big.Int, m *RPoly) *RPoly {
	if e.Sign() < 0 {
		panic("maclane: negative polynomial power")
	}
	ret := RPolyOne(p.k).Mod(m)
	sq := p.Mod(m)
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			ret = ret.Mul(sq).Mod(m)
		}
		if i+1 < e.BitLen() {
			sq = sq.Mul(sq).Mod(m)
		}
	}
	return ret
}

// Derivative returns the formal derivative of p.
func (p *RPoly) Derivative() *RPoly {
	if p.IsConstant() {
		return RPolyZero(p.k)
	}
	c := make([]Residue, len(p.c)-1)
	for i := 1; i < len(p.c); i++ {
		c[i-1] = p.k.Mul(p.k.FromInt64(int64(i)), p.c[i])
	}
	return &RPoly{k: p.k, c: trimResidues(p.k, c)}
}

// Eval evaluates p at a point of the coefficient field by Horner's rule.
func (p *RPoly) Eval(at Residue) Residue {
	acc := p.k.Zero()
	for i := len(p.c) - 1; i >= 0; i-- {
		acc = p.k.Add(p.k.Mul(acc, at), p.c[i])
	}
	return acc
}

// EvalInto evaluates p at a point of a larger field, mapping coefficients
// through embed.
func (p *RPoly) EvalInto(target ResidueField, embed func(Residue) Residue, at Residue) Residue {
	acc := target.Zero()
	for i := len(p.c) - 1; i >= 0; i-- {
		acc = target.Add(target.Mul(acc, at), embed(p.c[i]))
	}
	return acc
}

// Map applies f to every coefficient, producing a polynomial over target.
func (p *RPoly) Map(target ResidueField, f func(Residue) Residue) *RPoly {
	c := make([]Residue, len(p.c))
	for i := range c {
		c[i] = f(p.c[i])
	}
	return &RPoly{k: target, c: trimResidues(target, c)}
}

// Format renders p with the given variable name.
func (p *RPoly) Format(name string) string {
	if p.IsZero() {
		return "0"
	}
	var parts []string
	for i := len(p.c) - 1; i >= 0; i-- {
		a := p.c[i]
		if p.k.IsZero(a) {
			continue
		}
		coeff := p.k.Format(a)
		if strings.ContainsAny(coeff, "+- ") && i > 0 {
			coeff = "(" + coeff + ")"
		}
		parts = append(parts, formatTerm(coeff, name, i))
	}
	return strings.Join(parts, " + ")
}

func (p *RPoly) String() string { return p.Format("y") }
