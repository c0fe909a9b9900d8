package maclane

import (
	"fmt"
	"math/big"
)

// Residue is an element of a ResidueField. Elements are opaque; all
// arithmetic goes through the field that owns them, the way the pack's
// field rings operate on raw element values.
type Residue interface {
	isResidue()
}

type fpElem struct{ v *big.Int }  // element of a prime field, normalized to [0, p)
type ratElem struct{ v *big.Rat } // element of the rational residue field
type extElem struct{ c []Residue } // coordinates over the base field, trimmed

func (fpElem) isResidue()  {}
func (ratElem) isResidue() {}
func (extElem) isResidue() {}

// ResidueField is the exact field in which residues of a valuation live.
// Towers of these arise from successive augmentations: each augmentation
// with a non-trivial residual extension wraps the previous field in an
// ExtensionField.
type ResidueField interface {
	Zero() Residue
	One() Residue
	FromInt64(n int64) Residue
	Add(a, b Residue) Residue
	Sub(a, b Residue) Residue
	Neg(a Residue) Residue
	Mul(a, b Residue) Residue
	Inverse(a Residue) (Residue, error)
	IsZero(a Residue) bool
	IsOne(a Residue) bool
	Equal(a, b Residue) bool
	// Characteristic of the field.
	Characteristic() *big.Int
	// Order returns the number of elements, or nil for infinite fields.
	Order() *big.Int
	Format(a Residue) string
	String() string
}

// ============================================================
// Prime field F_p
// ============================================================

// PrimeField is the finite field F_p for a prime p.
type PrimeField struct {
	p *big.Int
}

// NewPrimeField returns F_p. p must be prime; this is not verified.
func NewPrimeField(p *big.Int) *PrimeField {
	return &PrimeField{p: new(big.Int).Set(p)}
}

func (k *PrimeField) norm(n *big.Int) Residue {
	m := new(big.Int).Mod(n, k.p)
	return fpElem{v: m}
}

func (k *PrimeField) Zero() Residue            { return fpElem{v: new(big.Int)} }
func (k *PrimeField) One() Residue             { return fpElem{v: big.NewInt(1)} }
func (k *PrimeField) FromInt64(n int64) Residue { return k.norm(big.NewInt(n)) }

// FromBigInt reduces n modulo p.
func (k *PrimeField) FromBigInt(n *big.Int) Residue { return k.norm(n) }

func (k *PrimeField) Add(a, b Residue) Residue {
	return k.norm(new(big.Int).Add(a.(fpElem).v, b.(fpElem).v))
}

func (k *PrimeField) Sub(a, b Residue) Residue {
	return k.norm(new(big.Int).Sub(a.(fpElem).v, b.(fpElem).v))
}

func (k *PrimeField) Neg(a Residue) Residue {
	return k.norm(new(big.Int).Neg(a.(fpElem).v))
}

func (k *PrimeField) Mul(a, b Residue) Residue {
	return k.norm(new(big.Int).Mul(a.(fpElem).v, b.(fpElem).v))
}

func (k *PrimeField) Inverse(a Residue) (Residue, error) {
	v := a.(fpElem).v
	if v.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	inv := new(big.Int).ModInverse(v, k.p)
	if inv == nil {
		return nil, fmt.Errorf("maclane: %s is not invertible modulo %s", v, k.p)
	}
	return fpElem{v: inv}, nil
}

func (k *PrimeField) IsZero(a Residue) bool { return a.(fpElem).v.Sign() == 0 }

func (k *PrimeField) IsOne(a Residue) bool {
	return a.(fpElem).v.Cmp(big.NewInt(1)) == 0
}

func (k *PrimeField) Equal(a, b Residue) bool {
	return a.(fpElem).v.Cmp(b.(fpElem).v) == 0
}

func (k *PrimeField) Characteristic() *big.Int { return new(big.Int).Set(k.p) }
func (k *PrimeField) Order() *big.Int          { return new(big.Int).Set(k.p) }
func (k *PrimeField) Format(a Residue) string  { return a.(fpElem).v.String() }
func (k *PrimeField) String() string           { return "Finite Field of size " + k.p.String() }

// Int returns the canonical representative in [0, p).
func (k *PrimeField) Int(a Residue) *big.Int { return new(big.Int).Set(a.(fpElem).v) }

// ============================================================
// Rational residue field (trivial valuation)
// ============================================================

// RationalField is ℚ as a residue field, the residue of the trivial
// valuation.
type RationalField struct{}

func (RationalField) Zero() Residue             { return ratElem{v: new(big.Rat)} }
func (RationalField) One() Residue              { return ratElem{v: big.NewRat(1, 1)} }
func (RationalField) FromInt64(n int64) Residue { return ratElem{v: big.NewRat(n, 1)} }

// FromRat wraps a rational as a residue. The rational is copied.
func (RationalField) FromRat(r *big.Rat) Residue { return ratElem{v: new(big.Rat).Set(r)} }

func (RationalField) Add(a, b Residue) Residue {
	return ratElem{v: new(big.Rat).Add(a.(ratElem).v, b.(ratElem).v)}
}

func (RationalField) Sub(a, b Residue) Residue {
	return ratElem{v: new(big.Rat).Sub(a.(ratElem).v, b.(ratElem).v)}
}

func (RationalField) Neg(a Residue) Residue {
	return ratElem{v: new(big.Rat).Neg(a.(ratElem).v)}
}

func (RationalField) Mul(a, b Residue) Residue {
	return ratElem{v: new(big.Rat).Mul(a.(ratElem).v, b.(ratElem).v)}
}

func (RationalField) Inverse(a Residue) (Residue, error) {
	if a.(ratElem).v.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return ratElem{v: new(big.Rat).Inv(a.(ratElem).v)}, nil
}

func (RationalField) IsZero(a Residue) bool { return a.(ratElem).v.Sign() == 0 }

func (RationalField) IsOne(a Residue) bool {
	return a.(ratElem).v.Cmp(big.NewRat(1, 1)) == 0
}

func (RationalField) Equal(a, b Residue) bool {
	return a.(ratElem).v.Cmp(b.(ratElem).v) == 0
}

func (RationalField) Characteristic() *big.Int { return new(big.Int) }
func (RationalField) Order() *big.Int          { return nil }
func (RationalField) Format(a Residue) string  { return a.(ratElem).v.RatString() }
func (RationalField) String() string           { return "Rational Field" }

// Rat returns the underlying rational. The caller must not mutate it.
func (RationalField) Rat(a Residue) *big.Rat { return a.(ratElem).v }

// ============================================================
// Extension field k[u]/(psi)
// ============================================================

// ExtensionField is a simple algebraic extension of a residue field by a
// root of a monic irreducible polynomial psi. Elements are stored by their
// coordinate vectors over the base field.
type ExtensionField struct {
	base ResidueField
	mod  *RPoly
	name string
}

// NewExtensionField returns base[name]/(psi). psi must be monic of degree
// at least 2 over base; irreducibility is the caller's obligation.
func NewExtensionField(base ResidueField, psi *RPoly, name string) (*ExtensionField, error) {
	if psi.Degree() < 2 {
		return nil, fmt.Errorf("maclane: extension by a polynomial of degree %d", psi.Degree())
	}
	if !psi.IsMonic() {
		return nil, fmt.Errorf("maclane: extension modulus must be monic")
	}
	return &ExtensionField{base: base, mod: psi, name: name}, nil
}

// Base returns the field being extended.
func (k *ExtensionField) Base() ResidueField { return k.base }

// Modulus returns the defining polynomial psi.
func (k *ExtensionField) Modulus() *RPoly { return k.mod }

// Degree returns the degree of the extension.
func (k *ExtensionField) Degree() int { return k.mod.Degree() }

// Gen returns the residue class of the generator, a root of psi.
func (k *ExtensionField) Gen() Residue {
	return extElem{c: []Residue{k.base.Zero(), k.base.One()}}
}

// Embed maps a base field element into the extension.
func (k *ExtensionField) Embed(a Residue) Residue {
	if k.base.IsZero(a) {
		return extElem{}
	}
	return extElem{c: []Residue{a}}
}

// Coordinates returns the coordinate vector of a over the base field,
// padded to the extension degree.
func (k *ExtensionField) Coordinates(a Residue) []Residue {
	c := a.(extElem).c
	out := make([]Residue, k.Degree())
	for i := range out {
		if i < len(c) {
			out[i] = c[i]
		} else {
			out[i] = k.base.Zero()
		}
	}
	return out
}

// FromCoordinates builds the element with the given coordinates over the
// base field.
func (k *ExtensionField) FromCoordinates(c []Residue) Residue {
	return k.wrap(NewRPoly(k.base, c...))
}

func (k *ExtensionField) unwrap(a Residue) *RPoly {
	return NewRPoly(k.base, a.(extElem).c...)
}

func (k *ExtensionField) wrap(p *RPoly) Residue {
	p = p.Mod(k.mod)
	return extElem{c: p.c}
}

func (k *ExtensionField) Zero() Residue { return extElem{} }

func (k *ExtensionField) One() Residue {
	return extElem{c: []Residue{k.base.One()}}
}

func (k *ExtensionField) FromInt64(n int64) Residue {
	return k.Embed(k.base.FromInt64(n))
}

func (k *ExtensionField) Add(a, b Residue) Residue {
	return k.wrap(k.unwrap(a).Add(k.unwrap(b)))
}

func (k *ExtensionField) Sub(a, b Residue) Residue {
	return k.wrap(k.unwrap(a).Sub(k.unwrap(b)))
}

func (k *ExtensionField) Neg(a Residue) Residue {
	return k.wrap(k.unwrap(a).Neg())
}

func (k *ExtensionField) Mul(a, b Residue) Residue {
	return k.wrap(k.unwrap(a).Mul(k.unwrap(b)))
}

func (k *ExtensionField) Inverse(a Residue) (Residue, error) {
	ap := k.unwrap(a)
	if ap.IsZero() {
		return nil, ErrDivisionByZero
	}
	// Bézout: s*a + t*psi = gcd = constant, so a^{-1} = s / gcd.
	g, s, _, err := ap.XGCD(k.mod)
	if err != nil {
		return nil, err
	}
	if g.Degree() != 0 {
		return nil, fmt.Errorf("maclane: %s is not invertible modulo %s", k.Format(a), k.mod.Format(k.name))
	}
	ginv, err := k.base.Inverse(g.Coeff(0))
	if err != nil {
		return nil, err
	}
	return k.wrap(s.MulScalar(ginv)), nil
}

func (k *ExtensionField) IsZero(a Residue) bool { return len(a.(extElem).c) == 0 }

func (k *ExtensionField) IsOne(a Residue) bool {
	c := a.(extElem).c
	return len(c) == 1 && k.base.IsOne(c[0])
}

func (k *ExtensionField) Equal(a, b Residue) bool {
	ac, bc := a.(extElem).c, b.(extElem).c
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !k.base.Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func (k *ExtensionField) Characteristic() *big.Int { return k.base.Characteristic() }

func (k *ExtensionField) Order() *big.Int {
	b := k.base.Order()
	if b == nil {
		return nil
	}
	return new(big.Int).Exp(b, big.NewInt(int64(k.Degree())), nil)
}

func (k *ExtensionField) Format(a Residue) string {
	return k.unwrap(a).Format(k.name)
}

func (k *ExtensionField) String() string {
	return fmt.Sprintf("%s extended by a root %s of %s", k.base, k.name, k.mod.Format(k.name))
}
