package maclane

import (
	"math/big"
)

// Value is an element of the totally ordered value monoid ℚ ∪ {+∞}.
//
// Arithmetic is absorbing: x + ∞ = ∞, and +∞ is the unique maximum. The
// zero Value is the "unset" sentinel used for optional error bounds; it is
// not a number and must be tested with IsSet before use in arithmetic.
type Value struct {
	r   *big.Rat
	inf bool
}

// NoValue is the unset sentinel. It compares unequal to every set Value.
var NoValue = Value{}

// Infinity returns the +∞ Value.
func Infinity() Value { return Value{inf: true} }

// IntValue returns the Value n.
func IntValue(n int64) Value { return Value{r: big.NewRat(n, 1)} }

// NewValue returns the Value num/den. den must be non-zero.
func NewValue(num, den int64) Value { return Value{r: big.NewRat(num, den)} }

// RatValue returns the Value of r. The rational is copied.
func RatValue(r *big.Rat) Value { return Value{r: new(big.Rat).Set(r)} }

// IsSet reports whether v is a number or +∞ (as opposed to NoValue).
func (v Value) IsSet() bool { return v.inf || v.r != nil }

// IsInf reports whether v is +∞.
func (v Value) IsInf() bool { return v.inf }

// IsZero reports whether v is the number zero.
func (v Value) IsZero() bool { return !v.inf && v.r != nil && v.r.Sign() == 0 }

// Rat returns the underlying rational. The caller must not mutate it.
// Panics if v is unset or +∞.
func (v Value) Rat() *big.Rat {
	if !v.IsSet() || v.inf {
		panic("maclane: Rat on non-finite value")
	}
	return v.r
}

// Add returns v + o, with +∞ absorbing.
func (v Value) Add(o Value) Value {
	v.mustSet()
	o.mustSet()
	if v.inf || o.inf {
		return Infinity()
	}
	return Value{r: new(big.Rat).Add(v.r, o.r)}
}

// Sub returns v - o. o must be finite (there is no -∞ in the value monoid).
func (v Value) Sub(o Value) Value {
	v.mustSet()
	o.mustSet()
	if o.inf {
		panic("maclane: subtraction of +Infinity")
	}
	if v.inf {
		return Infinity()
	}
	return Value{r: new(big.Rat).Sub(v.r, o.r)}
}

// Neg returns -v. v must be finite.
func (v Value) Neg() Value {
	v.mustSet()
	if v.inf {
		panic("maclane: negation of +Infinity")
	}
	return Value{r: new(big.Rat).Neg(v.r)}
}

// MulInt returns v * n. For infinite v, n must be positive.
func (v Value) MulInt(n int64) Value {
	v.mustSet()
	if v.inf {
		if n <= 0 {
			panic("maclane: non-positive multiple of +Infinity")
		}
		return Infinity()
	}
	return Value{r: new(big.Rat).Mul(v.r, big.NewRat(n, 1))}
}

// MulRat returns v * c for a finite non-zero rational c. For infinite v, c
// must be positive.
func (v Value) MulRat(c *big.Rat) Value {
	v.mustSet()
	if v.inf {
		if c.Sign() <= 0 {
			panic("maclane: non-positive multiple of +Infinity")
		}
		return Infinity()
	}
	return Value{r: new(big.Rat).Mul(v.r, c)}
}

// DivInt returns v / n for a positive integer n.
func (v Value) DivInt(n int64) Value {
	if n <= 0 {
		panic("maclane: division by non-positive integer")
	}
	v.mustSet()
	if v.inf {
		return Infinity()
	}
	return Value{r: new(big.Rat).Mul(v.r, big.NewRat(1, n))}
}

// Cmp compares v and o: -1 if v < o, 0 if equal, +1 if v > o.
// +∞ compares equal to itself and greater than every finite value.
func (v Value) Cmp(o Value) int {
	v.mustSet()
	o.mustSet()
	switch {
	case v.inf && o.inf:
		return 0
	case v.inf:
		return 1
	case o.inf:
		return -1
	}
	return v.r.Cmp(o.r)
}

// Equal reports whether v and o are the same value. Unset values are only
// equal to other unset values.
func (v Value) Equal(o Value) bool {
	if !v.IsSet() || !o.IsSet() {
		return v.IsSet() == o.IsSet()
	}
	return v.Cmp(o) == 0
}

// Sign returns -1, 0 or +1 according to the sign of v (+∞ has sign +1).
func (v Value) Sign() int {
	v.mustSet()
	if v.inf {
		return 1
	}
	return v.r.Sign()
}

// Floor returns the largest integer not exceeding v. v must be finite.
func (v Value) Floor() *big.Int {
	v.mustSet()
	if v.inf {
		panic("maclane: floor of +Infinity")
	}
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(v.r.Num(), v.r.Denom(), m)
	return q
}

func (v Value) String() string {
	if !v.IsSet() {
		return "unset"
	}
	if v.inf {
		return "+Infinity"
	}
	return v.r.RatString()
}

func (v Value) mustSet() {
	if !v.IsSet() {
		panic("maclane: arithmetic on unset value")
	}
}

// minValue returns the minimum of a non-empty slice of values.
func minValue(vals []Value) Value {
	min := vals[0]
	for _, v := range vals[1:] {
		if v.Cmp(min) < 0 {
			min = v
		}
	}
	return min
}
