package maclane

import (
	"fmt"
	"math/big"
)

// ValueGroup is a finitely generated additive subgroup of ℚ. Every such
// group is cyclic, so it is stored by its unique non-negative generator;
// generator zero is the trivial group {0}.
type ValueGroup struct {
	gen *big.Rat
}

// TrivialValueGroup returns the group {0}.
func TrivialValueGroup() *ValueGroup {
	return &ValueGroup{gen: new(big.Rat)}
}

// NewValueGroup returns the subgroup of ℚ generated by g.
func NewValueGroup(g *big.Rat) *ValueGroup {
	gen := new(big.Rat).Abs(g)
	return &ValueGroup{gen: gen}
}

// Generator returns the non-negative generator of the group. The caller must
// not mutate it.
func (g *ValueGroup) Generator() *big.Rat { return g.gen }

// IsTrivial reports whether the group is {0}.
func (g *ValueGroup) IsTrivial() bool { return g.gen.Sign() == 0 }

// Contains reports whether the finite part of v lies in the group. +∞ is
// never a group element.
func (g *ValueGroup) Contains(v Value) bool {
	if !v.IsSet() || v.IsInf() {
		return false
	}
	if g.IsTrivial() {
		return v.IsZero()
	}
	q := new(big.Rat).Quo(v.Rat(), g.gen)
	return q.IsInt()
}

// Extend returns the group generated by this group together with mu.
// The generator of the sum is the gcd of the two generators.
func (g *ValueGroup) Extend(mu *big.Rat) *ValueGroup {
	return g.Sum(NewValueGroup(mu))
}

// Sum returns the group generated by both groups.
func (g *ValueGroup) Sum(o *ValueGroup) *ValueGroup {
	if g.IsTrivial() {
		return &ValueGroup{gen: new(big.Rat).Set(o.gen)}
	}
	if o.IsTrivial() {
		return &ValueGroup{gen: new(big.Rat).Set(g.gen)}
	}
	return &ValueGroup{gen: ratGCD(g.gen, o.gen)}
}

// Index returns the index [g : sub] of a subgroup. Fails if sub is not a
// finite-index subgroup of g.
func (g *ValueGroup) Index(sub *ValueGroup) (int, error) {
	if sub.IsTrivial() {
		if g.IsTrivial() {
			return 1, nil
		}
		return 0, fmt.Errorf("maclane: trivial group has infinite index in %s", g)
	}
	if g.IsTrivial() {
		return 0, fmt.Errorf("maclane: %s is not a subgroup of the trivial group", sub)
	}
	q := new(big.Rat).Quo(sub.gen, g.gen)
	if !q.IsInt() || q.Sign() <= 0 {
		return 0, fmt.Errorf("maclane: %s is not a subgroup of %s", sub, g)
	}
	if !q.Num().IsInt64() {
		return 0, fmt.Errorf("maclane: index of %s in %s overflows", sub, g)
	}
	return int(q.Num().Int64()), nil
}

// Equal reports whether both groups have the same generator.
func (g *ValueGroup) Equal(o *ValueGroup) bool { return g.gen.Cmp(o.gen) == 0 }

func (g *ValueGroup) String() string {
	if g.IsTrivial() {
		return "Trivial Additive Abelian Group"
	}
	return "Additive Abelian Group generated by " + g.gen.RatString()
}

// ratGCD returns the positive generator of the group generated by a and b:
// gcd(p/q, r/s) = gcd(p*s, r*q) / (q*s).
func ratGCD(a, b *big.Rat) *big.Rat {
	num := new(big.Int).GCD(nil, nil,
		new(big.Int).Abs(new(big.Int).Mul(a.Num(), b.Denom())),
		new(big.Int).Abs(new(big.Int).Mul(b.Num(), a.Denom())))
	den := new(big.Int).Mul(a.Denom(), b.Denom())
	return new(big.Rat).SetFrac(num, den)
}

// ValueSemigroup is a finitely generated additive subsemigroup of ℚ. Unlike
// the group case it is not cyclic in general, so the generators are kept.
type ValueSemigroup struct {
	gens []*big.Rat
}

// TrivialValueSemigroup returns the semigroup {0}.
func TrivialValueSemigroup() *ValueSemigroup { return &ValueSemigroup{} }

// NewValueSemigroup returns the semigroup generated by the given rationals.
// Zero generators are dropped.
func NewValueSemigroup(gens ...*big.Rat) *ValueSemigroup {
	s := &ValueSemigroup{}
	for _, g := range gens {
		if g.Sign() != 0 {
			s.gens = append(s.gens, new(big.Rat).Set(g))
		}
	}
	return s
}

// Generators returns the generators. The caller must not mutate them.
func (s *ValueSemigroup) Generators() []*big.Rat { return s.gens }

// Extend returns the semigroup generated by this one together with mu.
func (s *ValueSemigroup) Extend(mu *big.Rat) *ValueSemigroup {
	gens := make([]*big.Rat, 0, len(s.gens)+1)
	gens = append(gens, s.gens...)
	gens = append(gens, mu)
	return NewValueSemigroup(gens...)
}

// Group returns the group generated by the semigroup's generators.
func (s *ValueSemigroup) Group() *ValueGroup {
	g := TrivialValueGroup()
	for _, gen := range s.gens {
		g = g.Extend(gen)
	}
	return g
}

// Contains reports whether the finite part of v is a non-negative integer
// combination of the generators. When generators of both signs are present
// the semigroup is a group and the test collapses to group membership.
func (s *ValueSemigroup) Contains(v Value) bool {
	if !v.IsSet() || v.IsInf() {
		return false
	}
	if v.IsZero() {
		return true
	}
	if len(s.gens) == 0 {
		return false
	}
	pos, neg := false, false
	for _, g := range s.gens {
		if g.Sign() > 0 {
			pos = true
		} else {
			neg = true
		}
	}
	if pos && neg {
		return s.Group().Contains(v)
	}
	// One-sided semigroup: scale everything to integers and solve the coin
	// problem over residues modulo the smallest generator (Apéry set).
	t := v.Rat()
	sign := 1
	if neg {
		sign = -1
	}
	if t.Sign() != sign {
		return false
	}
	den := new(big.Int).Set(t.Denom())
	for _, g := range s.gens {
		den.Mul(den, g.Denom())
	}
	scale := func(r *big.Rat) *big.Int {
		n := new(big.Int).Mul(r.Num(), den)
		n.Div(n, r.Denom())
		if sign < 0 {
			n.Neg(n)
		}
		return n
	}
	target := scale(t)
	gens := make([]*big.Int, len(s.gens))
	var m *big.Int
	for i, g := range s.gens {
		gens[i] = scale(g)
		if m == nil || gens[i].Cmp(m) < 0 {
			m = gens[i]
		}
	}
	// dist[r] = smallest reachable amount congruent to r modulo the smallest
	// generator (the Apéry set of the numerical semigroup). Worklist
	// relaxation; every residue's entry only decreases, so this terminates.
	dist := map[string]*big.Int{"0": new(big.Int)}
	work := []*big.Int{new(big.Int)}
	for len(work) > 0 {
		a := work[len(work)-1]
		work = work[:len(work)-1]
		r := new(big.Int).Mod(a, m)
		if dist[r.String()].Cmp(a) < 0 {
			continue
		}
		for _, g := range gens {
			na := new(big.Int).Add(a, g)
			key := new(big.Int).Mod(na, m).String()
			if d, ok := dist[key]; !ok || na.Cmp(d) < 0 {
				dist[key] = na
				work = append(work, na)
			}
		}
	}
	d, ok := dist[new(big.Int).Mod(target, m).String()]
	return ok && d.Cmp(target) <= 0
}

func (s *ValueSemigroup) String() string {
	if len(s.gens) == 0 {
		return "Trivial Additive Abelian Semigroup"
	}
	out := "Additive Abelian Semigroup generated by "
	for i, g := range s.gens {
		if i > 0 {
			out += ", "
		}
		out += g.RatString()
	}
	return out
}
