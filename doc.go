// Package maclane implements inductive valuations on univariate polynomial
// rings over the rationals: Gauss valuations and their augmentations by key
// polynomials, following MacLane's construction.
//
// A valuation chain starts from a valuation of the constants (p-adic or
// trivial, see ConstantValuation), extends to the polynomial ring as a Gauss
// valuation, and grows by augmentation steps
//
//	w = [v, w(phi) = mu]
//
// which prescribe a value mu for a key polynomial phi of v. Each step may
// enlarge the value group (ramification) or the residue field (inertia); the
// residue fields form a tower of exact extension fields built from F_p or ℚ.
//
// The central algorithms are the mutually inverse Reduce and Lift maps
// between the polynomial ring and the residue ring of a valuation, and
// LiftToKey, which turns an irreducible residue polynomial into a key for
// the next augmentation. On top of these, EquivalenceDecompose factors a
// polynomial into key polynomials up to equivalence, and Extensions carries
// an augmented valuation over extensions of its base. All arithmetic is
// exact: values are rationals (plus +∞), coefficients are big rationals, and
// residues live in exact finite or rational extension fields.
package maclane
