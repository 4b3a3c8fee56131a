// Package allowance implements the transfer-allowance type hierarchy: the
// structured, system-specific state a rider carries forward that may
// reduce or eliminate the fare of their next boarding.
//
// The source material (spec.md §9) used subclassing with overridden
// comparability. We reorganize that as a tagged variant: one concrete
// struct per fare system, each implementing the same small interface. This
// keeps a system's fields first-class instead of leaking a common
// "Standard" base case into systems that don't have one.
package allowance

// Allowance is the common contract every system-specific transfer
// allowance satisfies. There is deliberately no default/base
// implementation of TightenExpiration: spec.md §9 flags that the source's
// base-class version throws if not overridden, so here every concrete type
// must supply its own (the compiler enforces it, rather than a runtime
// panic on a forgotten override).
type Allowance interface {
	// Value is the remaining monetary credit toward a future fare.
	Value() int64

	// Count is the number of future rides this allowance still covers
	// (systems without a ride-count cap return 0).
	Count() int

	// ExpirationTime is seconds-since-midnight after which the allowance
	// is worthless.
	ExpirationTime() int64

	// TightenExpiration returns a copy of this allowance with
	// ExpirationTime capped to min(ExpirationTime(), maxClockTime). Fare
	// calculators must call this on every allowance they return (spec.md
	// §4.4 contract) so that allowances reaching past the search horizon
	// don't block otherwise-valid dominance.
	TightenExpiration(maxClockTime int64) Allowance

	// AtLeastAsGoodAsFor reports whether this allowance is at least as
	// good as other for every future redemption: same system, same
	// structural state, and Value/Count/ExpirationTime each no worse.
	// Returning false does not mean "worse" — it may mean incomparable
	// (different rule_group, different agency, ...), which is exactly
	// what keeps journeys like a post-express-bus label and a
	// post-subway label both alive in the same Pareto list even at equal
	// fare.
	AtLeastAsGoodAsFor(other Allowance) bool

	// SystemTag names the concrete type for diagnostics and for the
	// "mixed allowance types offered to the same dominating list" sanity
	// check (spec.md §7).
	SystemTag() string
}

// MustSameTag panics with a descriptive message if a and b don't share a
// SystemTag. The Pareto dominating list's comparability function is
// injected per-search and is only ever handed labels from one calculator,
// so a mismatch here is a programmer error, not a runtime condition to
// recover from (spec.md §7 "Mixed allowance types ... programmer-error").
func MustSameTag(a, b Allowance) {
	if a.SystemTag() != b.SystemTag() {
		panic("allowance: mixed allowance types offered to the same dominating list: " + a.SystemTag() + " vs " + b.SystemTag())
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
