package allowance

import "sort"

// FaresV2 is the GTFS Fares-V2 allowance: the set of fare_transfer_rule
// indices that could still fire on the next leg, plus optional as-route
// fare-network accumulator state (spec.md §4.4.7).
//
// potentialAsRouteFareLegRules is kept sorted ascending by rule order
// (NewFaresV2 sorts it), and dominance requires the two lists to be equal
// element by element. Nothing here checks that its first element is the
// as-route network's "full extent" rule.
type FaresV2 struct {
	PotentialTransferRules RuleSet

	AsRouteNetworks               map[string]bool
	AsRouteBoardStop              int32
	potentialAsRouteFareLegRules []uint32

	value          int64
	count          int
	expirationTime int64
}

func NewFaresV2(transferRules RuleSet, asRouteNetworks map[string]bool, asRouteBoardStop int32, potentialLegRules []uint32, value int64, count int, expirationTime int64) FaresV2 {
	sorted := append([]uint32(nil), potentialLegRules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return FaresV2{
		PotentialTransferRules:       transferRules,
		AsRouteNetworks:              asRouteNetworks,
		AsRouteBoardStop:             asRouteBoardStop,
		potentialAsRouteFareLegRules: sorted,
		value:                        value,
		count:                        count,
		expirationTime:               expirationTime,
	}
}

func (f FaresV2) PotentialAsRouteFareLegRules() []uint32 {
	return f.potentialAsRouteFareLegRules
}

func (f FaresV2) Value() int64          { return f.value }
func (f FaresV2) Count() int            { return f.count }
func (f FaresV2) ExpirationTime() int64 { return f.expirationTime }

func (f FaresV2) TightenExpiration(maxClockTime int64) Allowance {
	f.expirationTime = minInt64(f.expirationTime, maxClockTime)
	return f
}

func sameNetworks(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func sameLegRules(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AtLeastAsGoodAsFor implements "A ⪰ B iff A's potential-transfer-rule set
// is a superset of B's, and their as-route state (networks, board stop,
// lowest-order potential leg rules) matches" (spec.md §4.4.7).
func (f FaresV2) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(FaresV2)
	if !ok {
		return false
	}
	if !f.PotentialTransferRules.IsSupersetOf(o.PotentialTransferRules) {
		return false
	}
	if !sameNetworks(f.AsRouteNetworks, o.AsRouteNetworks) {
		return false
	}
	if f.AsRouteBoardStop != o.AsRouteBoardStop {
		return false
	}
	if !sameLegRules(f.potentialAsRouteFareLegRules, o.potentialAsRouteFareLegRules) {
		return false
	}
	return f.value >= o.value && f.count >= o.count && f.expirationTime >= o.expirationTime
}

func (FaresV2) SystemTag() string { return "fares_v2" }
