package fare

import "github.com/antigravity/transitfare/internal/transit"

// ConnectedPairs is an enumerated set of (stop_id, stop_id) pairs that count
// as "behind the same fare gates" beyond the structural parent-station
// check — e.g. MBTA's Downtown Crossing/Park Street walkway, or paired
// Pace/CTA platforms (spec.md §4.4.3, §4.4.4).
type ConnectedPairs map[[2]string]bool

func NewConnectedPairs(pairs ...[2]string) ConnectedPairs {
	cp := make(ConnectedPairs, len(pairs))
	for _, p := range pairs {
		cp[p] = true
		cp[[2]string{p[1], p[0]}] = true
	}
	return cp
}

func (cp ConnectedPairs) Has(a, b string) bool {
	return cp[[2]string{a, b}]
}

// sameStation reports whether two stops are the same physical station:
// identical stop, shared parent station, or an enumerated connected pair.
// This is the "behind-gates" / "no-tap" predicate shared by the Boston,
// Chicago-RTA, NYC and mixed-agency calculators.
func sameStation(a, b transit.Stop, extra ConnectedPairs) bool {
	if a.ID == b.ID {
		return true
	}
	if a.HasParentStation() && b.HasParentStation() && a.ParentStation == b.ParentStation {
		return true
	}
	return extra.Has(a.ID, b.ID)
}
