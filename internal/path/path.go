// Package path reconstructs an ordered list of legs from a terminal RAPTOR
// label, walking the arena's back-pointers to the access label and
// reversing (spec.md §4.5).
package path

import (
	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/raptor"
	"github.com/antigravity/transitfare/internal/transit"
)

// LegKind distinguishes a ridden leg from an on-street walking leg.
type LegKind string

const (
	KindTransit  LegKind = "transit"
	KindTransfer LegKind = "transfer"
)

// Leg is one step of a reconstructed journey.
type Leg struct {
	Kind LegKind

	BoardStopID, BoardStopName   string
	AlightStopID, AlightStopName string
	BoardTime, AlightTime        int64

	Route *transit.Route

	CumulativeFareAfter    int64
	TransferAllowanceAfter allowance.Allowance
}

// Reconstruct walks back from terminal until it reaches the access label
// (Back == raptor.NoLabel), pushing one Leg per ridden or walked segment,
// then reverses so the result reads origin-to-destination.
func Reconstruct(provider *transit.Provider, arena *raptor.Arena, terminal raptor.LabelRef) []Leg {
	var legs []Leg

	ref := terminal
	for ref != raptor.NoLabel {
		label := arena.Get(ref)
		if label.Back == raptor.NoLabel {
			// The access label carries no ride/walk of its own.
			break
		}

		if label.IsTransfer() {
			fromStop := provider.Stop(label.TransferFromStop)
			toStop := provider.Stop(label.Stop)
			legs = append(legs, Leg{
				Kind:                   KindTransfer,
				BoardStopID:            fromStop.ID,
				BoardStopName:          fromStop.Name,
				AlightStopID:           toStop.ID,
				AlightStopName:         toStop.Name,
				BoardTime:              label.ArrivalSec - label.TransferSec,
				AlightTime:             label.ArrivalSec,
				CumulativeFareAfter:    label.CumulativeFareAmt,
				TransferAllowanceAfter: label.Allowance,
			})
		} else {
			pattern := provider.Pattern(label.Pattern)
			boardStop := provider.Stop(label.BoardStop)
			alightStop := provider.Stop(label.Stop)
			route := pattern.Route
			legs = append(legs, Leg{
				Kind:                   KindTransit,
				BoardStopID:            boardStop.ID,
				BoardStopName:          boardStop.Name,
				AlightStopID:           alightStop.ID,
				AlightStopName:         alightStop.Name,
				BoardTime:              label.BoardSec,
				AlightTime:             label.AlightSec,
				Route:                  &route,
				CumulativeFareAfter:    label.CumulativeFareAmt,
				TransferAllowanceAfter: label.Allowance,
			})
		}

		ref = label.Back
	}

	reverse(legs)
	return legs
}

func reverse(legs []Leg) {
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
}
