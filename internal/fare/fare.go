// Package fare implements the pluggable in-routing fare calculators
// (spec.md §4.4): given the fare/allowance a partial journey already
// carries and the details of the next ride, compute the journey's new
// cumulative fare and transfer allowance.
package fare

import (
	"github.com/pkg/errors"

	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/transit"
)

// ErrFareNotFound is returned when a calculator's static tables have no
// entry for a ride it was asked to price (spec.md §7 "Fare data miss").
var ErrFareNotFound = errors.New("fare: no fare found for ride")

// ErrInconsistentState is a programmer-error assertion: the calculator was
// handed a ride sequence its own state machine says cannot occur (spec.md
// §7 "Inconsistent in-routing state").
var ErrInconsistentState = errors.New("fare: inconsistent in-routing state")

// RideContext describes one additional ride (or on-street transfer,
// handled upstream — the RAPTOR core never calls the fare calculator for
// transfer labels) appended to a partial journey.
type RideContext struct {
	// PredecessorFare and PredecessorAllowance are the partial journey's
	// state before this ride. PredecessorAllowance is allowance.None{}
	// for the very first ride.
	PredecessorFare      int64
	PredecessorAllowance allowance.Allowance

	Route      transit.Route
	BoardStop  transit.Stop
	AlightStop transit.Stop

	// PredecessorAlightStop is the stop where the journey's previous ride
	// (not the current, post-transfer-walk board stop) actually let the
	// rider off. Calculators that grant a gate-free/no-tap continuation
	// (spec.md §4.4.3, §4.4.4, §4.4.5, §4.4.6) compare this against
	// BoardStop via the shared connectivity predicate rather than
	// inferring "same station" from allowance state alone.
	PredecessorAlightStop transit.Stop

	BoardTimeSec  int64
	AlightTimeSec int64

	// MaxClockTimeSec is the search horizon (spec.md §6 to_time_seconds,
	// or the per-request max arrival bound). Every Allowance returned
	// must have its ExpirationTime tightened to at most this.
	MaxClockTimeSec int64
}

// Calculator is the fare-calculator interface of spec.md §4.4.
//
// Implementations must be deterministic given the same ride sequence, must
// never return a fare lower than ctx.PredecessorFare (fare is monotone:
// appending a ride cannot reduce cumulative fare), and must tighten the
// returned allowance's expiration to ctx.MaxClockTimeSec.
type Calculator interface {
	CalculateFare(ctx RideContext) (cumulativeFare int64, transferAllowance allowance.Allowance, err error)

	// Name identifies the calculator for diagnostics and for the
	// in_routing_fare_calculator.type request field.
	Name() string
}

// tighten is the one-line contract every calculator implementation calls
// before returning, so "forgot to tighten expiration" isn't a per-system
// bug to rediscover (spec.md §9 Open Question about Boston's
// tightenExpiration being unsafe unless overridden — here every allowance
// variant implements TightenExpiration itself, see internal/allowance).
func tighten(a allowance.Allowance, maxClockTime int64) allowance.Allowance {
	return a.TightenExpiration(maxClockTime)
}
