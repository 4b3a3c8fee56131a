package fare

import "github.com/antigravity/transitfare/internal/allowance"

// MixedCalculator implements spec.md §4.4.6: one flat fare per route, a
// transfer allowance valid only within the issuing agency, and free
// continuation between paid-area stops that share a parent station.
type MixedCalculator struct {
	RouteFare         map[string]int64
	DefaultFare       int64
	TransferWindowSec int64
	PaidAreaZone      string
	Connected         ConnectedPairs
}

func NewMixedCalculator(routeFare map[string]int64, defaultFare, transferWindowSec int64, paidAreaZone string, connected ConnectedPairs) *MixedCalculator {
	return &MixedCalculator{
		RouteFare:         routeFare,
		DefaultFare:       defaultFare,
		TransferWindowSec: transferWindowSec,
		PaidAreaZone:      paidAreaZone,
		Connected:         connected,
	}
}

func (c *MixedCalculator) Name() string { return "mixed-system" }

func (c *MixedCalculator) fareFor(routeID string) int64 {
	if f, ok := c.RouteFare[routeID]; ok {
		return f
	}
	return c.DefaultFare
}

func (c *MixedCalculator) CalculateFare(ctx RideContext) (int64, allowance.Allowance, error) {
	prev, hasPrev := ctx.PredecessorAllowance.(allowance.Mixed)

	paidAreaContinuation := hasPrev &&
		prev.AgencyID == ctx.Route.AgencyID &&
		ctx.BoardStop.FareZone == c.PaidAreaZone &&
		sameStation(ctx.PredecessorAlightStop, ctx.BoardStop, c.Connected)

	if paidAreaContinuation {
		return ctx.PredecessorFare, tighten(prev, ctx.MaxClockTimeSec), nil
	}

	legFare := c.fareFor(ctx.Route.ID)
	next := allowance.NewMixed(legFare, 1, ctx.BoardTimeSec+c.TransferWindowSec, ctx.Route.AgencyID)
	return ctx.PredecessorFare + legFare, tighten(next, ctx.MaxClockTimeSec), nil
}
