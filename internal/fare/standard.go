package fare

import "github.com/antigravity/transitfare/internal/allowance"

// FareAttribute is a GTFS fare_attributes.txt row: a route's base price and
// how many transfers it buys.
type FareAttribute struct {
	Price               int64
	Transfers           int
	TransferDurationSec int64
}

// RuleTable is the static fare-rules lookup a Standard calculator consults:
// (route, board_zone, alight_zone) to a fare amount, with wildcard zones and
// longest-match-wins, plus the route's fare_attributes row for transfer
// bookkeeping (spec.md §4.4.1).
type RuleTable interface {
	// MatchFare returns the fare for a ride on routeID from boardZone to
	// alightZone, trying the most specific (non-wildcard) rule first.
	MatchFare(routeID, boardZone, alightZone string) (fareAmt int64, ok bool)

	DefaultFare() int64

	Attribute(routeID string) (FareAttribute, bool)
}

// StandardCalculator is the GTFS route-based fare calculator of spec.md
// §4.4.1: a fare-rules table lookup, with the GTFS fare_attributes
// (value, transfers, transfer_duration) triple as the transfer allowance.
type StandardCalculator struct {
	Table RuleTable
}

func NewStandardCalculator(table RuleTable) *StandardCalculator {
	return &StandardCalculator{Table: table}
}

func (c *StandardCalculator) Name() string { return "simple" }

func (c *StandardCalculator) CalculateFare(ctx RideContext) (int64, allowance.Allowance, error) {
	if prev, ok := ctx.PredecessorAllowance.(allowance.Standard); ok &&
		prev.Count() > 0 && prev.ExpirationTime() >= ctx.BoardTimeSec {
		remaining := allowance.NewStandard(prev.Value(), prev.Count()-1, prev.ExpirationTime())
		return ctx.PredecessorFare, tighten(remaining, ctx.MaxClockTimeSec), nil
	}

	rideFare, ok := c.Table.MatchFare(ctx.Route.ID, ctx.BoardStop.FareZone, ctx.AlightStop.FareZone)
	if !ok {
		rideFare = c.Table.DefaultFare()
	}
	attr, _ := c.Table.Attribute(ctx.Route.ID)

	next := allowance.NewStandard(attr.Price, attr.Transfers, ctx.BoardTimeSec+attr.TransferDurationSec)
	return ctx.PredecessorFare + rideFare, tighten(next, ctx.MaxClockTimeSec), nil
}
