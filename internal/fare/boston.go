package fare

import "github.com/antigravity/transitfare/internal/allowance"

// BostonCalculator implements the MBTA CharlieCard state machine of spec.md
// §4.4.3: behind-gates suppression, local-bus/subway/local-bus coverage
// under a single fare, express-bus incomparability (enforced entirely by
// allowance.Boston.RuleGroup equality, not by anything in this file), and a
// transfer-allowance value permanently capped at the subway fare.
type BostonCalculator struct {
	SubwayFare int64

	// RouteGroup classifies a route into its CharlieCard transfer-rule
	// group; routes absent from the map are BostonRuleOther.
	RouteGroup map[string]allowance.BostonRuleGroup

	// RouteFare is the full (untransferred) fare for a route.
	RouteFare map[string]int64

	// TransferEligible enumerates (previous group, this group) pairs that
	// may use a transfer credit instead of paying full fare.
	TransferEligible map[[2]allowance.BostonRuleGroup]bool

	TransferWindowSec int64
	Connected         ConnectedPairs
}

func NewBostonCalculator(subwayFare int64, routeGroup map[string]allowance.BostonRuleGroup, routeFare map[string]int64, transferEligible map[[2]allowance.BostonRuleGroup]bool, transferWindowSec int64, connected ConnectedPairs) *BostonCalculator {
	return &BostonCalculator{
		SubwayFare:        subwayFare,
		RouteGroup:        routeGroup,
		RouteFare:         routeFare,
		TransferEligible:  transferEligible,
		TransferWindowSec: transferWindowSec,
		Connected:         connected,
	}
}

func (c *BostonCalculator) Name() string { return "boston" }

func (c *BostonCalculator) groupOf(routeID string) allowance.BostonRuleGroup {
	if g, ok := c.RouteGroup[routeID]; ok {
		return g
	}
	return allowance.BostonRuleOther
}

func (c *BostonCalculator) cap(value int64) int64 {
	if value > c.SubwayFare {
		return c.SubwayFare
	}
	return value
}

func (c *BostonCalculator) CalculateFare(ctx RideContext) (int64, allowance.Allowance, error) {
	thisGroup := c.groupOf(ctx.Route.ID)

	prev, hasPrev := ctx.PredecessorAllowance.(allowance.Boston)
	withinWindow := hasPrev && prev.ExpirationTime() >= ctx.BoardTimeSec
	connected := sameStation(ctx.PredecessorAlightStop, ctx.BoardStop, c.Connected)

	// Behind-gates suppression: still inside paid area, boarding another
	// subway ride at a stop connected to where the last ride let off
	// costs nothing (spec.md "no tap"). Two subway rides through stops
	// that aren't connected behind gates fall through to the full fare
	// below instead (spec.md §8 scenario 2).
	if withinWindow && prev.BehindGates && thisGroup == allowance.BostonRuleSubway && connected {
		next := allowance.NewBoston(c.SubwayFare, prev.Count(), prev.ExpirationTime(), allowance.BostonRuleSubway, true)
		return ctx.PredecessorFare, tighten(next, ctx.MaxClockTimeSec), nil
	}

	base := c.RouteFare[ctx.Route.ID]

	var legFare int64
	resultGroup := thisGroup

	switch {
	case withinWindow && prev.RuleGroup == allowance.BostonRuleLocalBus && thisGroup == allowance.BostonRuleSubway:
		// Local-bus -> subway: the subway fare absorbs the bus ride and
		// opens a one-shot local-bus-to-subway window (spec.md
		// "Local-bus -> subway -> local-bus").
		legFare = maxInt64(0, base-prev.Value())
		resultGroup = allowance.BostonRuleLocalBusToSubway

	case withinWindow && prev.RuleGroup == allowance.BostonRuleLocalBusToSubway && thisGroup == allowance.BostonRuleLocalBus:
		legFare = 0
		resultGroup = allowance.BostonRuleOther

	case withinWindow && c.TransferEligible[[2]allowance.BostonRuleGroup{prev.RuleGroup, thisGroup}]:
		legFare = maxInt64(0, base-prev.Value())

	default:
		legFare = base
	}

	behindGates := thisGroup == allowance.BostonRuleSubway

	value := c.cap(legFare)
	if behindGates && value < c.SubwayFare {
		value = c.SubwayFare
	}

	next := allowance.NewBoston(value, 1, ctx.BoardTimeSec+c.TransferWindowSec, resultGroup, behindGates)
	return ctx.PredecessorFare + legFare, tighten(next, ctx.MaxClockTimeSec), nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
