package fare

import "github.com/antigravity/transitfare/internal/allowance"

// FareLegRule is one GTFS fare_leg_rules.txt row, reduced to the fields the
// transfer-rule join needs.
type FareLegRule struct {
	LegGroupID     string
	FareAmt        int64
	AsRouteNetwork string // "" if this leg isn't part of an as-route network
}

// FareTransferRule is one GTFS fare_transfer_rules.txt row: a rule that may
// fire when a leg in FromLegGroup is followed by a leg in ToLegGroup.
// RuleIndex is this row's position in the feed's declared rule order, used
// both as the bitset index and as the "lowest order" tiebreaker spec.md
// §4.4.7 asks for.
type FareTransferRule struct {
	RuleIndex    uint32
	FromLegGroup string
	ToLegGroup   string
	TransferFare int64
}

// FaresV2Tables is the static GTFS Fares-V2 join the calculator consults.
type FaresV2Tables interface {
	// LegRuleFor returns the fare_leg_rules row matching routeID, board
	// and alight zones.
	LegRuleFor(routeID, boardZone, alightZone string) (FareLegRule, bool)

	// TransferRulesFrom returns every fare_transfer_rules row whose
	// FromLegGroup matches legGroupID, in ascending RuleIndex order.
	TransferRulesFrom(legGroupID string) []FareTransferRule

	// TransferRule looks up a single transfer rule by its RuleIndex.
	TransferRule(ruleIndex uint32) (FareTransferRule, bool)
}

// FaresV2Calculator implements spec.md §4.4.7: fare_leg_rules joined to
// fare_transfer_rules, carrying forward the set of transfer rules that
// could still fire as a sparse bitset, plus as-route fare-network
// accumulator state.
type FaresV2Calculator struct {
	Tables FaresV2Tables
}

func NewFaresV2Calculator(tables FaresV2Tables) *FaresV2Calculator {
	return &FaresV2Calculator{Tables: tables}
}

func (c *FaresV2Calculator) Name() string { return "fares-v2" }

func (c *FaresV2Calculator) CalculateFare(ctx RideContext) (int64, allowance.Allowance, error) {
	legRule, ok := c.Tables.LegRuleFor(ctx.Route.ID, ctx.BoardStop.FareZone, ctx.AlightStop.FareZone)
	if !ok {
		return 0, nil, ErrFareNotFound
	}

	prev, hasPrev := ctx.PredecessorAllowance.(allowance.FaresV2)

	legFare := legRule.FareAmt
	if hasPrev {
		// RuleSet.Each visits set bits in no particular order, so picking
		// "whichever match it visits last" would make the fare depend on
		// map-iteration order. Deterministically keep the lowest
		// RuleIndex match instead (spec.md §4.4.7's declared rule order
		// doubles as its own tiebreaker).
		matched := false
		var matchedRuleIndex uint32
		prev.PotentialTransferRules.Each(func(ruleIndex uint32) {
			rule, ok := c.Tables.TransferRule(ruleIndex)
			if !ok || rule.ToLegGroup != legRule.LegGroupID {
				return
			}
			if !matched || ruleIndex < matchedRuleIndex {
				matched = true
				matchedRuleIndex = ruleIndex
				legFare = rule.TransferFare
			}
		})
	}

	// FareLegRule carries no index of its own, so the allowance's "potential
	// as-route fare leg rules" list is filled with the RuleIndex of each
	// transfer rule leaving this leg's group, not with fare_leg_rules rows.
	transferRules := c.Tables.TransferRulesFrom(legRule.LegGroupID)
	potential := allowance.NewRuleSet()
	legRules := make([]uint32, 0, len(transferRules))
	for _, tr := range transferRules {
		potential.Set(tr.RuleIndex)
		legRules = append(legRules, tr.RuleIndex)
	}

	networks := map[string]bool{}
	if legRule.AsRouteNetwork != "" {
		networks[legRule.AsRouteNetwork] = true
	}

	next := allowance.NewFaresV2(potential, networks, int32(ctx.BoardStop.ParentStation), legRules, 0, 0, ctx.AlightTimeSec)
	return ctx.PredecessorFare + legFare, tighten(next, ctx.MaxClockTimeSec), nil
}
