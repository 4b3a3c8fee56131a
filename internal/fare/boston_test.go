package fare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/fare"
	"github.com/antigravity/transitfare/internal/transit"
)

func newBostonCalculator() *fare.BostonCalculator {
	return fare.NewBostonCalculator(
		290,
		map[string]allowance.BostonRuleGroup{
			"local-bus":   allowance.BostonRuleLocalBus,
			"subway":      allowance.BostonRuleSubway,
			"express-bus": allowance.BostonRuleExpressBus,
		},
		map[string]int64{
			"local-bus":   170,
			"subway":      290,
			"express-bus": 425,
		},
		map[[2]allowance.BostonRuleGroup]bool{
			{allowance.BostonRuleLocalBus, allowance.BostonRuleLocalBus}: true,
		},
		7200,
		fare.NewConnectedPairs(),
	)
}

// samePlatform is the stop every rideOn ride boards and alights at, so
// chained rideOn calls default to "connected behind gates" (the common
// case the non-connectivity-specific tests want to exercise); tests that
// care about the not-connected path build a fare.RideContext directly
// with distinct, unlinked stops instead.
var samePlatform = transit.Stop{ID: "platform", ParentStation: -1}

func rideOn(routeID string, boardTime int64, predFare int64, predAllow allowance.Allowance) fare.RideContext {
	return fare.RideContext{
		PredecessorFare:       predFare,
		PredecessorAllowance:  predAllow,
		Route:                 transit.Route{ID: routeID},
		BoardStop:             samePlatform,
		AlightStop:            samePlatform,
		PredecessorAlightStop: samePlatform,
		BoardTimeSec:          boardTime,
		AlightTimeSec:         boardTime + 600,
		MaxClockTimeSec:       boardTime + 86400,
	}
}

func TestBostonCalculator_FirstRideChargesFullFare(t *testing.T) {
	calc := newBostonCalculator()

	cumFare, next, err := calc.CalculateFare(rideOn("subway", 1000, 0, allowance.None{}))
	require.NoError(t, err)
	assert.Equal(t, int64(290), cumFare)
	assert.True(t, next.(allowance.Boston).BehindGates)
}

func TestBostonCalculator_BehindGatesSubwayToSubwayIsFree(t *testing.T) {
	calc := newBostonCalculator()

	cumFare1, next1, err := calc.CalculateFare(rideOn("subway", 1000, 0, allowance.None{}))
	require.NoError(t, err)

	cumFare2, _, err := calc.CalculateFare(rideOn("subway", 1500, cumFare1, next1))
	require.NoError(t, err)

	assert.Equal(t, cumFare1, cumFare2, "no-tap subway-to-subway must not add fare")
}

func TestBostonCalculator_SubwayToSubwayNotConnectedChargesFullFareAgain(t *testing.T) {
	calc := newBostonCalculator()

	first := rideOn("subway", 1000, 0, allowance.None{})
	first.BoardStop = transit.Stop{ID: "coolidge-corner", ParentStation: -1}
	first.AlightStop = transit.Stop{ID: "cleveland-circle", ParentStation: -1}
	cumFare1, next1, err := calc.CalculateFare(first)
	require.NoError(t, err)

	second := rideOn("subway", 1500, cumFare1, next1)
	second.PredecessorAlightStop = first.AlightStop
	second.BoardStop = transit.Stop{ID: "newton-center", ParentStation: -1}
	second.AlightStop = transit.Stop{ID: "riverside", ParentStation: -1}
	cumFare2, _, err := calc.CalculateFare(second)
	require.NoError(t, err)

	assert.Equal(t, cumFare1+290, cumFare2, "two subway lines not connected behind gates charge 2x subway fare")
}

func TestBostonCalculator_LocalBusToSubwayAbsorbsBusFare(t *testing.T) {
	calc := newBostonCalculator()

	cumFare1, next1, err := calc.CalculateFare(rideOn("local-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)
	assert.Equal(t, int64(170), cumFare1)

	cumFare2, next2, err := calc.CalculateFare(rideOn("subway", 1500, cumFare1, next1))
	require.NoError(t, err)

	// subway fare (290) minus the value already paid on the bus (170)
	assert.Equal(t, cumFare1+(290-170), cumFare2)
	assert.Equal(t, allowance.BostonRuleLocalBusToSubway, next2.(allowance.Boston).RuleGroup)
}

func TestBostonCalculator_ExpressBusIncomparableToSubway(t *testing.T) {
	calc := newBostonCalculator()

	_, expressNext, err := calc.CalculateFare(rideOn("express-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)
	_, subwayNext, err := calc.CalculateFare(rideOn("subway", 1000, 0, allowance.None{}))
	require.NoError(t, err)

	assert.False(t, expressNext.AtLeastAsGoodAsFor(subwayNext))
	assert.False(t, subwayNext.AtLeastAsGoodAsFor(expressNext))
}

func TestBostonCalculator_AllowanceValueNeverExceedsSubwayFareCap(t *testing.T) {
	calc := newBostonCalculator()

	_, next, err := calc.CalculateFare(rideOn("express-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)

	assert.LessOrEqual(t, next.(allowance.Boston).Value(), int64(290))
}
