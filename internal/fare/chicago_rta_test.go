package fare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/fare"
	"github.com/antigravity/transitfare/internal/transit"
)

func newChicagoCalculator() *fare.ChicagoRTACalculator {
	return &fare.ChicagoRTACalculator{
		Agency: map[string]fare.ChicagoAgency{
			"cta-bus":   fare.ChicagoAgencyCTA,
			"pace-bus":  fare.ChicagoAgencyPace,
			"pace-free": fare.ChicagoAgencyPace,
			"metra-bnsf": fare.ChicagoAgencyMetra,
		},
		CTAFare:        250,
		PaceFare:       220,
		PacePremium:    map[string]int64{},
		PaceFreeRoutes: map[string]bool{"pace-free": true},
		OHareStops:     map[string]bool{"ohare": true},
		OHareSurcharge: 0,
		DayPassPrice:   1000,
		MetraZoneFare: &fakeRuleTable{
			fares:       map[[3]string]int64{{"metra-bnsf", "a", "b"}: 450},
			defaultFare: 450,
		},
		TransferWindowSec: 7200,
		Connected:         fare.NewConnectedPairs(),
	}
}

func TestChicagoRTA_FirstRideChargesCTAFare(t *testing.T) {
	calc := newChicagoCalculator()

	cumFare, _, err := calc.CalculateFare(rideOn("cta-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)
	assert.Equal(t, int64(250), cumFare)
}

func TestChicagoRTA_PaceFreeRouteAddsNoFare(t *testing.T) {
	calc := newChicagoCalculator()

	cumFare1, next1, err := calc.CalculateFare(rideOn("cta-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)

	cumFare2, _, err := calc.CalculateFare(rideOn("pace-free", 1500, cumFare1, next1))
	require.NoError(t, err)

	assert.Equal(t, cumFare1, cumFare2)
}

func TestChicagoRTA_PayTheDifferenceWithinWindow(t *testing.T) {
	calc := newChicagoCalculator()

	cumFare1, next1, err := calc.CalculateFare(rideOn("cta-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)

	second := rideOn("pace-bus", 1500, cumFare1, next1)
	second.BoardStop = transit.Stop{ID: "pace-stop", ParentStation: -1}
	cumFare2, _, err := calc.CalculateFare(second)
	require.NoError(t, err)

	// pace fare (220) <= cta fare already paid (250): pay-the-difference
	// floors at zero, so the second ride adds nothing.
	assert.Equal(t, cumFare1, cumFare2)
}

func TestChicagoRTA_PayTheDifferenceNotConnectedStillChargesFormula(t *testing.T) {
	calc := newChicagoCalculator()

	first := rideOn("pace-bus", 1000, 0, allowance.None{})
	first.BoardStop = transit.Stop{ID: "pace-stop", ParentStation: -1}
	first.AlightStop = transit.Stop{ID: "pace-stop-out", ParentStation: -1}
	cumFare1, next1, err := calc.CalculateFare(first)
	require.NoError(t, err)

	second := rideOn("cta-bus", 1500, cumFare1, next1)
	second.PredecessorAlightStop = first.AlightStop
	second.BoardStop = transit.Stop{ID: "cta-stop", ParentStation: -1}
	second.AlightStop = transit.Stop{ID: "cta-stop-out", ParentStation: -1}
	cumFare2, _, err := calc.CalculateFare(second)
	require.NoError(t, err)

	// not connected behind gates: falls through to pay-the-difference
	// (cta fare 250 - pace value already paid 220), not the free tier.
	assert.Equal(t, cumFare1+30, cumFare2)
}

func TestChicagoRTA_UnlimitedOnceDayPassThresholdReached(t *testing.T) {
	calc := newChicagoCalculator()
	calc.DayPassPrice = 300 // low threshold: 250 paid plus the next 250 fare already reaches it after the first ride

	cumFare1, next1, err := calc.CalculateFare(rideOn("cta-bus", 1000, 0, allowance.None{}))
	require.NoError(t, err)
	require.True(t, next1.(allowance.ChicagoRTA).Unlimited)

	cumFare2, _, err := calc.CalculateFare(rideOn("cta-bus", 1500, cumFare1, next1))
	require.NoError(t, err)

	assert.Equal(t, cumFare1, cumFare2, "once unlimited, further rides are free")
}

func TestChicagoRTA_OHareStopForcesDayPass(t *testing.T) {
	calc := newChicagoCalculator()

	ctx := rideOn("cta-bus", 1000, 0, allowance.None{})
	ctx.AlightStop = transit.Stop{ID: "ohare"}
	cumFare, _, err := calc.CalculateFare(ctx)

	require.NoError(t, err)
	assert.Equal(t, calc.DayPassPrice, cumFare)
}

func TestChicagoRTA_MetraPricedIndependentlyByZone(t *testing.T) {
	calc := newChicagoCalculator()

	ctx := fare.RideContext{
		Route:           transit.Route{ID: "metra-bnsf"},
		BoardStop:       transit.Stop{FareZone: "a"},
		AlightStop:      transit.Stop{FareZone: "b"},
		BoardTimeSec:    1000,
		MaxClockTimeSec: 90000,
		PredecessorAllowance: allowance.None{},
	}
	cumFare, _, err := calc.CalculateFare(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(450), cumFare)
}
