package fare

import "github.com/antigravity/transitfare/internal/allowance"

// NYCAgency classifies a route into the sub-system the NYC calculator
// routes it to (spec.md §4.4.5).
type NYCAgency int

const (
	NYCAgencyOther NYCAgency = iota
	NYCAgencyLIRR
	NYCAgencyMetroNorth
	NYCAgencySubway
	NYCAgencyLocalBus
	NYCAgencyExpressBus
	NYCAgencyNice
	NYCAgencySuffolk
	NYCAgencyStatenIslandRwy
	NYCAgencyStatenIslandFerry
)

// NYCCalculator implements spec.md §4.4.5: three state machines running in
// parallel — LIRR, Metro-North, and MetroCard bus/subway/SIR/ferry transfer
// tracking — composed into the allowance.NYC structural-comparability
// triple.
type NYCCalculator struct {
	Agency map[string]NYCAgency

	MetroCardFare  int64
	ExpressBusFare int64
	NiceFare       int64
	SuffolkFare    int64
	StatenIslandRwyFare int64

	LIRRZonal       RuleTable
	MetroNorthZonal RuleTable

	MetroCardWindowSec int64
	Connected          ConnectedPairs
}

func (c *NYCCalculator) Name() string { return "nyc" }

func (c *NYCCalculator) agencyOf(routeID string) NYCAgency {
	return c.Agency[routeID]
}

func (c *NYCCalculator) CalculateFare(ctx RideContext) (int64, allowance.Allowance, error) {
	prev, hasPrev := ctx.PredecessorAllowance.(allowance.NYC)
	agency := c.agencyOf(ctx.Route.ID)

	switch agency {
	case NYCAgencyLIRR:
		return c.lirrRide(ctx, prev, hasPrev)
	case NYCAgencyMetroNorth:
		return c.metroNorthRide(ctx, prev, hasPrev)
	default:
		return c.metroCardRide(ctx, prev, hasPrev, agency)
	}
}

// lirrRide prices one LIRR leg. Exiting the LIRR (a ride not on this
// agency, handled by the other branches) closes the open ticket. A ride
// that boards where the previous LIRR ride alighted, within the ticket's
// window, continues the same ticket at no extra fare and records its board
// stop as the via stop; direction is not compared and the extended journey
// is not re-priced. Any other LIRR ride starts a new ticket at the flat
// zonal fare; there is no via-fare lookup.
func (c *NYCCalculator) lirrRide(ctx RideContext, prev allowance.NYC, hasPrev bool) (int64, allowance.Allowance, error) {
	legFare, ok := c.LIRRZonal.MatchFare(ctx.Route.ID, ctx.BoardStop.FareZone, ctx.AlightStop.FareZone)
	if !ok {
		legFare = c.LIRRZonal.DefaultFare()
	}

	sameTicket := hasPrev && prev.LIRR != nil && prev.LIRR.LastTicketTime+c.MetroCardWindowSec >= ctx.BoardTimeSec &&
		prev.LIRR.AlightStop == ctx.BoardStop.ID

	var cumFare int64
	var lirr allowance.LIRRState
	if sameTicket {
		cumFare = ctx.PredecessorFare
		lirr = allowance.LIRRState{
			BoardStop:        prev.LIRR.BoardStop,
			ViaStop:          ctx.BoardStop.ID,
			AlightStop:       ctx.AlightStop.ID,
			InitialDirection: prev.LIRR.InitialDirection,
			PeakBefore:       prev.LIRR.PeakBefore,
			PeakAfter:        isPeak(ctx.AlightTimeSec),
			CumulativeFare:   prev.LIRR.CumulativeFare,
			LastTicketTime:   ctx.AlightTimeSec,
		}
	} else {
		cumFare = ctx.PredecessorFare + legFare
		lirr = allowance.LIRRState{
			BoardStop:        ctx.BoardStop.ID,
			ViaStop:          "",
			AlightStop:       ctx.AlightStop.ID,
			InitialDirection: direction(ctx.BoardStop.ID, ctx.AlightStop.ID),
			PeakBefore:       isPeak(ctx.BoardTimeSec),
			PeakAfter:        isPeak(ctx.AlightTimeSec),
			CumulativeFare:   legFare,
			LastTicketTime:   ctx.AlightTimeSec,
		}
	}

	next := allowance.NewNYC(&lirr, nil, allowance.MetroCardNone, 0, false, 0, 0, ctx.AlightTimeSec+c.MetroCardWindowSec)
	return cumFare, tighten(next, ctx.MaxClockTimeSec), nil
}

func (c *NYCCalculator) metroNorthRide(ctx RideContext, prev allowance.NYC, hasPrev bool) (int64, allowance.Allowance, error) {
	legFare, ok := c.MetroNorthZonal.MatchFare(ctx.Route.ID, ctx.BoardStop.FareZone, ctx.AlightStop.FareZone)
	if !ok {
		legFare = c.MetroNorthZonal.DefaultFare()
	}

	dir := direction(ctx.BoardStop.ID, ctx.AlightStop.ID)
	sameTicket := hasPrev && prev.MetroNorth != nil &&
		prev.MetroNorth.Direction == dir && prev.MetroNorth.Line == ctx.Route.ID

	var cumFare int64
	if sameTicket {
		cumFare = ctx.PredecessorFare
	} else {
		cumFare = ctx.PredecessorFare + legFare
	}

	mn := allowance.MetroNorthState{
		BoardStop: ctx.BoardStop.ID,
		Direction: dir,
		Peak:      isPeak(ctx.BoardTimeSec),
		Line:      ctx.Route.ID,
	}

	next := allowance.NewNYC(nil, &mn, allowance.MetroCardNone, 0, false, 0, 0, ctx.AlightTimeSec+c.MetroCardWindowSec)
	return cumFare, tighten(next, ctx.MaxClockTimeSec), nil
}

// metroCardRide handles every bus/subway/SIR/ferry ride: a simplified
// subset of the 15 enumerated MetroCard states, falling back to full fare
// plus a fresh state whenever the predecessor's source isn't one this ride
// type accepts a free transfer from.
func (c *NYCCalculator) metroCardRide(ctx RideContext, prev allowance.NYC, hasPrev bool, agency NYCAgency) (int64, allowance.Allowance, error) {
	withinWindow := hasPrev && prev.MetroCardExpiry >= ctx.BoardTimeSec
	connected := sameStation(ctx.PredecessorAlightStop, ctx.BoardStop, c.Connected)

	source, _ := metroCardTarget(agency)

	// A subway ride continuing through gates connected to where the last
	// ride let off never requires a new tap at all (spec.md §4.4.5
	// in_subway_paid_area "remains true across subway rides whose
	// alight/board are connected behind gates"), independent of the
	// bus/subway reciprocal transfer table below.
	subwayContinuation := agency == NYCAgencySubway && hasPrev && prev.InSubwayPaidArea && connected

	accepts := subwayContinuation || (withinWindow && metroCardAccepts(prev.MetroCardSource, source))

	var legFare int64
	if accepts {
		legFare = 0
	} else {
		legFare = fareForRide(agency, c)
	}

	inPaidArea := agency == NYCAgencySubway || (withinWindow && prev.InSubwayPaidArea && accepts)

	next := allowance.NewNYC(nil, nil, source, ctx.BoardTimeSec+c.MetroCardWindowSec, inPaidArea, 0, 1, ctx.BoardTimeSec+c.MetroCardWindowSec)
	return ctx.PredecessorFare + legFare, tighten(next, ctx.MaxClockTimeSec), nil
}

func fareForRide(agency NYCAgency, c *NYCCalculator) int64 {
	switch agency {
	case NYCAgencyExpressBus:
		return c.ExpressBusFare
	case NYCAgencyNice:
		return c.NiceFare
	case NYCAgencySuffolk:
		return c.SuffolkFare
	case NYCAgencyStatenIslandRwy:
		return c.StatenIslandRwyFare
	default:
		return c.MetroCardFare
	}
}

func metroCardTarget(agency NYCAgency) (allowance.MetroCardTransferSource, int64) {
	switch agency {
	case NYCAgencySubway:
		return allowance.MetroCardSubway, 0
	case NYCAgencyExpressBus:
		return allowance.MetroCardExpressBus, 0
	case NYCAgencyNice:
		return allowance.MetroCardNice, 0
	case NYCAgencySuffolk:
		return allowance.MetroCardSuffolk, 0
	case NYCAgencyStatenIslandRwy:
		return allowance.MetroCardStatenIslandRwy, 0
	case NYCAgencyStatenIslandFerry:
		return allowance.MetroCardSubwayToSIFerry, 0
	default:
		return allowance.MetroCardLocalBus, 0
	}
}

// metroCardAccepts is the transition table: does a ride producing target
// accept a free transfer from a predecessor whose source is prevSource.
// A local bus accepts a local-bus or subway predecessor and a subway
// accepts a local-bus predecessor. metroCardTarget never produces the
// NiceOneTransfer or SuffolkOneTransfer targets, so those cases are never
// reached: Nice, Suffolk, express-bus, Staten Island Railway and ferry rides
// always pay their full fare.
func metroCardAccepts(prevSource, target allowance.MetroCardTransferSource) bool {
	switch target {
	case allowance.MetroCardLocalBus:
		return prevSource == allowance.MetroCardLocalBus || prevSource == allowance.MetroCardSubway
	case allowance.MetroCardSubway:
		return prevSource == allowance.MetroCardLocalBus
	case allowance.MetroCardNiceOneTransfer:
		return prevSource == allowance.MetroCardNice
	case allowance.MetroCardSuffolkOneTransfer:
		return prevSource == allowance.MetroCardSuffolk
	default:
		return false
	}
}

// isPeak is a fixed AM/PM peak window; real deployments would configure
// this per agency calendar, out of scope here (spec.md's fare calculators
// operate purely on clock-time already resolved by the caller).
func isPeak(clockTimeSec int64) bool {
	const amStart, amEnd = 6 * 3600, 10 * 3600
	const pmStart, pmEnd = 16 * 3600, 20 * 3600
	return (clockTimeSec >= amStart && clockTimeSec < amEnd) || (clockTimeSec >= pmStart && clockTimeSec < pmEnd)
}

func direction(boardStopID, alightStopID string) string {
	if boardStopID < alightStopID {
		return "outbound"
	}
	return "inbound"
}
