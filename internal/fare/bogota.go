package fare

import "github.com/antigravity/transitfare/internal/allowance"

// bogotaPrevRide is the allowance.Mixed.AgencyID payload the Bogotá
// calculator stashes between rides: not an agency at all, but the ride-type
// tag ("tpc" or "transmilenio") the next ride's transfer-fare lookup keys
// on. Reusing Mixed keeps the calculator from needing its own allowance
// type — comparability only needs "same previous ride type", which is
// exactly what Mixed.AgencyID equality already gives us.
const (
	bogotaTPC           = "tpc"
	bogotaTransMilenio  = "transmilenio"
)

// BogotaCalculator implements spec.md §4.4.2: classify each ride as TPC or
// TransMilenio by agency, charge a base fare on the first ride of a
// journey, and an ordered-pair transfer fare on every ride after that.
type BogotaCalculator struct {
	TPCAgencies map[string]bool

	BaseFare int64

	// TransferFares is keyed (previous ride type, this ride type); a
	// missing pair falls back to BaseFare.
	TransferFares map[[2]string]int64

	TransferWindowSec int64
}

func NewBogotaCalculator(tpcAgencies map[string]bool, baseFare int64, transferFares map[[2]string]int64, transferWindowSec int64) *BogotaCalculator {
	return &BogotaCalculator{
		TPCAgencies:       tpcAgencies,
		BaseFare:          baseFare,
		TransferFares:     transferFares,
		TransferWindowSec: transferWindowSec,
	}
}

func (c *BogotaCalculator) Name() string { return "bogota" }

func (c *BogotaCalculator) classify(agencyID string) string {
	if c.TPCAgencies[agencyID] {
		return bogotaTPC
	}
	return bogotaTransMilenio
}

func (c *BogotaCalculator) CalculateFare(ctx RideContext) (int64, allowance.Allowance, error) {
	thisType := c.classify(ctx.Route.AgencyID)

	prev, hasPrev := ctx.PredecessorAllowance.(allowance.Mixed)
	withinWindow := hasPrev && prev.ExpirationTime() >= ctx.BoardTimeSec

	var legFare int64
	switch {
	case !withinWindow:
		legFare = c.BaseFare
	default:
		fare, ok := c.TransferFares[[2]string{prev.AgencyID, thisType}]
		if !ok {
			fare = c.BaseFare
		}
		legFare = fare
	}

	next := allowance.NewMixed(0, 0, ctx.BoardTimeSec+c.TransferWindowSec, thisType)
	return ctx.PredecessorFare + legFare, tighten(next, ctx.MaxClockTimeSec), nil
}
