package raptor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/fare"
	"github.com/antigravity/transitfare/internal/pareto"
	"github.com/antigravity/transitfare/internal/transit"
)

// defaultMaxRides bounds the round loop when a request leaves max_rides
// unset (spec.md §6 "max_rides: optional, default unbounded within reason").
const defaultMaxRides = 8

// boardSlackSec is the minimum time a rider needs between arriving at a
// stop and boarding a trip there (spec.md §3 McLabel invariant "board_time
// >= predecessor.arrival_time + min_board_slack", §4.2 "Minimum board
// slack is 60 seconds").
const boardSlackSec = 60

// Request is the RAPTOR-core view of a plan request: already resolved to
// stop indices and seconds-since-midnight, with street-network access and
// egress out of scope for this package (spec.md §4.1 "Out of scope").
type Request struct {
	// AccessStops maps an origin-reachable boarding stop to the walk
	// duration, in seconds, from the requested origin.
	AccessStops map[transit.StopIndex]int64

	// EgressStops maps an alighting stop within walking range of the
	// destination to the walk duration, in seconds, to the destination.
	EgressStops map[transit.StopIndex]int64

	FromTimeSec int64
	ToTimeSec   int64

	MaxRides              int
	MaxTripDurationSec    int64 // 0 = unbounded
	MaxFareAmt            int64 // 0 = unbounded
	MaxTransferWalkSec    int64 // 0 = unbounded
	WalkSpeedMPerS        float64

	Calculator fare.Calculator
}

func (r Request) maxRides() int {
	if r.MaxRides > 0 {
		return r.MaxRides
	}
	return defaultMaxRides
}

// Search is one range-raptor run: a fixed Provider and Request, a shared
// Arena, and the per-stop Pareto frontiers that every departure minute's
// pass contributes to (spec.md §4.2 "Range extension").
type Search struct {
	provider *transit.Provider
	req      Request
	arena    *Arena

	perStop map[transit.StopIndex]*pareto.List[Entry]
}

// Result is the outcome of a completed Search: the arena backing every
// Label a surviving Entry references, and the Pareto frontier of distinct
// (arrival_time, rides, fare, allowance) journeys to the destination.
type Result struct {
	Arena       *Arena
	Destination *pareto.List[Entry]
}

func NewSearch(provider *transit.Provider, req Request) *Search {
	return &Search{
		provider: provider,
		req:      req,
		arena:    NewArena(),
		perStop:  make(map[transit.StopIndex]*pareto.List[Entry]),
	}
}

func (s *Search) listFor(stop transit.StopIndex) *pareto.List[Entry] {
	l, ok := s.perStop[stop]
	if !ok {
		l = pareto.NewList[Entry]()
		s.perStop[stop] = l
	}
	return l
}

// Run executes the full range-raptor sweep: one RAPTOR pass per departure
// minute from req.ToTimeSec-60 down to req.FromTimeSec, each contributing into
// the same persistent per-stop Pareto frontiers, followed by a single
// egress-combination step (spec.md §4.2, §4.5).
func (s *Search) Run(ctx context.Context) (Result, error) {
	for departure := s.req.ToTimeSec - 60; departure >= s.req.FromTimeSec; departure -= 60 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
		if err := s.runOnePass(departure); err != nil {
			return Result{}, err
		}
	}

	dest := pareto.NewList[Entry]()
	for stop, walkSec := range s.req.EgressStops {
		list, ok := s.perStop[stop]
		if !ok {
			continue
		}
		for _, e := range list.Entries() {
			egress := Entry{
				Ref:       e.Ref,
				arrival:   e.arrival + walkSec,
				round:     e.round,
				fare:      e.fare,
				allowance: e.allowance,
			}
			dest.Offer(egress)
		}
	}

	return Result{Arena: s.arena, Destination: dest}, nil
}

// runOnePass runs one RAPTOR round loop seeded at departure, offering every
// candidate label it produces into the search's persistent per-stop
// frontiers (spec.md §4.2, §4.3).
func (s *Search) runOnePass(departure int64) error {
	round0 := newBag()
	for stop, walkSec := range s.req.AccessStops {
		label := Label{
			Round:             0,
			Stop:              stop,
			ArrivalSec:        departure + walkSec,
			Pattern:           transit.NoPattern,
			BoardStop:         noStop,
			TransferFromStop:  noStop,
			Back:              NoLabel,
			CumulativeFareAmt: 0,
			Allowance:         allowance.None{},
		}
		entry := NewEntry(s.arena, label)
		if s.listFor(stop).Offer(entry) == pareto.Accepted {
			round0.add(stop, entry)
		}
	}

	prev := round0
	for round := 1; round <= s.req.maxRides(); round++ {
		transitBag, err := s.relaxTransit(prev, round, departure)
		if err != nil {
			return err
		}
		if len(transitBag) == 0 {
			break
		}

		transferBag := s.relaxTransfers(transitBag)

		next := newBag()
		next.merge(transitBag)
		next.merge(transferBag)
		prev = next
	}

	return nil
}

// relaxTransit scans every pattern touching a stop in marked, boarding the
// earliest feasible trip for each predecessor entry and walking forward,
// pricing every ride via the request's fare calculator (spec.md §4.2
// "Transit relaxation", §4.4).
func (s *Search) relaxTransit(marked bag, round int, searchStart int64) (bag, error) {
	out := newBag()
	patterns := s.provider.PatternsTouched(marked.stops())

	for _, pidx := range patterns {
		pattern := s.provider.Pattern(pidx)

		for pos, stop := range pattern.Stops {
			preds := marked[stop]
			for _, pred := range preds {
				tripIdx := s.earliestTrip(pattern, pos, pred.arrival)
				if tripIdx < 0 {
					continue
				}
				boardSec := int64(s.provider.TripDeparture(pattern, tripIdx, pos))
				predAlightStop := s.provider.Stop(s.lastRideStop(pred.Ref))

				for j := pos + 1; j < len(pattern.Stops); j++ {
					alightSec := int64(s.provider.TripArrival(pattern, tripIdx, j))
					alightStop := pattern.Stops[j]

					if s.req.MaxTripDurationSec > 0 && alightSec-searchStart > s.req.MaxTripDurationSec {
						continue
					}

					ctx := fare.RideContext{
						PredecessorFare:       pred.fare,
						PredecessorAllowance:  pred.allowance,
						Route:                 pattern.Route,
						BoardStop:             s.provider.Stop(stop),
						AlightStop:            s.provider.Stop(alightStop),
						PredecessorAlightStop: predAlightStop,
						BoardTimeSec:          boardSec,
						AlightTimeSec:         alightSec,
						MaxClockTimeSec:       s.req.ToTimeSec,
					}
					cumFare, allow, err := s.req.Calculator.CalculateFare(ctx)
					if err != nil {
						if errors.Is(err, fare.ErrFareNotFound) {
							continue
						}
						return nil, errors.Wrapf(err, "pricing ride on route %s", pattern.Route.ID)
					}
					if s.req.MaxFareAmt > 0 && cumFare > s.req.MaxFareAmt {
						continue
					}

					label := Label{
						Round:             round,
						Stop:              alightStop,
						ArrivalSec:        alightSec,
						Pattern:           pidx,
						TripIndex:         tripIdx,
						BoardStop:         stop,
						BoardSec:          boardSec,
						AlightSec:         alightSec,
						TransferFromStop:  noStop,
						Back:              pred.Ref,
						CumulativeFareAmt: cumFare,
						Allowance:         allow,
					}
					entry := NewEntry(s.arena, label)
					if s.listFor(alightStop).Offer(entry) == pareto.Accepted {
						out.add(alightStop, entry)
					}
				}
			}
		}
	}

	return out, nil
}

// relaxTransfers walks the on-street transfer edges leaving every stop
// transit relaxation newly marked this round. Transfers never consume a
// round and carry fare/allowance through unchanged (spec.md §4.2 "Transfer
// relaxation"); only stops marked by transit this round are scanned, so a
// transfer can never chain directly into another transfer.
func (s *Search) relaxTransfers(marked bag) bag {
	out := newBag()
	for stop, preds := range marked {
		for _, transfer := range s.provider.TransfersFrom(stop) {
			walkSec := int64(transfer.WalkSeconds(s.req.WalkSpeedMPerS))
			if s.req.MaxTransferWalkSec > 0 && walkSec > s.req.MaxTransferWalkSec {
				continue
			}
			for _, pred := range preds {
				label := Label{
					Round:             pred.round,
					Stop:              transfer.ToStop,
					ArrivalSec:        pred.arrival + walkSec,
					Pattern:           transit.NoPattern,
					BoardStop:         noStop,
					TransferFromStop:  stop,
					TransferSec:       walkSec,
					Back:              pred.Ref,
					CumulativeFareAmt: pred.fare,
					Allowance:         pred.allowance,
				}
				entry := NewEntry(s.arena, label)
				if s.listFor(transfer.ToStop).Offer(entry) == pareto.Accepted {
					out.add(transfer.ToStop, entry)
				}
			}
		}
	}
	return out
}

// lastRideStop walks back through any on-street transfer label to the stop
// where the journey's last actual ride let the rider off, so calculators
// can tell "boarding where the previous ride ended" from "boarding after a
// walk to a different stop" (spec.md §4.4.3 behind-gates suppression,
// §4.4.5 in_subway_paid_area, §4.4.6 paid-area continuation). Transfers
// never chain into other transfers (see relaxTransfers), so this is never
// more than one hop.
func (s *Search) lastRideStop(ref LabelRef) transit.StopIndex {
	label := s.arena.Get(ref)
	if label.IsTransfer() {
		label = s.arena.Get(label.Back)
	}
	return label.Stop
}

// earliestTrip returns the index of the earliest trip in pattern whose
// departure at stopPosition is not earlier than minArrivalSec plus the
// minimum board slack, or -1. A linear scan is sufficient here:
// pattern.Trips is sorted by first-stop departure, and feed patterns
// rarely carry more than a few hundred trips.
func (s *Search) earliestTrip(pattern transit.Pattern, stopPosition int, minArrivalSec int64) int {
	minDepartureSec := minArrivalSec + boardSlackSec
	for i, trip := range pattern.Trips {
		if s.provider.SkipCalendarService(trip.ServiceCode) {
			continue
		}
		if int64(trip.Departures[stopPosition]) >= minDepartureSec {
			return i
		}
	}
	return -1
}
