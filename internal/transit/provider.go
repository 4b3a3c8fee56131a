package transit

import "github.com/pkg/errors"

// ErrNoStopsNearOrigin and ErrNoStopsNearDestination are user-visible
// search-input errors (spec.md §7): the street-network collaborator found
// no boarding/alighting stops near the requested coordinates.
var (
	ErrNoStopsNearOrigin      = errors.New("no transit stops found near origin")
	ErrNoStopsNearDestination = errors.New("no transit stops found near destination")
)

// ModeSet is the request's allowed_transit_modes, expressed as a bitset
// over RouteType so membership tests are O(1).
type ModeSet uint32

func NewModeSet(types ...RouteType) ModeSet {
	var m ModeSet
	for _, t := range types {
		m |= 1 << uint(t)
	}
	return m
}

func (m ModeSet) Allows(t RouteType) bool {
	return m&(1<<uint(t)) != 0
}

// Provider presents a read-only, date-filtered view of a Layer. It is built
// once per search (cheap: it only filters pattern indices) and is safe to
// share across goroutines since it never mutates the underlying Layer.
type Provider struct {
	layer *Layer
	date  string
	modes ModeSet

	// filteredPatterns holds the indices of Layer.Patterns active on
	// Date and within Modes, in original-index order. Inner loops scan
	// this slice; label back-references still store PatternIndex values
	// that index Layer.Patterns directly, per spec.md §4.1.
	filteredPatterns []PatternIndex

	// patternsByStop maps a stop to the filtered patterns touching it,
	// built once at construction time.
	patternsByStop map[StopIndex][]PatternIndex
}

// NewProvider filters the Layer down to patterns active on date and
// running one of the allowed modes. date is looked up in the date sets of
// Layer.ActiveServices: YYYYMMDD for a GTFS-style calendar, or the service
// code itself for a layer built by transitstore (see ServiceCodeForDate).
func NewProvider(layer *Layer, date string, modes ModeSet) *Provider {
	p := &Provider{
		layer:          layer,
		date:           date,
		modes:          modes,
		patternsByStop: make(map[StopIndex][]PatternIndex),
	}

	for idx, pattern := range layer.Patterns {
		if !modes.Allows(pattern.Route.Type) {
			continue
		}
		if !p.patternActiveOnDate(pattern) {
			continue
		}
		pidx := PatternIndex(idx)
		p.filteredPatterns = append(p.filteredPatterns, pidx)
		for _, stopIdx := range pattern.Stops {
			p.patternsByStop[stopIdx] = append(p.patternsByStop[stopIdx], pidx)
		}
	}

	return p
}

func (p *Provider) patternActiveOnDate(pattern Pattern) bool {
	for _, trip := range pattern.Trips {
		if p.layer.IsServiceActive(trip.ServiceCode, p.date) {
			return true
		}
	}
	return false
}

func (p *Provider) Layer() *Layer { return p.layer }

func (p *Provider) Stop(idx StopIndex) Stop { return p.layer.Stops[int(idx)] }

func (p *Provider) Pattern(idx PatternIndex) Pattern { return p.layer.Patterns[int(idx)] }

// FilteredPatterns returns every pattern index active for this provider's
// date and allowed modes, independent of any particular stop. Callers that
// need to classify routes up front (fare-calculator wiring, mode summaries)
// use this instead of PatternsTouched.
func (p *Provider) FilteredPatterns() []PatternIndex {
	return p.filteredPatterns
}

// TransfersFrom returns the on-street transfer edges leaving stop.
func (p *Provider) TransfersFrom(stop StopIndex) []Transfer {
	return p.layer.Transfers[stop]
}

// PatternsTouched returns the (already date/mode filtered) patterns that
// touch any of the given stops.
func (p *Provider) PatternsTouched(improvedStops []StopIndex) []PatternIndex {
	seen := make(map[PatternIndex]bool)
	var out []PatternIndex
	for _, stop := range improvedStops {
		for _, pidx := range p.patternsByStop[stop] {
			if !seen[pidx] {
				seen[pidx] = true
				out = append(out, pidx)
			}
		}
	}
	return out
}

// SkipCalendarService reports whether a trip running under serviceCode is
// inactive on the search date and so should be skipped during trip
// scanning (defensive: PatternsTouched already filters at the pattern
// level, but individual trips within an active pattern can still belong to
// a different, inactive service).
func (p *Provider) SkipCalendarService(serviceCode string) bool {
	return !p.layer.IsServiceActive(serviceCode, p.date)
}

// TripDeparture returns the departure time of trip at the given position
// in pattern's stop sequence.
func (p *Provider) TripDeparture(pattern Pattern, tripIndex, stopPosition int) int32 {
	return pattern.Trips[tripIndex].Departures[stopPosition]
}

// TripArrival returns the arrival time of trip at the given position in
// pattern's stop sequence.
func (p *Provider) TripArrival(pattern Pattern, tripIndex, stopPosition int) int32 {
	return pattern.Trips[tripIndex].Arrivals[stopPosition]
}

// StopPosition returns the index of stop within pattern.Stops, or -1.
func StopPosition(pattern Pattern, stop StopIndex) int {
	for i, s := range pattern.Stops {
		if s == stop {
			return i
		}
	}
	return -1
}
