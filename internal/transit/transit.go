// Package transit is the read-only, date-filtered view of the network that
// the RAPTOR search iterates over. Everything here is loaded once per
// search date and never mutated afterward.
package transit

// StopIndex is an index into Layer.Stops. Kept as a plain int rather than a
// named "ID" type the way the teacher keeps StopID/RouteID/TripID distinct,
// except here all three collapse to plain indices into arena-like slices.
type StopIndex int32

// PatternIndex is an index into Layer.Patterns.
type PatternIndex int32

const NoPattern PatternIndex = -1

// Stop is an immutable stop record.
type Stop struct {
	ID              string
	Name            string
	ParentStation   int32 // index into Layer.Stops, or -1
	FareZone        string
	Lat, Lon        float64
}

func (s Stop) HasParentStation() bool { return s.ParentStation >= 0 }

// Route describes the line a Pattern belongs to.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	AgencyID  string
	Type      RouteType
}

// RouteType mirrors the GTFS route_type enumeration, restricted to the
// values this router's allowed_transit_modes can express.
type RouteType int

const (
	RouteTypeTram RouteType = iota
	RouteTypeSubway
	RouteTypeRail
	RouteTypeBus
	RouteTypeFerry
	RouteTypeCableTram
	RouteTypeAerialLift
	RouteTypeFunicular
	RouteTypeTrolleybus
	RouteTypeMonorail
)

// TripSchedule is one trip's parallel arrival/departure arrays, aligned to
// Pattern.Stops.
type TripSchedule struct {
	TripID       string
	ServiceCode  string
	Arrivals     []int32 // seconds since midnight, aligned to Pattern.Stops
	Departures   []int32
}

// Pattern is an ordered sequence of stops served by one or more trips, all
// sharing the same stop sequence.
type Pattern struct {
	Route Route
	Stops []StopIndex
	Trips []TripSchedule // sorted by Trips[i].Departures[0] ascending
}

// Transfer is a pre-computed on-street walk edge between two stops.
type Transfer struct {
	FromStop    StopIndex
	ToStop      StopIndex
	DistanceMM  int64
}

// WalkSeconds converts a transfer's distance into a duration at the given
// walking speed.
func (t Transfer) WalkSeconds(walkSpeedMPerS float64) int32 {
	if walkSpeedMPerS <= 0 {
		walkSpeedMPerS = 1.3
	}
	meters := float64(t.DistanceMM) / 1000.0
	return int32(meters / walkSpeedMPerS)
}

// Layer is the complete, already-ingested transit feed: every stop, pattern
// and transfer the provider might ever serve, independent of search date.
// Building a Layer (from GTFS, from a database, ...) is out of scope for
// this package; transitstore does that for the Postgres-backed deployment.
type Layer struct {
	Stops     []Stop
	Patterns  []Pattern
	Transfers map[StopIndex][]Transfer

	// ActiveServices maps a service_code to the set of calendar dates
	// (YYYYMMDD) on which it runs. Lazily consulted by IsServiceActive.
	ActiveServices map[string]map[string]bool

	// generation is bumped by Close, so caches keyed by *Layer can
	// detect staleness without relying on GC weak references.
	generation uint64
}

// Close invalidates any fare-table cache entries keyed by this layer. See
// internal/faredata for the cache that keys off this.
func (l *Layer) Close() {
	l.generation++
}

func (l *Layer) Generation() uint64 { return l.generation }

func (l *Layer) IsServiceActive(serviceCode, date string) bool {
	dates, ok := l.ActiveServices[serviceCode]
	if !ok {
		return false
	}
	return dates[date]
}
