// Package httpapi adapts internal/handler's chi-router style into the
// journey-planning endpoint spec.md §6 describes: a POST /api/v1/plan that
// resolves access/egress stops, runs one raptor.Search, and serializes the
// surviving Pareto frontier.
package httpapi

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/antigravity/transitfare/internal/app"
	"github.com/antigravity/transitfare/internal/faredata"
	"github.com/antigravity/transitfare/internal/path"
	"github.com/antigravity/transitfare/internal/raptor"
	"github.com/antigravity/transitfare/internal/transit"
	"github.com/antigravity/transitfare/internal/transitstore"
)

const (
	earthRadiusM     = 6371000.0
	accessSearchRadM = 1000.0
	defaultWalkSpeed = 1.3
)

// Handler serves the journey-planning API over a single, already-loaded
// transit layer. Reloading the layer (a new GTFS/database snapshot) means
// constructing a new Handler and swapping it in; spec.md leaves feed
// refresh cadence to the deployment.
type Handler struct {
	Layer     *transit.Layer
	FareCache *faredata.Cache
}

func NewHandler(layer *transit.Layer, fareCache *faredata.Cache) *Handler {
	return &Handler{Layer: layer, FareCache: fareCache}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	searchID := uuid.New().String()

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding request body"))
		return
	}

	resp, err := h.plan(r, req)
	if err != nil {
		log.Printf("httpapi: search %s failed: %v", searchID, err)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, transit.ErrNoStopsNearOrigin) || errors.Is(err, transit.ErrNoStopsNearDestination):
			status = http.StatusNotFound
		case errors.Is(err, app.ErrUnknownFareCalculator):
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	resp.SearchID = searchID
	resp.ComputeTimeMillis = time.Since(start).Milliseconds()
	log.Printf("httpapi: search %s found %d trip(s) in %dms", searchID, len(resp.Trips), resp.ComputeTimeMillis)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) plan(r *http.Request, req PlanRequest) (*PlanResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, errors.Wrap(err, "parsing date")
	}
	serviceCode := transitstore.ServiceCodeForDate(date)

	modes := modeSet(req.AllowedTransitModes)
	provider := transit.NewProvider(h.Layer, serviceCode, modes)

	bundle, err := h.FareCache.Get(h.Layer)
	if err != nil {
		return nil, errors.Wrap(err, "loading fare tables")
	}

	calculator, err := app.BuildCalculator(req.InRoutingFareCalculator, bundle, provider)
	if err != nil {
		return nil, err
	}

	walkSpeed := req.WalkSpeedMPerS
	if walkSpeed <= 0 {
		walkSpeed = defaultWalkSpeed
	}

	access := nearestStops(h.Layer, req.FromLat, req.FromLon, walkSpeed)
	if len(access) == 0 {
		return nil, transit.ErrNoStopsNearOrigin
	}
	egress := nearestStops(h.Layer, req.ToLat, req.ToLon, walkSpeed)
	if len(egress) == 0 {
		return nil, transit.ErrNoStopsNearDestination
	}

	raptorReq := raptor.Request{
		AccessStops:        access,
		EgressStops:        egress,
		FromTimeSec:        req.FromTimeSeconds,
		ToTimeSec:          req.ToTimeSeconds,
		MaxRides:           req.MaxRides,
		MaxTripDurationSec: req.MaxTripDurationMinutes * 60,
		MaxFareAmt:         req.MaxFare,
		MaxTransferWalkSec: req.MaxWalkTimeMinutes * 60,
		WalkSpeedMPerS:     walkSpeed,
		Calculator:         calculator,
	}

	search := raptor.NewSearch(provider, raptorReq)
	result, err := search.Run(r.Context())
	if err != nil {
		return nil, errors.Wrap(err, "running search")
	}

	trips := make([]Trip, 0, result.Destination.Len())
	for _, e := range result.Destination.Entries() {
		legs := path.Reconstruct(provider, result.Arena, e.Ref)
		if len(legs) == 0 {
			continue
		}
		trips = append(trips, toTrip(req.FromTimeSeconds, legs))
	}

	return &PlanResponse{Request: req, Trips: trips}, nil
}

func toTrip(searchStart int64, legs []path.Leg) Trip {
	first, last := legs[0], legs[len(legs)-1]
	trip := Trip{
		DepartureTimeSeconds: first.BoardTime,
		DurationSeconds:      last.AlightTime - first.BoardTime,
		Fare:                 last.CumulativeFareAfter,
		Legs:                 make([]Leg, 0, len(legs)),
	}

	for _, l := range legs {
		leg := Leg{
			BoardStopID:       l.BoardStopID,
			BoardStopName:     l.BoardStopName,
			AlightStopID:      l.AlightStopID,
			AlightStopName:    l.AlightStopName,
			BoardTime:         l.BoardTime,
			AlightTime:        l.AlightTime,
			CumulativeFare:    l.CumulativeFareAfter,
			TransferAllowance: l.TransferAllowanceAfter,
		}
		if l.Kind == path.KindTransit {
			leg.Type = "transit"
			leg.Route = &RouteRef{ID: l.Route.ID, ShortName: l.Route.ShortName, LongName: l.Route.LongName}
		} else {
			leg.Type = "transfer"
		}
		trip.Legs = append(trip.Legs, leg)
	}
	return trip
}

// modeSet maps the request's string mode names onto transit.ModeSet,
// defaulting to every mode when the request leaves the field empty.
func modeSet(names []string) transit.ModeSet {
	if len(names) == 0 {
		return transit.NewModeSet(
			transit.RouteTypeTram, transit.RouteTypeSubway, transit.RouteTypeRail,
			transit.RouteTypeBus, transit.RouteTypeFerry, transit.RouteTypeCableTram,
			transit.RouteTypeAerialLift, transit.RouteTypeFunicular, transit.RouteTypeTrolleybus,
			transit.RouteTypeMonorail,
		)
	}
	var types []transit.RouteType
	for _, name := range names {
		if t, ok := routeTypeByName[name]; ok {
			types = append(types, t)
		}
	}
	return transit.NewModeSet(types...)
}

var routeTypeByName = map[string]transit.RouteType{
	"tram":        transit.RouteTypeTram,
	"subway":      transit.RouteTypeSubway,
	"rail":        transit.RouteTypeRail,
	"bus":         transit.RouteTypeBus,
	"ferry":       transit.RouteTypeFerry,
	"cable_tram":  transit.RouteTypeCableTram,
	"aerial_lift": transit.RouteTypeAerialLift,
	"funicular":   transit.RouteTypeFunicular,
	"trolleybus":  transit.RouteTypeTrolleybus,
	"monorail":    transit.RouteTypeMonorail,
}

// nearestStops finds every stop within accessSearchRadM of (lat, lon),
// returning the walk duration to each at walkSpeed. Precise street-network
// access/egress routing is out of scope (spec.md §4.1); this straight-line
// radius search is the provider-side stand-in the router needs to seed its
// access/egress stop sets.
func nearestStops(layer *transit.Layer, lat, lon, walkSpeed float64) map[transit.StopIndex]int64 {
	out := make(map[transit.StopIndex]int64)
	for idx, stop := range layer.Stops {
		distM := haversineMeters(lat, lon, stop.Lat, stop.Lon)
		if distM > accessSearchRadM {
			continue
		}
		out[transit.StopIndex(idx)] = int64(distM / walkSpeed)
	}
	return out
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
