package httpapi

import "github.com/antigravity/transitfare/internal/app"

// PlanRequest is the external request shape of spec.md §6.
type PlanRequest struct {
	FromLat float64 `json:"from_lat"`
	FromLon float64 `json:"from_lon"`
	ToLat   float64 `json:"to_lat"`
	ToLon   float64 `json:"to_lon"`

	FromTimeSeconds int64  `json:"from_time_seconds"`
	ToTimeSeconds   int64  `json:"to_time_seconds"`
	Date            string `json:"date"`

	MaxRides               int      `json:"max_rides"`
	MaxTripDurationMinutes int64    `json:"max_trip_duration_minutes"`
	MaxFare                int64    `json:"max_fare"`
	AllowedTransitModes    []string `json:"allowed_transit_modes"`
	WalkSpeedMPerS         float64  `json:"walk_speed_m_per_s"`
	MaxWalkTimeMinutes     int64    `json:"max_walk_time_minutes"`

	InRoutingFareCalculator app.FareCalculatorConfig `json:"in_routing_fare_calculator"`
}

// PlanResponse is the external response shape of spec.md §6.
type PlanResponse struct {
	SearchID          string      `json:"search_id"`
	Request           PlanRequest `json:"request"`
	ComputeTimeMillis int64       `json:"compute_time_millis"`
	Trips             []Trip      `json:"trips"`
}

type Trip struct {
	DepartureTimeSeconds int64 `json:"departure_time_seconds"`
	DurationSeconds      int64 `json:"duration_seconds"`
	Fare                 int64 `json:"fare"`
	Legs                 []Leg `json:"legs"`
}

type Leg struct {
	Type              string      `json:"type"`
	BoardStopID       string      `json:"board_stop_id"`
	BoardStopName     string      `json:"board_stop_name"`
	AlightStopID      string      `json:"alight_stop_id"`
	AlightStopName    string      `json:"alight_stop_name"`
	BoardTime         int64       `json:"board_time"`
	AlightTime        int64       `json:"alight_time"`
	CumulativeFare    int64       `json:"cumulative_fare"`
	TransferAllowance interface{} `json:"transfer_allowance"`
	Route             *RouteRef   `json:"route,omitempty"`
}

type RouteRef struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
}
