package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitfare/internal/app"
	"github.com/antigravity/transitfare/internal/faredata"
	"github.com/antigravity/transitfare/internal/httpapi"
	"github.com/antigravity/transitfare/internal/transit"
)

// testLayer builds a two-stop, one-route network with a single weekday
// trip, and two stops close enough together that haversine access/egress
// search picks both up from nearby coordinates.
func testLayer() *transit.Layer {
	return &transit.Layer{
		Stops: []transit.Stop{
			{ID: "A", Name: "Stop A", ParentStation: -1, Lat: 45.5017, Lon: -73.5673},
			{ID: "B", Name: "Stop B", ParentStation: -1, Lat: 45.5027, Lon: -73.5673},
		},
		Patterns: []transit.Pattern{
			{
				Route: transit.Route{ID: "R1", ShortName: "1", Type: transit.RouteTypeBus},
				Stops: []transit.StopIndex{0, 1},
				Trips: []transit.TripSchedule{
					{TripID: "T1", ServiceCode: "weekday", Departures: []int32{1000, 0}, Arrivals: []int32{0, 1500}},
				},
			},
		},
		Transfers:      map[transit.StopIndex][]transit.Transfer{},
		ActiveServices: map[string]map[string]bool{"weekday": {"weekday": true}},
	}
}

func testCache() *faredata.Cache {
	return faredata.NewCache(func(layer *transit.Layer) (*faredata.Bundle, error) {
		zoneFares, err := faredata.LoadDefaultZoneFareTable(250)
		if err != nil {
			return nil, err
		}
		connected, err := faredata.LoadDefaultConnectedPairs()
		if err != nil {
			return nil, err
		}
		faresV2, err := faredata.LoadDefaultFaresV2Tables()
		if err != nil {
			return nil, err
		}
		return &faredata.Bundle{ZoneFares: zoneFares, Connected: connected, FaresV2Tables: faresV2}, nil
	})
}

func TestHandler_Health(t *testing.T) {
	h := httpapi.NewHandler(testLayer(), testCache())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func planBody(t *testing.T, req httpapi.PlanRequest) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestHandler_Plan_FindsDirectTrip(t *testing.T) {
	h := httpapi.NewHandler(testLayer(), testCache())

	reqBody := httpapi.PlanRequest{
		FromLat: 45.5017, FromLon: -73.5673,
		ToLat: 45.5027, ToLon: -73.5673,
		FromTimeSeconds: 900,
		ToTimeSeconds:   1100,
		Date:            "2026-06-01", // a Monday, resolves to "weekday"
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/plan", planBody(t, reqBody))
	rec := httptest.NewRecorder()

	h.Plan(rec, httpReq)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp httpapi.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SearchID)
	require.Len(t, resp.Trips, 1)
	assert.Equal(t, int64(1500), resp.Trips[0].DepartureTimeSeconds+resp.Trips[0].DurationSeconds)
	require.Len(t, resp.Trips[0].Legs, 1)
	assert.Equal(t, "transit", resp.Trips[0].Legs[0].Type)
	require.NotNil(t, resp.Trips[0].Legs[0].Route)
	assert.Equal(t, "R1", resp.Trips[0].Legs[0].Route.ID)
}

func TestHandler_Plan_NoStopsNearOriginReturns404(t *testing.T) {
	h := httpapi.NewHandler(testLayer(), testCache())

	reqBody := httpapi.PlanRequest{
		FromLat: 10, FromLon: 10, // nowhere near any stop
		ToLat: 45.5027, ToLon: -73.5673,
		FromTimeSeconds: 900,
		ToTimeSeconds:   1100,
		Date:            "2026-06-01",
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/plan", planBody(t, reqBody))
	rec := httptest.NewRecorder()

	h.Plan(rec, httpReq)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Plan_UnknownFareCalculatorReturns400(t *testing.T) {
	h := httpapi.NewHandler(testLayer(), testCache())

	reqBody := httpapi.PlanRequest{
		FromLat: 45.5017, FromLon: -73.5673,
		ToLat: 45.5027, ToLon: -73.5673,
		FromTimeSeconds:         900,
		ToTimeSeconds:           1100,
		Date:                    "2026-06-01",
		InRoutingFareCalculator: app.FareCalculatorConfig{Type: "not-a-real-calculator"},
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/plan", planBody(t, reqBody))
	rec := httptest.NewRecorder()

	h.Plan(rec, httpReq)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Plan_MalformedBodyReturns400(t *testing.T) {
	h := httpapi.NewHandler(testLayer(), testCache())

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/plan", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.Plan(rec, httpReq)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
