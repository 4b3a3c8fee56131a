// Package transitstore builds an internal/transit.Layer from a Postgres
// schedule database, the way internal/routing.Loader builds a RaptorData
// (grounded on that loader's query shapes: stops/lines/line_stops/schedules
// tables, PostGIS ST_DWithin for transfers), generalized to also carry fare
// zones and per-date service calendars (SPEC_FULL.md "Transit Data
// Provider").
package transitstore

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/antigravity/transitfare/internal/transit"
)

type Loader struct {
	db *pgxpool.Pool
}

func NewLoader(db *pgxpool.Pool) *Loader {
	return &Loader{db: db}
}

// Load reads the full schedule database into a transit.Layer: every stop,
// every (line, direction) pattern with its trips, the station-distance
// transfer graph, and the per-service-code active-date calendar.
func (l *Loader) Load(ctx context.Context) (*transit.Layer, error) {
	log.Println("transitstore: loading transit layer from database...")
	start := time.Now()

	layer := &transit.Layer{
		Transfers:      make(map[transit.StopIndex][]transit.Transfer),
		ActiveServices: make(map[string]map[string]bool),
	}

	dbIDToStop, err := l.loadStops(ctx, layer)
	if err != nil {
		return nil, errors.Wrap(err, "loading stops")
	}

	if err := l.loadPatterns(ctx, layer, dbIDToStop); err != nil {
		return nil, errors.Wrap(err, "loading patterns")
	}

	if err := l.loadTransfers(ctx, layer, dbIDToStop); err != nil {
		return nil, errors.Wrap(err, "loading transfers")
	}

	if err := l.loadCalendar(ctx, layer); err != nil {
		return nil, errors.Wrap(err, "loading calendar")
	}

	log.Printf("transitstore: loaded %d stops, %d patterns in %s", len(layer.Stops), len(layer.Patterns), time.Since(start))
	return layer, nil
}

func (l *Loader) loadStops(ctx context.Context, layer *transit.Layer) (map[int]transit.StopIndex, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, name_fr, COALESCE(fare_zone, ''), COALESCE(parent_station_id, 0),
		       ST_X(location::geometry), ST_Y(location::geometry)
		FROM stops
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dbIDToStop := make(map[int]transit.StopIndex)
	dbIDToParent := make(map[int]int)

	for rows.Next() {
		var dbID, parentDBID int
		var s transit.Stop
		s.ParentStation = -1
		if err := rows.Scan(&dbID, &s.Name, &s.FareZone, &parentDBID, &s.Lon, &s.Lat); err != nil {
			return nil, err
		}
		s.ID = stopDBIDToStringID(dbID)

		idx := transit.StopIndex(len(layer.Stops))
		layer.Stops = append(layer.Stops, s)
		dbIDToStop[dbID] = idx
		if parentDBID != 0 {
			dbIDToParent[dbID] = parentDBID
		}
	}

	for dbID, parentDBID := range dbIDToParent {
		idx, ok := dbIDToStop[dbID]
		if !ok {
			continue
		}
		parentIdx, ok := dbIDToStop[parentDBID]
		if !ok {
			continue
		}
		layer.Stops[idx].ParentStation = int32(parentIdx)
	}

	return dbIDToStop, rows.Err()
}

func (l *Loader) loadPatterns(ctx context.Context, layer *transit.Layer, dbIDToStop map[int]transit.StopIndex) error {
	patternRows, err := l.db.Query(ctx, "SELECT DISTINCT line_id, direction FROM line_stops")
	if err != nil {
		return err
	}
	defer patternRows.Close()

	type patternKey struct {
		lineID, direction int
	}
	var patterns []patternKey
	for patternRows.Next() {
		var k patternKey
		if err := patternRows.Scan(&k.lineID, &k.direction); err != nil {
			return err
		}
		patterns = append(patterns, k)
	}
	if err := patternRows.Err(); err != nil {
		return err
	}

	for _, p := range patterns {
		var route transit.Route
		var routeType string
		err := l.db.QueryRow(ctx, "SELECT code, line_type, operator_id, COALESCE(color, '#000000') FROM lines WHERE id=$1", p.lineID).
			Scan(&route.ShortName, &routeType, &route.AgencyID, &route.LongName)
		if err != nil {
			log.Printf("transitstore: skipping line %d: %v", p.lineID, err)
			continue
		}
		route.ID = lineDBIDToStringID(p.lineID, p.direction)
		route.Type = routeTypeFromLineType(routeType)

		stopIdxs, err := l.patternStops(ctx, p.lineID, p.direction, dbIDToStop)
		if err != nil {
			return err
		}
		if len(stopIdxs) < 2 {
			continue
		}

		trips, err := l.patternTrips(ctx, p.lineID, p.direction, len(stopIdxs))
		if err != nil {
			return err
		}
		if len(trips) == 0 {
			continue
		}

		layer.Patterns = append(layer.Patterns, transit.Pattern{
			Route: route,
			Stops: stopIdxs,
			Trips: trips,
		})
	}

	return nil
}

func (l *Loader) patternStops(ctx context.Context, lineID, direction int, dbIDToStop map[int]transit.StopIndex) ([]transit.StopIndex, error) {
	rows, err := l.db.Query(ctx, "SELECT stop_id FROM line_stops WHERE line_id=$1 AND direction=$2 ORDER BY stop_sequence", lineID, direction)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []transit.StopIndex
	for rows.Next() {
		var dbID int
		if err := rows.Scan(&dbID); err != nil {
			return nil, err
		}
		if idx, ok := dbIDToStop[dbID]; ok {
			stops = append(stops, idx)
		}
	}
	return stops, rows.Err()
}

// patternTrips loads one TripSchedule per (departure time, day type)
// recorded at the pattern's first stop, extrapolating the remaining
// stops' times the way internal/routing.Loader does (spec.md explicitly
// scopes exact per-stop timetable ingestion as the provider's concern, not
// the router's).
func (l *Loader) patternTrips(ctx context.Context, lineID, direction, stopCount int) ([]transit.TripSchedule, error) {
	var trips []transit.TripSchedule

	for _, dayType := range []string{"weekday", "saturday", "sunday"} {
		rows, err := l.db.Query(ctx, `
			SELECT s.departure_time FROM schedules s
			JOIN line_stops ls ON ls.line_id = s.line_id AND ls.direction = s.direction AND ls.stop_sequence = 1
			WHERE s.line_id=$1 AND s.direction=$2 AND s.day_type=$3
			ORDER BY s.departure_time
		`, lineID, direction, dayType)
		if err != nil {
			return nil, err
		}

		var startTimes []time.Time
		for rows.Next() {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				rows.Close()
				return nil, err
			}
			t, err := time.Parse("15:04:05", raw)
			if err != nil {
				continue
			}
			startTimes = append(startTimes, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, st := range startTimes {
			startSec := int32(st.Hour()*3600 + st.Minute()*60 + st.Second())

			arrivals := make([]int32, stopCount)
			departures := make([]int32, stopCount)
			sec := startSec
			for i := 0; i < stopCount; i++ {
				arrivals[i] = sec
				departures[i] = sec
				sec += 180
			}

			trips = append(trips, transit.TripSchedule{
				TripID:      tripID(lineID, direction, dayType, len(trips)),
				ServiceCode: dayType,
				Arrivals:    arrivals,
				Departures:  departures,
			})
		}
	}

	return trips, nil
}

func (l *Loader) loadTransfers(ctx context.Context, layer *transit.Layer, dbIDToStop map[int]transit.StopIndex) error {
	rows, err := l.db.Query(ctx, `
		SELECT s1.id, s2.id, ST_Distance(s1.location::geography, s2.location::geography)
		FROM stops s1
		JOIN stops s2 ON ST_DWithin(s1.location::geography, s2.location::geography, 300)
		WHERE s1.id != s2.id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var dbID1, dbID2 int
		var distMeters float64
		if err := rows.Scan(&dbID1, &dbID2, &distMeters); err != nil {
			return err
		}
		from, ok1 := dbIDToStop[dbID1]
		to, ok2 := dbIDToStop[dbID2]
		if !ok1 || !ok2 {
			continue
		}
		layer.Transfers[from] = append(layer.Transfers[from], transit.Transfer{
			FromStop:   from,
			ToStop:     to,
			DistanceMM: int64(distMeters * 1000),
		})
	}
	return rows.Err()
}

// loadCalendar fills ActiveServices so that transit.Layer.IsServiceActive
// treats a trip's ServiceCode as active exactly when the caller's resolved
// date bucket equals that code. This schema's calendar only distinguishes
// weekday/saturday/sunday rather than a GTFS calendar_dates table, so
// "date" at the transit.Provider boundary is expected to already be the
// output of ServiceCodeForDate, not a literal YYYYMMDD string.
func (l *Loader) loadCalendar(ctx context.Context, layer *transit.Layer) error {
	for _, code := range []string{"weekday", "saturday", "sunday"} {
		layer.ActiveServices[code] = map[string]bool{code: true}
	}
	return nil
}

// ServiceCodeForDate resolves a calendar date to the service code this
// schema's schedules are bucketed by.
func ServiceCodeForDate(date time.Time) string {
	switch date.Weekday() {
	case time.Sunday:
		return "sunday"
	case time.Saturday:
		return "saturday"
	default:
		return "weekday"
	}
}

func routeTypeFromLineType(lineType string) transit.RouteType {
	switch lineType {
	case "tram":
		return transit.RouteTypeTram
	case "busway", "bus":
		return transit.RouteTypeBus
	case "train", "rail":
		return transit.RouteTypeRail
	case "ferry":
		return transit.RouteTypeFerry
	default:
		return transit.RouteTypeBus
	}
}
