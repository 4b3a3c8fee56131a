package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/antigravity/transitfare/internal/app"
	"github.com/antigravity/transitfare/internal/path"
	"github.com/antigravity/transitfare/internal/raptor"
	"github.com/antigravity/transitfare/internal/transit"
	"github.com/antigravity/transitfare/internal/transitstore"
)

var (
	planFromLat, planFromLon float64
	planToLat, planToLon     float64
	planDate                 string
	planFromTime, planToTime string
	planMaxRides             int
	planMaxFare              int64
	planMaxWalkMinutes       int64
	planCalculator           string
	planModes                []string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a journey and print its Pareto-optimal trips",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Float64Var(&planFromLat, "from-lat", 0, "Origin latitude")
	planCmd.Flags().Float64Var(&planFromLon, "from-lon", 0, "Origin longitude")
	planCmd.Flags().Float64Var(&planToLat, "to-lat", 0, "Destination latitude")
	planCmd.Flags().Float64Var(&planToLon, "to-lon", 0, "Destination longitude")
	planCmd.Flags().StringVar(&planDate, "date", time.Now().Format("2006-01-02"), "Travel date (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planFromTime, "from-time", "07:00", "Earliest departure time (HH:MM)")
	planCmd.Flags().StringVar(&planToTime, "to-time", "09:00", "Latest departure time (HH:MM), range-raptor sweeps backward from here")
	planCmd.Flags().IntVar(&planMaxRides, "max-rides", 0, "Maximum number of transit rides (0 = default)")
	planCmd.Flags().Int64Var(&planMaxFare, "max-fare", 0, "Maximum cumulative fare, in cents (0 = unbounded)")
	planCmd.Flags().Int64Var(&planMaxWalkMinutes, "max-walk-minutes", 0, "Maximum single-transfer walk time, in minutes (0 = unbounded)")
	planCmd.Flags().StringVar(&planCalculator, "calculator", "simple", fmt.Sprintf("In-routing fare calculator (%s)", strings.Join(app.Calculators, ", ")))
	planCmd.Flags().StringSliceVar(&planModes, "modes", nil, "Allowed transit modes (tram, subway, rail, bus, ferry, ...); default all")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := app.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	layer, err := app.LoadLayer(ctx, pool)
	if err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", planDate)
	if err != nil {
		return fmt.Errorf("parsing --date: %w", err)
	}
	fromSec, err := parseClock(planFromTime)
	if err != nil {
		return fmt.Errorf("parsing --from-time: %w", err)
	}
	toSec, err := parseClock(planToTime)
	if err != nil {
		return fmt.Errorf("parsing --to-time: %w", err)
	}

	provider := transit.NewProvider(layer, transitstore.ServiceCodeForDate(date), modeSetFromNames(planModes))

	cache := app.NewFareCache()
	bundle, err := cache.Get(layer)
	if err != nil {
		return err
	}

	calculator, err := app.BuildCalculator(app.FareCalculatorConfig{Type: planCalculator}, bundle, provider)
	if err != nil {
		return err
	}

	access := nearestStopsCLI(layer, planFromLat, planFromLon)
	if len(access) == 0 {
		return transit.ErrNoStopsNearOrigin
	}
	egress := nearestStopsCLI(layer, planToLat, planToLon)
	if len(egress) == 0 {
		return transit.ErrNoStopsNearDestination
	}

	search := raptor.NewSearch(provider, raptor.Request{
		AccessStops:        access,
		EgressStops:        egress,
		FromTimeSec:        fromSec,
		ToTimeSec:          toSec,
		MaxRides:           planMaxRides,
		MaxFareAmt:         planMaxFare,
		MaxTransferWalkSec: planMaxWalkMinutes * 60,
		WalkSpeedMPerS:     1.3,
		Calculator:         calculator,
	})

	searchID := uuid.New().String()
	result, err := search.Run(ctx)
	if err != nil {
		return err
	}

	entries := result.Destination.Entries()
	fmt.Printf("search %s: %d Pareto-optimal trip(s)\n", searchID, len(entries))
	for i, e := range entries {
		legs := path.Reconstruct(provider, result.Arena, e.Ref)
		if len(legs) == 0 {
			continue
		}
		fmt.Printf("\ntrip %d: arrive %s, %d ride(s), fare %d\n", i+1, formatClock(legs[len(legs)-1].AlightTime), e.Round(), e.CumulativeFare())
		for _, l := range legs {
			if l.Kind == path.KindTransit {
				fmt.Printf("  ride  %-4s %s (%s) -> %s (%s)  fare=%d\n",
					l.Route.ShortName, l.BoardStopName, formatClock(l.BoardTime), l.AlightStopName, formatClock(l.AlightTime), l.CumulativeFareAfter)
			} else {
				fmt.Printf("  walk  %s (%s) -> %s (%s)\n", l.BoardStopName, formatClock(l.BoardTime), l.AlightStopName, formatClock(l.AlightTime))
			}
		}
	}

	return nil
}

func parseClock(hhmm string) (int64, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return int64(t.Hour()*3600 + t.Minute()*60), nil
}

func formatClock(sec int64) string {
	sec = sec % 86400
	return fmt.Sprintf("%02d:%02d", sec/3600, (sec%3600)/60)
}

func modeSetFromNames(names []string) transit.ModeSet {
	if len(names) == 0 {
		return transit.NewModeSet(
			transit.RouteTypeTram, transit.RouteTypeSubway, transit.RouteTypeRail,
			transit.RouteTypeBus, transit.RouteTypeFerry, transit.RouteTypeCableTram,
			transit.RouteTypeAerialLift, transit.RouteTypeFunicular, transit.RouteTypeTrolleybus,
			transit.RouteTypeMonorail,
		)
	}
	byName := map[string]transit.RouteType{
		"tram": transit.RouteTypeTram, "subway": transit.RouteTypeSubway, "rail": transit.RouteTypeRail,
		"bus": transit.RouteTypeBus, "ferry": transit.RouteTypeFerry, "cable_tram": transit.RouteTypeCableTram,
		"aerial_lift": transit.RouteTypeAerialLift, "funicular": transit.RouteTypeFunicular,
		"trolleybus": transit.RouteTypeTrolleybus, "monorail": transit.RouteTypeMonorail,
	}
	var types []transit.RouteType
	for _, n := range names {
		if t, ok := byName[n]; ok {
			types = append(types, t)
		}
	}
	return transit.NewModeSet(types...)
}

const accessRadiusM = 1000.0

func nearestStopsCLI(layer *transit.Layer, lat, lon float64) map[transit.StopIndex]int64 {
	out := make(map[transit.StopIndex]int64)
	for idx, stop := range layer.Stops {
		d := haversine(lat, lon, stop.Lat, stop.Lon)
		if d > accessRadiusM {
			continue
		}
		out[transit.StopIndex(idx)] = int64(d / 1.3)
	}
	return out
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusM = 6371000.0
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}
