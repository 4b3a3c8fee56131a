package app

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/faredata"
	"github.com/antigravity/transitfare/internal/fare"
	"github.com/antigravity/transitfare/internal/transit"
)

// FareCalculatorConfig is the request's in_routing_fare_calculator field
// (spec.md §6): a discriminator plus whatever type-specific configuration
// that calculator needs (agency lists, fare overrides). Shared by
// internal/httpapi (request/response JSON) and cmd/transitfare (flags), so
// both speak the same calculator-selection shape.
type FareCalculatorConfig struct {
	Type      string
	RawConfig map[string]interface{}
}

// UnmarshalJSON captures "type" into Type and every other field into
// RawConfig, so type-specific configuration never needs its own named
// struct per calculator.
func (c *FareCalculatorConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if t, ok := raw["type"].(string); ok {
		c.Type = t
	}
	delete(raw, "type")
	c.RawConfig = raw
	return nil
}

// MarshalJSON round-trips Type alongside RawConfig.
func (c FareCalculatorConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.RawConfig)+1)
	for k, v := range c.RawConfig {
		out[k] = v
	}
	out["type"] = c.Type
	return json.Marshal(out)
}

// ErrUnknownFareCalculator is returned when Type does not name one of the
// built-in calculators.
var ErrUnknownFareCalculator = errors.New("app: unknown in_routing_fare_calculator.type")

const (
	defaultTransferWindowSec = 2 * 60 * 60
	defaultFareAmt           = 250
)

// BuildCalculator resolves cfg into a concrete fare.Calculator, wiring in
// the process-cached static fare tables from bundle. Per-agency/per-route
// classification, where the chosen system needs it, falls back to a
// generic RouteType split when cfg.RawConfig omits an explicit agency
// list: this keeps a request usable against any loaded feed without
// hand-authored per-deploy route tables.
func BuildCalculator(cfg FareCalculatorConfig, bundle *faredata.Bundle, provider *transit.Provider) (fare.Calculator, error) {
	raw := cfg.RawConfig

	switch cfg.Type {
	case "", "simple":
		return fare.NewStandardCalculator(bundle.ZoneFares), nil

	case "bogota":
		tpc := stringSet(raw, "tpc_agencies")
		if len(tpc) == 0 {
			tpc = agenciesByType(provider, transit.RouteTypeBus)
		}
		return fare.NewBogotaCalculator(tpc, intOr(raw, "base_fare", defaultFareAmt), nil, intOr(raw, "transfer_window_seconds", defaultTransferWindowSec)), nil

	case "boston":
		return buildBoston(raw), nil

	case "chicago-rta":
		return buildChicagoRTA(raw, bundle), nil

	case "mixed-system":
		return buildMixed(raw, bundle, provider), nil

	case "nyc":
		return buildNYC(raw, bundle), nil

	case "fares-v2":
		return fare.NewFaresV2Calculator(bundle.FaresV2Tables), nil

	default:
		return nil, errors.Wrapf(ErrUnknownFareCalculator, "%q", cfg.Type)
	}
}

func buildBoston(raw map[string]interface{}) *fare.BostonCalculator {
	routeGroup := map[string]allowance.BostonRuleGroup{}
	for routeID, group := range stringMap(raw, "route_group") {
		switch group {
		case "subway":
			routeGroup[routeID] = allowance.BostonRuleSubway
		case "local_bus":
			routeGroup[routeID] = allowance.BostonRuleLocalBus
		case "express_bus":
			routeGroup[routeID] = allowance.BostonRuleExpressBus
		default:
			routeGroup[routeID] = allowance.BostonRuleOther
		}
	}

	transferEligible := map[[2]allowance.BostonRuleGroup]bool{
		{allowance.BostonRuleLocalBus, allowance.BostonRuleSubway}:   true,
		{allowance.BostonRuleSubway, allowance.BostonRuleLocalBus}:   true,
		{allowance.BostonRuleLocalBus, allowance.BostonRuleLocalBus}: true,
		{allowance.BostonRuleExpressBus, allowance.BostonRuleSubway}: true,
		{allowance.BostonRuleSubway, allowance.BostonRuleExpressBus}: true,
	}

	return fare.NewBostonCalculator(
		intOr(raw, "subway_fare", defaultFareAmt),
		routeGroup,
		stringIntMap(raw, "route_fare"),
		transferEligible,
		intOr(raw, "transfer_window_seconds", defaultTransferWindowSec),
		fare.NewConnectedPairs(),
	)
}

func buildChicagoRTA(raw map[string]interface{}, bundle *faredata.Bundle) *fare.ChicagoRTACalculator {
	agency := map[string]fare.ChicagoAgency{}
	for routeID, a := range stringMap(raw, "route_agency") {
		switch a {
		case "pace":
			agency[routeID] = fare.ChicagoAgencyPace
		case "metra":
			agency[routeID] = fare.ChicagoAgencyMetra
		default:
			agency[routeID] = fare.ChicagoAgencyCTA
		}
	}

	return &fare.ChicagoRTACalculator{
		Agency:            agency,
		CTAFare:           intOr(raw, "cta_fare", defaultFareAmt),
		PaceFare:          intOr(raw, "pace_fare", defaultFareAmt),
		PacePremium:       stringIntMap(raw, "pace_premium"),
		PaceFreeRoutes:    stringSet(raw, "pace_free_routes"),
		OHareStops:        stringSet(raw, "ohare_stops"),
		OHareSurcharge:    intOr(raw, "ohare_surcharge", 500),
		DayPassPrice:      intOr(raw, "day_pass_price", 1000),
		MetraZoneFare:     bundle.ZoneFares,
		TransferWindowSec: intOr(raw, "transfer_window_seconds", defaultTransferWindowSec),
		Connected:         fare.NewConnectedPairs(),
	}
}

func buildMixed(raw map[string]interface{}, bundle *faredata.Bundle, provider *transit.Provider) *fare.MixedCalculator {
	routeFare := stringIntMap(raw, "route_fare")
	if len(routeFare) == 0 && provider != nil {
		routeFare = map[string]int64{}
		for _, pidx := range provider.FilteredPatterns() {
			pattern := provider.Pattern(pidx)
			if attr, ok := bundle.ZoneFares.Attribute(pattern.Route.ID); ok {
				routeFare[pattern.Route.ID] = attr.Price
			}
		}
	}
	return fare.NewMixedCalculator(
		routeFare,
		intOr(raw, "default_fare", defaultFareAmt),
		intOr(raw, "transfer_window_seconds", defaultTransferWindowSec),
		stringOr(raw, "paid_area_zone", ""),
		fare.NewConnectedPairs(),
	)
}

func buildNYC(raw map[string]interface{}, bundle *faredata.Bundle) *fare.NYCCalculator {
	agency := map[string]fare.NYCAgency{}
	for routeID, a := range stringMap(raw, "route_agency") {
		agency[routeID] = nycAgencyFromString(a)
	}

	return &fare.NYCCalculator{
		Agency:              agency,
		MetroCardFare:       intOr(raw, "metrocard_fare", defaultFareAmt),
		ExpressBusFare:      intOr(raw, "express_bus_fare", defaultFareAmt*3),
		NiceFare:            intOr(raw, "nice_fare", defaultFareAmt),
		SuffolkFare:         intOr(raw, "suffolk_fare", defaultFareAmt),
		StatenIslandRwyFare: intOr(raw, "staten_island_rwy_fare", 0),
		LIRRZonal:           bundle.ZoneFares,
		MetroNorthZonal:     bundle.ZoneFares,
		MetroCardWindowSec:  intOr(raw, "metrocard_window_seconds", defaultTransferWindowSec),
		Connected:           fare.NewConnectedPairs(),
	}
}

func nycAgencyFromString(s string) fare.NYCAgency {
	switch s {
	case "lirr":
		return fare.NYCAgencyLIRR
	case "metro-north":
		return fare.NYCAgencyMetroNorth
	case "express-bus":
		return fare.NYCAgencyExpressBus
	case "nice":
		return fare.NYCAgencyNice
	case "suffolk":
		return fare.NYCAgencySuffolk
	case "staten-island-rwy":
		return fare.NYCAgencyStatenIslandRwy
	case "staten-island-ferry":
		return fare.NYCAgencyStatenIslandFerry
	case "local-bus":
		return fare.NYCAgencyLocalBus
	case "subway":
		return fare.NYCAgencySubway
	default:
		return fare.NYCAgencyOther
	}
}

func agenciesByType(provider *transit.Provider, routeType transit.RouteType) map[string]bool {
	out := map[string]bool{}
	if provider == nil {
		return out
	}
	for _, pidx := range provider.FilteredPatterns() {
		pattern := provider.Pattern(pidx)
		if pattern.Route.Type == routeType {
			out[pattern.Route.AgencyID] = true
		}
	}
	return out
}

func stringSet(raw map[string]interface{}, key string) map[string]bool {
	out := map[string]bool{}
	list, _ := raw[key].([]interface{})
	for _, v := range list {
		if s, ok := v.(string); ok {
			out[s] = true
		}
	}
	return out
}

func stringMap(raw map[string]interface{}, key string) map[string]string {
	out := map[string]string{}
	m, _ := raw[key].(map[string]interface{})
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func stringIntMap(raw map[string]interface{}, key string) map[string]int64 {
	out := map[string]int64{}
	m, _ := raw[key].(map[string]interface{})
	for k, v := range m {
		if f, ok := v.(float64); ok {
			out[k] = int64(f)
		}
	}
	return out
}

func intOr(raw map[string]interface{}, key string, fallback int64) int64 {
	if f, ok := raw[key].(float64); ok {
		return int64(f)
	}
	return fallback
}

func stringOr(raw map[string]interface{}, key, fallback string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return fallback
}
