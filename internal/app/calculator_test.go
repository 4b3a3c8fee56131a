package app_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitfare/internal/app"
	"github.com/antigravity/transitfare/internal/fare"
	"github.com/antigravity/transitfare/internal/faredata"
)

func testBundle(t *testing.T) *faredata.Bundle {
	t.Helper()
	zoneFares, err := faredata.LoadDefaultZoneFareTable(250)
	require.NoError(t, err)
	faresV2, err := faredata.LoadDefaultFaresV2Tables()
	require.NoError(t, err)
	return &faredata.Bundle{ZoneFares: zoneFares, FaresV2Tables: faresV2}
}

func TestBuildCalculator_DefaultsToStandard(t *testing.T) {
	calc, err := app.BuildCalculator(app.FareCalculatorConfig{Type: ""}, testBundle(t), nil)
	require.NoError(t, err)
	assert.IsType(t, &fare.StandardCalculator{}, calc)
}

func TestBuildCalculator_DispatchesEveryKnownType(t *testing.T) {
	bundle := testBundle(t)
	cases := []struct {
		typ  string
		want interface{}
	}{
		{"simple", &fare.StandardCalculator{}},
		{"bogota", &fare.BogotaCalculator{}},
		{"boston", &fare.BostonCalculator{}},
		{"chicago-rta", &fare.ChicagoRTACalculator{}},
		{"mixed-system", &fare.MixedCalculator{}},
		{"nyc", &fare.NYCCalculator{}},
		{"fares-v2", &fare.FaresV2Calculator{}},
	}
	for _, c := range cases {
		calc, err := app.BuildCalculator(app.FareCalculatorConfig{Type: c.typ}, bundle, nil)
		require.NoError(t, err, c.typ)
		assert.IsType(t, c.want, calc, c.typ)
	}
}

func TestBuildCalculator_UnknownTypeIsAnError(t *testing.T) {
	_, err := app.BuildCalculator(app.FareCalculatorConfig{Type: "not-a-calculator"}, testBundle(t), nil)
	assert.ErrorIs(t, err, app.ErrUnknownFareCalculator)
}

func TestBuildCalculator_BostonHonorsRawConfig(t *testing.T) {
	cfg := app.FareCalculatorConfig{
		Type: "boston",
		RawConfig: map[string]interface{}{
			"subway_fare": float64(290),
		},
	}
	calc, err := app.BuildCalculator(cfg, testBundle(t), nil)
	require.NoError(t, err)
	boston, ok := calc.(*fare.BostonCalculator)
	require.True(t, ok)
	assert.Equal(t, int64(290), boston.SubwayFare)
}

func TestFareCalculatorConfig_UnmarshalJSON_SeparatesTypeFromRawConfig(t *testing.T) {
	var cfg app.FareCalculatorConfig
	err := json.Unmarshal([]byte(`{"type":"boston","subway_fare":290}`), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "boston", cfg.Type)
	assert.Equal(t, float64(290), cfg.RawConfig["subway_fare"])
	_, hasType := cfg.RawConfig["type"]
	assert.False(t, hasType, "type key must not leak into RawConfig")
}

func TestFareCalculatorConfig_MarshalJSON_RoundTripsType(t *testing.T) {
	cfg := app.FareCalculatorConfig{
		Type:      "nyc",
		RawConfig: map[string]interface{}{"metrocard_fare": float64(275)},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var roundTripped app.FareCalculatorConfig
	require.NoError(t, json.Unmarshal(data, &roundTripped))
	assert.Equal(t, cfg.Type, roundTripped.Type)
	assert.Equal(t, cfg.RawConfig["metrocard_fare"], roundTripped.RawConfig["metrocard_fare"])
}
