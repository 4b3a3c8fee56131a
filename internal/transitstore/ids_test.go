package transitstore

import "testing"

// These exercise the package's pure ID/date-bucketing helpers directly
// (internal package test, no exported seam) since Loader.Load itself needs
// a live Postgres pool and is exercised in deployment, not here — the
// teacher repo carries the same split between a DB-backed loader and
// untested query glue.

func TestStopDBIDToStringID(t *testing.T) {
	if got, want := stopDBIDToStringID(42), "stop:42"; got != want {
		t.Errorf("stopDBIDToStringID(42) = %q, want %q", got, want)
	}
}

func TestLineDBIDToStringID(t *testing.T) {
	if got, want := lineDBIDToStringID(7, 1), "line:7:1"; got != want {
		t.Errorf("lineDBIDToStringID(7, 1) = %q, want %q", got, want)
	}
}

func TestTripID(t *testing.T) {
	if got, want := tripID(7, 1, "weekday", 3), "trip:7:1:weekday:3"; got != want {
		t.Errorf("tripID(...) = %q, want %q", got, want)
	}
}

func TestRouteTypeFromLineType(t *testing.T) {
	cases := map[string]int{
		"tram":   0,
		"bus":    3,
		"busway": 3,
		"train":  2,
		"rail":   2,
		"ferry":  4,
		"other":  3, // unrecognized line types default to bus
	}
	for lineType, want := range cases {
		if got := int(routeTypeFromLineType(lineType)); got != want {
			t.Errorf("routeTypeFromLineType(%q) = %d, want %d", lineType, got, want)
		}
	}
}
