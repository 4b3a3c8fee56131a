// Package faredata loads the packaged, read-only fare reference data every
// in-routing fare calculator consults: zone fare matrices, GTFS
// fare_attributes rows, station-connection sets and Fares-V2 leg/transfer
// rule tables (spec.md §4.4, SPEC_FULL.md "Fare Static Data"). Tables are
// loaded once per transit layer and cached process-wide (cache.go): a
// sync.Map keyed by layer publishes built bundles, and singleflight
// collapses concurrent first constructions into one.
package faredata

import (
	"embed"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

//go:embed resources/*.csv
var defaultResources embed.FS

// ErrMalformedStaticData is returned when a packaged CSV fails to parse;
// callers should treat this as a fail-fast startup error, not a per-request
// one (spec.md's fare calculators assume their tables are already valid).
var ErrMalformedStaticData = errors.New("faredata: malformed static fare data")

func unmarshalCSV(r io.Reader, out interface{}) error {
	if err := gocsv.Unmarshal(r, out); err != nil {
		return errors.Wrap(ErrMalformedStaticData, err.Error())
	}
	return nil
}

func openDefault(name string) (io.ReadCloser, error) {
	f, err := defaultResources.Open("resources/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening packaged fare resource %s", name)
	}
	return f, nil
}
