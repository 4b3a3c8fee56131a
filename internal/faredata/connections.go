package faredata

import (
	"io"

	"github.com/antigravity/transitfare/internal/fare"
)

// stationConnectionRow is a station_connections.csv record: an enumerated
// pair of stop IDs that count as "behind the same fare gates" beyond the
// structural parent-station check (spec.md §4.4.3, §4.4.4).
type stationConnectionRow struct {
	StopA string `csv:"stop_a"`
	StopB string `csv:"stop_b"`
}

// LoadConnectedPairs reads station_connections.csv from r.
func LoadConnectedPairs(r io.Reader) (fare.ConnectedPairs, error) {
	var rows []stationConnectionRow
	if err := unmarshalCSV(r, &rows); err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, [2]string{row.StopA, row.StopB})
	}
	return fare.NewConnectedPairs(pairs...), nil
}

// LoadDefaultConnectedPairs reads the packaged defaults shipped under
// resources/.
func LoadDefaultConnectedPairs() (fare.ConnectedPairs, error) {
	f, err := openDefault("station_connections.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadConnectedPairs(f)
}
