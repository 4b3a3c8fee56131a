package faredata

import (
	"io"

	"github.com/antigravity/transitfare/internal/fare"
)

// fareRuleRow is a fare_rules.csv record: route_id/board_zone/alight_zone
// may be empty to mean "any" (GTFS fare_rules.txt wildcard semantics).
type fareRuleRow struct {
	RouteID    string `csv:"route_id"`
	BoardZone  string `csv:"board_zone"`
	AlightZone string `csv:"alight_zone"`
	FareAmt    int64  `csv:"fare"`
}

// fareAttributeRow is a fare_attributes.csv record.
type fareAttributeRow struct {
	RouteID             string `csv:"route_id"`
	Price               int64  `csv:"price"`
	Transfers           int    `csv:"transfers"`
	TransferDurationSec int64  `csv:"transfer_duration_sec"`
}

// ZoneFareTable implements fare.RuleTable: a fare_rules.csv lookup with
// wildcard zones and longest (most specific) match wins, backed by
// fare_attributes.csv for the per-route transfer triple.
type ZoneFareTable struct {
	rules       []fareRuleRow
	attributes  map[string]fare.FareAttribute
	defaultFare int64
}

var _ fare.RuleTable = (*ZoneFareTable)(nil)

// LoadZoneFareTable reads fare_rules.csv from rules and fare_attributes.csv
// from attributes and builds the table. defaultFare is charged when no rule matches.
func LoadZoneFareTable(rules, attributes io.Reader, defaultFare int64) (*ZoneFareTable, error) {
	var ruleRows []fareRuleRow
	if err := unmarshalCSV(rules, &ruleRows); err != nil {
		return nil, err
	}

	var attrRows []fareAttributeRow
	if err := unmarshalCSV(attributes, &attrRows); err != nil {
		return nil, err
	}

	attrs := make(map[string]fare.FareAttribute, len(attrRows))
	for _, a := range attrRows {
		attrs[a.RouteID] = fare.FareAttribute{
			Price:               a.Price,
			Transfers:           a.Transfers,
			TransferDurationSec: a.TransferDurationSec,
		}
	}

	return &ZoneFareTable{rules: ruleRows, attributes: attrs, defaultFare: defaultFare}, nil
}

// LoadDefaultZoneFareTable reads the packaged defaults shipped under
// resources/.
func LoadDefaultZoneFareTable(defaultFare int64) (*ZoneFareTable, error) {
	rulesFile, err := openDefault("fare_rules.csv")
	if err != nil {
		return nil, err
	}
	defer rulesFile.Close()

	attrFile, err := openDefault("fare_attributes.csv")
	if err != nil {
		return nil, err
	}
	defer attrFile.Close()

	return LoadZoneFareTable(rulesFile, attrFile, defaultFare)
}

func (t *ZoneFareTable) DefaultFare() int64 { return t.defaultFare }

// RuleCount reports how many fare_rules.csv rows this table loaded.
func (t *ZoneFareTable) RuleCount() int { return len(t.rules) }

func (t *ZoneFareTable) Attribute(routeID string) (fare.FareAttribute, bool) {
	a, ok := t.attributes[routeID]
	return a, ok
}

// MatchFare finds the most specific matching rule: each of route/board/
// alight that matches exactly (rather than via wildcard) scores a point,
// and the highest-scoring match wins; ties keep the first rule seen.
func (t *ZoneFareTable) MatchFare(routeID, boardZone, alightZone string) (int64, bool) {
	bestScore := -1
	var bestFare int64
	found := false

	for _, rule := range t.rules {
		score := 0
		if rule.RouteID != "" {
			if rule.RouteID != routeID {
				continue
			}
			score++
		}
		if rule.BoardZone != "" {
			if rule.BoardZone != boardZone {
				continue
			}
			score++
		}
		if rule.AlightZone != "" {
			if rule.AlightZone != alightZone {
				continue
			}
			score++
		}
		if score > bestScore {
			bestScore = score
			bestFare = rule.FareAmt
			found = true
		}
	}

	return bestFare, found
}
