package faredata

import (
	"io"
	"sort"

	"github.com/antigravity/transitfare/internal/fare"
)

// legRuleRow is a fare_leg_rules.csv record (GTFS Fares-V2).
type legRuleRow struct {
	LegGroupID     string `csv:"leg_group_id"`
	RouteID        string `csv:"route_id"`
	BoardZone      string `csv:"board_zone"`
	AlightZone     string `csv:"alight_zone"`
	FareAmt        int64  `csv:"fare"`
	AsRouteNetwork string `csv:"as_route_network"`
}

// transferRuleRow is a fare_transfer_rules.csv record.
type transferRuleRow struct {
	RuleIndex    uint32 `csv:"rule_index"`
	FromLegGroup string `csv:"from_leg_group_id"`
	ToLegGroup   string `csv:"to_leg_group_id"`
	TransferFare int64  `csv:"transfer_fare"`
}

// FaresV2Tables implements fare.FaresV2Tables over CSV-loaded rows.
type FaresV2Tables struct {
	legRules []legRuleRow

	byFromGroup map[string][]fare.FareTransferRule
	byRuleIndex map[uint32]fare.FareTransferRule
}

var _ fare.FaresV2Tables = (*FaresV2Tables)(nil)

// LoadFaresV2Tables reads fare_leg_rules.csv and fare_transfer_rules.csv.
func LoadFaresV2Tables(legRules, transferRules io.Reader) (*FaresV2Tables, error) {
	var legRows []legRuleRow
	if err := unmarshalCSV(legRules, &legRows); err != nil {
		return nil, err
	}

	var transferRows []transferRuleRow
	if err := unmarshalCSV(transferRules, &transferRows); err != nil {
		return nil, err
	}
	sort.Slice(transferRows, func(i, j int) bool { return transferRows[i].RuleIndex < transferRows[j].RuleIndex })

	t := &FaresV2Tables{
		legRules:    legRows,
		byFromGroup: make(map[string][]fare.FareTransferRule),
		byRuleIndex: make(map[uint32]fare.FareTransferRule),
	}
	for _, row := range transferRows {
		rule := fare.FareTransferRule{
			RuleIndex:    row.RuleIndex,
			FromLegGroup: row.FromLegGroup,
			ToLegGroup:   row.ToLegGroup,
			TransferFare: row.TransferFare,
		}
		t.byFromGroup[row.FromLegGroup] = append(t.byFromGroup[row.FromLegGroup], rule)
		t.byRuleIndex[row.RuleIndex] = rule
	}

	return t, nil
}

// LoadDefaultFaresV2Tables reads the packaged defaults shipped under
// resources/.
func LoadDefaultFaresV2Tables() (*FaresV2Tables, error) {
	legFile, err := openDefault("fare_leg_rules.csv")
	if err != nil {
		return nil, err
	}
	defer legFile.Close()

	transferFile, err := openDefault("fare_transfer_rules.csv")
	if err != nil {
		return nil, err
	}
	defer transferFile.Close()

	return LoadFaresV2Tables(legFile, transferFile)
}

func (t *FaresV2Tables) LegRuleFor(routeID, boardZone, alightZone string) (fare.FareLegRule, bool) {
	bestScore := -1
	var best legRuleRow
	found := false

	for _, row := range t.legRules {
		score := 0
		if row.RouteID != "" {
			if row.RouteID != routeID {
				continue
			}
			score++
		}
		if row.BoardZone != "" {
			if row.BoardZone != boardZone {
				continue
			}
			score++
		}
		if row.AlightZone != "" {
			if row.AlightZone != alightZone {
				continue
			}
			score++
		}
		if score > bestScore {
			bestScore = score
			best = row
			found = true
		}
	}

	if !found {
		return fare.FareLegRule{}, false
	}
	return fare.FareLegRule{
		LegGroupID:     best.LegGroupID,
		FareAmt:        best.FareAmt,
		AsRouteNetwork: best.AsRouteNetwork,
	}, true
}

func (t *FaresV2Tables) TransferRulesFrom(legGroupID string) []fare.FareTransferRule {
	return t.byFromGroup[legGroupID]
}

func (t *FaresV2Tables) TransferRule(ruleIndex uint32) (fare.FareTransferRule, bool) {
	rule, ok := t.byRuleIndex[ruleIndex]
	return rule, ok
}

// LegRuleCount reports how many fare_leg_rules.csv rows this table loaded.
func (t *FaresV2Tables) LegRuleCount() int { return len(t.legRules) }

// TransferRuleCount reports how many fare_transfer_rules.csv rows this
// table loaded.
func (t *FaresV2Tables) TransferRuleCount() int { return len(t.byRuleIndex) }
