package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antigravity/transitfare/internal/faredata"
)

var loadFaresCmd = &cobra.Command{
	Use:   "load-fares",
	Short: "Validate the packaged static fare reference data",
	Long:  "Parses every packaged fare CSV (zone fares, station connections, Fares-V2 rules) and reports row counts, failing fast on malformed data the way calculator init does at server startup",
	RunE:  runLoadFares,
}

func runLoadFares(cmd *cobra.Command, args []string) error {
	zoneFares, err := faredata.LoadDefaultZoneFareTable(0)
	if err != nil {
		return fmt.Errorf("zone fares: %w", err)
	}
	fmt.Printf("zone fares: %d rule(s)\n", zoneFares.RuleCount())

	connected, err := faredata.LoadDefaultConnectedPairs()
	if err != nil {
		return fmt.Errorf("station connections: %w", err)
	}
	fmt.Printf("station connections: %d pair(s)\n", len(connected)/2)

	faresV2, err := faredata.LoadDefaultFaresV2Tables()
	if err != nil {
		return fmt.Errorf("fares-v2 tables: %w", err)
	}
	fmt.Printf("fares-v2 tables: %d leg rule(s), %d transfer rule(s)\n", faresV2.LegRuleCount(), faresV2.TransferRuleCount())

	return nil
}
