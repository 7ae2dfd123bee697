package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/vwd/market"
	"github.com/rustyeddy/vwd/store"
	"github.com/rustyeddy/vwd/volume"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Analyze stored trades for volume walls",
	Long: `Build the volume wall report for a symbol from the latest stored order book
and the trades stored within the lookback window.

Examples:
  vwd analyze VIC
  vwd analyze VIC --days 3 --csv vic-levels.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeDays int
	analyzeCSV  string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "lookback in days (default analysis.days_to_fetch)")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "also write the significant levels to this CSV file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := market.CanonicalSymbol(args[0])
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	a := volume.NewAnalyzer(s, cfg.Analysis, logger)
	a.Location = cfg.Location()

	report, err := a.Analyze(cmd.Context(), symbol, analyzeDays)
	if err != nil {
		return err
	}

	if analyzeCSV != "" {
		f, err := os.Create(analyzeCSV)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := store.WriteLevelsCSV(f, report.VolumeAnalysis.SignificantLevels); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	return printJSON(cmd.OutOrStdout(), report)
}
