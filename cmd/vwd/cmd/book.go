package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/vwd/market"
)

var bookCmd = &cobra.Command{
	Use:   "book <symbol>",
	Short: "Show the latest stored order book for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runBook,
}

func init() {
	rootCmd.AddCommand(bookCmd)
}

func runBook(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := s.GetOrderBook(cmd.Context(), market.CanonicalSymbol(args[0]))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), b)
}
