package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/vwd/market"
	"github.com/rustyeddy/vwd/store"
)

var fetchOrderBookCmd = &cobra.Command{
	Use:   "fetch-order-book <symbol>",
	Short: "Fetch and store the current order book for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchOrderBook,
}

var fetchTradesCmd = &cobra.Command{
	Use:   "fetch-trades <symbol>",
	Short: "Fetch and store recent trades for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchTrades,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <symbol>",
	Short: "Fetch and store both the order book and recent trades",
	Long: `Fetch the order book and the most recent trades concurrently and store both.

The number of trades is capped by analysis.trades_to_fetch.

Example:
  vwd fetch VIC`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

// TradesResult is the trades half of a fetch, with the number fetched.
type TradesResult struct {
	store.Result
	TradesFetched int `json:"trades_fetched"`
}

type FetchResult struct {
	OrderBook store.Result `json:"order_book"`
	Trades    TradesResult `json:"trades"`
}

func init() {
	rootCmd.AddCommand(fetchOrderBookCmd)
	rootCmd.AddCommand(fetchTradesCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetchOrderBook(cmd *cobra.Command, args []string) error {
	symbol := market.CanonicalSymbol(args[0])
	client, err := newQuoteClient()
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	book, err := client.FetchOrderBook(ctx, symbol)
	if err != nil {
		return err
	}
	res := store.NewResult(s.RecordOrderBook(ctx, book))
	logger.Info("order book stored", zap.String("symbol", symbol), zap.Bool("success", res.Success))
	return printJSON(cmd.OutOrStdout(), res)
}

func runFetchTrades(cmd *cobra.Command, args []string) error {
	symbol := market.CanonicalSymbol(args[0])
	client, err := newQuoteClient()
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	trades, err := client.FetchTrades(ctx, symbol, cfg.Analysis.TradesToFetch)
	if err != nil {
		return err
	}
	res := store.NewResult(s.RecordTrades(ctx, trades))
	logger.Info("trades stored",
		zap.String("symbol", symbol),
		zap.Int("fetched", len(trades)),
		zap.Int("inserted", res.InsertedCount),
	)
	return printJSON(cmd.OutOrStdout(), res)
}

func runFetch(cmd *cobra.Command, args []string) error {
	symbol := market.CanonicalSymbol(args[0])
	client, err := newQuoteClient()
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var (
		book   market.OrderBook
		trades []market.Trade
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		book, err = client.FetchOrderBook(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		trades, err = client.FetchTrades(ctx, symbol, cfg.Analysis.TradesToFetch)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	ctx = cmd.Context()
	out := FetchResult{
		OrderBook: store.NewResult(s.RecordOrderBook(ctx, book)),
		Trades: TradesResult{
			Result:        store.NewResult(s.RecordTrades(ctx, trades)),
			TradesFetched: len(trades),
		},
	}
	logger.Info("fetch complete",
		zap.String("symbol", symbol),
		zap.Int("trades_fetched", len(trades)),
		zap.Int("trades_inserted", out.Trades.InsertedCount),
	)
	return printJSON(cmd.OutOrStdout(), out)
}
