package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/vwd/config"
	"github.com/rustyeddy/vwd/internal/logx"
	"github.com/rustyeddy/vwd/quote"
	"github.com/rustyeddy/vwd/store"
)

var rootCmd = &cobra.Command{
	Use:   "vwd",
	Short: "Volume wall detector for stock order flow",
	Long: `vwd collects order-book snapshots and trade prints for a stock symbol,
stores them in SQLite and reports the price levels where buy or sell
volume has piled up ("volume walls").

Typical session:
  vwd fetch VIC
  vwd analyze VIC --days 2`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML or JSON, optional)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Store.DBPath = dbPath
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}

	l, err := logx.New(c.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	cfg, logger = c, l
	return nil
}

func openStore() (*store.SQLite, error) {
	s, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", cfg.Store.DBPath, err)
	}
	return s, nil
}

func newQuoteClient() (*quote.Client, error) {
	if err := cfg.RequireAPI(); err != nil {
		return nil, err
	}
	return quote.NewClient(cfg.API.BaseURL, cfg.API.PageSize, cfg.Location(), logger), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
