package volume

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/vwd/market"
)

// ErrMissingOrderBook means no snapshot is stored for the symbol. Nothing can
// be analyzed without one.
var ErrMissingOrderBook = errors.New("no order book data available")

// Source supplies the stored market data an analysis runs on.
type Source interface {
	// LatestOrderBook reports ok=false when the symbol has no snapshot.
	LatestOrderBook(ctx context.Context, symbol string) (book market.OrderBook, ok bool, err error)
	// RecentTrades returns at most limit trades at or after since, newest first.
	RecentTrades(ctx context.Context, symbol string, limit int, since time.Time) ([]market.Trade, error)
}

type Analyzer struct {
	src Source
	cfg Config
	log *zap.Logger

	// Location anchors the lookback window to local midnight.
	Location *time.Location
	Now      func() time.Time
}

func NewAnalyzer(src Source, cfg Config, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		src:      src,
		cfg:      cfg,
		log:      log,
		Location: time.Local,
		Now:      time.Now,
	}
}

// WindowStart is midnight, days days before now. days <= 0 uses the
// configured default.
func (a *Analyzer) WindowStart(days int) time.Time {
	if days <= 0 {
		days = a.cfg.DaysToFetch
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	d := a.Now().In(loc).AddDate(0, 0, -days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// Analyze loads the latest book and recent trades for symbol and builds the
// report. It fails with ErrMissingOrderBook when no book is stored.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, days int) (Report, error) {
	book, ok, err := a.src.LatestOrderBook(ctx, symbol)
	if err != nil {
		return Report{}, fmt.Errorf("latest order book %s: %w", symbol, err)
	}
	if !ok {
		return Report{}, fmt.Errorf("%s: %w", symbol, ErrMissingOrderBook)
	}

	since := a.WindowStart(days)
	trades, err := a.src.RecentTrades(ctx, symbol, a.cfg.TradesToFetch, since)
	if err != nil {
		return Report{}, fmt.Errorf("recent trades %s: %w", symbol, err)
	}

	levels := AccumulateNewestFirst(trades, book)
	a.log.Debug("accumulated trades",
		zap.String("symbol", symbol),
		zap.Time("since", since),
		zap.Int("trades", len(trades)),
		zap.Int("levels", levels.Len()),
	)

	return Build(a.cfg, symbol, book, trades, levels), nil
}
