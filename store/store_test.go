package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/vwd/market"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func book(ts, bid, ask string) market.OrderBook {
	return market.OrderBook{
		Symbol:        "VIC",
		Timestamp:     ts,
		MatchPrice:    decimal.RequireFromString(bid),
		Bid1:          market.OrderBookLevel{Price: decimal.RequireFromString(bid), Volume: 1200},
		Ask1:          market.OrderBookLevel{Price: decimal.RequireFromString(ask), Volume: 800},
		ChangePercent: -1.25,
		Volume:        345600,
	}
}

func trade(id string, price string, vol int64, side market.Side, ts int64) market.Trade {
	return market.Trade{TradeID: id, Symbol: "VIC", Price: decimal.RequireFromString(price), Volume: vol, Side: side, Time: ts}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('order_books','trades')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["order_books"])
	assert.True(t, found["trades"])
}

func TestLatestOrderBook(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	_, ok, err := s.LatestOrderBook(ctx, "VIC")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetOrderBook(ctx, "VIC")
	assert.True(t, errors.Is(err, ErrNotFound))

	for _, b := range []market.OrderBook{
		book("2024-03-01T08:00:00.000Z", "41.5", "41.55"),
		book("2024-03-01T09:30:00.000Z", "42.1", "42.15"),
		book("2024-03-01T09:00:00.000Z", "41.9", "41.95"),
	} {
		n, err := s.RecordOrderBook(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	got, ok, err := s.LatestOrderBook(ctx, "VIC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T09:30:00.000Z", got.Timestamp)
	assert.Equal(t, "42.1", got.Bid1.Price.String())
	assert.Equal(t, "42.15", got.Ask1.Price.String())
	assert.Equal(t, int64(1200), got.Bid1.Volume)
	assert.Equal(t, int64(800), got.Ask1.Volume)
	assert.Equal(t, -1.25, got.ChangePercent)
	assert.Equal(t, int64(345600), got.Volume)

	_, ok, err = s.LatestOrderBook(ctx, "HPG")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordTradesUpsert(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	n, err := s.RecordTrades(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	trades := []market.Trade{
		trade("a", "41.5", 100, market.SideBuy, 1000),
		trade("b", "41.45", 200, market.SideSell, 1001),
	}
	n, err = s.RecordTrades(ctx, trades)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// identical rows change nothing
	n, err = s.RecordTrades(ctx, trades)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	trades[1].Volume = 250
	n, err = s.RecordTrades(ctx, append(trades, trade("c", "41.6", 10, market.SideAfterHour, 1002)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.RecentTrades(ctx, "VIC", 10, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(250), got[1].Volume)
}

func TestRecentTrades(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.RecordTrades(ctx, []market.Trade{
		trade("1", "10", 1, market.SideBuy, 100),
		trade("2", "10.5", 2, market.SideSell, 300),
		trade("3", "11", 3, market.SideAfterHour, 200),
		trade("4", "12", 4, market.SideBuy, 50),
		{TradeID: "x", Symbol: "HPG", Price: decimal.NewFromInt(27), Volume: 9, Side: market.SideBuy, Time: 250},
	})
	require.NoError(t, err)

	got, err := s.RecentTrades(ctx, "VIC", 10, time.Unix(100, 0))
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, tr := range got {
		ids = append(ids, tr.TradeID)
	}
	assert.Equal(t, []string{"2", "3", "1"}, ids)
	assert.Equal(t, market.SideAfterHour, got[1].Side)
	assert.Equal(t, "10.5", got[0].Price.String())

	got, err = s.RecentTrades(ctx, "VIC", 2, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "2", got[0].TradeID)
}

func TestNewResult(t *testing.T) {
	assert.Equal(t, Result{Success: true, InsertedCount: 3}, NewResult(3, nil))
	assert.Equal(t, Result{Error: "boom"}, NewResult(3, errors.New("boom")))
}
