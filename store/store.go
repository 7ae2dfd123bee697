// Package store persists order books and trades in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/vwd/market"
	"github.com/rustyeddy/vwd/pkg/id"
)

var ErrNotFound = errors.New("not found")

// Result reports the outcome of a write the way the fetch commands print it.
type Result struct {
	Success       bool   `json:"success"`
	InsertedCount int    `json:"inserted_count"`
	Error         string `json:"error,omitempty"`
}

func NewResult(n int, err error) Result {
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, InsertedCount: n}
}

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordOrderBook appends a snapshot. Snapshots are never overwritten.
func (s *SQLite) RecordOrderBook(ctx context.Context, b market.OrderBook) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_books
		(id, symbol, timestamp, match_price, bid_price, bid_volume, ask_price, ask_volume, change_percent, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.NewAt(snapshotTime(b.Timestamp)), b.Symbol, b.Timestamp, b.MatchPrice,
		b.Bid1.Price, b.Bid1.Volume, b.Ask1.Price, b.Ask1.Volume,
		b.ChangePercent, b.Volume,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order book %s: %w", b.Symbol, err)
	}
	return 1, nil
}

func snapshotTime(ts string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Now()
	}
	return t
}

// RecordTrades upserts trades by trade_id in one transaction. The count
// covers new rows and rows whose content changed; re-recording an identical
// trade counts zero.
func (s *SQLite) RecordTrades(ctx context.Context, trades []market.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (trade_id, symbol, price, volume, side, time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO UPDATE SET
			symbol = excluded.symbol,
			price = excluded.price,
			volume = excluded.volume,
			side = excluded.side,
			time = excluded.time
		WHERE trades.symbol IS NOT excluded.symbol
			OR trades.price IS NOT excluded.price
			OR trades.volume IS NOT excluded.volume
			OR trades.side IS NOT excluded.side
			OR trades.time IS NOT excluded.time`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, t := range trades {
		res, err := stmt.ExecContext(ctx, t.TradeID, t.Symbol, t.Price, t.Volume, string(t.Side), t.Time)
		if err != nil {
			return 0, fmt.Errorf("upsert trade %s: %w", t.TradeID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		n += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// LatestOrderBook returns the newest snapshot for symbol; ok is false when
// there is none.
func (s *SQLite) LatestOrderBook(ctx context.Context, symbol string) (market.OrderBook, bool, error) {
	var b market.OrderBook
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, timestamp, match_price, bid_price, bid_volume, ask_price, ask_volume, change_percent, volume
		FROM order_books
		WHERE symbol = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`, symbol)

	err := row.Scan(
		&b.Symbol,
		&b.Timestamp,
		&b.MatchPrice,
		&b.Bid1.Price,
		&b.Bid1.Volume,
		&b.Ask1.Price,
		&b.Ask1.Volume,
		&b.ChangePercent,
		&b.Volume,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return market.OrderBook{}, false, nil
		}
		return market.OrderBook{}, false, err
	}
	return b, true, nil
}

// GetOrderBook is LatestOrderBook with ErrNotFound for a missing symbol.
func (s *SQLite) GetOrderBook(ctx context.Context, symbol string) (market.OrderBook, error) {
	b, ok, err := s.LatestOrderBook(ctx, symbol)
	if err != nil {
		return market.OrderBook{}, err
	}
	if !ok {
		return market.OrderBook{}, fmt.Errorf("order book %q: %w", symbol, ErrNotFound)
	}
	return b, nil
}

// RecentTrades returns up to limit trades for symbol with time >= since,
// newest first.
func (s *SQLite) RecentTrades(ctx context.Context, symbol string, limit int, since time.Time) ([]market.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, symbol, price, volume, side, time
		FROM trades
		WHERE symbol = ? AND time >= ?
		ORDER BY time DESC, trade_id DESC
		LIMIT ?`, symbol, since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Trade
	for rows.Next() {
		var (
			t    market.Trade
			side string
		)
		if err := rows.Scan(&t.TradeID, &t.Symbol, &t.Price, &t.Volume, &side, &t.Time); err != nil {
			return nil, err
		}
		t.Side = market.ParseSide(side)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
