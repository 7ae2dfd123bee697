package store

const Schema = `
CREATE TABLE IF NOT EXISTS order_books (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	match_price TEXT NOT NULL,
	bid_price TEXT NOT NULL,
	bid_volume INTEGER NOT NULL,
	ask_price TEXT NOT NULL,
	ask_volume INTEGER NOT NULL,
	change_percent REAL NOT NULL,
	volume INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_books_symbol_ts ON order_books(symbol, timestamp DESC);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	price TEXT NOT NULL,
	volume INTEGER NOT NULL,
	side TEXT NOT NULL,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol_time ON trades(symbol, time DESC);
`
