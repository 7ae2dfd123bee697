package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderBookLevel is one side of the top of book.
type OrderBookLevel struct {
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

// OrderBook is a point-in-time best bid/ask snapshot for a symbol.
type OrderBook struct {
	Symbol        string          `json:"symbol"`
	Timestamp     string          `json:"timestamp"` // ISO-8601
	MatchPrice    decimal.Decimal `json:"match_price"`
	Bid1          OrderBookLevel  `json:"bid_1"`
	Ask1          OrderBookLevel  `json:"ask_1"`
	ChangePercent float64         `json:"change_percent"`
	Volume        int64           `json:"volume"`
}

func (b OrderBook) Spread() decimal.Decimal {
	return b.Ask1.Price.Sub(b.Bid1.Price)
}

// CanonicalSymbol trims and upper-cases a ticker.
func CanonicalSymbol(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}
