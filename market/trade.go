package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the aggressor classification as delivered by the quote source.
type Side string

const (
	SideBuy       Side = "bu"
	SideSell      Side = "sd"
	SideAfterHour Side = "after-hour"
)

// ParseSide maps anything the feed could not classify to SideAfterHour.
func ParseSide(s string) Side {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s)
	}
	return SideAfterHour
}

// Trade is a single executed print. TradeID is unique.
type Trade struct {
	TradeID string          `json:"trade_id"`
	Symbol  string          `json:"symbol"`
	Price   decimal.Decimal `json:"price"`
	Volume  int64           `json:"volume"`
	Side    Side            `json:"side"`
	Time    int64           `json:"time"` // unix seconds
}

// Value is price * volume.
func (t Trade) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Volume))
}

func (t Trade) Timestamp() time.Time {
	return time.Unix(t.Time, 0).UTC()
}
