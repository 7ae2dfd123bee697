// Package volume aggregates trade prints by price level and builds the volume
// wall report from them.
package volume

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/vwd/market"
)

// isoMillis matches the millisecond ISO-8601 form used for report timestamps.
const isoMillis = "2006-01-02T15:04:05.000Z"

// PriceVolume is everything accumulated at one price.
type PriceVolume struct {
	BuyVolume        int64 `json:"buy_volume"`
	SellVolume       int64 `json:"sell_volume"`
	AfterHourBuy     int64 `json:"after_hour_buy"`
	AfterHourSell    int64 `json:"after_hour_sell"`
	AfterHourUnknown int64 `json:"after_hour_unknown"`

	BuyValue              decimal.Decimal `json:"buy_value"`
	SellValue             decimal.Decimal `json:"sell_value"`
	AfterHourBuyValue     decimal.Decimal `json:"after_hour_buy_value"`
	AfterHourSellValue    decimal.Decimal `json:"after_hour_sell_value"`
	AfterHourUnknownValue decimal.Decimal `json:"after_hour_unknown_value"`

	TotalVolume     int64           `json:"total_volume"`
	TotalValue      decimal.Decimal `json:"total_value"`
	VolumeImbalance int64           `json:"volume_imbalance"`
	ValueImbalance  decimal.Decimal `json:"value_imbalance"`
	TotalTrades     int             `json:"total_trades"`
	LastTradeTime   string          `json:"last_trade_time,omitempty"`
}

func (pv *PriceVolume) add(t market.Trade, book market.OrderBook) {
	value := t.Value()
	switch market.Classify(t, book).Bucket() {
	case market.BucketBuy:
		pv.BuyVolume += t.Volume
		pv.BuyValue = pv.BuyValue.Add(value)
	case market.BucketSell:
		pv.SellVolume += t.Volume
		pv.SellValue = pv.SellValue.Add(value)
	case market.BucketAfterHourBuy:
		pv.AfterHourBuy += t.Volume
		pv.AfterHourBuyValue = pv.AfterHourBuyValue.Add(value)
	case market.BucketAfterHourSell:
		pv.AfterHourSell += t.Volume
		pv.AfterHourSellValue = pv.AfterHourSellValue.Add(value)
	default:
		pv.AfterHourUnknown += t.Volume
		pv.AfterHourUnknownValue = pv.AfterHourUnknownValue.Add(value)
	}
	pv.TotalTrades++
	pv.LastTradeTime = t.Timestamp().Format(isoMillis)
}

func (pv *PriceVolume) finalize() {
	pv.TotalVolume = pv.BuyVolume + pv.SellVolume + pv.AfterHourBuy + pv.AfterHourSell + pv.AfterHourUnknown
	pv.TotalValue = decimal.Sum(pv.BuyValue, pv.SellValue, pv.AfterHourBuyValue,
		pv.AfterHourSellValue, pv.AfterHourUnknownValue)
	pv.VolumeImbalance = (pv.BuyVolume + pv.AfterHourBuy) - (pv.SellVolume + pv.AfterHourSell)
	pv.ValueImbalance = pv.BuyValue.Add(pv.AfterHourBuyValue).
		Sub(pv.SellValue.Add(pv.AfterHourSellValue))
}

// Levels maps a price to its PriceVolume. Numerically equal prices share one
// entry ("100" and "100.00" are the same level) and lookups are exact.
// Iteration follows the order in which prices were first seen.
type Levels struct {
	keys   []string
	prices map[string]decimal.Decimal
	data   map[string]*PriceVolume
}

func newLevels() *Levels {
	return &Levels{
		prices: make(map[string]decimal.Decimal),
		data:   make(map[string]*PriceVolume),
	}
}

// priceKey canonicalizes a decimal; String() drops redundant trailing zeros.
func priceKey(p decimal.Decimal) string {
	return p.String()
}

func (l *Levels) level(p decimal.Decimal) *PriceVolume {
	k := priceKey(p)
	pv, ok := l.data[k]
	if !ok {
		pv = &PriceVolume{}
		l.data[k] = pv
		l.prices[k] = p
		l.keys = append(l.keys, k)
	}
	return pv
}

func (l *Levels) Len() int {
	return len(l.keys)
}

// Get returns the level at exactly price p.
func (l *Levels) Get(p decimal.Decimal) (PriceVolume, bool) {
	pv, ok := l.data[priceKey(p)]
	if !ok {
		return PriceVolume{}, false
	}
	return *pv, true
}

// Entries returns a copy of every level in first-seen order.
func (l *Levels) Entries() []Level {
	out := make([]Level, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, Level{Price: l.prices[k], PriceVolume: *l.data[k]})
	}
	return out
}

// Accumulate folds trades into per-price levels. Trades must be ordered oldest
// first: LastTradeTime for a price is taken from the last trade folded there,
// which is then the newest one. An empty slice yields empty Levels.
func Accumulate(trades []market.Trade, book market.OrderBook) *Levels {
	l := newLevels()
	for _, t := range trades {
		l.level(t.Price).add(t, book)
	}
	for _, pv := range l.data {
		pv.finalize()
	}
	return l
}

// AccumulateNewestFirst is Accumulate for trades in storage order (newest
// first). The caller's slice is left untouched.
func AccumulateNewestFirst(trades []market.Trade, book market.OrderBook) *Levels {
	oldest := slices.Clone(trades)
	slices.Reverse(oldest)
	return Accumulate(oldest, book)
}
