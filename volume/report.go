package volume

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/vwd/market"
)

// Config carries the fetch limits the report depends on.
type Config struct {
	TradesToFetch int `json:"trades_to_fetch" yaml:"trades_to_fetch"`
	DaysToFetch   int `json:"days_to_fetch" yaml:"days_to_fetch"`
	TopLevels     int `json:"top_levels" yaml:"top_levels"`
}

// defaultTopLevels applies when TopLevels is unset.
const defaultTopLevels = 5

func DefaultConfig() Config {
	return Config{
		TradesToFetch: 10000,
		DaysToFetch:   1,
		TopLevels:     defaultTopLevels,
	}
}

// Level is a PriceVolume tagged with its price.
type Level struct {
	Price decimal.Decimal `json:"price"`
	PriceVolume
}

type MarketStatus struct {
	CurrentPrice decimal.Decimal `json:"current_price"`
	BidPrice     decimal.Decimal `json:"bid_price"`
	BidVolume    int64           `json:"bid_volume"`
	AskPrice     decimal.Decimal `json:"ask_price"`
	AskVolume    int64           `json:"ask_volume"`
	Spread       decimal.Decimal `json:"spread"`
}

type VolumeAnalysis struct {
	SignificantLevels     []Level     `json:"significant_levels"`
	CurrentBidAccumulated PriceVolume `json:"current_bid_accumulated"`
	CurrentAskAccumulated PriceVolume `json:"current_ask_accumulated"`
}

type AfterHourVolume struct {
	Buy     int64 `json:"buy"`
	Sell    int64 `json:"sell"`
	Unknown int64 `json:"unknown"`
	Total   int64 `json:"total"`
}

type VolumeSummary struct {
	Buy       int64           `json:"buy"`
	Sell      int64           `json:"sell"`
	AfterHour AfterHourVolume `json:"after_hour"`
	Total     int64           `json:"total"`
	BuyRatio  float64         `json:"buy_ratio"`
}

type AfterHourValue struct {
	Buy     decimal.Decimal `json:"buy"`
	Sell    decimal.Decimal `json:"sell"`
	Unknown decimal.Decimal `json:"unknown"`
	Total   decimal.Decimal `json:"total"`
}

type ValueSummary struct {
	Buy       decimal.Decimal `json:"buy"`
	Sell      decimal.Decimal `json:"sell"`
	AfterHour AfterHourValue  `json:"after_hour"`
	Total     decimal.Decimal `json:"total"`
	BuyRatio  float64         `json:"buy_ratio"`
}

type TradingSummary struct {
	Period            string          `json:"period"`
	TotalTrades       int             `json:"total_trades"`
	Volume            VolumeSummary   `json:"volume"`
	Value             ValueSummary    `json:"value"`
	UniquePriceLevels int             `json:"unique_price_levels"`
	AveragePrice      decimal.Decimal `json:"average_price"`
}

// Report is the volume wall analysis for one symbol.
type Report struct {
	Timestamp      string         `json:"timestamp"`
	Symbol         string         `json:"symbol"`
	MarketStatus   MarketStatus   `json:"market_status"`
	VolumeAnalysis VolumeAnalysis `json:"volume_analysis"`
	TradingSummary TradingSummary `json:"trading_summary"`
}

// Build assembles the report from the accumulated levels and the raw trades.
func Build(cfg Config, symbol string, book market.OrderBook, trades []market.Trade, levels *Levels) Report {
	bid, _ := levels.Get(book.Bid1.Price)
	ask, _ := levels.Get(book.Ask1.Price)

	return Report{
		Timestamp: book.Timestamp,
		Symbol:    symbol,
		MarketStatus: MarketStatus{
			CurrentPrice: book.MatchPrice,
			BidPrice:     book.Bid1.Price,
			BidVolume:    book.Bid1.Volume,
			AskPrice:     book.Ask1.Price,
			AskVolume:    book.Ask1.Volume,
			Spread:       book.Spread(),
		},
		VolumeAnalysis: VolumeAnalysis{
			SignificantLevels:     SignificantLevels(levels, cfg.TopLevels),
			CurrentBidAccumulated: bid,
			CurrentAskAccumulated: ask,
		},
		TradingSummary: summarize(cfg, book, trades, levels),
	}
}

// SignificantLevels returns the n levels with the largest total value. Equal
// values are ordered by ascending price. n <= 0 means the default of five.
func SignificantLevels(levels *Levels, n int) []Level {
	out := levels.Entries()
	slices.SortStableFunc(out, func(a, b Level) int {
		if c := b.TotalValue.Cmp(a.TotalValue); c != 0 {
			return c
		}
		return a.Price.Cmp(b.Price)
	})
	if n <= 0 {
		n = defaultTopLevels
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// summarize re-derives the side breakdown straight from the trades rather than
// from the levels. Its after-hour rule uses three independent tests with a
// strict inequality for unknown; on a normal book this agrees with Classify,
// on a crossed book a print can be counted as both buy and sell.
func summarize(cfg Config, book market.OrderBook, trades []market.Trade, levels *Levels) TradingSummary {
	var vol VolumeSummary
	var val ValueSummary
	bid, ask := book.Bid1.Price, book.Ask1.Price

	for _, t := range trades {
		v := t.Value()
		switch t.Side {
		case market.SideBuy:
			vol.Buy += t.Volume
			val.Buy = val.Buy.Add(v)
		case market.SideSell:
			vol.Sell += t.Volume
			val.Sell = val.Sell.Add(v)
		case market.SideAfterHour:
			if t.Price.GreaterThanOrEqual(ask) {
				vol.AfterHour.Buy += t.Volume
				val.AfterHour.Buy = val.AfterHour.Buy.Add(v)
			}
			if t.Price.LessThanOrEqual(bid) {
				vol.AfterHour.Sell += t.Volume
				val.AfterHour.Sell = val.AfterHour.Sell.Add(v)
			}
			if bid.LessThan(t.Price) && t.Price.LessThan(ask) {
				vol.AfterHour.Unknown += t.Volume
				val.AfterHour.Unknown = val.AfterHour.Unknown.Add(v)
			}
		}
	}

	vol.AfterHour.Total = vol.AfterHour.Buy + vol.AfterHour.Sell + vol.AfterHour.Unknown
	vol.Total = vol.Buy + vol.Sell + vol.AfterHour.Total
	vol.BuyRatio = ratio(
		decimal.NewFromInt(vol.Buy+vol.AfterHour.Buy),
		decimal.NewFromInt(vol.Buy+vol.Sell+vol.AfterHour.Buy+vol.AfterHour.Sell),
	)

	val.AfterHour.Total = decimal.Sum(val.AfterHour.Buy, val.AfterHour.Sell, val.AfterHour.Unknown)
	val.Total = decimal.Sum(val.Buy, val.Sell, val.AfterHour.Total)
	val.BuyRatio = ratio(
		val.Buy.Add(val.AfterHour.Buy),
		decimal.Sum(val.Buy, val.Sell, val.AfterHour.Buy, val.AfterHour.Sell),
	)

	avg := decimal.Zero
	if vol.Total > 0 {
		avg = val.Total.Div(decimal.NewFromInt(vol.Total))
	}

	return TradingSummary{
		Period:            fmt.Sprintf("last %d trades", cfg.TradesToFetch),
		TotalTrades:       len(trades),
		Volume:            vol,
		Value:             val,
		UniquePriceLevels: levels.Len(),
		AveragePrice:      avg,
	}
}

// ratio is num/den, or 0 when den is zero.
func ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).InexactFloat64()
}
