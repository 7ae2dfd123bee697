package volume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/vwd/market"
)

func TestBuildEndToEnd(t *testing.T) {
	t.Parallel()

	book := testBook()
	trades := []market.Trade{
		trade("t2", "101", 10, market.SideBuy, 2000),
		trade("t1", "100", 5, market.SideSell, 1000),
	}
	levels := AccumulateNewestFirst(trades, book)

	at101, ok := levels.Get(dec("101"))
	require.True(t, ok)
	assert.Equal(t, int64(10), at101.BuyVolume)
	assert.Equal(t, "1010", at101.BuyValue.String())
	assert.Equal(t, int64(10), at101.TotalVolume)

	at100, ok := levels.Get(dec("100"))
	require.True(t, ok)
	assert.Equal(t, int64(5), at100.SellVolume)
	assert.Equal(t, "500", at100.SellValue.String())

	r := Build(DefaultConfig(), "VIC", book, trades, levels)

	assert.Equal(t, "VIC", r.Symbol)
	assert.Equal(t, book.Timestamp, r.Timestamp)
	assert.Equal(t, "1", r.MarketStatus.Spread.String())
	assert.Equal(t, "100.5", r.MarketStatus.CurrentPrice.String())
	assert.Equal(t, int64(50), r.MarketStatus.BidVolume)
	assert.Equal(t, int64(60), r.MarketStatus.AskVolume)

	sig := r.VolumeAnalysis.SignificantLevels
	require.Len(t, sig, 2)
	assert.Equal(t, "101", sig[0].Price.String())
	assert.Equal(t, "100", sig[1].Price.String())

	assert.Equal(t, int64(5), r.VolumeAnalysis.CurrentBidAccumulated.SellVolume)
	assert.Equal(t, int64(10), r.VolumeAnalysis.CurrentAskAccumulated.BuyVolume)

	s := r.TradingSummary
	assert.Equal(t, "last 10000 trades", s.Period)
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, int64(10), s.Volume.Buy)
	assert.Equal(t, int64(5), s.Volume.Sell)
	assert.Equal(t, int64(15), s.Volume.Total)
	assert.InDelta(t, 10.0/15.0, s.Volume.BuyRatio, 1e-9)
	assert.Equal(t, "1510", s.Value.Total.String())
	assert.InDelta(t, 1010.0/1510.0, s.Value.BuyRatio, 1e-9)
	assert.Equal(t, 2, s.UniquePriceLevels)
	assert.InDelta(t, 1510.0/15.0, s.AveragePrice.InexactFloat64(), 1e-9)
}

func TestBuildEmptyTrades(t *testing.T) {
	t.Parallel()

	book := testBook()
	r := Build(DefaultConfig(), "VIC", book, nil, Accumulate(nil, book))

	assert.NotNil(t, r.VolumeAnalysis.SignificantLevels)
	assert.Empty(t, r.VolumeAnalysis.SignificantLevels)
	assert.Equal(t, PriceVolume{}, r.VolumeAnalysis.CurrentBidAccumulated)
	assert.Equal(t, 0, r.TradingSummary.TotalTrades)
	assert.Equal(t, 0.0, r.TradingSummary.Volume.BuyRatio)
	assert.Equal(t, 0.0, r.TradingSummary.Value.BuyRatio)
	assert.True(t, r.TradingSummary.AveragePrice.IsZero())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	va := m["volume_analysis"].(map[string]any)
	assert.Equal(t, []any{}, va["significant_levels"])
}

func TestBuyRatioOnlyUnknownVolume(t *testing.T) {
	t.Parallel()

	book := testBook()
	trades := []market.Trade{trade("1", "100.5", 9, market.SideAfterHour, 1)}
	r := Build(DefaultConfig(), "VIC", book, trades, AccumulateNewestFirst(trades, book))

	assert.Equal(t, int64(9), r.TradingSummary.Volume.AfterHour.Unknown)
	assert.Equal(t, int64(9), r.TradingSummary.Volume.Total)
	assert.Equal(t, 0.0, r.TradingSummary.Volume.BuyRatio)
}

func TestSignificantLevelsTopAndTieBreak(t *testing.T) {
	t.Parallel()

	trades := []market.Trade{
		trade("1", "10", 10, market.SideBuy, 1),  // 100
		trade("2", "20", 5, market.SideBuy, 2),   // 100, ties with 10
		trade("3", "50", 1, market.SideBuy, 3),   // 50
		trade("4", "1", 1000, market.SideBuy, 4), // 1000
		trade("5", "4", 1, market.SideBuy, 5),    // 4
		trade("6", "3", 1, market.SideBuy, 6),    // 3
		trade("7", "2", 100, market.SideBuy, 7),  // 200
	}
	levels := Accumulate(trades, testBook())

	got := SignificantLevels(levels, 5)
	require.Len(t, got, 5)
	prices := make([]string, 0, len(got))
	for _, l := range got {
		prices = append(prices, l.Price.String())
	}
	assert.Equal(t, []string{"1", "2", "10", "20", "50"}, prices)

	assert.Len(t, SignificantLevels(levels, 100), 7)
	assert.Len(t, SignificantLevels(levels, 0), 5)
	assert.Len(t, SignificantLevels(levels, -1), 5)
}

func TestBuildZeroConfigUsesDefaultTopLevels(t *testing.T) {
	t.Parallel()

	book := testBook()
	trades := []market.Trade{
		trade("1", "101", 10, market.SideBuy, 1),
		trade("2", "100", 5, market.SideSell, 2),
	}
	r := Build(Config{TradesToFetch: 1}, "VIC", book, trades, Accumulate(trades, book))
	require.Len(t, r.VolumeAnalysis.SignificantLevels, 2)
	assert.Equal(t, "101", r.VolumeAnalysis.SignificantLevels[0].Price.String())
}

func TestSummaryAfterHourBoundaries(t *testing.T) {
	t.Parallel()

	book := testBook()
	trades := []market.Trade{
		trade("1", "101", 1, market.SideAfterHour, 1),   // at ask -> buy
		trade("2", "100", 2, market.SideAfterHour, 2),   // at bid -> sell
		trade("3", "100.5", 4, market.SideAfterHour, 3), // inside -> unknown
		trade("4", "102", 8, market.SideAfterHour, 4),   // above ask -> buy
	}
	levels := AccumulateNewestFirst(trades, book)
	s := Build(DefaultConfig(), "VIC", book, trades, levels).TradingSummary

	assert.Equal(t, int64(9), s.Volume.AfterHour.Buy)
	assert.Equal(t, int64(2), s.Volume.AfterHour.Sell)
	assert.Equal(t, int64(4), s.Volume.AfterHour.Unknown)
	assert.Equal(t, int64(15), s.Volume.AfterHour.Total)
	assert.InDelta(t, 9.0/11.0, s.Volume.BuyRatio, 1e-9)

	// both aggregation paths agree on a normal book
	var ahBuy, ahSell, ahUnknown int64
	for _, l := range levels.Entries() {
		ahBuy += l.AfterHourBuy
		ahSell += l.AfterHourSell
		ahUnknown += l.AfterHourUnknown
	}
	assert.Equal(t, s.Volume.AfterHour.Buy, ahBuy)
	assert.Equal(t, s.Volume.AfterHour.Sell, ahSell)
	assert.Equal(t, s.Volume.AfterHour.Unknown, ahUnknown)

	// on a crossed book the summary counts a print between ask and bid on
	// both sides while its level keeps it on the buy side only
	crossed := testBook()
	crossed.Bid1.Price = dec("102")
	trades = []market.Trade{
		trade("1", "101.5", 3, market.SideAfterHour, 1), // ask <= p <= bid
		trade("2", "100", 2, market.SideAfterHour, 2),   // below both
	}
	levels = AccumulateNewestFirst(trades, crossed)
	s = Build(DefaultConfig(), "VIC", crossed, trades, levels).TradingSummary

	assert.Equal(t, int64(3), s.Volume.AfterHour.Buy)
	assert.Equal(t, int64(5), s.Volume.AfterHour.Sell)
	assert.Equal(t, int64(0), s.Volume.AfterHour.Unknown)
	assert.Equal(t, int64(8), s.Volume.AfterHour.Total)
	assert.Equal(t, "304.5", s.Value.AfterHour.Buy.String())
	assert.Equal(t, "504.5", s.Value.AfterHour.Sell.String())

	mid, ok := levels.Get(dec("101.5"))
	require.True(t, ok)
	assert.Equal(t, int64(3), mid.AfterHourBuy)
	assert.Equal(t, int64(0), mid.AfterHourSell)
	low, ok := levels.Get(dec("100"))
	require.True(t, ok)
	assert.Equal(t, int64(2), low.AfterHourSell)
}

func TestLevelJSONIsFlat(t *testing.T) {
	t.Parallel()

	levels := Accumulate([]market.Trade{trade("1", "101", 3, market.SideBuy, 60)}, testBook())
	b, err := json.Marshal(SignificantLevels(levels, 5)[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "101", m["price"])
	assert.Equal(t, 3.0, m["buy_volume"])
	assert.Equal(t, "1970-01-01T00:01:00.000Z", m["last_trade_time"])
}
