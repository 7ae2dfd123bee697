package store

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rustyeddy/vwd/volume"
)

var levelsHeader = []string{
	"price", "total_volume", "total_value",
	"buy_volume", "sell_volume", "after_hour_buy", "after_hour_sell", "after_hour_unknown",
	"volume_imbalance", "value_imbalance", "total_trades", "last_trade_time",
}

// WriteLevelsCSV writes one row per level, in the given order.
func WriteLevelsCSV(w io.Writer, levels []volume.Level) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(levelsHeader); err != nil {
		return err
	}

	for _, l := range levels {
		row := []string{
			l.Price.String(),
			i(l.TotalVolume),
			l.TotalValue.String(),
			i(l.BuyVolume),
			i(l.SellVolume),
			i(l.AfterHourBuy),
			i(l.AfterHourSell),
			i(l.AfterHourUnknown),
			i(l.VolumeImbalance),
			l.ValueImbalance.String(),
			strconv.Itoa(l.TotalTrades),
			l.LastTradeTime,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func i(x int64) string {
	return strconv.FormatInt(x, 10)
}
