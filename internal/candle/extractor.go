// Package candle turns normalized OHLCV rows into chart candles.
package candle

import (
	"fmt"
	"sort"

	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/normalize"
)

var priceFields = []normalize.Field{
	normalize.FieldOpen,
	normalize.FieldHigh,
	normalize.FieldLow,
	normalize.FieldClose,
}

// Extract builds a candle from one row. Rows with an unresolvable timestamp
// or a missing/non-finite price are rejected.
func Extract(row normalize.Row) (core.Candle, error) {
	ts, err := row.Timestamp()
	if err != nil {
		return core.Candle{}, err
	}

	var prices [4]float64
	for i, f := range priceFields {
		v, ok := row.Float(f)
		if !ok {
			raw, _ := row.Lookup(f)
			return core.Candle{}, core.WrapError(core.ErrInvalidPrice,
				fmt.Errorf("%s=%q", f.Name, raw))
		}
		prices[i] = v
	}

	return core.Candle{
		Time:  ts,
		Open:  prices[0],
		High:  prices[1],
		Low:   prices[2],
		Close: prices[3],
	}, nil
}

// Sort orders candles by time ascending. Equal times keep input order.
func Sort(candles []core.Candle) {
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Time < candles[j].Time
	})
}
