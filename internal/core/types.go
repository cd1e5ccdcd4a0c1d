package core

import "math"

// Candle is one OHLC bar keyed by epoch seconds
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// IsValid checks the candle invariants: positive time and four finite prices.
func (c Candle) IsValid() bool {
	return c.Time > 0 && IsFinite(c.Open) && IsFinite(c.High) && IsFinite(c.Low) && IsFinite(c.Close)
}

// Side is the direction of a trade
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Outcome is the classified result of a trade
type Outcome string

const (
	OutcomeUnknown Outcome = "unknown"
	OutcomeProfit  Outcome = "profit"
	OutcomeLoss    Outcome = "loss"
)

// MarkerKind identifies which price level a marker annotates
type MarkerKind string

const (
	KindEntry      MarkerKind = "entry"
	KindStopLoss   MarkerKind = "stop_loss"
	KindTakeProfit MarkerKind = "take_profit"
)

// Shape is the directional arrow drawn for a marker
type Shape string

const (
	ShapeArrowUp   Shape = "arrowUp"
	ShapeArrowDown Shape = "arrowDown"
)

// Marker colors
const (
	ColorEntryProfit = "#2ecc71"
	ColorEntryLoss   = "#e74c3c"
	ColorStopLoss    = "#FF0000"
	ColorTakeProfit  = "#0000FF"
)

// Marker is a signal annotation produced from a trade row.
// Only entry markers carry the reference levels; nil means absent.
type Marker struct {
	Time        int64      `json:"time"`
	Price       float64    `json:"price"`
	Kind        MarkerKind `json:"kind"`
	Side        Side       `json:"side"`
	Outcome     Outcome    `json:"outcome"`
	Color       string     `json:"color"`
	Label       string     `json:"label"`
	Shape       Shape      `json:"shape"`
	EntryLevel  *float64   `json:"entryLevel,omitempty"`
	StopLevel   *float64   `json:"stopLevel,omitempty"`
	TargetLevel *float64   `json:"targetLevel,omitempty"`
}

// IsEntry reports whether the marker is an entry marker
func (m Marker) IsEntry() bool {
	return m.Kind == KindEntry
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns a pointer to f, for optional price levels.
func Float(f float64) *float64 {
	return &f
}
