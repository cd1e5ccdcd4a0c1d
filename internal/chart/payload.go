// Package chart builds the series and annotation payload consumed by the
// candlestick widget.
package chart

import (
	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/overlay"
	"github.com/newthinker/sigchart/internal/pipeline"
)

// Marker positions relative to the bar.
const (
	PositionBelowBar = "belowBar"
	PositionAboveBar = "aboveBar"
)

// Annotation is a widget series marker.
type Annotation struct {
	Time     int64      `json:"time"`
	Position string     `json:"position"`
	Color    string     `json:"color"`
	Shape    core.Shape `json:"shape"`
	Text     string     `json:"text"`
}

// Counts backs the "Candles: N / Signals: N" bar.
type Counts struct {
	Candles int `json:"candles"`
	Signals int `json:"signals"`
}

// Payload is everything the page needs to render one chart.
type Payload struct {
	ID          string             `json:"id,omitempty"`
	Candles     []core.Candle      `json:"candles"`
	Annotations []Annotation       `json:"annotations"`
	Signals     []core.Marker      `json:"signals"`
	Counts      Counts             `json:"counts"`
	Warnings    []pipeline.Warning `json:"warnings"`
	Stats       pipeline.Stats     `json:"stats"`
}

// Build converts a pipeline result. The result's slices are shared, not
// copied.
func Build(res *pipeline.Result) *Payload {
	return &Payload{
		Candles:     res.Candles,
		Annotations: Annotations(res.Markers),
		Signals:     res.Markers,
		Counts: Counts{
			Candles: len(res.Candles),
			Signals: len(res.Markers),
		},
		Warnings: res.Warnings,
		Stats:    res.Stats,
	}
}

// Annotations maps markers one-to-one, preserving order.
func Annotations(markers []core.Marker) []Annotation {
	out := make([]Annotation, len(markers))
	for i, m := range markers {
		out[i] = Annotation{
			Time:     m.Time,
			Position: Position(m.Side),
			Color:    m.Color,
			Shape:    m.Shape,
			Text:     Text(m),
		}
	}
	return out
}

// Position puts buy markers under the bar and sell markers above it.
func Position(side core.Side) string {
	if side == core.SideBuy {
		return PositionBelowBar
	}
	return PositionAboveBar
}

// Text returns the marker caption. Stop-loss and take-profit markers show
// their price; entry labels are kept as is.
func Text(m core.Marker) string {
	if !core.IsFinite(m.Price) {
		return m.Label
	}
	switch m.Kind {
	case core.KindStopLoss:
		return "SL " + overlay.FormatPrice(m.Price)
	case core.KindTakeProfit:
		return "TP " + overlay.FormatPrice(m.Price)
	}
	return m.Label
}
