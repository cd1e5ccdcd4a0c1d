package trade

import (
	"strings"

	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/normalize"
)

// Markers emits up to three markers for a classified trade: entry,
// stop-loss and take-profit, each only when its price is present.
func Markers(t Trade, outcome core.Outcome) []core.Marker {
	markers := make([]core.Marker, 0, 3)
	loss := outcome == core.OutcomeLoss

	if t.Entry != nil {
		color := core.ColorEntryProfit
		if loss {
			color = core.ColorEntryLoss
		}

		markers = append(markers, core.Marker{
			Time:        t.Time,
			Price:       *t.Entry,
			Kind:        core.KindEntry,
			Side:        t.Side,
			Outcome:     outcome,
			Color:       color,
			Label:       entryLabel(t.Side, outcome),
			Shape:       entryShape(t.Side, loss),
			EntryLevel:  core.Float(*t.Entry),
			StopLevel:   copyLevel(t.Stop),
			TargetLevel: copyLevel(t.Target),
		})
	}

	if t.Stop != nil {
		markers = append(markers, core.Marker{
			Time:    t.Time,
			Price:   *t.Stop,
			Kind:    core.KindStopLoss,
			Side:    t.Side,
			Outcome: outcome,
			Color:   core.ColorStopLoss,
			Label:   "SL",
			Shape:   against(t.Side),
		})
	}

	if t.Target != nil {
		markers = append(markers, core.Marker{
			Time:    t.Time,
			Price:   *t.Target,
			Kind:    core.KindTakeProfit,
			Side:    t.Side,
			Outcome: outcome,
			Color:   core.ColorTakeProfit,
			Label:   "TP",
			Shape:   with(t.Side),
		})
	}

	return markers
}

// ClassifyRow parses, classifies and emits markers for one trade row.
func ClassifyRow(row normalize.Row) ([]core.Marker, error) {
	t, err := Parse(row)
	if err != nil {
		return nil, err
	}
	return Markers(t, Classify(t)), nil
}

func entryLabel(side core.Side, outcome core.Outcome) string {
	s := strings.ToUpper(string(side))
	switch outcome {
	case core.OutcomeLoss:
		return "LOSS " + s
	case core.OutcomeProfit:
		return "TP " + s
	default:
		return "ENTRY " + s
	}
}

func entryShape(side core.Side, loss bool) core.Shape {
	if loss {
		return against(side)
	}
	return with(side)
}

// with is the arrow pointing the way the side profits.
func with(side core.Side) core.Shape {
	if side == core.SideSell {
		return core.ShapeArrowDown
	}
	return core.ShapeArrowUp
}

func against(side core.Side) core.Shape {
	if side == core.SideSell {
		return core.ShapeArrowUp
	}
	return core.ShapeArrowDown
}

func copyLevel(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return core.Float(*p)
}
