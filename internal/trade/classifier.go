// Package trade classifies trade records and emits chart markers for them.
package trade

import (
	"math"
	"strings"

	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/normalize"
)

// Trade is a normalized trade row. Nil prices are absent.
type Trade struct {
	Time    int64
	Side    core.Side
	Outcome string // explicit outcome cell, trimmed and upper-cased
	PnL     *float64
	Entry   *float64
	Exit    *float64
	Stop    *float64
	Target  *float64
}

// Parse normalizes a raw trade row. Only the timestamp is required.
func Parse(row normalize.Row) (Trade, error) {
	ts, err := row.Timestamp()
	if err != nil {
		return Trade{}, err
	}

	return Trade{
		Time:    ts,
		Side:    ParseSide(row.String(normalize.FieldSide, string(core.SideBuy))),
		Outcome: strings.ToUpper(row.String(normalize.FieldOutcome, "")),
		PnL:     row.OptionalFloat(normalize.FieldPnL),
		Entry:   row.OptionalFloat(normalize.FieldEntry),
		Exit:    row.OptionalFloat(normalize.FieldExit),
		Stop:    row.OptionalFloat(normalize.FieldStop),
		Target:  row.OptionalFloat(normalize.FieldTarget),
	}, nil
}

// ParseSide maps "sell" and "short" to the sell side, anything else to buy.
func ParseSide(raw string) core.Side {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sell", "short":
		return core.SideSell
	default:
		return core.SideBuy
	}
}

// Rule inspects a trade and reports an outcome when it can decide one.
type Rule func(t Trade) (core.Outcome, bool)

// Cascade is the outcome rule chain in priority order.
var Cascade = []Rule{
	ExplicitOutcome,
	PnLSign,
	EntryExitComparison,
	ExitProximity,
}

var (
	lossOutcomes   = map[string]bool{"SL": true, "LOSS": true, "LOST": true, "-1": true}
	profitOutcomes = map[string]bool{"TP": true, "WIN": true, "TAKE_PROFIT": true, "PROFIT": true, "1": true}
)

// Classify runs the cascade and returns the first decided outcome,
// or OutcomeUnknown.
func Classify(t Trade) core.Outcome {
	for _, rule := range Cascade {
		if outcome, ok := rule(t); ok {
			return outcome
		}
	}
	return core.OutcomeUnknown
}

// ExplicitOutcome reads the outcome/result/status column.
func ExplicitOutcome(t Trade) (core.Outcome, bool) {
	switch {
	case lossOutcomes[t.Outcome]:
		return core.OutcomeLoss, true
	case profitOutcomes[t.Outcome]:
		return core.OutcomeProfit, true
	}
	return "", false
}

// PnLSign decides on the sign of a non-zero PnL.
func PnLSign(t Trade) (core.Outcome, bool) {
	if t.PnL == nil {
		return "", false
	}
	return sign(*t.PnL)
}

// EntryExitComparison compares exit to entry, inverted for sells.
func EntryExitComparison(t Trade) (core.Outcome, bool) {
	if t.Entry == nil || t.Exit == nil {
		return "", false
	}
	diff := *t.Exit - *t.Entry
	if t.Side == core.SideSell {
		diff = -diff
	}
	return sign(diff)
}

// ExitProximity decides by whether exit landed nearer the target or the stop.
func ExitProximity(t Trade) (core.Outcome, bool) {
	if t.Exit == nil || t.Stop == nil || t.Target == nil {
		return "", false
	}
	toTarget := math.Abs(*t.Exit - *t.Target)
	toStop := math.Abs(*t.Exit - *t.Stop)
	return sign(toStop - toTarget)
}

func sign(v float64) (core.Outcome, bool) {
	switch {
	case v > 0:
		return core.OutcomeProfit, true
	case v < 0:
		return core.OutcomeLoss, true
	}
	return "", false
}
