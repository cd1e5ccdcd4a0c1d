package trade

import (
	"testing"

	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRow_SellProfitScenario(t *testing.T) {
	row := normalize.Row{"date": "2024-01-01", "side": "sell", "entry": "100", "exit": "90", "sl": "105", "tp": "85"}

	markers, err := ClassifyRow(row)
	require.NoError(t, err)
	require.Len(t, markers, 3)

	entry := markers[0]
	assert.Equal(t, core.KindEntry, entry.Kind)
	assert.Equal(t, core.ColorEntryProfit, entry.Color)
	assert.Equal(t, "TP SELL", entry.Label)
	assert.Equal(t, core.ShapeArrowDown, entry.Shape)
	assert.Equal(t, core.OutcomeProfit, entry.Outcome)
	assert.Equal(t, 100.0, *entry.EntryLevel)
	assert.Equal(t, 105.0, *entry.StopLevel)
	assert.Equal(t, 85.0, *entry.TargetLevel)

	stop := markers[1]
	assert.Equal(t, core.KindStopLoss, stop.Kind)
	assert.Equal(t, 105.0, stop.Price)
	assert.Equal(t, core.ColorStopLoss, stop.Color)
	assert.Equal(t, "SL", stop.Label)
	assert.Equal(t, core.ShapeArrowUp, stop.Shape)
	assert.Nil(t, stop.EntryLevel)

	target := markers[2]
	assert.Equal(t, core.KindTakeProfit, target.Kind)
	assert.Equal(t, 85.0, target.Price)
	assert.Equal(t, core.ColorTakeProfit, target.Color)
	assert.Equal(t, "TP", target.Label)
	assert.Equal(t, core.ShapeArrowDown, target.Shape)

	for _, m := range markers {
		assert.Equal(t, int64(1704067200), m.Time)
		assert.Equal(t, core.SideSell, m.Side)
	}
}

func TestClassifyRow_ExplicitSLIsLossRed(t *testing.T) {
	row := normalize.Row{"date": "2024-01-01", "outcome": "sl", "pnl": "250", "entry": "100", "exit": "120"}

	markers, err := ClassifyRow(row)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, core.ColorEntryLoss, markers[0].Color)
	assert.Equal(t, "LOSS BUY", markers[0].Label)
	assert.Equal(t, core.ShapeArrowDown, markers[0].Shape)
}

func TestMarkers_EntryStyling(t *testing.T) {
	tests := []struct {
		side    core.Side
		outcome core.Outcome
		color   string
		label   string
		shape   core.Shape
	}{
		{core.SideBuy, core.OutcomeProfit, core.ColorEntryProfit, "TP BUY", core.ShapeArrowUp},
		{core.SideBuy, core.OutcomeLoss, core.ColorEntryLoss, "LOSS BUY", core.ShapeArrowDown},
		{core.SideBuy, core.OutcomeUnknown, core.ColorEntryProfit, "ENTRY BUY", core.ShapeArrowUp},
		{core.SideSell, core.OutcomeProfit, core.ColorEntryProfit, "TP SELL", core.ShapeArrowDown},
		{core.SideSell, core.OutcomeLoss, core.ColorEntryLoss, "LOSS SELL", core.ShapeArrowUp},
		{core.SideSell, core.OutcomeUnknown, core.ColorEntryProfit, "ENTRY SELL", core.ShapeArrowDown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			markers := Markers(Trade{Time: 1, Side: tt.side, Entry: f(10)}, tt.outcome)
			require.Len(t, markers, 1)
			assert.Equal(t, tt.color, markers[0].Color)
			assert.Equal(t, tt.label, markers[0].Label)
			assert.Equal(t, tt.shape, markers[0].Shape)
		})
	}
}

func TestMarkers_AbsentLegs(t *testing.T) {
	markers := Markers(Trade{Time: 1, Side: core.SideBuy, Entry: f(10)}, core.OutcomeUnknown)
	require.Len(t, markers, 1)
	assert.Nil(t, markers[0].StopLevel)
	assert.Nil(t, markers[0].TargetLevel)

	markers = Markers(Trade{Time: 1, Side: core.SideBuy, Stop: f(9), Target: f(12)}, core.OutcomeUnknown)
	require.Len(t, markers, 2, "no entry price means no entry marker")
	assert.Equal(t, core.KindStopLoss, markers[0].Kind)
	assert.Equal(t, core.KindTakeProfit, markers[1].Kind)

	assert.Empty(t, Markers(Trade{Time: 1}, core.OutcomeUnknown))
}

func TestMarkers_LevelsAreCopies(t *testing.T) {
	stop := f(9)
	markers := Markers(Trade{Time: 1, Entry: f(10), Stop: stop}, core.OutcomeUnknown)
	*stop = 1
	assert.Equal(t, 9.0, *markers[0].StopLevel)
}
