// Package overlay draws transient reference lines for the entry marker
// under the chart crosshair.
package overlay

import (
	"github.com/newthinker/sigchart/internal/core"
)

// Hover line colors
const (
	ColorEntryLine  = "rgba(46, 204, 113, 0.35)"
	ColorStopLine   = "rgba(231, 76, 60, 0.35)"
	ColorTargetLine = "rgba(52, 152, 219, 0.35)"
)

// LineStyleDashed is the only style hover lines use.
const LineStyleDashed = "dashed"

// Line is a horizontal price line.
type Line struct {
	Level            core.MarkerKind `json:"level"`
	Price            float64         `json:"price"`
	Color            string          `json:"color"`
	Title            string          `json:"title"`
	LineWidth        int             `json:"lineWidth"`
	LineStyle        string          `json:"lineStyle"`
	AxisLabelVisible bool            `json:"axisLabelVisible"`
}

// LineID identifies a line created by a Drawer.
type LineID int

// Drawer renders and removes price lines on the chart.
type Drawer interface {
	Create(line Line) LineID
	Remove(id LineID)
}

// State is the overlay state.
type State int

const (
	StateIdle State = iota
	StateShowing
)

func (s State) String() string {
	if s == StateShowing {
		return "showing"
	}
	return "idle"
}

// Overlay is the hover state machine. It is not safe for concurrent use;
// each chart view owns one.
type Overlay struct {
	drawer  Drawer
	markers []core.Marker
	enabled bool

	state   State
	current int // index into markers while showing
	lines   []LineID
}

// New creates an enabled, idle overlay.
func New(drawer Drawer) *Overlay {
	return &Overlay{
		drawer:  drawer,
		enabled: true,
		current: -1,
	}
}

// SetMarkers replaces the marker set used for lookups and returns to idle.
func (o *Overlay) SetMarkers(markers []core.Marker) {
	o.clear()
	o.markers = markers
}

// Move handles a crosshair move. ok is false when the pointer left the plot.
func (o *Overlay) Move(hovered int64, ok bool) {
	if !o.enabled {
		return
	}
	if !ok {
		o.clear()
		return
	}

	idx := lookup(o.markers, hovered)
	if idx < 0 {
		o.clear()
		return
	}
	if o.state == StateShowing && o.current == idx {
		return
	}

	o.clear()
	for _, line := range LinesFor(o.markers[idx]) {
		o.lines = append(o.lines, o.drawer.Create(line))
	}
	o.state = StateShowing
	o.current = idx
}

// SetEnabled toggles the overlay. Disabling removes all lines.
func (o *Overlay) SetEnabled(enabled bool) {
	o.enabled = enabled
	if !enabled {
		o.clear()
	}
}

// Enabled reports whether hover events are handled.
func (o *Overlay) Enabled() bool {
	return o.enabled
}

// State returns the current state.
func (o *Overlay) State() State {
	return o.state
}

// Current returns the entry marker being shown, if any.
func (o *Overlay) Current() (core.Marker, bool) {
	if o.state != StateShowing {
		return core.Marker{}, false
	}
	return o.markers[o.current], true
}

// LineCount returns the number of lines currently drawn.
func (o *Overlay) LineCount() int {
	return len(o.lines)
}

func (o *Overlay) clear() {
	for _, id := range o.lines {
		o.drawer.Remove(id)
	}
	o.lines = nil
	o.state = StateIdle
	o.current = -1
}

// Lookup returns the first entry marker whose time equals hovered exactly.
func Lookup(markers []core.Marker, hovered int64) (core.Marker, bool) {
	idx := lookup(markers, hovered)
	if idx < 0 {
		return core.Marker{}, false
	}
	return markers[idx], true
}

func lookup(markers []core.Marker, hovered int64) int {
	for i, m := range markers {
		if m.IsEntry() && m.Time == hovered {
			return i
		}
	}
	return -1
}

// LinesFor builds the reference lines for an entry marker's present levels.
func LinesFor(m core.Marker) []Line {
	lines := make([]Line, 0, 3)
	add := func(level core.MarkerKind, p *float64, color, prefix string) {
		if p == nil || !core.IsFinite(*p) {
			return
		}
		lines = append(lines, Line{
			Level:            level,
			Price:            *p,
			Color:            color,
			Title:            prefix + " " + FormatPrice(*p),
			LineWidth:        1,
			LineStyle:        LineStyleDashed,
			AxisLabelVisible: true,
		})
	}

	add(core.KindEntry, m.EntryLevel, ColorEntryLine, "E")
	add(core.KindStopLoss, m.StopLevel, ColorStopLine, "SL")
	add(core.KindTakeProfit, m.TargetLevel, ColorTargetLine, "TP")
	return lines
}
