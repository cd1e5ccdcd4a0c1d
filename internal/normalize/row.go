// Package normalize maps loosely named CSV columns onto canonical fields
// and coerces their values.
package normalize

import (
	"strconv"
	"strings"

	"github.com/newthinker/sigchart/internal/core"
)

// Field is a canonical field and the ordered column names that may carry it.
type Field struct {
	Name    string
	Aliases []string
}

// Canonical fields. Aliases are checked in order; the first present one wins.
var (
	FieldTime = Field{Name: "time", Aliases: []string{"datetime", "timestamp", "date", "time"}}

	FieldOpen  = Field{Name: "open", Aliases: []string{"open", "o"}}
	FieldHigh  = Field{Name: "high", Aliases: []string{"high", "h"}}
	FieldLow   = Field{Name: "low", Aliases: []string{"low", "l"}}
	FieldClose = Field{Name: "close", Aliases: []string{"close", "c"}}

	FieldSide    = Field{Name: "side", Aliases: []string{"signal", "side", "direction"}}
	FieldOutcome = Field{Name: "outcome", Aliases: []string{"outcome", "result", "status"}}
	FieldPnL     = Field{Name: "pnl", Aliases: []string{"pnl", "profit", "net"}}
	FieldEntry   = Field{Name: "entry", Aliases: []string{"entry_price", "entry", "price_entry", "price"}}
	FieldExit    = Field{Name: "exit", Aliases: []string{"exit_price", "exit", "price_exit"}}
	FieldStop    = Field{Name: "stop", Aliases: []string{"sl_price", "sl", "stop_loss", "stop"}}
	FieldTarget  = Field{Name: "target", Aliases: []string{"tp_price", "tp", "take_profit", "target"}}
)

// Row is one CSV record keyed by canonical header (trimmed, lower-cased).
type Row map[string]string

// Header canonicalizes a raw CSV header cell.
func Header(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// NewRow zips a canonicalized header with a record. Missing trailing cells
// are left out of the row; extra cells are ignored.
func NewRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if i >= len(record) || h == "" {
			continue
		}
		// Leftmost duplicate column wins.
		if _, exists := row[h]; exists {
			continue
		}
		row[h] = record[i]
	}
	return row
}

// Lookup returns the trimmed value of the first alias of f that is present
// with a non-blank value.
func (r Row) Lookup(f Field) (string, bool) {
	for _, alias := range f.Aliases {
		v, ok := r[alias]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// String returns the field value or def when absent.
func (r Row) String(f Field, def string) string {
	if v, ok := r.Lookup(f); ok {
		return v
	}
	return def
}

// Float parses an optional numeric field. Missing, unparseable and
// non-finite values are all reported as absent.
func (r Row) Float(f Field) (float64, bool) {
	v, ok := r.Lookup(f)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || !core.IsFinite(n) {
		return 0, false
	}
	return n, true
}

// OptionalFloat is Float returning nil for absent values.
func (r Row) OptionalFloat(f Field) *float64 {
	if n, ok := r.Float(f); ok {
		return &n
	}
	return nil
}

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
