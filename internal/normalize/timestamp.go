package normalize

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/newthinker/sigchart/internal/core"
)

// epochMillisThreshold separates epoch milliseconds from epoch seconds.
const epochMillisThreshold = 1e12

// dateLayouts are tried in order for non-numeric timestamps. Layouts
// without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2 Jan 2006",
}

// ParseTimestamp converts a raw timestamp cell to epoch seconds.
// Numbers above 1e12 are epoch milliseconds, other numbers epoch seconds;
// anything else is parsed as a calendar date. Results are floored and must
// be positive.
func ParseTimestamp(raw string) (int64, error) {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.Abs(n) > epochMillisThreshold {
			n /= 1000
		}
		return fromSeconds(n, raw)
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return fromSeconds(math.Floor(float64(t.UnixMilli())/1000), raw)
	}

	return 0, core.WrapError(core.ErrInvalidTimestamp, fmt.Errorf("unrecognized date %q", raw))
}

func fromSeconds(secs float64, raw string) (int64, error) {
	secs = math.Floor(secs)
	if !core.IsFinite(secs) || secs <= 0 || secs > math.MaxInt64/2 {
		return 0, core.WrapError(core.ErrInvalidTimestamp, fmt.Errorf("out of range %q", raw))
	}
	return int64(secs), nil
}

// Timestamp resolves the row's time field to epoch seconds.
func (r Row) Timestamp() (int64, error) {
	raw, ok := r.Lookup(FieldTime)
	if !ok {
		return 0, core.ErrMissingTimestamp
	}
	return ParseTimestamp(raw)
}
