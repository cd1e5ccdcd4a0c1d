package pipeline

import (
	"sort"

	"github.com/newthinker/sigchart/internal/core"
)

// SortMarkers orders markers by time, keeping input order within a bucket.
func SortMarkers(markers []core.Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Time < markers[j].Time
	})
}
