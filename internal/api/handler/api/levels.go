// internal/api/handler/api/levels.go
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/newthinker/sigchart/internal/api/response"
	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/overlay"
	"github.com/newthinker/sigchart/internal/session"
)

// LevelsHandler answers one-shot hover lookups against the current chart.
type LevelsHandler struct {
	store *session.Store
}

// NewLevelsHandler creates a new levels handler.
func NewLevelsHandler(store *session.Store) *LevelsHandler {
	return &LevelsHandler{store: store}
}

// Get handles GET /api/v1/levels?time=<epoch seconds>.
func (h *LevelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("time")
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrBadRequest, fmt.Errorf("time=%q is not an integer", raw)))
		return
	}

	markers, chartID := h.store.Markers()
	lines := []overlay.Line{}
	var entry *core.Marker
	if m, ok := overlay.Lookup(markers, ts); ok {
		entry = &m
		lines = overlay.LinesFor(m)
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"chartId": chartID,
		"time":    ts,
		"entry":   entry,
		"lines":   lines,
	})
}
