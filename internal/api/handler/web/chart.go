// internal/api/handler/web/chart.go
package web

import (
	"net/http"
)

// ChartData holds data for the chart template
type ChartData struct {
	Title          string
	OverlayEnabled bool
	MaxUploadMB    int64
	OHLCVFile      string
	TradesFile     string
}

// Chart renders the dashboard page. Other paths under / are not found.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := ChartData{
		Title:          "Trading Chart with Signals",
		OverlayEnabled: h.opts.OverlayEnabled,
		MaxUploadMB:    h.opts.MaxUploadBytes >> 20,
		OHLCVFile:      h.opts.OHLCVFile,
		TradesFile:     h.opts.TradesFile,
	}

	h.render(w, "chart.html", data)
}
