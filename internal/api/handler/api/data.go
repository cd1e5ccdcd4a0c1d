// internal/api/handler/api/data.go
package api

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/api/response"
	"github.com/newthinker/sigchart/internal/storage/source"
)

// DataHandler serves raw dataset files from the configured source.
type DataHandler struct {
	source source.Source
	logger *zap.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(src source.Source, logger *zap.Logger) *DataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataHandler{source: src, logger: logger}
}

// File handles GET /data/{name}.
func (h *DataHandler) File(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	rc, err := h.source.Open(r.Context(), name)
	if err != nil {
		response.Error(w, statusFor(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("streaming data file", zap.String("name", name), zap.Error(err))
	}
}

// List handles GET /api/v1/data.
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.source.List(r.Context())
	if err != nil {
		response.Error(w, statusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"files": names,
	})
}
