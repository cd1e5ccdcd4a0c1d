// internal/api/handler/api/chart.go
package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/api/response"
	"github.com/newthinker/sigchart/internal/chart"
	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/pipeline"
	"github.com/newthinker/sigchart/internal/session"
	"github.com/newthinker/sigchart/internal/storage/source"
)

// multipart parts above this size spill to disk
const maxUploadMemory = 8 << 20

// Processor runs the CSV pipeline.
type Processor interface {
	Process(ctx context.Context, ohlcv, trades io.Reader) (*pipeline.Result, error)
}

// ChartConfig names the default datasets.
type ChartConfig struct {
	OHLCVFile  string
	TradesFile string
}

// ChartHandler renders charts from uploads or the default datasets.
type ChartHandler struct {
	processor Processor
	store     *session.Store
	source    source.Source
	cfg       ChartConfig
	logger    *zap.Logger
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(p Processor, store *session.Store, src source.Source, cfg ChartConfig, logger *zap.Logger) *ChartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartHandler{processor: p, store: store, source: src, cfg: cfg, logger: logger}
}

// Upload handles POST /api/v1/chart with multipart files "ohlcv" and
// "trades". When either file is missing the default datasets are used.
func (h *ChartHandler) Upload(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		h.Default(w, r)
		return
	}
	if err != nil {
		h.fail(w, wrapUpload(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	ohlcv, errO := openPart(r, "ohlcv")
	trades, errT := openPart(r, "trades")
	defer closeAll(ohlcv, trades)

	if errors.Is(errO, http.ErrMissingFile) || errors.Is(errT, http.ErrMissingFile) {
		h.Default(w, r)
		return
	}
	if err := errors.Join(errO, errT); err != nil {
		h.fail(w, wrapUpload(err))
		return
	}

	h.render(w, r, ohlcv, trades)
}

// Default handles GET /api/v1/chart/default.
func (h *ChartHandler) Default(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ohlcv, err := h.source.Open(ctx, h.cfg.OHLCVFile)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer ohlcv.Close()

	trades, err := h.source.Open(ctx, h.cfg.TradesFile)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer trades.Close()

	h.render(w, r, ohlcv, trades)
}

// Current handles GET /api/v1/chart and returns the last rendered chart.
func (h *ChartHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Current()
	if !ok {
		response.Error(w, http.StatusNotFound, core.ErrNoData)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *ChartHandler) render(w http.ResponseWriter, r *http.Request, ohlcv, trades io.Reader) {
	ticket := h.store.Begin()

	res, err := h.processor.Process(r.Context(), ohlcv, trades)
	if err != nil {
		h.fail(w, err)
		return
	}

	payload := chart.Build(res)
	if !h.store.Commit(ticket, payload) {
		h.logger.Info("chart superseded", zap.Uint64("ticket", uint64(ticket)))
		response.Error(w, http.StatusConflict, core.ErrSuperseded)
		return
	}

	response.JSON(w, http.StatusOK, payload)
}

func (h *ChartHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("chart render failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Warn("chart render rejected", zap.Int("status", status), zap.Error(err))
	}
	response.Error(w, status, err)
}

func openPart(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	return f, err
}

func closeAll(files ...multipart.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// wrapUpload keeps the cause so oversized bodies still map to 413.
func wrapUpload(err error) error {
	return core.WrapError(core.ErrUploadInvalid, err)
}
