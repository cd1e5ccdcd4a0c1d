// Package pipeline turns raw OHLCV and trade CSV streams into a sorted
// candle series and a sorted marker set.
package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/candle"
	"github.com/newthinker/sigchart/internal/core"
	"github.com/newthinker/sigchart/internal/logger"
	"github.com/newthinker/sigchart/internal/normalize"
	"github.com/newthinker/sigchart/internal/trace"
	"github.com/newthinker/sigchart/internal/trade"
)

// Dataset names used in warnings, stats and metrics.
const (
	DatasetOHLCV  = "ohlcv"
	DatasetTrades = "trades"
)

// cancellation is checked every this many rows
const ctxCheckEvery = 1024

// Warning describes a dropped row. Row is the 1-based index among
// non-empty data rows.
type Warning struct {
	Dataset string `json:"dataset"`
	Row     int    `json:"row"`
	Reason  string `json:"reason"`
}

// DatasetStats counts rows for one input file.
type DatasetStats struct {
	Read     int `json:"read"`
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// Stats summarizes a run.
type Stats struct {
	OHLCV       DatasetStats `json:"ohlcv"`
	Trades      DatasetStats `json:"trades"`
	Entries     int          `json:"entries"`
	StopLosses  int          `json:"stopLosses"`
	TakeProfits int          `json:"takeProfits"`
}

// Result is the output of a successful run.
type Result struct {
	Candles  []core.Candle `json:"candles"`
	Markers  []core.Marker `json:"markers"`
	Warnings []Warning     `json:"warnings"`
	Stats    Stats         `json:"stats"`
}

// Recorder receives run metrics. *metrics.Registry satisfies it.
type Recorder interface {
	RecordRows(dataset string, accepted, dropped int)
	RecordMarker(kind, outcome string)
	RecordPipelineRun(status string, duration float64)
}

// Processor runs the pipeline. It holds no per-run state and is safe for
// concurrent use.
type Processor struct {
	logger   *zap.Logger
	recorder Recorder
}

// New creates a processor. Both arguments may be nil.
func New(logger *zap.Logger, recorder Recorder) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger, recorder: recorder}
}

// Process parses the OHLCV stream, then the trades stream. trades may be nil.
func (p *Processor) Process(ctx context.Context, ohlcv, trades io.Reader) (*Result, error) {
	start := time.Now()
	ctx, span := trace.StartSpan(ctx, "pipeline.process")
	defer span.End()

	res, err := p.process(ctx, ohlcv, trades)

	status := "ok"
	switch {
	case errors.Is(err, core.ErrNoCandles):
		status = "no_candles"
	case err != nil:
		status = "error"
	}
	if p.recorder != nil {
		p.recorder.RecordPipelineRun(status, time.Since(start).Seconds())
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("candles", len(res.Candles)),
		attribute.Int("markers", len(res.Markers)),
		attribute.Int("warnings", len(res.Warnings)),
	)
	logger.WithTrace(ctx, p.logger).Info("pipeline complete",
		zap.Int("candles", len(res.Candles)),
		zap.Int("markers", len(res.Markers)),
		zap.Int("dropped_ohlcv", res.Stats.OHLCV.Dropped),
		zap.Int("dropped_trades", res.Stats.Trades.Dropped),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (p *Processor) process(ctx context.Context, ohlcv, trades io.Reader) (*Result, error) {
	res := &Result{
		Candles:  []core.Candle{},
		Markers:  []core.Marker{},
		Warnings: []Warning{},
	}

	if err := p.readCandles(ctx, ohlcv, res); err != nil {
		return nil, err
	}
	if len(res.Candles) == 0 {
		return nil, core.ErrNoCandles
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if trades != nil {
		if err := p.readTrades(ctx, trades, res); err != nil {
			return nil, err
		}
	}

	candle.Sort(res.Candles)
	SortMarkers(res.Markers)
	return res, nil
}

func (p *Processor) readCandles(ctx context.Context, r io.Reader, res *Result) error {
	ctx, span := trace.StartSpan(ctx, "pipeline.ohlcv")
	defer span.End()

	st := &res.Stats.OHLCV
	err := readRows(ctx, r, func(n int, row normalize.Row) {
		st.Read++
		c, err := candle.Extract(row)
		if err != nil {
			st.Dropped++
			p.warn(res, DatasetOHLCV, n, err)
			return
		}
		st.Accepted++
		res.Candles = append(res.Candles, c)
	})
	if err != nil {
		return p.failed(DatasetOHLCV, err)
	}

	span.SetAttributes(attribute.Int("rows.accepted", st.Accepted), attribute.Int("rows.dropped", st.Dropped))
	if p.recorder != nil {
		p.recorder.RecordRows(DatasetOHLCV, st.Accepted, st.Dropped)
	}
	return nil
}

func (p *Processor) readTrades(ctx context.Context, r io.Reader, res *Result) error {
	ctx, span := trace.StartSpan(ctx, "pipeline.trades")
	defer span.End()

	st := &res.Stats.Trades
	err := readRows(ctx, r, func(n int, row normalize.Row) {
		st.Read++
		markers, err := trade.ClassifyRow(row)
		if err != nil {
			st.Dropped++
			p.warn(res, DatasetTrades, n, err)
			return
		}
		st.Accepted++
		for _, m := range markers {
			res.Stats.count(m.Kind)
			if p.recorder != nil {
				p.recorder.RecordMarker(string(m.Kind), string(m.Outcome))
			}
		}
		res.Markers = append(res.Markers, markers...)
	})
	if err != nil {
		return p.failed(DatasetTrades, err)
	}

	span.SetAttributes(attribute.Int("rows.accepted", st.Accepted), attribute.Int("markers", len(res.Markers)))
	if p.recorder != nil {
		p.recorder.RecordRows(DatasetTrades, st.Accepted, st.Dropped)
	}
	return nil
}

func (p *Processor) warn(res *Result, dataset string, row int, err error) {
	res.Warnings = append(res.Warnings, Warning{Dataset: dataset, Row: row, Reason: err.Error()})
	p.logger.Warn("row dropped",
		zap.String("dataset", dataset),
		zap.Int("row", row),
		zap.Error(err),
	)
}

func (p *Processor) failed(dataset string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return core.WrapError(core.ErrParseFailed, fmt.Errorf("%s: %w", dataset, err))
}

func (s *Stats) count(kind core.MarkerKind) {
	switch kind {
	case core.KindEntry:
		s.Entries++
	case core.KindStopLoss:
		s.StopLosses++
	case core.KindTakeProfit:
		s.TakeProfits++
	}
}

// readRows streams r as a header-first CSV and calls fn for each non-empty
// data row. An empty stream yields no rows.
func readRows(ctx context.Context, r io.Reader, fn func(n int, row normalize.Row)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	for i, h := range header {
		header[i] = normalize.Header(h)
	}

	n := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		row := normalize.NewRow(header, record)
		if row.IsBlank() {
			continue
		}
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		fn(n, row)
	}
}
