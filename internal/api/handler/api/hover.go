// internal/api/handler/api/hover.go
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/overlay"
	"github.com/newthinker/sigchart/internal/session"
)

// WebSocket timeouts
const (
	hoverReadTimeout  = 90 * time.Second
	hoverWriteTimeout = 10 * time.Second
	hoverPingInterval = 30 * time.Second
	hoverMaxMessage   = 1024
)

// HoverRecorder receives hover metrics. *metrics.Registry satisfies it.
type HoverRecorder interface {
	RecordHover(result string)
}

// HoverRequest is a client message. Time is an epoch-second number, or
// null when the pointer left the plot. Either field may be omitted.
type HoverRequest struct {
	Time    json.RawMessage `json:"time,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
}

// HoverReply carries the line commands produced by one request.
type HoverReply struct {
	Commands []overlay.Command `json:"commands"`
	State    string            `json:"state"`
	Enabled  bool              `json:"enabled"`
	ChartID  string            `json:"chartId,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// HoverHandler runs one overlay per WebSocket connection.
type HoverHandler struct {
	store    *session.Store
	enabled  bool
	recorder HoverRecorder
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHoverHandler creates a hover handler. enabled is the initial overlay
// state of each new connection.
func NewHoverHandler(store *session.Store, enabled bool, recorder HoverRecorder, logger *zap.Logger) *HoverHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoverHandler{
		store:    store,
		enabled:  enabled,
		recorder: recorder,
		logger:   logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
		},
	}
}

// Serve handles GET /api/v1/hover.
func (h *HoverHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Debug("hover upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(hoverMaxMessage)
	conn.SetReadDeadline(time.Now().Add(hoverReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(hoverReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go h.ping(conn, done)

	hs := newHoverSession(h.store, h.enabled)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("hover connection closed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(hoverReadTimeout))

		reply, result := hs.handle(msg)
		if h.recorder != nil && result != "" {
			h.recorder.RecordHover(result)
		}

		conn.SetWriteDeadline(time.Now().Add(hoverWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Debug("hover write failed", zap.Error(err))
			return
		}
	}
}

func (h *HoverHandler) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(hoverPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(hoverWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// hoverSession is the per-connection state. It follows the store so a newly
// rendered chart replaces the marker set between messages.
type hoverSession struct {
	store    *session.Store
	recorder *overlay.Recorder
	overlay  *overlay.Overlay
	chartID  string
}

func newHoverSession(store *session.Store, enabled bool) *hoverSession {
	rec := overlay.NewRecorder()
	ov := overlay.New(rec)
	ov.SetEnabled(enabled)
	return &hoverSession{store: store, recorder: rec, overlay: ov}
}

// handle applies one client message. result is the metrics label for a
// move, or "" when the message carried no move.
func (s *hoverSession) handle(msg []byte) (HoverReply, string) {
	s.sync()

	var req HoverRequest
	var result string
	var errText string

	if err := json.Unmarshal(msg, &req); err != nil {
		errText = "invalid message: " + err.Error()
	} else {
		if req.Enabled != nil {
			s.overlay.SetEnabled(*req.Enabled)
		}
		if len(req.Time) > 0 {
			result, errText = s.move(req.Time)
		}
	}

	return HoverReply{
		Commands: s.recorder.Flush(),
		State:    s.overlay.State().String(),
		Enabled:  s.overlay.Enabled(),
		ChartID:  s.chartID,
		Error:    errText,
	}, result
}

func (s *hoverSession) move(raw json.RawMessage) (result, errText string) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		s.overlay.Move(0, false)
	} else {
		var ts float64
		if err := json.Unmarshal(raw, &ts); err != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
			return "", fmt.Sprintf("time %s is not a number", raw)
		}
		s.overlay.Move(int64(math.Floor(ts)), true)
	}

	if !s.overlay.Enabled() {
		return "ignored", ""
	}
	return s.overlay.State().String(), ""
}

func (s *hoverSession) sync() {
	markers, id := s.store.Markers()
	if id == s.chartID {
		return
	}
	s.chartID = id
	s.overlay.SetMarkers(markers)
}
