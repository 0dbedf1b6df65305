package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/duelist/stockduel/internal/bracket"
	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/logger"
)

// LiveHandler streams bracket score snapshots over a websocket. Each
// connection serves one bracket: a snapshot goes out immediately, then
// after every poll interval, until the bracket completes or the client
// goes away.
type LiveHandler struct {
	service  *bracket.Service
	logger   *logger.Logger
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewLiveHandler creates a new live score handler
func NewLiveHandler(service *bracket.Service, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		service: service,
		logger:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		interval: 15 * time.Second,
	}
}

// ScoreSnapshot is one live update frame
type ScoreSnapshot struct {
	BracketID  string            `json:"bracket_id"`
	Status     contracts.Status  `json:"status"`
	UserPoints float64           `json:"user_points"`
	AIPoints   float64           `json:"ai_points"`
	Winner     contracts.Side    `json:"winner,omitempty"`
	Entries    []EntrySnapshot   `json:"entries"`
	Matches    []contracts.Match `json:"matches"`
	SentAt     time.Time         `json:"sent_at"`
}

// EntrySnapshot is one entry's live state
type EntrySnapshot struct {
	Side           contracts.Side `json:"side"`
	Symbol         string         `json:"symbol"`
	Order          int            `json:"order"`
	AdjustedChange *float64       `json:"adjusted_change,omitempty"`
}

// Stream upgrades the connection and pushes score snapshots
// GET /api/brackets/{id}/live
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Reject before upgrading so plain HTTP clients get a clean 404
	if _, err := h.service.GetBracket(r.Context(), id); err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Bracket not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load bracket")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		b, err := h.service.GetBracket(r.Context(), id)
		if err != nil {
			h.logger.WithError(err).WithField("bracket_id", id).Warn("Live stream load failed")
			return
		}

		if err := conn.WriteJSON(snapshot(b)); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).WithField("bracket_id", id).Debug("Live stream write failed")
			}
			return
		}

		// Final frame carries the completed result
		if b.Status == contracts.StatusCompleted {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bracket completed"))
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

func snapshot(b *contracts.Bracket) ScoreSnapshot {
	snap := ScoreSnapshot{
		BracketID:  b.ID,
		Status:     b.Status,
		UserPoints: b.UserPoints,
		AIPoints:   b.AIPoints,
		Winner:     b.Winner,
		Matches:    b.Matches,
		SentAt:     time.Now(),
	}

	snap.Entries = appendSide(snap.Entries, contracts.SideUser, b.UserEntries)
	snap.Entries = appendSide(snap.Entries, contracts.SideAI, b.AIEntries)
	return snap
}

func appendSide(out []EntrySnapshot, side contracts.Side, entries []contracts.Entry) []EntrySnapshot {
	for _, e := range entries {
		es := EntrySnapshot{Side: side, Symbol: e.Symbol, Order: e.Order}
		if adj, ok := e.AdjustedChange(); ok {
			v := adj
			es.AdjustedChange = &v
		}
		out = append(out, es)
	}
	return out
}
