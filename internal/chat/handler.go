// Package chat exposes the dialogue engine over HTTP and WebSocket.
// Transports are stateless: every reply carries the full session
// snapshot, and the server keeps the authoritative copy per user.
package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fennlabs/fennlingo/internal/dialogue"
	"github.com/fennlabs/fennlingo/internal/progress"
	"github.com/fennlabs/fennlingo/internal/session"
)

// TurnRequest is one inbound chat message. Session is optional: a
// client may manage its own snapshot instead of relying on the server's
// stored one.
type TurnRequest struct {
	UserInput string            `json:"user_input"`
	UserID    string            `json:"user_id"`
	Session   *dialogue.Session `json:"session,omitempty"`
}

// TurnResponse carries the reply segments and the next snapshot. For
// single-segment replies Text duplicates the segment so simple clients
// can skip the messages array.
type TurnResponse struct {
	Messages []dialogue.Segment `json:"messages"`
	Session  dialogue.Session   `json:"session"`
	Type     string             `json:"type"`
	Text     string             `json:"text,omitempty"`
}

// Handler serves the chat endpoints. It owns the read-modify-write
// cycle around the session store, serialized per user.
type Handler struct {
	engine      *dialogue.Engine
	sessions    session.Store
	locks       *session.KeyedMutex
	progress    dialogue.ProgressStore
	corrections dialogue.CorrectionLog
}

// NewHandler creates a chat handler.
func NewHandler(engine *dialogue.Engine, sessions session.Store, prog dialogue.ProgressStore, corr dialogue.CorrectionLog) *Handler {
	return &Handler{
		engine:      engine,
		sessions:    sessions,
		locks:       session.NewKeyedMutex(),
		progress:    prog,
		corrections: corr,
	}
}

// ServeChat handles POST /chat.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.processTurn(r, req)
	if err != nil {
		slog.Error("chat turn failed", "user_id", req.UserID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode chat response", "user_id", req.UserID, "error", err)
	}
}

// processTurn runs one turn under the user's lock: load the stored
// session unless the client sent one, run the engine, store the result.
func (h *Handler) processTurn(r *http.Request, req TurnRequest) (TurnResponse, error) {
	ctx := r.Context()

	unlock := h.locks.Lock(req.UserID)
	defer unlock()

	current := req.Session
	if current == nil {
		stored, found, err := h.sessions.Get(ctx, req.UserID)
		if err != nil {
			return TurnResponse{}, fmt.Errorf("loading session: %w", err)
		}
		if found {
			current = &stored
		}
	}

	reply, next := h.engine.ProcessTurn(ctx, dialogue.Turn{
		UserID:  req.UserID,
		Input:   req.UserInput,
		Session: current,
	})

	if err := h.sessions.Put(ctx, req.UserID, next); err != nil {
		// The reply still stands; the next turn restarts from the last
		// stored snapshot.
		slog.Error("failed to store session", "user_id", req.UserID, "error", err)
	}

	resp := TurnResponse{
		Messages: reply.Segments,
		Session:  next,
		Type:     reply.Type,
	}
	if len(reply.Segments) == 1 {
		resp.Text = reply.Segments[0].Text
	}
	return resp, nil
}

// ServeExport handles GET /progress/export, streaming the user's
// progress as an XLSX workbook.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sum, err := h.progress.Summary(ctx, userID)
	if err != nil {
		slog.Error("failed to load progress for export", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	corrections, err := h.corrections.Recent(ctx, userID, 100)
	if err != nil {
		slog.Error("failed to load corrections for export", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "fennlingo-progress-"+userID+".xlsx"))
	if err := progress.WriteReport(w, userID, sum, corrections); err != nil {
		slog.Error("failed to write progress report", "user_id", userID, "error", err)
	}
}
