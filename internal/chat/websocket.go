package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsMessage is one inbound WebSocket frame. The user is identified once
// at connect time via the user_id query parameter.
type wsMessage struct {
	UserInput string `json:"user_input"`
}

// ServeWS handles GET /chat/ws: one connection per user, one turn per
// frame, replies in the same TurnResponse shape as the HTTP endpoint.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.CloseNow()

	slog.Info("websocket connected", "user_id", userID)
	ctx := r.Context()

	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				slog.Info("websocket closed", "user_id", userID)
				return
			}
			slog.Warn("websocket read failed", "user_id", userID, "error", err)
			return
		}

		resp, err := h.processTurn(r, TurnRequest{UserID: userID, UserInput: msg.UserInput})
		if err != nil {
			slog.Error("websocket turn failed", "user_id", userID, "error", err)
			conn.Close(websocket.StatusInternalError, "turn failed")
			return
		}

		if err := wsjson.Write(ctx, conn, resp); err != nil {
			slog.Warn("websocket write failed", "user_id", userID, "error", err)
			return
		}
	}
}
