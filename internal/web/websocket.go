package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const wsWriteWait = 10 * time.Second

// wsCommand is a user intent sent by a WebSocket client.
type wsCommand struct {
	Action string `json:"action"` // play, jump, order, reset
	Cell   int    `json:"cell"`
	Step   int    `json:"step"`
}

// ws streams JSON snapshots of a game and accepts commands on the same
// connection. Rejected commands produce no message, like any no-op.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Str("game_id", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()
	// snapshot after subscribing so no change falls between the two
	gs, ok := h.svc.Get(id)
	if !ok {
		return
	}
	h.log.Info().Str("game_id", id).Str("remote", conn.RemoteAddr().String()).Msg("websocket connected")

	go h.readCommands(ctx, cancel, conn, id)

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(newStatePayload(*gs)); err != nil {
		h.log.Error().Err(err).Str("game_id", id).Msg("websocket initial state")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case next, ok := <-ch:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "fell behind"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(newStatePayload(next)); err != nil {
				h.log.Error().Err(err).Str("game_id", id).Msg("websocket write")
				return
			}
		}
	}
}

func (h *handlers) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, id string) {
	defer cancel()
	for {
		// a command missing its cell or step is off the board
		cmd := wsCommand{Cell: -1, Step: -1}
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Str("game_id", id).Msg("websocket closed unexpectedly")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		var err error
		switch cmd.Action {
		case "play":
			_, err = h.svc.Play(id, cmd.Cell)
		case "jump":
			_, err = h.svc.JumpTo(id, cmd.Step)
		case "order":
			_, err = h.svc.ToggleOrder(id)
		case "reset":
			_, err = h.svc.Reset(id)
		default:
			h.log.Debug().Str("game_id", id).Str("action", cmd.Action).Msg("unknown websocket command")
		}
		if err != nil {
			h.log.Error().Err(err).Str("game_id", id).Str("action", cmd.Action).Msg("websocket command")
			return
		}
	}
}
