package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jaminalder/timetravel-tictactoe/internal/app"
	"github.com/jaminalder/timetravel-tictactoe/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       zerolog.Logger
	heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState) ([]byte, error) {
	return renderTemplate(h.tpl.board, "", boardData{ID: gs.ID, View: gs.View()})
}

func (h *handlers) writeHTML(w http.ResponseWriter, b []byte, err error) {
	if err != nil {
		h.log.Error().Err(err).Msg("render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	b, err := renderTemplate(h.tpl.index, "", nil)
	h.writeHTML(w, b, err)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		h.log.Error().Err(err).Msg("create game")
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := renderTemplate(h.tpl.game, "", boardData{ID: gs.ID, View: gs.View()})
	h.writeHTML(w, b, err)
}

func (h *handlers) board(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := h.renderBoard(*gs)
	h.writeHTML(w, b, err)
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newStatePayload(*gs)); err != nil {
		h.log.Error().Err(err).Str("game_id", gs.ID).Msg("encode state")
	}
}

// formInt reads an integer form field. Anything unparseable maps to -1,
// which every game operation treats as out of range.
func formInt(r *http.Request, key string) int {
	_ = r.ParseForm()
	v, err := strconv.Atoi(strings.TrimSpace(r.Form.Get(key)))
	if err != nil {
		return -1
	}
	return v
}

// action adapts a service operation into a handler that answers with the
// refreshed board fragment.
func (h *handlers) action(op func(r *http.Request, id string) (*app.GameState, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		gs, err := op(r, id)
		if errors.Is(err, app.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			h.log.Error().Err(err).Str("game_id", id).Msg("game action")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		b, err := h.renderBoard(*gs)
		h.writeHTML(w, b, err)
	}
}

func (h *handlers) play() http.HandlerFunc {
	return h.action(func(r *http.Request, id string) (*app.GameState, error) {
		return h.svc.Play(id, formInt(r, "cell"))
	})
}

func (h *handlers) jump() http.HandlerFunc {
	return h.action(func(r *http.Request, id string) (*app.GameState, error) {
		return h.svc.JumpTo(id, formInt(r, "step"))
	})
}

func (h *handlers) order() http.HandlerFunc {
	return h.action(func(r *http.Request, id string) (*app.GameState, error) {
		return h.svc.ToggleOrder(id)
	})
}

func (h *handlers) reset() http.HandlerFunc {
	return h.action(func(r *http.Request, id string) (*app.GameState, error) {
		return h.svc.Reset(id)
	})
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// non-EventSource requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			b, err := h.renderBoard(gs)
			if err != nil {
				h.log.Error().Err(err).Str("game_id", id).Msg("render sse board")
				continue
			}
			_, _ = fmt.Fprint(w, "event: board\n")
			// SSE data lines cannot contain raw newlines
			for _, line := range strings.Split(string(b), "\n") {
				_, _ = fmt.Fprintf(w, "data: %s\n", line)
			}
			_, _ = io.WriteString(w, "\n")
			flusher.Flush()
		}
	}
}

// statePayload is the JSON form of a session served over HTTP and WebSocket.
type statePayload struct {
	ID      string       `json:"id"`
	State   domain.State `json:"state"`
	View    domain.View  `json:"view"`
	Updated time.Time    `json:"updated"`
}

func newStatePayload(gs app.GameState) statePayload {
	return statePayload{ID: gs.ID, State: gs.State, View: gs.View(), Updated: gs.Updated}
}
