package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/realtime"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Mobile clients connect from the app scheme, not a browser origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub         *realtime.Hub
	goalService *service.GoalService
}

func NewWSHandler(hub *realtime.Hub, goalService *service.GoalService) *WSHandler {
	return &WSHandler{
		hub:         hub,
		goalService: goalService,
	}
}

// ProofEvents upgrades the connection and streams the goal's proof
// verification events until the client disconnects. Events emitted while
// the socket is closed are not replayed; the client refetches instead.
// Only participants of the goal may subscribe.
func (h *WSHandler) ProofEvents(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	_, err := h.goalService.ByID(user.ID, goalID)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		slog.Error("failed to authorize subscription", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "goal_id", goalID)
		return
	}

	sub := h.hub.Subscribe(goalID)
	defer h.hub.Unsubscribe(sub)

	go readLoop(conn)
	writeLoop(conn, sub)
}

// readLoop drains client messages so pongs and close frames are processed.
func readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return
		}
	}
}

func writeLoop(conn *websocket.Conn, sub *realtime.Subscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case evt, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(wsWriteWait))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteJSON(evt)
			if err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
