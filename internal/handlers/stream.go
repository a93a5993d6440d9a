package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"simonseq/internal/game"
	"simonseq/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Connections are authenticated by the session token, not the origin.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler pushes roster snapshots to waiting-room sockets.
type StreamHandler struct {
	games  *game.Store
	issuer *session.Issuer
}

func NewStreamHandler(games *game.Store, issuer *session.Issuer) *StreamHandler {
	return &StreamHandler{games: games, issuer: issuer}
}

// RegisterRoutes mounts the socket route. It must sit outside any request
// timeout middleware since the connection is long-lived.
func (h *StreamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/games/{code}/ws", h.roster)
}

func (h *StreamHandler) roster(w http.ResponseWriter, r *http.Request) {
	code := game.NormalizeCode(chi.URLParam(r, "code"))
	sess, ok := authorizeGame(w, r, h.issuer, code)
	if !ok {
		return
	}
	g, found := h.games.GetGame(code)
	if !found {
		http.NotFound(w, r)
		return
	}
	hub, found := h.games.Broadcaster(code)
	if !found {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("roster upgrade failed code=%s err=%v", code, err)
		return
	}
	defer conn.Close()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	done := make(chan struct{})
	go readPump(conn, done)

	send := func() error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(g.Snapshot())
	}
	if err := send(); err != nil {
		return
	}
	log.Printf("roster stream opened code=%s player=%s", code, sess.PlayerID)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case _, open := <-sub:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
					time.Now().Add(writeWait))
				return
			}
			if err := send(); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are handled.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
