package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/drishti/internal/session"
)

const (
	writeWait  = 2 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ResultSource publishes per-frame session results.
type ResultSource interface {
	Subscribe() (<-chan session.Result, func())
}

// SignalsHandler streams every processed frame's result as JSON over a
// WebSocket.
type SignalsHandler struct {
	source ResultSource
}

// NewSignalsHandler creates a new SignalsHandler with the given result source.
func NewSignalsHandler(source ResultSource) *SignalsHandler {
	return &SignalsHandler{source: source}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SignalsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	results, cancel := h.source.Subscribe()
	defer cancel()

	// Reading keeps pongs flowing and reports when the client goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case res, ok := <-results:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(res); err != nil {
				return
			}
		}
	}
}
