package realtime

import (
	"net/http"
	"time"

	"connection-travels/internal/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// NewUpgrader accepts the listed origins; an empty list accepts any origin.
func NewUpgrader(origins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || origin == "" || allowed[origin]
		},
	}
}

// Serve upgrades the request and joins the socket to audience until it disconnects.
func (h *Hub) Serve(up *websocket.Upgrader, w http.ResponseWriter, r *http.Request, clientID string, audience Audience) error {
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := NewClient(clientID, audience)
	h.Join(c)
	utils.Logger().Info("realtime client connected",
		zap.String("client_id", clientID), zap.String("audience", string(audience)))

	go writePump(conn, c)
	readPump(conn, h, c)
	return nil
}

// readPump only keeps the deadline alive; clients never send events.
func readPump(conn *websocket.Conn, h *Hub, c *Client) {
	defer func() {
		h.Leave(c)
		_ = conn.Close()
		utils.Logger().Info("realtime client disconnected",
			zap.String("client_id", c.ID), zap.String("audience", string(c.Audience)))
	}()

	conn.SetReadLimit(4096)
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

func writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
