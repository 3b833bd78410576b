package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/obrien-tchaleu/ludo-universe/internal/server/room"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket attache un client de rendu au flux d'événements d'une session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.GetRoom(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := room.NewClient(uuid.NewString())
	if err := rm.Attach(client); err != nil {
		_ = writeMessage(conn, protocol.ErrorMessage(rm.ID, constants.ErrSessionClosed, err.Error()))
		conn.Close()
		return
	}

	go s.writePump(conn, client)
	s.readPump(conn, rm, client)
}

// writePump écrit les messages de la salle jusqu'à la fermeture de la file
func (s *Server) writePump(conn *websocket.Conn, client *room.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := writeMessage(conn, msg); err != nil {
				s.log.Debug().Err(err).Str("type", string(msg.Type)).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeMessage envoie un message en trame texte JSON
func writeMessage(conn *websocket.Conn, msg *models.NetworkMessage) error {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readPump lit les requêtes du client et les transmet à la salle
func (s *Server) readPump(conn *websocket.Conn, rm *room.Room, client *room.Client) {
	defer func() {
		rm.Detach(client.ID)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("client", client.ID).Msg("websocket closed")
			}
			return
		}

		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			rm.SendTo(client.ID, protocol.ErrorMessage(rm.ID, constants.ErrBadMessage, err.Error()))
			continue
		}
		rm.HandleMessage(client.ID, msg)
	}
}
