package server

import (
	"bytes"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/projgen/internal/errors"
	"github.com/vango-dev/projgen/internal/generator"
)

// MessageType identifies a websocket message sent by the server.
type MessageType string

const (
	MessageEvent MessageType = "event"
	MessageDone  MessageType = "done"
	MessageError MessageType = "error"
)

// Message is sent to websocket clients. Each request produces zero or more
// event messages followed by exactly one done or error message.
type Message struct {
	Type   MessageType       `json:"type"`
	Event  *generator.Event  `json:"event,omitempty"`
	Result *generator.Result `json:"result,omitempty"`
	Error  *errors.Error     `json:"error,omitempty"`
}

// handleStream upgrades the connection and serves generation requests until
// the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}

		body, err := decodeCreateRequest(bytes.NewReader(data))
		if err != nil {
			if err := conn.WriteJSON(Message{
				Type:  MessageError,
				Error: errors.New("E100").WithDetail("invalid request message").Wrap(err),
			}); err != nil {
				return
			}
			continue
		}

		if !s.serveStreamRequest(r, conn, body) {
			return
		}
	}
}

// serveStreamRequest runs one request, writing progress to conn. It reports
// whether the connection is still usable.
func (s *Server) serveStreamRequest(r *http.Request, conn *websocket.Conn, body createRequest) bool {
	alive := true
	req := body.toRequest()
	req.Observer = func(ev generator.Event) {
		if !alive {
			return
		}
		if err := conn.WriteJSON(Message{Type: MessageEvent, Event: &ev}); err != nil {
			alive = false
		}
	}

	res, err := s.gen.Run(r.Context(), req)
	if !alive {
		return false
	}

	msg := Message{Type: MessageDone, Result: res}
	if err != nil {
		msg = Message{Type: MessageError, Result: res, Error: errors.FromError(err, "E103")}
	}
	return conn.WriteJSON(msg) == nil
}
