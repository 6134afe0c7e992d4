// Package client carries the transport side of a drawing client: a websocket
// connection to the room relay and an HTTP client for hydration and deletes.
package client

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"flowdraw/draw"
)

// message is the relay wire envelope shared by both directions.
type message struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message,omitempty"`
}

// Socket is a relay connection. Writes are serialized with a mutex so the
// interaction engine and the application can share one connection.
type Socket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial connects to the relay websocket endpoint, passing the bearer token in
// the query string. baseURL is the ws:// or wss:// endpoint without the
// token, e.g. "ws://localhost:8080/ws".
func Dial(baseURL, token string) (*Socket, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	return &Socket{conn: conn}, nil
}

// JoinRoom subscribes this connection to a room's broadcasts.
func (s *Socket) JoinRoom(roomID string) error {
	return s.write(message{Type: "join_room", RoomID: roomID})
}

// LeaveRoom unsubscribes this connection from a room.
func (s *Socket) LeaveRoom(roomID string) error {
	return s.write(message{Type: "leave_room", RoomID: roomID})
}

// SendShape broadcasts a committed shape to the room as a chat message.
// Implements draw.Sender.
func (s *Socket) SendShape(roomID string, shape draw.Shape) error {
	body, err := draw.EncodeEnvelope(shape)
	if err != nil {
		return fmt.Errorf("encode shape %s: %w", shape.Common().ID, err)
	}
	return s.write(message{Type: "chat", RoomID: roomID, Message: body})
}

// Listen reads relay frames until the connection closes, invoking onShape
// for every decodable shape broadcast. Malformed frames are dropped with a
// log line. Listen blocks; run it on its own goroutine.
func (s *Socket) Listen(onShape func(roomID string, shape draw.Shape)) error {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read relay frame: %w", err)
		}

		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[Socket] dropping malformed frame: %v", err)
			continue
		}
		if msg.Type != "chat" {
			continue
		}

		shape, err := draw.DecodeEnvelope(msg.Message)
		if err != nil {
			log.Printf("[Socket] dropping undecodable shape in room %s: %v", msg.RoomID, err)
			continue
		}
		onShape(msg.RoomID, shape)
	}
}

func (s *Socket) write(msg message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, raw)
}

// Close closes the underlying connection. The relay unregisters the session
// on disconnect; no leave message is required.
func (s *Socket) Close() error {
	return s.conn.Close()
}
