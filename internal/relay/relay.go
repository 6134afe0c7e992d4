// Package relay routes drawing broadcasts between websocket sessions.
// Rooms are join-sets on connections; the relay never checks room existence
// and never pushes deletes, which go over HTTP instead.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const persistTimeout = 5 * time.Second

var ErrBadEnvelope = errors.New("malformed relay message")

// Conn is the subset of a websocket connection the relay needs. Satisfied by
// *websocket.Conn from gofiber/contrib.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Persister stores a broadcast chat row. shapeID is the client-generated id
// extracted from the envelope so deletes can target one indexed column.
type Persister interface {
	SaveChat(ctx context.Context, roomID, userID int64, shapeID, message string) error
}

// Message is the wire envelope in both directions.
type Message struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message,omitempty"`
}

// session tracks one authenticated connection and the rooms it joined.
type session struct {
	conn    Conn
	userID  int64
	rooms   map[string]struct{}
	writeMu sync.Mutex
}

func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Registry holds every live session. Auth happens before Register; the relay
// itself never sees a token.
type Registry struct {
	mu       sync.RWMutex
	sessions map[Conn]*session
	store    Persister
}

func NewRegistry(store Persister) *Registry {
	return &Registry{
		sessions: make(map[Conn]*session),
		store:    store,
	}
}

// Register adds an authenticated connection with no room memberships.
func (r *Registry) Register(conn Conn, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[conn] = &session{
		conn:   conn,
		userID: userID,
		rooms:  make(map[string]struct{}),
	}
	log.Printf("[Relay] user %d connected, sessions: %d", userID, len(r.sessions))
}

// Unregister drops a connection and all its room memberships. No leave
// broadcast is sent.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[conn]; ok {
		delete(r.sessions, conn)
		log.Printf("[Relay] user %d disconnected, sessions: %d", s.userID, len(r.sessions))
	}
}

// Serve runs the read loop for one authenticated connection: register,
// route every frame, unregister when the connection dies.
func (r *Registry) Serve(conn Conn, userID int64) {
	r.Register(conn, userID)
	defer r.Unregister(conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := r.HandleMessage(conn, raw); err != nil {
			log.Printf("[Relay] dropping frame from user %d: %v", userID, err)
		}
	}
}

// HandleMessage routes a single inbound frame. Malformed frames are dropped
// with an error; they never tear down the connection.
func (r *Registry) HandleMessage(conn Conn, raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ErrBadEnvelope
	}

	switch msg.Type {
	case "join_room":
		return r.join(conn, msg.RoomID)
	case "leave_room":
		return r.leave(conn, msg.RoomID)
	case "chat":
		return r.chat(conn, msg)
	default:
		return ErrBadEnvelope
	}
}

// join is idempotent and does not check that the room exists; a room is just
// a subscription key.
func (r *Registry) join(conn Conn, roomID string) error {
	if roomID == "" {
		return ErrBadEnvelope
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[conn]
	if !ok {
		return errors.New("unregistered connection")
	}
	s.rooms[roomID] = struct{}{}
	log.Printf("[Room %s] user %d joined", roomID, s.userID)
	return nil
}

func (r *Registry) leave(conn Conn, roomID string) error {
	if roomID == "" {
		return ErrBadEnvelope
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[conn]
	if !ok {
		return errors.New("unregistered connection")
	}
	delete(s.rooms, roomID)
	log.Printf("[Room %s] user %d left", roomID, s.userID)
	return nil
}

// chat persists the message and fans it out to every session subscribed to
// the room, the sender included. Persistence runs on its own goroutine so a
// slow store never delays the broadcast; a failed write is logged and the
// broadcast stands.
func (r *Registry) chat(conn Conn, msg Message) error {
	roomID, err := strconv.ParseInt(msg.RoomID, 10, 64)
	if err != nil {
		return ErrBadEnvelope
	}

	r.mu.RLock()
	sender, ok := r.sessions[conn]
	if !ok {
		r.mu.RUnlock()
		return errors.New("unregistered connection")
	}
	userID := sender.userID

	targets := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if _, in := s.rooms[msg.RoomID]; in {
			targets = append(targets, s)
		}
	}
	r.mu.RUnlock()

	if r.store != nil {
		shapeID := extractShapeID(msg.Message)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := r.store.SaveChat(ctx, roomID, userID, shapeID, msg.Message); err != nil {
				log.Printf("[Room %s] failed to persist chat from user %d: %v", msg.RoomID, userID, err)
			}
		}()
	}

	out, err := json.Marshal(Message{Type: "chat", RoomID: msg.RoomID, Message: msg.Message})
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := t.write(out); err != nil {
			log.Printf("[Room %s] failed to send to user %d: %v", msg.RoomID, t.userID, err)
		}
	}
	return nil
}

// extractShapeID probes the chat body for the shape id without decoding the
// full shape. Non-shape messages yield an empty id.
func extractShapeID(body string) string {
	var probe struct {
		Shape struct {
			ID string `json:"id"`
		} `json:"shape"`
	}
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return ""
	}
	return probe.Shape.ID
}
