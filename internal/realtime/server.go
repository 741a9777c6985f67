package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/zackiles/terminal-emulator/internal/protocol"
	"github.com/zackiles/terminal-emulator/internal/terminal"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow localhost origins for dev.
	},
}

// Server bridges one terminal session to any number of WebSocket
// viewers. It binds itself as the session's output and error sinks, so
// every session write is broadcast, and it forwards client input lines
// and control messages into the session.
type Server struct {
	sess      *terminal.Session
	clients   map[string]*client
	clientsMu sync.RWMutex
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// New creates a bridge server and subscribes it to the session's
// output and error channels. Viewers are notified with terminal.closed
// whichever path closes the session: a client exit message, an input
// line the handler turns into an exit, the host closing the line
// source, or the embedding program calling Exit directly.
func New(sess *terminal.Session) *Server {
	s := &Server{
		sess:    sess,
		clients: make(map[string]*client),
	}
	sess.SubscribeOutput(streamWriter{server: s, stream: "output"})
	sess.SubscribeError(streamWriter{server: s, stream: "error"})
	sess.OnClose(s.broadcastClosed)
	return s
}

// streamWriter adapts the broadcast path to the session's sink
// contract: every write becomes one terminal.output message.
type streamWriter struct {
	server *Server
	stream string
}

func (w streamWriter) Write(p []byte) (int, error) {
	w.server.broadcastOutput(w.stream, string(p))
	return len(p), nil
}

// Handler returns an http.Handler with all routes configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint.
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API endpoints.
	mux.HandleFunc("GET /session", s.handleGetSession)
	mux.HandleFunc("GET /history", s.handleGetHistory)
	mux.HandleFunc("POST /input", s.handlePostInput)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleWebSocket upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	// Send the current session state to the new client.
	s.sendState(c)

	go c.writePump()
	go c.readPump()
}

// sendState sends a session snapshot to one client.
func (s *Server) sendState(c *client) {
	info := s.sess.Snapshot()
	msg, err := protocol.NewMessage(protocol.TypeState, protocol.StatePayload{
		ID:               info.ID,
		State:            string(info.State),
		User:             info.User,
		WorkingDirectory: info.WorkingDirectory,
		CreatedAt:        info.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	s.sendMessage(c, msg)
}

// readPump reads messages from the WebSocket connection.
func (c *client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		c.server.handleMessage(c, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeClient cleans up a disconnected client.
func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	s.clientsMu.Unlock()
}

// handleMessage processes a validated client message.
func (s *Server) handleMessage(c *client, raw []byte) {
	msg, err := protocol.ValidateClientMessage(raw)
	if err != nil {
		s.sendError(c, protocol.ErrInvalidMessage, err.Error())
		return
	}

	if s.sess.State() == terminal.StateClosed && msg.Type != protocol.TypeExit {
		s.sendError(c, protocol.ErrSessionClosed, "session closed")
		return
	}

	switch msg.Type {
	case protocol.TypeInput:
		var p protocol.InputPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(c, protocol.ErrInvalidMessage, err.Error())
			return
		}
		s.sess.HandleLine(p.Line)

	case protocol.TypeInterrupt:
		s.sess.HandleInterrupt()

	case protocol.TypeClear:
		if err := s.sess.ClearTerminal(); err != nil {
			s.sendError(c, protocol.ErrSessionClosed, err.Error())
		}

	case protocol.TypeSetUser:
		var p protocol.SetUserPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(c, protocol.ErrInvalidMessage, err.Error())
			return
		}
		s.sess.SetUser(p.User)

	case protocol.TypeSetDir:
		var p protocol.SetDirPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(c, protocol.ErrInvalidMessage, err.Error())
			return
		}
		s.sess.SetCurrentDirectory(p.Path)

	case protocol.TypeExit:
		s.sess.Exit()
	}
}

// broadcastOutput sends one session write to all connected clients.
func (s *Server) broadcastOutput(stream, data string) {
	msg, err := protocol.NewMessage(protocol.TypeOutput, protocol.OutputPayload{
		Stream: stream,
		Data:   data,
	})
	if err != nil {
		return
	}
	s.broadcast(msg)
}

// broadcastClosed notifies all clients the session reached its terminal
// state.
func (s *Server) broadcastClosed() {
	msg, err := protocol.NewMessage(protocol.TypeClosed, struct{}{})
	if err != nil {
		return
	}
	s.broadcast(msg)
}

// broadcast sends a message to all connected clients.
func (s *Server) broadcast(msg *protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, skip.
		}
	}
}

func (s *Server) sendMessage(c *client, msg *protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (s *Server) sendError(c *client, code, message string) {
	msg, err := protocol.NewErrorMessage(code, message)
	if err != nil {
		return
	}
	s.sendMessage(c, msg)
}
