package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	readLimit    = 4096
	pongWait     = 60 * time.Second
	pingInterval = 50 * time.Second
	writeWait    = 10 * time.Second
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ValidSessionID reports whether id can name a chat session.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// SessionHandler supplies the chat behaviour behind a socket.
type SessionHandler interface {
	// Joined returns the frame sent to a socket when it connects, or nil.
	Joined(ctx context.Context, sessionID string) ([]byte, error)
	// Received handles one visitor frame and returns the frame to broadcast to the session.
	Received(ctx context.Context, sessionID string, raw []byte) ([]byte, error)
	// ErrorFrame renders err for the socket that caused it.
	ErrorFrame(sessionID string, err error) []byte
}

// Client is one websocket connection bound to a chat session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type sessionMessage struct {
	sessionID string
	payload   []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub tracks the sockets of every chat session. All map access happens on the run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan sessionMessage
	direct     chan directMessage
	sessions   map[string]map[*Client]bool
}

// NewHub creates and starts a new Hub loop.
func NewHub() *Hub {
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan sessionMessage, 64),
		direct:     make(chan directMessage, 16),
		sessions:   make(map[string]map[*Client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			set, ok := h.sessions[c.sessionID]
			if !ok {
				set = make(map[*Client]bool)
				h.sessions[c.sessionID] = set
			}
			set[c] = true
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.broadcast:
			for c := range h.sessions[m.sessionID] {
				h.deliver(c, m.payload)
			}
		case m := <-h.direct:
			if h.sessions[m.client.sessionID][m.client] {
				h.deliver(m.client, m.payload)
			}
		}
	}
}

// deliver queues payload for c, dropping the client when its buffer is full.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		slog.Warn("dropping slow chat client", "session", c.sessionID)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.sessions[c.sessionID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.sessions, c.sessionID)
	}
}

// Broadcast pushes payload to every socket of a session.
func (h *Hub) Broadcast(sessionID string, payload []byte) {
	if h == nil {
		return
	}
	h.broadcast <- sessionMessage{sessionID: sessionID, payload: payload}
}

func (h *Hub) sendTo(c *Client, payload []byte) {
	h.direct <- directMessage{client: c, payload: payload}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeChat upgrades a visitor connection for the session named in ?session=.
func ServeChat(h *Hub, handler SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session")
		if !ValidSessionID(sessionID) {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "err", err)
			return
		}
		client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), sessionID: sessionID}
		h.register <- client

		ctx := context.WithoutCancel(c.Request.Context())
		if frame, err := handler.Joined(ctx, sessionID); err != nil {
			slog.Error("chat history failed", "session", sessionID, "err", err)
		} else if frame != nil {
			h.sendTo(client, frame)
		}

		go client.readLoop(ctx, handler)
		client.writeLoop()
	}
}

func (c *Client) readLoop(ctx context.Context, handler SessionHandler) {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := handler.Received(ctx, c.sessionID, raw)
		if err != nil {
			c.hub.sendTo(c, handler.ErrorFrame(c.sessionID, err))
			continue
		}
		c.hub.Broadcast(c.sessionID, frame)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
