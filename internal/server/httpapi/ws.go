package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/prattle-chat/prattle/internal/logging"
	"github.com/prattle-chat/prattle/internal/server/chat"
	"github.com/prattle-chat/prattle/internal/server/messages"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// conversation is the part of a chat endpoint the websocket transport
// drives.
type conversation interface {
	HandleMessage(ctx context.Context, msg *messages.Message)
	Close()
}

// wsClient owns one websocket connection. It implements chat.Sender by
// queueing encoded messages on a buffered channel drained by the write
// pump; a full buffer drops the connection-bound message rather than
// blocking the broadcaster.
//
// The send channel is never closed: a broadcaster may race teardown while
// it holds a snapshot of the observer list, so Send after teardown must
// fail as an ordinary error instead of a send on a closed channel. The
// write pump is stopped through done instead.
type wsClient struct {
	conn   *websocket.Conn
	logger logging.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte
	done   chan struct{}
}

func newWSClient(conn *websocket.Conn, logger logging.Logger) *wsClient {
	return &wsClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *wsClient) Send(msg *messages.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// shutdown marks the client closed and releases the write pump. Idempotent.
func (c *wsClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// readPump reads inbound frames, decodes them and feeds them to the
// conversation endpoint. It owns connection teardown: when the read loop
// exits the endpoint is detached and the write pump stopped.
func (c *wsClient) readPump(ctx context.Context, conv conversation) {
	defer func() {
		conv.Close()
		c.shutdown()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn(ctx, "websocket read failed", "error", err)
			}
			return
		}

		var msg messages.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn(ctx, "dropping malformed frame", "error", err)
			continue
		}
		if msg.Content == "" {
			continue
		}

		conv.HandleMessage(ctx, &msg)
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *wsClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn(ctx, "websocket write failed", "error", err)
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) serveDM(c *gin.Context) {
	username := c.Param("username")
	peer := c.Param("to_username")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(conn, s.logger.With("transport", "ws", "kind", "dm"))
	endpoint := chat.NewDMEndpoint(s.chatDeps, client, username, peer)

	ctx := context.Background()
	endpoint.Open(ctx)

	go client.writePump(ctx)
	client.readPump(ctx, endpoint)
}

func (s *Server) serveCM(c *gin.Context) {
	username := c.Param("username")
	id, ok := channelID(c)
	if !ok {
		return
	}

	conn, upgradeErr := upgrader.Upgrade(c.Writer, c.Request, nil)
	if upgradeErr != nil {
		s.logger.Error(c.Request.Context(), "websocket upgrade failed", "error", upgradeErr)
		return
	}

	client := newWSClient(conn, s.logger.With("transport", "ws", "kind", "cm"))
	endpoint := chat.NewCMEndpoint(s.chatDeps, client, username, id)

	ctx := context.Background()
	endpoint.Open(ctx)

	go client.writePump(ctx)
	client.readPump(ctx, endpoint)
}
