package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chessrooms/chessrooms-go/internal/model"
)

const (
	// Maximum inbound frame size. Events are small JSON objects.
	maxMessageSize = 4096

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Ping period, kept under pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Outbound buffer per client. Sends drop when the buffer is full; a
	// client that slow to drain resyncs via getGameState.
	egressBufferSize = 64
)

// Client is one live connection bound to a session identity. Everything a
// handler sends to it goes through the buffered egress channel; only the
// write pump touches the connection.
type Client struct {
	id       string
	conn     *websocket.Conn
	gateway  *Gateway
	playerID model.PlayerID
	token    model.SessionToken
	egress   chan Event
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn, gateway *Gateway, playerID model.PlayerID, token model.SessionToken, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		conn:     conn,
		gateway:  gateway,
		playerID: playerID,
		token:    token,
		egress:   make(chan Event, egressBufferSize),
		logger: logger.With(
			slog.String("client_id", id),
			slog.String("player_id", string(playerID))),
		done: make(chan struct{}),
	}
}

// send queues an event for delivery, dropping it when the client's buffer is
// full. Broadcasts are fire-and-forget; nothing awaits delivery.
func (c *Client) send(evt Event) {
	select {
	case c.egress <- evt:
	case <-c.done:
	default:
		c.logger.Warn("egress full, event dropped", slog.String("event", evt.Type))
	}
}

// close releases the connection and wakes both pumps. Safe to call more than
// once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// readPump reads events off the connection and routes them until the peer
// goes away.
func (c *Client) readPump(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read failed", slog.Any("error", err))
			}
			return
		}

		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			c.logger.Warn("malformed event", slog.Any("error", err))
			continue
		}

		c.gateway.route(ctx, c, evt)
	}
}

// writePump drains the egress channel onto the connection and keeps the peer
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
			return
		case evt := <-c.egress:
			data, err := json.Marshal(evt)
			if err != nil {
				c.logger.Error("marshalling outbound event", slog.Any("error", err))
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
