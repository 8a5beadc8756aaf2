package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
	"github.com/chessrooms/chessrooms-go/internal/services/game"
	"github.com/chessrooms/chessrooms-go/internal/services/invite"
	"github.com/chessrooms/chessrooms-go/internal/services/room"
	"github.com/chessrooms/chessrooms-go/internal/services/session"
)

// EventHandler processes one inbound event for one client.
type EventHandler func(ctx context.Context, c *Client, payload []byte) error

// Gateway binds WebSocket connections to session identities and routes their
// events to the services. It also tracks which identities are online, which
// the invitation broker relies on.
type Gateway struct {
	sessions  *session.Registry
	directory *directory.Directory
	rooms     *room.Controller
	games     *game.Relay
	invites   *invite.Broker
	hubs      *HubManager
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	handlers map[string]EventHandler

	mu         sync.RWMutex
	clients    map[*Client]bool
	byIdentity map[model.PlayerID]map[*Client]bool
}

// NewGateway wires the gateway to the services. The invitation broker is
// attached afterwards via SetInviteBroker because the broker itself needs the
// gateway for presence.
func NewGateway(
	sessions *session.Registry,
	dir *directory.Directory,
	rooms *room.Controller,
	games *game.Relay,
	hubs *HubManager,
	allowedOrigin string,
	logger *slog.Logger,
) *Gateway {
	g := &Gateway{
		sessions:  sessions,
		directory: dir,
		rooms:     rooms,
		games:     games,
		hubs:      hubs,
		logger:    logger.With(slog.String("component", "gateway")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
		clients:    make(map[*Client]bool),
		byIdentity: make(map[model.PlayerID]map[*Client]bool),
	}
	g.handlers = g.routingTable()

	// Any change to the room set refreshes every connection's lobby view.
	dir.SetNotifier(g.broadcastRoomList)

	return g
}

// SetInviteBroker attaches the invitation broker once it has been built on
// top of this gateway's presence tracking.
func (g *Gateway) SetInviteBroker(b *invite.Broker) {
	g.invites = b
}

// Online reports whether the identity has at least one live connection.
func (g *Gateway) Online(id model.PlayerID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byIdentity[id]) > 0
}

// ServeWS upgrades the request, resolves or mints the session named by the
// `session` query parameter, and runs the connection's pumps until it drops.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	sess := g.sessions.ResolveOrMint(model.SessionToken(r.URL.Query().Get("session")))

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(conn, g, sess.PlayerID, sess.Token, g.logger)
	g.addClient(client)
	defer g.removeClient(client)

	name, _ := g.sessions.Name(r.Context(), sess.PlayerID)
	client.send(mustEvent(EventSession, SessionPayload{
		SessionID: sess.Token,
		PlayerID:  sess.PlayerID,
		Name:      name,
	}))

	go client.writePump()
	client.readPump(r.Context())
}

// route dispatches one inbound event. Handler errors are translated into the
// error events the contract names; anything else is logged and dropped, never
// fatal to the process.
func (g *Gateway) route(ctx context.Context, c *Client, evt Event) {
	handler, ok := g.handlers[evt.Type]
	if !ok {
		c.logger.Warn("unknown event type", slog.String("event", evt.Type))
		return
	}
	if err := handler(ctx, c, evt.Payload); err != nil {
		g.surfaceError(c, evt.Type, err)
	}
}

func (g *Gateway) surfaceError(c *Client, evtType string, err error) {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		c.send(Event{Type: EventRoomNotFound})
	case errors.Is(err, model.ErrIllegalMove):
		c.send(mustEvent(EventInvalidMove, ErrorPayload{Message: "illegal move"}))
	case errors.Is(err, model.ErrNotPlayersTurn):
		c.send(mustEvent(EventInvalidMove, ErrorPayload{Message: "not your turn"}))
	case errors.Is(err, model.ErrInviteeOffline):
		c.send(mustEvent(EventInvitationError, ErrorPayload{Message: "Player not found"}))
	case errors.Is(err, model.ErrInvitationNotFound):
		c.send(mustEvent(EventInvitationError, ErrorPayload{Message: "Invitation not found"}))
	default:
		// Precondition no-ops and malformed payloads: logged, not surfaced.
		c.logger.Warn("event dropped",
			slog.String("event", evtType),
			slog.Any("error", err))
	}
}

func (g *Gateway) addClient(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c] = true
	if g.byIdentity[c.playerID] == nil {
		g.byIdentity[c.playerID] = make(map[*Client]bool)
	}
	g.byIdentity[c.playerID][c] = true
}

func (g *Gateway) removeClient(c *Client) {
	c.close()
	g.mu.Lock()
	delete(g.clients, c)
	if set := g.byIdentity[c.playerID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(g.byIdentity, c.playerID)
		}
	}
	g.mu.Unlock()

	g.hubs.mu.RLock()
	hubs := make([]*Hub, 0, len(g.hubs.hubs))
	for _, h := range g.hubs.hubs {
		hubs = append(hubs, h)
	}
	g.hubs.mu.RUnlock()
	for _, h := range hubs {
		h.Unregister(c)
	}
}

// sendToIdentity delivers an event to every live connection of one identity.
func (g *Gateway) sendToIdentity(id model.PlayerID, evt Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.byIdentity[id] {
		c.send(evt)
	}
}

// broadcastAll delivers an event to every live connection.
func (g *Gateway) broadcastAll(evt Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.clients {
		c.send(evt)
	}
}

// broadcastRoomList pushes a fresh directory snapshot to everyone.
func (g *Gateway) broadcastRoomList() {
	rooms, err := g.directory.List(context.Background())
	if err != nil {
		g.logger.Error("listing rooms for broadcast", slog.Any("error", err))
		return
	}
	evt, err := NewEvent(EventRoomListUpdate, rooms)
	if err != nil {
		g.logger.Error("marshalling room list", slog.Any("error", err))
		return
	}
	g.broadcastAll(evt)
}

func originChecker(allowed string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "" || allowed == "*" {
			return true
		}
		return r.Header.Get("Origin") == allowed
	}
}
