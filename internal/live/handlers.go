package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/room"
)

// routingTable maps inbound event types to their handlers.
func (g *Gateway) routingTable() map[string]EventHandler {
	return map[string]EventHandler{
		EventSetPlayerName:     g.handleSetPlayerName,
		EventGetPlayerName:     g.handleGetPlayerName,
		EventGetRoomList:       g.handleGetRoomList,
		EventCreateRoom:        g.handleCreateRoom,
		EventJoinRoom:          g.handleJoinRoom,
		EventLeaveRoom:         g.handleLeaveRoom,
		EventSwitchSides:       g.handleSwitchSides,
		EventStartGame:         g.handleStartGame,
		EventMove:              g.handleMove,
		EventOfferDraw:         g.handleOfferDraw,
		EventAcceptDraw:        g.handleAcceptDraw,
		EventDeclineDraw:       g.handleDeclineDraw,
		EventResign:            g.handleResign,
		EventGetGameState:      g.handleGetGameState,
		EventSendMessage:       g.handleSendMessage,
		EventInvitePlayer:      g.handleInvitePlayer,
		EventAcceptInvitation:  g.handleAcceptInvitation,
		EventDeclineInvitation: g.handleDeclineInvitation,
	}
}

func (g *Gateway) handleSetPlayerName(ctx context.Context, c *Client, payload []byte) error {
	var name string
	if err := json.Unmarshal(payload, &name); err != nil {
		return fmt.Errorf("decoding name: %w", err)
	}
	if err := g.sessions.SetName(ctx, c.playerID, name); err != nil {
		return err
	}
	c.send(mustEvent(EventPlayerNameSet, PlayerNameSetPayload{PlayerID: c.playerID, Name: name}))
	return nil
}

func (g *Gateway) handleGetPlayerName(ctx context.Context, c *Client, _ []byte) error {
	name, ok := g.sessions.Name(ctx, c.playerID)
	if !ok {
		return nil
	}
	c.send(mustEvent(EventPlayerNameSet, PlayerNameSetPayload{PlayerID: c.playerID, Name: name}))
	return nil
}

func (g *Gateway) handleGetRoomList(ctx context.Context, c *Client, _ []byte) error {
	rooms, err := g.directory.List(ctx)
	if err != nil {
		return err
	}
	evt, err := NewEvent(EventRoomListUpdate, rooms)
	if err != nil {
		return err
	}
	c.send(evt)
	return nil
}

func (g *Gateway) handleCreateRoom(ctx context.Context, c *Client, payload []byte) error {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding createRoom: %w", err)
	}
	name, _ := g.sessions.Name(ctx, c.playerID)
	r, err := g.directory.Create(ctx, p.RoomName, model.Player{ID: c.playerID, Name: name})
	if err != nil {
		return err
	}
	g.hubs.GetOrCreate(r.ID).Register(c)
	c.send(mustEvent(EventRoomCreated, RoomCreatedPayload{RoomID: r.ID, Player: r.Players[0]}))
	return nil
}

func (g *Gateway) handleJoinRoom(ctx context.Context, c *Client, payload []byte) error {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding joinRoom: %w", err)
	}
	if p.PlayerName != "" {
		if err := g.sessions.SetName(ctx, c.playerID, p.PlayerName); err != nil {
			return err
		}
	}

	result, err := g.rooms.Join(ctx, p.RoomID, c.playerID, p.PlayerName)
	if err != nil {
		return err
	}

	hub := g.hubs.GetOrCreate(p.RoomID)
	hub.Register(c)

	evtType := EventPlayerJoined
	if result.Outcome == room.OutcomeSpectator {
		evtType = EventJoinedAsSpectator
	}
	hub.Broadcast(mustEvent(evtType, snapshotPayload(result.Room)))
	return nil
}

func (g *Gateway) handleLeaveRoom(ctx context.Context, c *Client, payload []byte) error {
	roomID, err := roomIDFromPayload(payload)
	if err != nil {
		return err
	}

	result, err := g.rooms.Leave(ctx, roomID, c.playerID)
	if err != nil {
		return err
	}

	if result.Left {
		g.hubs.Broadcast(roomID, mustEvent(EventPlayerLeft, PlayerLeftPayload{
			Color: result.Color,
			Name:  result.Name,
		}))
	}
	if hub := g.hubs.Get(roomID); hub != nil {
		hub.Unregister(c)
	}
	if result.RoomClosed {
		g.hubs.Remove(roomID)
	}
	return nil
}

func (g *Gateway) handleSwitchSides(ctx context.Context, c *Client, payload []byte) error {
	roomID, err := roomIDFromPayload(payload)
	if err != nil {
		return err
	}
	players, switched, err := g.rooms.SwitchSides(ctx, roomID)
	if err != nil {
		return err
	}
	if !switched {
		return nil
	}
	evt, err := NewEvent(EventSidesSwitched, players)
	if err != nil {
		return err
	}
	g.hubs.Broadcast(roomID, evt)
	return nil
}

func (g *Gateway) handleStartGame(ctx context.Context, c *Client, payload []byte) error {
	roomID, err := roomIDFromPayload(payload)
	if err != nil {
		return err
	}
	result, err := g.rooms.Start(ctx, roomID)
	if err != nil {
		return err
	}
	if !result.Started {
		return nil
	}
	g.hubs.Broadcast(roomID, mustEvent(EventGameStart, GameStartPayload{
		White: result.White.Name,
		Black: result.Black.Name,
	}))
	g.hubs.Broadcast(roomID, mustEvent(EventGameState, snapshotPayload(result.Room)))
	return nil
}

func (g *Gateway) handleMove(ctx context.Context, c *Client, payload []byte) error {
	var p MovePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding move: %w", err)
	}
	outcome, err := g.games.Move(ctx, p.RoomID, c.playerID, p.Move)
	if err != nil {
		return err
	}
	g.hubs.Broadcast(p.RoomID, mustEvent(EventGameState, snapshotPayload(outcome.Room)))
	if outcome.Result != nil {
		g.hubs.Broadcast(p.RoomID, mustEvent(EventGameOver, *outcome.Result))
	}
	return nil
}

func (g *Gateway) handleOfferDraw(ctx context.Context, c *Client, payload []byte) error {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding offerDraw: %w", err)
	}
	color, err := g.games.OfferDraw(ctx, p.RoomID, c.playerID)
	if err != nil {
		return err
	}
	evt, err := NewEvent(EventDrawOffered, color)
	if err != nil {
		return err
	}
	g.hubs.Broadcast(p.RoomID, evt)
	return nil
}

func (g *Gateway) handleAcceptDraw(ctx context.Context, c *Client, payload []byte) error {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding acceptDraw: %w", err)
	}
	out, err := g.games.AcceptDraw(ctx, p.RoomID, c.playerID)
	if err != nil {
		return err
	}
	g.hubs.Broadcast(p.RoomID, mustEvent(EventGameOver, out.Result))
	return nil
}

func (g *Gateway) handleDeclineDraw(ctx context.Context, c *Client, payload []byte) error {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding declineDraw: %w", err)
	}
	if _, err := g.games.DeclineDraw(ctx, p.RoomID, c.playerID); err != nil {
		return err
	}
	g.hubs.Broadcast(p.RoomID, Event{Type: EventDrawDeclined})
	return nil
}

func (g *Gateway) handleResign(ctx context.Context, c *Client, payload []byte) error {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding resign: %w", err)
	}
	out, err := g.games.Resign(ctx, p.RoomID, c.playerID)
	if err != nil {
		return err
	}
	g.hubs.Broadcast(p.RoomID, mustEvent(EventGameOver, out.Result))
	return nil
}

func (g *Gateway) handleGetGameState(ctx context.Context, c *Client, payload []byte) error {
	roomID, err := roomIDFromPayload(payload)
	if err != nil {
		return err
	}
	r, err := g.games.Snapshot(ctx, roomID)
	if err != nil {
		return err
	}
	c.send(mustEvent(EventGameState, snapshotPayload(r)))
	return nil
}

func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, payload []byte) error {
	var p SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding sendMessage: %w", err)
	}
	g.hubs.Broadcast(p.RoomID, mustEvent(EventNewMessage, NewMessagePayload{
		UserID:  c.playerID,
		Message: p.Message,
	}))
	return nil
}

func (g *Gateway) handleInvitePlayer(ctx context.Context, c *Client, payload []byte) error {
	var p InvitePlayerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding invitePlayer: %w", err)
	}
	result, err := g.invites.Invite(ctx, c.playerID, p.Invitee)
	if err != nil {
		return err
	}

	// The inviter waits in the provisioned room for the answer.
	g.hubs.GetOrCreate(result.Room.ID).Register(c)
	c.send(mustEvent(EventInvitationSent, InvitationSentPayload{RoomID: result.Room.ID}))
	g.sendToIdentity(result.Invitee, mustEvent(EventInvitation, InvitationPayload{
		From:   result.Invitation.FromName,
		RoomID: result.Room.ID,
	}))
	return nil
}

func (g *Gateway) handleAcceptInvitation(ctx context.Context, c *Client, payload []byte) error {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding acceptInvitation: %w", err)
	}
	result, err := g.invites.Accept(ctx, c.playerID, p.RoomID)
	if err != nil {
		return err
	}

	hub := g.hubs.GetOrCreate(result.Invitation.RoomID)
	hub.Register(c)
	hub.Broadcast(mustEvent(EventPlayerJoined, snapshotPayload(result.Join.Room)))
	g.sendToIdentity(result.Invitation.From, mustEvent(EventInviteAccepted, InviteAcceptedPayload{
		RoomID: result.Invitation.RoomID,
		Name:   result.Join.Player.Name,
	}))
	return nil
}

func (g *Gateway) handleDeclineInvitation(ctx context.Context, c *Client, payload []byte) error {
	var p DeclineInvitationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding declineInvitation: %w", err)
	}
	result, err := g.invites.Decline(ctx, c.playerID, p.RoomID)
	if err != nil {
		return err
	}

	name, _ := g.sessions.Name(ctx, c.playerID)
	g.sendToIdentity(result.Invitation.From, mustEvent(EventInvitationDeclined, InvitationDeclinedPayload{Name: name}))
	if result.RoomDeleted {
		g.hubs.Remove(result.Invitation.RoomID)
	}
	return nil
}

// roomIDFromPayload accepts both a bare JSON string and a {roomId} object;
// clients historically send the bare form for room-scoped queries.
func roomIDFromPayload(payload []byte) (model.RoomID, error) {
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return model.RoomID(s), nil
	}
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("decoding room id: %w", err)
	}
	return p.RoomID, nil
}
