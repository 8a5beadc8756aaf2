package live

import (
	"encoding/json"
	"fmt"

	"github.com/chessrooms/chessrooms-go/internal/model"
)

// Event is the wire envelope for everything crossing a connection, in either
// direction. Payload stays raw until the handler for the type decodes it.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client-to-server event types.
const (
	EventSetPlayerName     = "setPlayerName"
	EventGetPlayerName     = "getPlayerName"
	EventGetRoomList       = "getRoomList"
	EventCreateRoom        = "createRoom"
	EventJoinRoom          = "joinRoom"
	EventLeaveRoom         = "leaveRoom"
	EventSwitchSides       = "switchSides"
	EventStartGame         = "startGame"
	EventMove              = "move"
	EventOfferDraw         = "offerDraw"
	EventAcceptDraw        = "acceptDraw"
	EventDeclineDraw       = "declineDraw"
	EventResign            = "resign"
	EventGetGameState      = "getGameState"
	EventSendMessage       = "sendMessage"
	EventInvitePlayer      = "invitePlayer"
	EventAcceptInvitation  = "acceptInvitation"
	EventDeclineInvitation = "declineInvitation"
)

// Server-to-client event types.
const (
	EventSession            = "session"
	EventPlayerNameSet      = "playerNameSet"
	EventRoomListUpdate     = "roomListUpdate"
	EventRoomCreated        = "roomCreated"
	EventPlayerJoined       = "playerJoined"
	EventJoinedAsSpectator  = "joinedAsSpectator"
	EventRoomNotFound       = "roomNotFound"
	EventPlayerLeft         = "playerLeft"
	EventSidesSwitched      = "sidesSwitched"
	EventGameStart          = "gameStart"
	EventGameState          = "gameState"
	EventInvalidMove        = "invalidMove"
	EventDrawOffered        = "drawOffered"
	EventDrawDeclined       = "drawDeclined"
	EventGameOver           = "gameOver"
	EventNewMessage         = "newMessage"
	EventInvitation         = "invitation"
	EventInvitationSent     = "invitationSent"
	EventInvitationError    = "invitationError"
	EventInviteAccepted     = "inviteAccepted"
	EventInvitationDeclined = "invitationDeclined"
)

// Inbound payloads.

type CreateRoomPayload struct {
	RoomName string `json:"roomName"`
}

type JoinRoomPayload struct {
	RoomID     model.RoomID `json:"roomId"`
	PlayerName string       `json:"playerName"`
}

type MovePayload struct {
	RoomID model.RoomID `json:"roomId"`
	Move   string       `json:"move"`
}

type RoomPayload struct {
	RoomID model.RoomID `json:"roomId"`
}

type SendMessagePayload struct {
	RoomID  model.RoomID `json:"roomId"`
	Message string       `json:"message"`
}

type InvitePlayerPayload struct {
	Invitee string `json:"invitee"`
}

// DeclineInvitationPayload tolerates both client shapes: the room id of the
// declined invitation, or just the inviter's name with the room implicit in
// the invitee's pending record.
type DeclineInvitationPayload struct {
	RoomID model.RoomID `json:"roomId,omitempty"`
	From   string       `json:"from,omitempty"`
}

// Outbound payloads.

type SessionPayload struct {
	SessionID model.SessionToken `json:"sessionId"`
	PlayerID  model.PlayerID     `json:"playerId"`
	Name      string             `json:"name,omitempty"`
}

type PlayerNameSetPayload struct {
	PlayerID model.PlayerID `json:"playerId"`
	Name     string         `json:"name"`
}

type RoomCreatedPayload struct {
	RoomID model.RoomID `json:"roomId"`
	Player model.Player `json:"player"`
}

// RoomSnapshotPayload is the full room+game snapshot sent for playerJoined,
// joinedAsSpectator and gameState.
type RoomSnapshotPayload struct {
	RoomID  model.RoomID     `json:"roomId"`
	Players []model.Player   `json:"players"`
	FEN     string           `json:"fen"`
	History []string         `json:"history"`
	Status  model.GameStatus `json:"status"`
}

func snapshotPayload(r model.Room) RoomSnapshotPayload {
	return RoomSnapshotPayload{
		RoomID:  r.ID,
		Players: r.Players,
		FEN:     r.GameFEN,
		History: r.MoveHistory,
		Status:  r.GameStatus,
	}
}

type PlayerLeftPayload struct {
	Color model.Color `json:"color"`
	Name  string      `json:"name"`
}

type GameStartPayload struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type NewMessagePayload struct {
	UserID  model.PlayerID `json:"userId"`
	Message string         `json:"message"`
}

type InvitationPayload struct {
	From   string       `json:"from"`
	RoomID model.RoomID `json:"roomId"`
}

type InvitationSentPayload struct {
	RoomID model.RoomID `json:"roomId"`
}

type InviteAcceptedPayload struct {
	RoomID model.RoomID `json:"roomId"`
	Name   string       `json:"name"`
}

type InvitationDeclinedPayload struct {
	Name string `json:"name"`
}

// NewEvent marshals payload into an envelope of the given type.
func NewEvent(evtType string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: evtType}, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshalling %s payload: %w", evtType, err)
	}
	return Event{Type: evtType, Payload: b}, nil
}

// mustEvent is for payload types the package itself defines, which cannot
// fail to marshal.
func mustEvent(evtType string, payload any) Event {
	evt, err := NewEvent(evtType, payload)
	if err != nil {
		panic(err)
	}
	return evt
}
