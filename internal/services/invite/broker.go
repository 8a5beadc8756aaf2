// Package invite brokers direct game invitations between named, connected
// players. An invitation provisions a room up front so the inviter has
// somewhere to wait; the room is reclaimed if the invitee declines before
// anyone else shows up.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chessrooms/chessrooms-go/internal/dependencies/clock"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
	"github.com/chessrooms/chessrooms-go/internal/services/room"
)

// NameResolver finds a player identity by display name.
type NameResolver interface {
	IdentityByName(ctx context.Context, name string) (model.PlayerID, bool)
	Name(ctx context.Context, id model.PlayerID) (string, bool)
}

// Presence reports whether an identity currently has a live connection.
// Invitations are delivered in-band, so an offline invitee cannot be invited.
type Presence interface {
	Online(id model.PlayerID) bool
}

// InviteResult carries what the gateway needs to notify both parties: the
// invitation record, the resolved invitee identity, and the provisioned room.
type InviteResult struct {
	Invitation model.Invitation
	Invitee    model.PlayerID
	Room       model.Room
}

// AcceptResult is an accepted invitation plus the seat the acceptor took.
type AcceptResult struct {
	Invitation model.Invitation
	Join       room.JoinResult
}

// DeclineResult reports a declined invitation and whether the provisional
// room was reclaimed with it.
type DeclineResult struct {
	Invitation  model.Invitation
	RoomDeleted bool
}

// Broker tracks pending invitations, keyed by invitee identity. Pending
// invitations never expire; they are cleared only by accept or decline.
type Broker struct {
	names     NameResolver
	presence  Presence
	directory *directory.Directory
	rooms     *room.Controller
	clock     clock.Clock
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[model.PlayerID]model.Invitation
}

func NewBroker(names NameResolver, presence Presence, directory *directory.Directory, rooms *room.Controller, clock clock.Clock, logger *slog.Logger) *Broker {
	return &Broker{
		names:     names,
		presence:  presence,
		directory: directory,
		rooms:     rooms,
		clock:     clock,
		logger:    logger.With(slog.String("component", "invite_broker")),
		pending:   make(map[model.PlayerID]model.Invitation),
	}
}

// Invite resolves the invitee by display name, provisions a room with the
// inviter seated as white, and records the pending invitation. An unknown or
// offline invitee yields ErrInviteeOffline before any room is created.
//
// A later invitation to the same invitee replaces the earlier pending one.
func (b *Broker) Invite(ctx context.Context, inviter model.PlayerID, inviteeName string) (InviteResult, error) {
	inviteeID, ok := b.names.IdentityByName(ctx, inviteeName)
	if !ok {
		return InviteResult{}, model.ErrInviteeOffline
	}
	if !b.presence.Online(inviteeID) {
		return InviteResult{}, model.ErrInviteeOffline
	}

	inviterName, _ := b.names.Name(ctx, inviter)
	r, err := b.directory.Create(ctx, fmt.Sprintf("%s vs %s", inviterName, inviteeName), model.Player{
		ID:   inviter,
		Name: inviterName,
	})
	if err != nil {
		return InviteResult{}, fmt.Errorf("provisioning invitation room: %w", err)
	}

	inv := model.Invitation{
		From:      inviter,
		FromName:  inviterName,
		Invitee:   inviteeName,
		RoomID:    r.ID,
		CreatedAt: b.clock.Now(),
	}
	b.mu.Lock()
	b.pending[inviteeID] = inv
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "invitation sent",
		slog.String("from", string(inviter)),
		slog.String("invitee", inviteeName),
		slog.String("room_id", string(r.ID)))
	return InviteResult{Invitation: inv, Invitee: inviteeID, Room: r}, nil
}

// Accept seats the invitee in the provisioned room and clears the pending
// record. The room must match the invitee's pending invitation.
func (b *Broker) Accept(ctx context.Context, invitee model.PlayerID, roomID model.RoomID) (AcceptResult, error) {
	inv, err := b.take(invitee, roomID)
	if err != nil {
		return AcceptResult{}, err
	}

	name, _ := b.names.Name(ctx, invitee)
	join, err := b.rooms.Join(ctx, inv.RoomID, invitee, name)
	if err != nil {
		return AcceptResult{}, err
	}
	return AcceptResult{Invitation: inv, Join: join}, nil
}

// errRoomInUse aborts the reclaim update without persisting anything.
var errRoomInUse = errors.New("room in use")

// Decline clears the pending record and reclaims the provisional room when
// the inviter is still waiting in it alone. An empty roomID declines
// whatever invitation is pending for the invitee.
func (b *Broker) Decline(ctx context.Context, invitee model.PlayerID, roomID model.RoomID) (DeclineResult, error) {
	inv, err := b.take(invitee, roomID)
	if err != nil {
		return DeclineResult{}, err
	}

	result := DeclineResult{Invitation: inv}
	// The occupancy check runs on the room's owner goroutine, so a join
	// landing just before the decline wins the race and keeps the room.
	err = b.directory.Update(ctx, inv.RoomID, func(r *model.Room) error {
		if r.GameStarted || len(r.Players) != 1 || r.Players[0].ID != inv.From {
			return errRoomInUse
		}
		r.Players = nil
		return nil
	})
	switch {
	case err == nil:
		result.RoomDeleted = true
	case errors.Is(err, errRoomInUse), errors.Is(err, model.ErrRoomNotFound):
		// Kept, or already torn down; the decline stands either way.
	default:
		return DeclineResult{}, err
	}
	return result, nil
}

// take removes and returns the invitee's pending invitation. A non-empty
// roomID must match the pending record.
func (b *Broker) take(invitee model.PlayerID, roomID model.RoomID) (model.Invitation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	inv, ok := b.pending[invitee]
	if !ok || (roomID != "" && inv.RoomID != roomID) {
		return model.Invitation{}, model.ErrInvitationNotFound
	}
	delete(b.pending, invitee)
	return inv, nil
}
