// Package factory wires the application's components together for production
// and tests.
package factory

import (
	"io"
	"log/slog"

	"github.com/chessrooms/chessrooms-go/internal/chess"
	"github.com/chessrooms/chessrooms-go/internal/dependencies/clock"
	"github.com/chessrooms/chessrooms-go/internal/live"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
	"github.com/chessrooms/chessrooms-go/internal/services/game"
	"github.com/chessrooms/chessrooms-go/internal/services/invite"
	"github.com/chessrooms/chessrooms-go/internal/services/room"
	"github.com/chessrooms/chessrooms-go/internal/services/session"
	"github.com/chessrooms/chessrooms-go/internal/storage"
	"github.com/chessrooms/chessrooms-go/internal/storage/memory"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Oracle chess.Oracle

	// Services
	Sessions       *session.Registry
	Directory      *directory.Directory
	RoomController *room.Controller
	GameRelay      *game.Relay
	InviteBroker   *invite.Broker
	HubManager     *live.HubManager
	Gateway        *live.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// AllowedOrigin restricts WebSocket upgrades to one Origin header value.
	// Empty or "*" accepts any origin.
	AllowedOrigin string
}

// New creates a new application with all dependencies wired
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return newWithDependencies(memory.New(), clock.New(), cfg.AllowedOrigin, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, allowedOrigin string, logger *slog.Logger) *App {
	oracle := chess.NewRules()

	sessions := session.New(store, clk, logger)
	dir := directory.New(store, clk, logger)
	roomController := room.NewController(dir, logger)
	gameRelay := game.NewRelay(dir, oracle, logger)
	hubManager := live.NewHubManager(logger)

	gateway := live.NewGateway(sessions, dir, roomController, gameRelay, hubManager, allowedOrigin, logger)
	inviteBroker := invite.NewBroker(sessions, gateway, dir, roomController, clk, logger)
	gateway.SetInviteBroker(inviteBroker)

	return &App{
		Storage:        store,
		Clock:          clk,
		Oracle:         oracle,
		Sessions:       sessions,
		Directory:      dir,
		RoomController: roomController,
		GameRelay:      gameRelay,
		InviteBroker:   inviteBroker,
		HubManager:     hubManager,
		Gateway:        gateway,
	}
}
