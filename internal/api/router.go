package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chessrooms/chessrooms-go/internal/live"
	"github.com/chessrooms/chessrooms-go/internal/middleware"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger  *slog.Logger
	Gateway *live.Gateway
}

// NewRouter creates the HTTP surface: the WebSocket endpoint carrying the
// whole event contract, plus a liveness check.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/ws", cfg.Gateway.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
