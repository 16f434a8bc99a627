package http

import (
	"context"
	"errors"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsignal/internal/config"
	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/store"
)

// Server is the HTTP server plus the WebSocket sessions it has hijacked.
type Server struct {
	*stdhttp.Server
	ws *WSHandler
}

// NewServer builds an HTTP server with signaling, presence and ops routes.
// presence may be nil when the audit log is disabled.
//
// /ws is served by the mux directly: the upgrade hijacks the connection,
// which gin's response writer does not allow once it has handled the request.
func NewServer(hub *core.Hub, presence store.PresenceLog, cfg *config.Config, logger *zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(MetricsMiddleware())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	roomHandlers := NewRoomHandlers(hub, presence, logger)
	api := router.Group("/api")
	{
		api.GET("/rooms", roomHandlers.ListRooms)
		api.GET("/rooms/:id/members", roomHandlers.RoomMembers)
		api.GET("/rooms/:id/presence", roomHandlers.RoomPresence)
	}

	ws := NewWSHandler(hub, cfg, logger)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &Server{
		Server: &stdhttp.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		ws: ws,
	}
}

// Shutdown stops accepting requests, then closes live WebSocket sessions and
// waits until each has run its disconnect.
func (s *Server) Shutdown(ctx context.Context) error {
	httpErr := s.Server.Shutdown(ctx)
	wsErr := s.ws.CloseSessions(ctx)
	return errors.Join(httpErr, wsErr)
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
