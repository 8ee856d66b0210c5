package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
)

// NewServer builds the diagnostics HTTP server: health, a read-only view of
// the registry, and a WebSocket bridge speaking the chat line protocol.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)
	router.GET("/api/users", usersHandler(hub))
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// UsersResponse lists the currently joined usernames.
type UsersResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// usersHandler serves the registry snapshot. It never touches hub state
// directly; Snapshot is the registry's one concurrency-safe accessor.
func usersHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := hub.Registry().Snapshot()
		c.JSON(stdhttp.StatusOK, UsersResponse{Users: users, Count: len(users)})
	}
}
