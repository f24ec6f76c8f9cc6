// Package api exposes the mini-app backend over HTTP. The client talks to it
// with its signed init data in every request body; nothing here trusts any
// other field before that signature has been checked.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/config"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/game"
)

type Server struct {
	log    *slog.Logger
	svc    *game.Service
	redis  *redis.Client
	cfg    *config.Config
	router *gin.Engine
}

// NewServer builds the router. redisClient may be nil, which disables rate
// limiting (tests, single-user dev setups).
func NewServer(log *slog.Logger, svc *game.Service, redisClient *redis.Client, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		log:    log,
		svc:    svc,
		redis:  redisClient,
		cfg:    cfg,
		router: gin.New(),
	}

	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(s.loggingMiddleware())
	r.Use(s.rateLimitMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", s.register)
		api.POST("/sync", s.syncState)
		api.POST("/claim-rewards", s.claimRewards)
		api.POST("/create-invoice", s.createInvoice)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
