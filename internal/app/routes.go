package app

import (
	"time"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/modules/admin"
	"github.com/echoverse/core/internal/modules/auth"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/modules/message"
	"github.com/echoverse/core/internal/modules/music"
	"github.com/echoverse/core/internal/modules/post"
	"github.com/echoverse/core/internal/modules/user"
	"github.com/echoverse/core/internal/modules/wallet"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type routerDeps struct {
	gate    *middleware.AuthGate
	banlist *middleware.IPBanList

	auth    *auth.Handler
	user    *user.Handler
	message *message.Handler
	post    *post.Handler
	wallet  *wallet.Handler
	music   *music.Handler
	admin   *admin.Handler
	gateway *gateway.Handler
}

func (a *App) buildRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(a.logger))
	r.Use(a.corsMiddleware())
	r.Use(middleware.IPBanGuard(deps.banlist))
	r.Use(middleware.RateLimit(a.limiter))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "status": "ok"})
	})

	api := r.Group("/api")
	authMW := deps.gate.Required()

	deps.auth.RegisterRoutes(api, authMW)
	deps.user.RegisterRoutes(api, authMW)
	deps.message.RegisterRoutes(api, authMW)
	deps.post.RegisterRoutes(api, authMW)
	deps.wallet.RegisterRoutes(api, authMW)
	deps.music.RegisterRoutes(api, authMW)
	deps.admin.RegisterRoutes(api, authMW, deps.gate.AdminOnly())
	deps.gateway.RegisterRoutes(api, deps.gate.Optional())

	return r
}

func (a *App) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(a.cfg.AllowedOrigins) > 0 {
		cfg.AllowOrigins = a.cfg.AllowedOrigins
	} else {
		// Nothing configured: open up for local development.
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
