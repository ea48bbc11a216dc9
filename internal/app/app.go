package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/echoverse/core/internal/config"
	"github.com/echoverse/core/internal/database"
	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/modules/admin"
	"github.com/echoverse/core/internal/modules/auth"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/modules/message"
	"github.com/echoverse/core/internal/modules/music"
	"github.com/echoverse/core/internal/modules/post"
	"github.com/echoverse/core/internal/modules/user"
	"github.com/echoverse/core/internal/modules/wallet"
	"github.com/echoverse/core/internal/pkg/cron"
	"github.com/echoverse/core/internal/pkg/ratelimit"
	pkgredis "github.com/echoverse/core/internal/pkg/redis"
	"github.com/echoverse/core/internal/pkg/sanitize"
	"github.com/echoverse/core/internal/pkg/securitylog"
	sessionpkg "github.com/echoverse/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App owns every process-lifetime component. Nothing here is a package
// singleton; everything is built once and injected.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	db  *gorm.DB
	rc  *pkgredis.Client
	hub *gateway.Hub

	sessions *sessionpkg.Store
	limiter  *ratelimit.Limiter
	audit    *securitylog.Logger
	sched    *cron.Scheduler

	router *gin.Engine
	cancel context.CancelFunc
}

func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN, cfg.IsDev())
	if err != nil {
		return nil, err
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	audit, err := securitylog.New(cfg.SecurityLogPath, logger)
	if err != nil {
		return nil, err
	}

	sessions := sessionpkg.NewStore(cfg.SessionTTL())
	limiter := ratelimit.New(cfg.RateLimits)
	sanitizer := sanitize.New(cfg.SanitizeMaxLen)
	hub := gateway.NewHub(rc, limiter, logger)

	banlist, err := loadIPBans(db)
	if err != nil {
		return nil, err
	}

	authSvc := auth.NewService(db, sessions, sanitizer, audit, logger)
	gate := middleware.NewAuthGate(sessions, authSvc.FindUser, audit)

	sched := cron.New()

	a := &App{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		rc:       rc,
		hub:      hub,
		sessions: sessions,
		limiter:  limiter,
		audit:    audit,
		sched:    sched,
	}

	a.router = a.buildRouter(routerDeps{
		gate:    gate,
		banlist: banlist,
		auth:    auth.NewHandler(authSvc, logger),
		user:    user.NewHandler(user.NewService(db, sanitizer), logger),
		message: message.NewHandler(message.NewService(db, sanitizer, hub, cfg.MessageKeyBytes(), logger), logger),
		post:    post.NewHandler(post.NewService(db, sanitizer, hub), logger),
		wallet:  wallet.NewHandler(wallet.NewService(db, hub, audit), logger),
		music:   music.NewHandler(music.NewService(db, sanitizer), logger),
		admin:   admin.NewHandler(admin.NewService(db, hub, sessions, banlist, audit, sched), logger),
		gateway: gateway.NewHandler(hub, logger),
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.registerJobs()
	sched.Start(ctx)
	go hub.Run(ctx)

	if cfg.MessageKeyBytes() == nil {
		logger.Warn("no message_key configured, direct messages are stored in plaintext")
	}

	return a, nil
}

func loadIPBans(db *gorm.DB) (*middleware.IPBanList, error) {
	var bans []models.IPBanModel
	if err := db.Find(&bans).Error; err != nil {
		return nil, fmt.Errorf("load ip bans: %w", err)
	}
	ips := make([]string, 0, len(bans))
	for _, ban := range bans {
		ips = append(ips, ban.IP)
	}
	return middleware.NewIPBanList(ips), nil
}

// Addr returns the listen address.
func (a *App) Addr() string {
	return fmt.Sprintf(":%d", a.cfg.Port)
}

// Router returns the HTTP handler.
func (a *App) Router() http.Handler {
	return a.router
}

// Shutdown stops background work and releases connections.
func (a *App) Shutdown() {
	a.cancel()
	if err := a.audit.Close(); err != nil {
		a.logger.Warn("close security log", zap.Error(err))
	}
	if err := a.rc.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
