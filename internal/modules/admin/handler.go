package admin

import (
	"errors"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IPBanDTO struct {
	IP     string `json:"ip" binding:"required"`
	Reason string `json:"reason"`
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the console. adminMW must already sit behind the
// auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/admin", authMW, adminMW)
	g.GET("/users", h.listUsers)
	g.POST("/users/:id/ban", h.banUser)
	g.POST("/users/:id/unban", h.unbanUser)
	g.POST("/users/:id/roles", h.setRoles)
	g.POST("/ipban", h.banIP)
	g.DELETE("/ipban/:ip", h.unbanIP)
	g.GET("/stats", h.stats)
	g.GET("/cron", h.cronJobs)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.ListUsers()
	if err != nil {
		h.logger.Error("admin list users failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, users)
}

func (h *Handler) banUser(c *gin.Context)   { h.setBanned(c, true) }
func (h *Handler) unbanUser(c *gin.Context) { h.setBanned(c, false) }

func (h *Handler) setBanned(c *gin.Context, banned bool) {
	actor, _ := middleware.CurrentUser(c)

	err := h.svc.SetBanned(actor, c.Param("id"), banned)
	switch {
	case errors.Is(err, errUserNotFound):
		response.NotFound(c)
	case err != nil:
		h.logger.Error("admin set banned failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Message(c, "updated")
	}
}

func (h *Handler) setRoles(c *gin.Context) {
	var dto RolesDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid roles payload")
		return
	}
	actor, _ := middleware.CurrentUser(c)

	err := h.svc.SetRoles(actor, c.Param("id"), &dto)
	switch {
	case errors.Is(err, errUserNotFound):
		response.NotFound(c)
	case err != nil:
		h.logger.Error("admin set roles failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Message(c, "updated")
	}
}

func (h *Handler) banIP(c *gin.Context) {
	var dto IPBanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "ip is required")
		return
	}
	actor, _ := middleware.CurrentUser(c)

	if err := h.svc.BanIP(actor, dto.IP, dto.Reason); err != nil {
		h.logger.Error("admin ban ip failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Message(c, "ip banned")
}

func (h *Handler) unbanIP(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	if err := h.svc.UnbanIP(actor, c.Param("ip")); err != nil {
		h.logger.Error("admin unban ip failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Message(c, "ip unbanned")
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("admin stats failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

func (h *Handler) cronJobs(c *gin.Context) {
	response.OK(c, h.svc.Jobs())
}
