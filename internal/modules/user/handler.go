package user

import (
	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UpdateProfileDTO struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PATCH("/me", authMW, h.updateMe)
}

func (h *Handler) list(c *gin.Context) {
	profiles, err := h.svc.List()
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, profiles)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, u.Public())
}

func (h *Handler) updateMe(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid profile payload")
		return
	}
	user, _ := middleware.CurrentUser(c)
	if err := h.svc.UpdateProfile(user, &dto); err != nil {
		h.logger.Error("update profile failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, user.Public())
}
