package post

import (
	"errors"
	"strconv"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateDTO struct {
	Body string `json:"body" binding:"required"`
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts")
	g.GET("", h.feed)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.DELETE("/:id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "post body is required")
		return
	}
	user, _ := middleware.CurrentUser(c)

	p, err := h.svc.Create(user, dto.Body)
	switch {
	case errors.Is(err, errEmptyBody):
		response.BadRequest(c, "post body is empty after cleaning")
	case err != nil:
		h.logger.Error("create post failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Created(c, p)
	}
}

func (h *Handler) feed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	posts, total, err := h.svc.Feed(page, size)
	if err != nil {
		h.logger.Error("load feed failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"posts": posts, "total": total, "page": page})
}

func (h *Handler) remove(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	err := h.svc.Delete(user, c.Param("id"))
	switch {
	case errors.Is(err, errNotFound):
		response.NotFound(c)
	case errors.Is(err, errNotOwner):
		response.Forbidden(c)
	case err != nil:
		h.logger.Error("delete post failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Message(c, "post deleted")
	}
}
