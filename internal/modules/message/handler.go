package message

import (
	"errors"
	"strconv"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SendDTO struct {
	To   string `json:"to"   binding:"required"`
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
	g := rg.Group("/messages", authMW)
	g.POST("", h.send)
	g.GET("/:peerID", h.conversation)
}

func (h *Handler) send(c *gin.Context) {
	var dto SendDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "recipient and body are required")
		return
	}
	user, _ := middleware.CurrentUser(c)

	view, err := h.svc.Send(user, dto.To, dto.Body)
	switch {
	case errors.Is(err, errEmptyBody):
		response.BadRequest(c, "message body is empty after cleaning")
	case errors.Is(err, errSelfMessage):
		response.BadRequest(c, "cannot message yourself")
	case errors.Is(err, errUnknownPeer):
		response.NotFound(c)
	case err != nil:
		h.logger.Error("send message failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Created(c, view)
	}
}

func (h *Handler) conversation(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	views, err := h.svc.Conversation(user.ID, c.Param("peerID"), limit)
	if err != nil {
		h.logger.Error("load conversation failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, views)
}
