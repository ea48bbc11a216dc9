package wallet

import (
	"errors"
	"strconv"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GiftDTO struct {
	To     string `json:"to"     binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/wallet", authMW)
	g.GET("", h.balance)
	g.POST("/gift", h.gift)
	g.GET("/history", h.history)
}

func (h *Handler) balance(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	coins, err := h.svc.Balance(user.ID)
	if err != nil {
		h.logger.Error("load balance failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"coins": coins})
}

func (h *Handler) gift(c *gin.Context) {
	var dto GiftDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "recipient and amount are required")
		return
	}
	user, _ := middleware.CurrentUser(c)

	remaining, err := h.svc.Gift(user, dto.To, dto.Amount)
	switch {
	case errors.Is(err, errBadAmount):
		response.BadRequest(c, "amount must be positive")
	case errors.Is(err, errSelfGift):
		response.BadRequest(c, "cannot gift yourself")
	case errors.Is(err, errInsufficient):
		response.BadRequest(c, "not enough E-COIN")
	case errors.Is(err, errUnknownPeer):
		response.NotFound(c)
	case err != nil:
		h.logger.Error("gift failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.OK(c, gin.H{"coins": remaining})
	}
}

func (h *Handler) history(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.svc.History(user.ID, limit)
	if err != nil {
		h.logger.Error("load gift history failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, records)
}
