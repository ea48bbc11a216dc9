package gateway

import (
	"github.com/echoverse/core/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the upgrade endpoint.
type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// RegisterRoutes mounts the gateway. The socket itself is anonymous;
// a logged-in user's identity rides along when the request carries a
// valid bearer token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	rg.GET("/gateway", optionalAuth, h.upgrade)
}

func (h *Handler) upgrade(c *gin.Context) {
	ip := c.ClientIP()

	conn, _, err := Upgrade(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn("gateway upgrade failed", zap.String("ip", ip), zap.Error(err))
		return
	}

	userID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		userID = user.ID
	}

	client := newClient(uuid.New().String(), userID, ip, conn, h.hub)
	h.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}
