package auth

import (
	"errors"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)

	a := g.Group("", authMW)
	a.POST("/logout", h.logout)
	a.GET("/me", h.me)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	token, u, err := h.svc.Register(&dto, c.ClientIP())
	switch {
	case errors.Is(err, errInvalidInput):
		response.BadRequest(c, "username must be 3-20 word characters and password at least 8")
	case errors.Is(err, errUsernameTaken):
		response.Conflict(c, "that username is taken")
	case err != nil:
		h.logger.Error("register failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Created(c, sessionResponse{Token: token, User: u.Public()})
	}
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	token, u, err := h.svc.Login(&dto, c.ClientIP())
	switch {
	case errors.Is(err, errBadCredentials):
		// One message for unknown user, wrong password, and banned
		// account alike.
		response.BadRequest(c, "login failed")
	case err != nil:
		h.logger.Error("login failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.OK(c, sessionResponse{Token: token, User: u.Public()})
	}
}

func (h *Handler) logout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	token, _ := middleware.CurrentToken(c)
	h.svc.Logout(token, user)
	response.Message(c, "logged out")
}

func (h *Handler) me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	response.OK(c, user)
}
