package music

import (
	"errors"
	"strconv"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateTrackDTO struct {
	Title    string `json:"title"     binding:"required"`
	Artist   string `json:"artist"`
	FileName string `json:"file_name" binding:"required"`
	FileSize int64  `json:"file_size" binding:"required"`
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/music")
	g.GET("", h.list)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.DELETE("/:id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateTrackDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "title, file name and file size are required")
		return
	}
	user, _ := middleware.CurrentUser(c)

	track, err := h.svc.Create(user, &dto)
	switch {
	case errors.Is(err, errMissingTitle):
		response.BadRequest(c, "title is empty after cleaning")
	case errors.Is(err, errBadExtension):
		response.BadRequest(c, "only mp3, ogg, wav and flac uploads are accepted")
	case errors.Is(err, errTooLarge):
		response.BadRequest(c, "audio files are capped at 20MB")
	case errors.Is(err, errBadFileName):
		response.BadRequest(c, "invalid file name")
	case err != nil:
		h.logger.Error("create track failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Created(c, track)
	}
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	tracks, err := h.svc.List(limit)
	if err != nil {
		h.logger.Error("list tracks failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, tracks)
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
		h.logger.Error("delete track failed", zap.Error(err))
		response.InternalError(c)
	default:
		response.Message(c, "track deleted")
	}
}
