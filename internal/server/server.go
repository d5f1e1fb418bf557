package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/ratelimit"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

// MediaService is the gallery surface served over HTTP.
type MediaService interface {
	List(ctx context.Context, sort domain.SortOption, filter domain.TypeFilter) []domain.Media
	Get(ctx context.Context, mediaID string) (*domain.Media, error)
	IncrementLike(ctx context.Context, mediaID string) (int, error)
	CleanupStale(ctx context.Context) int64
	RecordUpload(ctx context.Context, file domain.UploadedFile) (*domain.Media, error)
}

type MessageBoard interface {
	Post(ctx context.Context, name, content string) (*domain.Message, error)
	List(ctx context.Context) []domain.Message
}

type GuestRegistry interface {
	Register(ctx context.Context, name, email string) (*domain.Guest, error)
}

type Handler struct {
	media  MediaService
	board  MessageBoard
	guests GuestRegistry
	live   http.Handler
	log    logger.Logger
}

func NewHandler(media MediaService, board MessageBoard, guests GuestRegistry, live http.Handler, log logger.Logger) *Handler {
	registerValidators()

	return &Handler{
		media:  media,
		board:  board,
		guests: guests,
		live:   live,
		log:    log.WithComponent("HTTPHandler"),
	}
}

// Router builds the gin engine. Writes share one per-IP limiter. Cleanup also
// needs operatorToken and is closed when it is empty.
func (h *Handler) Router(limiter ratelimit.Limiter, operatorToken string, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.GET("/healthz", h.health)
	r.GET("/ws", gin.WrapH(h.live))

	api := r.Group("/api")
	writes := rateLimit(limiter)

	api.GET("/media", h.listMedia)
	api.GET("/media/:id", h.getMedia)
	api.POST("/media/:id/like", writes, h.likeMedia)
	api.POST("/media/cleanup", writes, operatorOnly(operatorToken), h.cleanupMedia)
	api.POST("/uploads/complete", writes, h.completeUpload)

	api.GET("/messages", h.listMessages)
	api.POST("/messages", writes, h.postMessage)

	api.POST("/guests", writes, h.registerGuest)

	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listMedia(c *gin.Context) {
	sort := domain.ParseSortOption(c.Query("sort"))
	filter := domain.ParseTypeFilter(c.Query("type"))

	c.JSON(http.StatusOK, gin.H{
		"media": h.media.List(c.Request.Context(), sort, filter),
		"sort":  sort,
		"type":  filter,
	})
}

func (h *Handler) getMedia(c *gin.Context) {
	item, err := h.media.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) likeMedia(c *gin.Context) {
	likes, err := h.media.IncrementLike(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := apperrors.StatusCode(err)
		msg := "Failed to like media"
		if status == http.StatusNotFound {
			msg = "Media not found"
		}
		c.JSON(status, likeResponse{Success: false, Error: msg})
		return
	}

	c.JSON(http.StatusOK, likeResponse{Success: true, Likes: likes})
}

func (h *Handler) cleanupMedia(c *gin.Context) {
	removed := h.media.CleanupStale(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) completeUpload(c *gin.Context) {
	var req uploadCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortBadRequest(c, err)
		return
	}

	created, err := h.media.RecordUpload(c.Request.Context(), domain.UploadedFile{
		URL:       req.URL,
		Name:      req.Name,
		MIMEType:  req.Type,
		Size:      req.Size,
		Thumbnail: req.Thumbnail,
		Duration:  req.Duration,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.board.List(c.Request.Context())})
}

func (h *Handler) postMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortBadRequest(c, err)
		return
	}

	msg, err := h.board.Post(c.Request.Context(), req.Name, req.Content)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) registerGuest(c *gin.Context) {
	var req registerGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortBadRequest(c, err)
		return
	}

	g, err := h.guests.Register(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *Handler) abortBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request"})
}

// abortWithError shows the wrapped message for client errors and hides internals otherwise.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := apperrors.StatusCode(err)
	resp := errorResponse{Error: http.StatusText(status), Code: apperrors.GetCode(err)}

	if status < http.StatusInternalServerError {
		resp.Error = apperrors.GetMessage(err)
	}

	c.AbortWithStatusJSON(status, resp)
}
