package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
	"murmurnet/internal/infrastructure/middleware"
	apperrors "murmurnet/pkg/errors"
)

// FeedHandler serves the recent feed and accepts new posts. Both routes sit
// behind the auth gate.
type FeedHandler struct {
	feed   ports.FeedService
	logger *zap.SugaredLogger
}

func NewFeedHandler(feed ports.FeedService, logger *zap.SugaredLogger) *FeedHandler {
	return &FeedHandler{feed: feed, logger: logger}
}

func (h *FeedHandler) SetupRoutes(protected *gin.RouterGroup) {
	protected.GET("/", h.Feed)
	protected.POST("/posts", h.CreatePost)
}

type createPostRequest struct {
	Content string `json:"content" form:"content"`
}

func (h *FeedHandler) Feed(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	events, err := h.feed.ListRecent(c.Request.Context())
	if err != nil {
		h.logger.Errorw("feed listing failed", "error", err)
		c.Error(apperrors.NewInternalError("could not load feed"))
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"posts": events})
		return
	}
	c.HTML(http.StatusOK, "feed.html", gin.H{
		"Username": identity.Username,
		"Posts":    events,
	})
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req createPostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	post, err := h.feed.CreatePost(c.Request.Context(), identity, req.Content)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{
			"id":         post.ID,
			"content":    post.Content,
			"created_at": post.CreatedAt,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *FeedHandler) respondCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPostEmpty):
		h.createRejected(c, http.StatusBadRequest, "post must not be empty")
	case errors.Is(err, domain.ErrPostTooLong):
		h.createRejected(c, http.StatusBadRequest, "post is too long")
	case errors.Is(err, domain.ErrModerationRejected):
		// the submission succeeded mechanically, the content was declined
		h.createRejected(c, http.StatusOK, "your post was declined by content moderation")
	default:
		h.logger.Errorw("post creation failed", "error", err)
		c.Error(apperrors.NewInternalError("could not create post"))
	}
}

func (h *FeedHandler) createRejected(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	events, err := h.feed.ListRecent(c.Request.Context())
	if err != nil {
		events = nil
	}
	c.HTML(status, "feed.html", gin.H{
		"Username": identity.Username,
		"Posts":    events,
		"Error":    message,
	})
}
