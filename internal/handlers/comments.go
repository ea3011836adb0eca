package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cinelink/internal/middleware"
	"cinelink/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	enricher *services.AvatarEnricher
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, enricher *services.AvatarEnricher, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		enricher: enricher,
		log:      log.Named("handlers"),
	}
}

type createCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
	Spoiler  bool   `json:"spoiler"`
}

// Create handles POST /api/discussions/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer := middleware.ViewerID(c) // non-nil behind AuthRequired

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), discussionID, *viewer, req.Content, req.ParentID, req.Spoiler)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDiscussionNotFound), errors.Is(err, services.ErrParentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCrossDiscussionParent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNestingTooDeep):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			h.log.Error("Failed to create comment", zap.Uint("discussion_id", discussionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// List handles GET /api/discussions/:id/comments.
func (h *CommentHandler) List(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sortMode := c.DefaultQuery("sort", services.SortBest)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	maxDepth, _ := strconv.Atoi(c.DefaultQuery("max_depth", strconv.Itoa(services.DefaultMaxDepth)))

	var parentID *uint
	if raw := c.Query("parent_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
			return
		}
		u := uint(id)
		parentID = &u
	}

	comments, err := h.comments.GetComments(c.Request.Context(), discussionID, parentID, sortMode, limit, offset, middleware.ViewerID(c), maxDepth)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSortMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to fetch comments", zap.Uint("discussion_id", discussionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comments"})
		return
	}

	h.enricher.Enrich(c.Request.Context(), comments)

	c.JSON(http.StatusOK, comments)
}

// Stats handles GET /api/discussions/:id/comments/stats.
func (h *CommentHandler) Stats(c *gin.Context) {
	discussionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	stats, err := h.comments.GetCommentStats(c.Request.Context(), discussionID)
	if err != nil {
		h.log.Error("Failed to fetch comment stats", zap.Uint("discussion_id", discussionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comment stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Delete handles DELETE /api/comments/:id (soft delete, author only).
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer := middleware.ViewerID(c)

	err := h.comments.DeleteComment(c.Request.Context(), commentID, *viewer)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotCommentAuthor):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.log.Error("Failed to delete comment", zap.Uint("comment_id", commentID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
