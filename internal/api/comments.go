package api

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/api/objects"
	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/middleware"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/internal/notify"
	"github.com/murmurapp/murmur/pkg/logging"
)

// CommentAPI handles comment creation. Comments live in the post table with a
// parent reference; listing them is a listing-surface concern.
type CommentAPI struct {
	posts     *db.PostRepository
	users     *db.UserRepository
	listing   *feed.Service
	notifier  *notify.Notifier
	loader    *objects.PostLoader
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewCommentAPI creates a new comment API handler
func NewCommentAPI(repo *db.Repository, listing *feed.Service, notifier *notify.Notifier) *CommentAPI {
	return &CommentAPI{
		posts:     db.NewPostRepository(repo),
		users:     db.NewUserRepository(repo),
		listing:   listing,
		notifier:  notifier,
		loader:    objects.NewPostLoader(repo.DB()),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logging.WithComponent("comment-api"),
	}
}

type createCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// Create replies to a post or to another comment. The parent must be visible
// to the viewer. Comments carry no category or content warning of their own.
// POST /api/v1/posts/:id/comments
func (a *CommentAPI) Create(c *gin.Context) {
	parentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()

	parent, err := a.posts.GetByID(ctx, parentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if parent == nil || !feed.IsVisible(parent, viewer) {
		RespondError(c, http.StatusNotFound, CodeNotFound, "post not found")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body is required")
		return
	}
	body := strings.TrimSpace(a.sanitizer.Sanitize(req.Body))
	if body == "" {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body is required")
		return
	}
	if len(body) > maxBodyLen {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body exceeds maximum length")
		return
	}

	author, err := a.users.GetByID(ctx, viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if author == nil {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "account not found")
		return
	}

	now := time.Now().UTC()
	comment := &models.Post{
		ParentID:   sql.NullInt64{Int64: parent.ID, Valid: true},
		AuthorID:   author.ID,
		AuthorName: author.DisplayName,
		Body:       body,
		Visibility: models.VisibilityPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.posts.Create(ctx, comment); err != nil {
		HandleError(c, err)
		return
	}

	if err := a.posts.IncrementCounter(ctx, parent.ID, db.CounterComments, 1); err != nil {
		a.logger.Warn("comment counter update failed", zap.Error(err))
	}
	if err := a.listing.RefreshScore(ctx, parent.ID); err != nil {
		a.logger.Warn("parent score refresh failed", zap.Error(err))
	}

	// Replying to a comment notifies its author differently than commenting
	// on a top-level post
	typeID := models.NotifyTypeComment
	if parent.IsComment() {
		typeID = models.NotifyTypeReply
	}
	if err := a.notifier.Notify(ctx, typeID, "comment", viewer.ID, parent.AuthorID, comment.ID); err != nil {
		a.logger.Warn("comment notification failed", zap.Error(err))
	}

	view, err := a.loader.View(ctx, comment, viewer)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, view, "comment created")
}
