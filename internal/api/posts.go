package api

import (
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

const (
	maxBodyLen    = 2000
	maxWarningLen = 120
)

// PostAPI handles post mutation endpoints
type PostAPI struct {
	posts      *db.PostRepository
	users      *db.UserRepository
	categories *db.CategoryRepository
	saved      *db.SavedRepository
	listing    *feed.Service
	notifier   *notify.Notifier
	loader     *objects.PostLoader
	sanitizer  *bluemonday.Policy
	logger     *zap.Logger
}

// NewPostAPI creates a new post API handler
func NewPostAPI(repo *db.Repository, listing *feed.Service, notifier *notify.Notifier) *PostAPI {
	return &PostAPI{
		posts:      db.NewPostRepository(repo),
		users:      db.NewUserRepository(repo),
		categories: db.NewCategoryRepository(repo),
		saved:      db.NewSavedRepository(repo),
		listing:    listing,
		notifier:   notifier,
		loader:     objects.NewPostLoader(repo.DB()),
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logging.WithComponent("post-api"),
	}
}

// loadVisible fetches a post and applies the visibility rules for the
// request's viewer. Hidden and missing posts are indistinguishable: both 404.
func (p *PostAPI) loadVisible(c *gin.Context, id int64) (*models.Post, bool) {
	post, err := p.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if post == nil || !feed.IsVisible(post, middleware.ViewerFrom(c)) {
		RespondError(c, http.StatusNotFound, CodeNotFound, "post not found")
		return nil, false
	}
	return post, true
}

// cleanBody sanitizes markup out of a body and validates its length
func (p *PostAPI) cleanBody(c *gin.Context, raw string) (string, bool) {
	body := strings.TrimSpace(p.sanitizer.Sanitize(raw))
	if body == "" {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body is required")
		return "", false
	}
	if len(body) > maxBodyLen {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body exceeds maximum length")
		return "", false
	}
	return body, true
}

// Get returns a single post.
// GET /api/v1/posts/:id
func (p *PostAPI) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, ok := p.loadVisible(c, id)
	if !ok {
		return
	}
	if err := p.posts.LoadReactionTotals(c.Request.Context(), []*models.Post{post}); err != nil {
		HandleError(c, err)
		return
	}

	view, err := p.loader.View(c.Request.Context(), post, middleware.ViewerFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, view, "")
}

type createPostRequest struct {
	Body           string `json:"body" binding:"required"`
	Category       string `json:"category"`
	ContentWarning string `json:"content_warning"`
}

// Create publishes a new top-level post.
// POST /api/v1/posts
func (p *PostAPI) Create(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body is required")
		return
	}
	body, ok := p.cleanBody(c, req.Body)
	if !ok {
		return
	}
	if len(req.ContentWarning) > maxWarningLen {
		RespondError(c, http.StatusBadRequest, CodeValidation, "content warning exceeds maximum length")
		return
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category != "" {
		known, err := p.categories.GetByName(c.Request.Context(), category)
		if err != nil {
			HandleError(c, err)
			return
		}
		if known == nil {
			RespondError(c, http.StatusBadRequest, CodeValidation, "unknown category")
			return
		}
	}

	author, err := p.users.GetByID(c.Request.Context(), viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if author == nil {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "account not found")
		return
	}

	now := time.Now().UTC()
	post := &models.Post{
		AuthorID:       author.ID,
		AuthorName:     author.DisplayName,
		Body:           body,
		Category:       category,
		ContentWarning: strings.TrimSpace(p.sanitizer.Sanitize(req.ContentWarning)),
		Visibility:     models.VisibilityPublic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.posts.Create(c.Request.Context(), post); err != nil {
		HandleError(c, err)
		return
	}
	if category != "" {
		if err := p.categories.IncrementPostCount(c.Request.Context(), category, 1); err != nil {
			p.logger.Warn("category counter update failed", zap.Error(err))
		}
	}

	view, err := p.loader.View(c.Request.Context(), post, viewer)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, view, "post created")
}

type updatePostRequest struct {
	Body string `json:"body" binding:"required"`
}

// Update edits a post's body. Author only; hashtags are re-derived.
// PUT /api/v1/posts/:id
func (p *PostAPI) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, ok := p.loadVisible(c, id)
	if !ok {
		return
	}

	viewer := middleware.ViewerFrom(c)
	if post.AuthorID != viewer.ID {
		RespondError(c, http.StatusForbidden, CodeForbidden, "only the author can edit a post")
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeValidation, "body is required")
		return
	}
	body, ok := p.cleanBody(c, req.Body)
	if !ok {
		return
	}

	if err := p.posts.UpdateBody(c.Request.Context(), post, body); err != nil {
		HandleError(c, err)
		return
	}
	if err := p.listing.RefreshScore(c.Request.Context(), post.ID); err != nil {
		p.logger.Warn("score refresh failed", zap.Error(err))
	}

	view, err := p.loader.View(c.Request.Context(), post, viewer)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, view, "post updated")
}

// Delete soft-deletes a post. Author or admin. The row stays so existing
// comment threads keep their anchor.
// DELETE /api/v1/posts/:id
func (p *PostAPI) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, ok := p.loadVisible(c, id)
	if !ok {
		return
	}

	viewer := middleware.ViewerFrom(c)
	if post.AuthorID != viewer.ID && !viewer.IsAdmin {
		RespondError(c, http.StatusForbidden, CodeForbidden, "only the author can delete a post")
		return
	}

	if err := p.posts.SetVisibility(c.Request.Context(), post.ID, models.VisibilityDeleted, ""); err != nil {
		HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	if post.IsComment() {
		if err := p.posts.IncrementCounter(ctx, post.ParentID.Int64, db.CounterComments, -1); err != nil {
			p.logger.Warn("parent comment counter update failed", zap.Error(err))
		}
		if err := p.listing.RefreshScore(ctx, post.ParentID.Int64); err != nil {
			p.logger.Warn("parent score refresh failed", zap.Error(err))
		}
	} else if post.Category != "" {
		if err := p.categories.IncrementPostCount(ctx, post.Category, -1); err != nil {
			p.logger.Warn("category counter update failed", zap.Error(err))
		}
	}

	RespondOK(c, http.StatusOK, nil, "post deleted")
}

type moderateRequest struct {
	Visibility string `json:"visibility" binding:"required"`
	Reason     string `json:"reason"`
}

// Moderate transitions a post's visibility state. Admin only; the author is
// notified of the decision.
// POST /api/v1/posts/:id/moderate
func (p *PostAPI) Moderate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidVisibility(req.Visibility) {
		RespondError(c, http.StatusBadRequest, CodeValidation, "visibility must be one of public, moderated, deleted")
		return
	}

	// Admins moderate regardless of current visibility, so no viewer gate here
	post, err := p.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if post == nil {
		RespondError(c, http.StatusNotFound, CodeNotFound, "post not found")
		return
	}

	if err := p.posts.SetVisibility(c.Request.Context(), post.ID, req.Visibility, strings.TrimSpace(req.Reason)); err != nil {
		HandleError(c, err)
		return
	}

	viewer := middleware.ViewerFrom(c)
	if err := p.notifier.Notify(c.Request.Context(), models.NotifyTypeModeration, "post", viewer.ID, post.AuthorID, post.ID); err != nil {
		p.logger.Warn("moderation notification failed", zap.Error(err))
	}

	p.logger.Info("post moderated",
		zap.Int64("post_id", post.ID),
		zap.String("visibility", req.Visibility),
		zap.Int64("moderator_id", viewer.ID))
	RespondOK(c, http.StatusOK, nil, "post moderated")
}

// Impression records that the post was shown to someone. Anonymous traffic
// counts too.
// POST /api/v1/posts/:id/impressions
func (p *PostAPI) Impression(c *gin.Context) {
	p.bumpCounter(c, db.CounterImpressions, "impression recorded")
}

// Share records a share of the post.
// POST /api/v1/posts/:id/shares
func (p *PostAPI) Share(c *gin.Context) {
	p.bumpCounter(c, db.CounterShares, "share recorded")
}

func (p *PostAPI) bumpCounter(c *gin.Context, column, message string) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, ok := p.loadVisible(c, id)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := p.posts.IncrementCounter(ctx, post.ID, column, 1); err != nil {
		HandleError(c, err)
		return
	}
	if err := p.listing.RefreshScore(ctx, post.ID); err != nil {
		p.logger.Warn("score refresh failed", zap.Error(err))
	}
	RespondOK(c, http.StatusOK, nil, message)
}

// Save bookmarks a post for the viewer. Repeat saves are no-ops.
// PUT /api/v1/posts/:id/save
func (p *PostAPI) Save(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, ok := p.loadVisible(c, id)
	if !ok {
		return
	}

	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()
	added, err := p.saved.Save(ctx, viewer.ID, post.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if added {
		if err := p.posts.IncrementCounter(ctx, post.ID, db.CounterSaves, 1); err != nil {
			p.logger.Warn("save counter update failed", zap.Error(err))
		}
	}
	RespondOK(c, http.StatusOK, nil, "post saved")
}

// Unsave removes a bookmark.
// DELETE /api/v1/posts/:id/save
func (p *PostAPI) Unsave(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()
	removed, err := p.saved.Unsave(ctx, viewer.ID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if removed {
		if err := p.posts.IncrementCounter(ctx, id, db.CounterSaves, -1); err != nil {
			p.logger.Warn("save counter update failed", zap.Error(err))
		}
	}
	RespondOK(c, http.StatusOK, nil, "post unsaved")
}
