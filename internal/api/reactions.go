package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/middleware"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/internal/notify"
	"github.com/murmurapp/murmur/pkg/logging"
)

// ReactionAPI handles reaction endpoints
type ReactionAPI struct {
	posts     *db.PostRepository
	reactions *db.ReactionRepository
	listing   *feed.Service
	notifier  *notify.Notifier
	logger    *zap.Logger
}

// NewReactionAPI creates a new reaction API handler
func NewReactionAPI(repo *db.Repository, listing *feed.Service, notifier *notify.Notifier) *ReactionAPI {
	return &ReactionAPI{
		posts:     db.NewPostRepository(repo),
		reactions: db.NewReactionRepository(repo),
		listing:   listing,
		notifier:  notifier,
		logger:    logging.WithComponent("reaction-api"),
	}
}

// target resolves and gates the reacted-to post. Like everywhere else, a post
// the viewer may not see does not exist.
func (r *ReactionAPI) target(c *gin.Context) (*models.Post, string, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, "", false
	}
	kind := c.Param("kind")
	if !models.ValidReactionKind(kind) {
		RespondError(c, http.StatusBadRequest, CodeValidation, "unknown reaction kind")
		return nil, "", false
	}

	post, err := r.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return nil, "", false
	}
	if post == nil || !feed.IsVisible(post, middleware.ViewerFrom(c)) {
		RespondError(c, http.StatusNotFound, CodeNotFound, "post not found")
		return nil, "", false
	}
	return post, kind, true
}

// Add records a reaction of the given kind. Repeats are no-ops; each kind is
// independent, so a user can hold several kinds on one post.
// PUT /api/v1/posts/:id/reactions/:kind
func (r *ReactionAPI) Add(c *gin.Context) {
	post, kind, ok := r.target(c)
	if !ok {
		return
	}

	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()
	added, err := r.reactions.Add(ctx, post.ID, viewer.ID, kind)
	if err != nil {
		HandleError(c, err)
		return
	}
	if added {
		if err := r.listing.RefreshScore(ctx, post.ID); err != nil {
			r.logger.Warn("score refresh failed", zap.Error(err))
		}
		if err := r.notifier.Notify(ctx, models.NotifyTypeReaction, "reaction", viewer.ID, post.AuthorID, post.ID); err != nil {
			r.logger.Warn("reaction notification failed", zap.Error(err))
		}
	}

	counts, err := r.reactions.CountsForPost(ctx, post.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"reactions": counts}, "reaction recorded")
}

// Remove withdraws a reaction of the given kind.
// DELETE /api/v1/posts/:id/reactions/:kind
func (r *ReactionAPI) Remove(c *gin.Context) {
	post, kind, ok := r.target(c)
	if !ok {
		return
	}

	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()
	removed, err := r.reactions.Remove(ctx, post.ID, viewer.ID, kind)
	if err != nil {
		HandleError(c, err)
		return
	}
	if removed {
		if err := r.listing.RefreshScore(ctx, post.ID); err != nil {
			r.logger.Warn("score refresh failed", zap.Error(err))
		}
	}

	counts, err := r.reactions.CountsForPost(ctx, post.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"reactions": counts}, "reaction removed")
}
