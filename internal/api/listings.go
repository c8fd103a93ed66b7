package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/api/objects"
	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/middleware"
	"github.com/murmurapp/murmur/pkg/logging"
)

// ListingAPI handles every read surface that returns a page of posts
type ListingAPI struct {
	listing    *feed.Service
	hashtags   *db.HashtagRepository
	categories *db.CategoryRepository
	loader     *objects.PostLoader
	logger     *zap.Logger
}

// NewListingAPI creates a new listing API handler
func NewListingAPI(repo *db.Repository, listing *feed.Service) *ListingAPI {
	return &ListingAPI{
		listing:    listing,
		hashtags:   db.NewHashtagRepository(repo),
		categories: db.NewCategoryRepository(repo),
		loader:     objects.NewPostLoader(repo.DB()),
		logger:     logging.WithComponent("listing-api"),
	}
}

// respond turns a listing page into its wire form
func (l *ListingAPI) respond(c *gin.Context, page feed.Page, err error) {
	if err != nil {
		HandleError(c, err)
		return
	}
	views, err := l.loader.Views(c.Request.Context(), page.Items, middleware.ViewerFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPage(c, views, page, "")
}

// Feed lists public posts, newest first.
// GET /api/v1/feed
func (l *ListingAPI) Feed(c *gin.Context) {
	page, err := l.listing.Feed(c.Request.Context(), middleware.ViewerFrom(c), listParams(c))
	l.respond(c, page, err)
}

// Explore blends recent and high-engagement posts.
// GET /api/v1/explore
func (l *ListingAPI) Explore(c *gin.Context) {
	page, err := l.listing.Explore(c.Request.Context(), middleware.ViewerFrom(c), listParams(c))
	l.respond(c, page, err)
}

// Trending lists posts from the requested window by engagement score.
// GET /api/v1/trending?window=24h|7d
func (l *ListingAPI) Trending(c *gin.Context) {
	page, err := l.listing.Trending(c.Request.Context(), middleware.ViewerFrom(c), c.Query("window"), listParams(c))
	l.respond(c, page, err)
}

// HashtagPosts lists posts carrying a hashtag.
// GET /api/v1/hashtags/:tag/posts
func (l *ListingAPI) HashtagPosts(c *gin.Context) {
	page, err := l.listing.Hashtag(c.Request.Context(), middleware.ViewerFrom(c), c.Param("tag"), listParams(c))
	l.respond(c, page, err)
}

// TrendingHashtags lists the most-used hashtags of the last day.
// GET /api/v1/hashtags/trending
func (l *ListingAPI) TrendingHashtags(c *gin.Context) {
	rows, err := l.hashtags.Trending(c.Request.Context(), time.Now().UTC().Add(-24*time.Hour), 20)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"hashtags": rows}, "")
}

// Categories lists all categories.
// GET /api/v1/categories
func (l *ListingAPI) Categories(c *gin.Context) {
	categories, err := l.categories.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"categories": categories}, "")
}

// CategoryPosts lists posts in a category.
// GET /api/v1/categories/:name/posts
func (l *ListingAPI) CategoryPosts(c *gin.Context) {
	page, err := l.listing.Category(c.Request.Context(), middleware.ViewerFrom(c), c.Param("name"), listParams(c))
	l.respond(c, page, err)
}

// UserPosts lists a user's public posts.
// GET /api/v1/users/:id/posts
func (l *ListingAPI) UserPosts(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, err := l.listing.UserPosts(c.Request.Context(), middleware.ViewerFrom(c), id, listParams(c))
	l.respond(c, page, err)
}

// Saved lists the viewer's bookmarks in save order.
// GET /api/v1/me/saved
func (l *ListingAPI) Saved(c *gin.Context) {
	page, err := l.listing.Saved(c.Request.Context(), middleware.ViewerFrom(c), listParams(c))
	l.respond(c, page, err)
}

// Search runs full-text search over post bodies.
// GET /api/v1/search?q=term&sort=relevance|recent
func (l *ListingAPI) Search(c *gin.Context) {
	page, err := l.listing.Search(c.Request.Context(), middleware.ViewerFrom(c), c.Query("q"), c.Query("sort"), listParams(c))
	l.respond(c, page, err)
}

// Comments lists the direct replies of a post.
// GET /api/v1/posts/:id/comments
func (l *ListingAPI) Comments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, err := l.listing.Comments(c.Request.Context(), middleware.ViewerFrom(c), id, listParams(c))
	l.respond(c, page, err)
}

// Replies lists the direct replies of a comment. Same query as Comments; the
// separate route keeps the thread shape explicit in the API surface.
// GET /api/v1/comments/:id/replies
func (l *ListingAPI) Replies(c *gin.Context) {
	l.Comments(c)
}
