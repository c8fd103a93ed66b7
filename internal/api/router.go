package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/cache"
	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/events"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/middleware"
	"github.com/murmurapp/murmur/internal/notify"
	"github.com/murmurapp/murmur/pkg/config"
	"github.com/murmurapp/murmur/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	cfg    *config.Config
	logger *zap.Logger

	auth     *middleware.Auth
	authAPI  *AuthAPI
	posts    *PostAPI
	comments *CommentAPI
	react    *ReactionAPI
	viewer   *ViewerAPI
	listings *ListingAPI
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)
	listing := feed.NewService(database.DB, redisCache, &cfg.Listing)

	// Reaction and comment events go to redis pub/sub when a cache is
	// configured; otherwise they are dropped
	var sink events.Sink = events.NoopSink{}
	if redisCache != nil {
		sink = events.NewRedisSink(redisCache.Client())
	}
	notifier := notify.New(repo, sink)

	return &Router{
		db:       database,
		cache:    redisCache,
		cfg:      cfg,
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
		auth:     middleware.NewAuth(repo, &cfg.Auth),
		authAPI:  NewAuthAPI(repo, &cfg.Auth),
		posts:    NewPostAPI(repo, listing, notifier),
		comments: NewCommentAPI(repo, listing, notifier),
		react:    NewReactionAPI(repo, listing, notifier),
		viewer:   NewViewerAPI(repo),
		listings: NewListingAPI(repo, listing),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(cors.Default())
	engine.Use(r.auth.Middleware())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	v1 := engine.Group("/api/v1")

	read := v1.Group("")
	write := v1.Group("")
	if r.cfg.RateLimit.Enabled {
		read.Use(middleware.ReadLimiter(&r.cfg.RateLimit).Middleware())
		write.Use(middleware.WriteLimiter(&r.cfg.RateLimit).Middleware())
	}

	write.POST("/auth/register", r.authAPI.Register)
	write.POST("/auth/token", r.authAPI.Token)

	// Listing surfaces, visible anonymously
	read.GET("/feed", r.listings.Feed)
	read.GET("/explore", r.listings.Explore)
	read.GET("/trending", r.listings.Trending)
	read.GET("/search", r.listings.Search)
	read.GET("/hashtags/trending", r.listings.TrendingHashtags)
	read.GET("/hashtags/:tag/posts", r.listings.HashtagPosts)
	read.GET("/categories", r.listings.Categories)
	read.GET("/categories/:name/posts", r.listings.CategoryPosts)
	read.GET("/users/:id/posts", r.listings.UserPosts)
	read.GET("/posts/:id", r.posts.Get)
	read.GET("/posts/:id/comments", r.listings.Comments)
	read.GET("/comments/:id/replies", r.listings.Replies)

	// Engagement signals, recorded for anonymous traffic too
	write.POST("/posts/:id/impressions", r.posts.Impression)
	write.POST("/posts/:id/shares", r.posts.Share)

	// Authenticated surface
	authed := write.Group("", middleware.RequireViewer())
	authed.POST("/posts", r.posts.Create)
	authed.PUT("/posts/:id", r.posts.Update)
	authed.DELETE("/posts/:id", r.posts.Delete)
	authed.POST("/posts/:id/comments", r.comments.Create)
	authed.PUT("/posts/:id/reactions/:kind", r.react.Add)
	authed.DELETE("/posts/:id/reactions/:kind", r.react.Remove)
	authed.PUT("/posts/:id/save", r.posts.Save)
	authed.DELETE("/posts/:id/save", r.posts.Unsave)

	me := v1.Group("/me", middleware.RequireViewer())
	me.GET("", r.viewer.Me)
	me.DELETE("", r.viewer.Deactivate)
	me.GET("/saved", r.listings.Saved)
	me.GET("/filters", r.viewer.Filters)
	me.PUT("/filters", r.viewer.UpdateFilters)
	me.GET("/blocks", r.viewer.Blocks)
	me.PUT("/blocks/:id", r.viewer.AddBlock)
	me.DELETE("/blocks/:id", r.viewer.RemoveBlock)
	me.GET("/notifications", r.viewer.Notifications)
	me.POST("/notifications/read", r.viewer.MarkNotificationsRead)

	// Moderation
	admin := v1.Group("", middleware.RequireAdmin())
	admin.POST("/posts/:id/moderate", r.posts.Moderate)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "murmur-api",
	})
}
