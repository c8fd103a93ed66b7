package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/pkg/config"
	"github.com/murmurapp/murmur/pkg/logging"
)

// ViewerKey is the gin context key under which the resolved viewer is stored
const ViewerKey = "viewer"

// Auth resolves the viewer for every request. A missing or invalid bearer
// token downgrades the request to anonymous rather than rejecting it;
// endpoints that need an identity use RequireViewer on top.
type Auth struct {
	users  *db.UserRepository
	secret []byte
	logger *zap.Logger
}

// NewAuth creates the auth middleware
func NewAuth(repo *db.Repository, cfg *config.AuthConfig) *Auth {
	return &Auth{
		users:  db.NewUserRepository(repo),
		secret: []byte(cfg.JWTSecret),
		logger: logging.WithComponent("auth"),
	}
}

// Middleware returns the viewer-resolution handler
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		viewer, err := a.resolve(c, raw)
		if err != nil {
			a.logger.Debug("token rejected, continuing anonymous", zap.Error(err))
			c.Next()
			return
		}
		if viewer != nil {
			c.Set(ViewerKey, viewer)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// resolve validates the token and loads the viewer's full visibility state:
// both block directions and the keyword filter set
func (a *Auth) resolve(c *gin.Context, raw string) (*feed.Viewer, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeactivated {
		return nil, nil
	}

	blocked, err := a.users.BlockedIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	blockedBy, err := a.users.BlockerIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	keywords, err := a.users.KeywordFilters(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return feed.NewViewer(
		user.ID,
		user.IsAdmin,
		blocked,
		blockedBy,
		keywords,
		user.ContentFiltering,
		user.ShowSensitiveContent,
	), nil
}

// ViewerFrom extracts the resolved viewer from the request context; nil
// means anonymous
func ViewerFrom(c *gin.Context) *feed.Viewer {
	if v, ok := c.Get(ViewerKey); ok {
		if viewer, ok := v.(*feed.Viewer); ok {
			return viewer
		}
	}
	return nil
}

// RequireViewer rejects anonymous requests
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerFrom(c) == nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from non-admin viewers
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := ViewerFrom(c)
		if viewer == nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !viewer.IsAdmin {
			abort(c, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		c.Next()
	}
}

// abort writes the standard response envelope and stops the chain
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"data":    nil,
		"message": message,
		"error":   gin.H{"code": code, "details": message},
	})
}
