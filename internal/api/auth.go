package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/config"
	"github.com/murmurapp/murmur/pkg/logging"
)

// UserView is the wire representation of an account
type UserView struct {
	ID                   int64     `json:"id"`
	Handle               string    `json:"handle"`
	DisplayName          string    `json:"display_name"`
	IsAdmin              bool      `json:"is_admin"`
	ContentFiltering     bool      `json:"content_filtering"`
	ShowSensitiveContent bool      `json:"show_sensitive_content"`
	CreatedAt            time.Time `json:"created_at"`
}

func userView(u *models.User) UserView {
	return UserView{
		ID:                   u.ID,
		Handle:               u.Handle,
		DisplayName:          u.DisplayName,
		IsAdmin:              u.IsAdmin,
		ContentFiltering:     u.ContentFiltering,
		ShowSensitiveContent: u.ShowSensitiveContent,
		CreatedAt:            u.CreatedAt,
	}
}

// AuthAPI handles account registration and token issuance. Accounts are
// pseudonymous: a register call needs no credentials and mints a random
// handle; the handle itself is the recovery secret.
type AuthAPI struct {
	users     *db.UserRepository
	cfg       *config.AuthConfig
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewAuthAPI creates a new auth API handler
func NewAuthAPI(repo *db.Repository, cfg *config.AuthConfig) *AuthAPI {
	return &AuthAPI{
		users:     db.NewUserRepository(repo),
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logging.WithComponent("auth-api"),
	}
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
}

type tokenRequest struct {
	Handle string `json:"handle" binding:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// Register creates a pseudonymous account and returns its first token.
// POST /api/v1/auth/register
func (a *AuthAPI) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}

	displayName := truncateRunes(strings.TrimSpace(a.sanitizer.Sanitize(req.DisplayName)), 32)

	user := &models.User{
		Handle:      uuid.NewString(),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),

		ContentFiltering: true,
	}
	if err := a.users.Create(c.Request.Context(), user); err != nil {
		HandleError(c, err)
		return
	}

	token, err := a.mintToken(user.ID)
	if err != nil {
		HandleError(c, err)
		return
	}

	a.logger.Info("account registered", zap.Int64("user_id", user.ID))
	RespondOK(c, http.StatusCreated, authResponse{Token: token, User: userView(user)}, "account created")
}

// Token re-issues a token for an existing handle.
// POST /api/v1/auth/token
func (a *AuthAPI) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeValidation, "handle is required")
		return
	}

	user, err := a.users.GetByHandle(c.Request.Context(), strings.TrimSpace(req.Handle))
	if err != nil {
		HandleError(c, err)
		return
	}
	if user == nil || user.IsDeactivated {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "unknown handle")
		return
	}

	token, err := a.mintToken(user.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, authResponse{Token: token, User: userView(user)}, "token issued")
}

func (a *AuthAPI) mintToken(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.JWTSecret))
}

// truncateRunes shortens s to at most max runes, never splitting a
// multi-byte character.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
