package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/middleware"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/logging"
)

// ViewerAPI handles the authenticated account's own surface: profile,
// content filters, blocks and notifications
type ViewerAPI struct {
	users  *db.UserRepository
	notifs *db.NotificationRepository
	logger *zap.Logger
}

// NewViewerAPI creates a new viewer API handler
func NewViewerAPI(repo *db.Repository) *ViewerAPI {
	return &ViewerAPI{
		users:  db.NewUserRepository(repo),
		notifs: db.NewNotificationRepository(repo),
		logger: logging.WithComponent("viewer-api"),
	}
}

// Me returns the viewer's own account.
// GET /api/v1/me
func (v *ViewerAPI) Me(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	user, err := v.users.GetByID(c.Request.Context(), viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if user == nil {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "account not found")
		return
	}
	RespondOK(c, http.StatusOK, userView(user), "")
}

type filtersRequest struct {
	ContentFiltering     *bool    `json:"content_filtering"`
	ShowSensitiveContent *bool    `json:"show_sensitive_content"`
	Keywords             []string `json:"keywords"`
}

type filtersResponse struct {
	ContentFiltering     bool     `json:"content_filtering"`
	ShowSensitiveContent bool     `json:"show_sensitive_content"`
	Keywords             []string `json:"keywords"`
}

// Filters returns the viewer's content filter settings.
// GET /api/v1/me/filters
func (v *ViewerAPI) Filters(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	user, err := v.users.GetByID(c.Request.Context(), viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if user == nil {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "account not found")
		return
	}
	keywords, err := v.users.KeywordFilters(c.Request.Context(), viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if keywords == nil {
		keywords = []string{}
	}
	RespondOK(c, http.StatusOK, filtersResponse{
		ContentFiltering:     user.ContentFiltering,
		ShowSensitiveContent: user.ShowSensitiveContent,
		Keywords:             keywords,
	}, "")
}

// UpdateFilters replaces the viewer's content filter settings. Omitted toggle
// fields keep their current value; a present keywords field replaces the set.
// PUT /api/v1/me/filters
func (v *ViewerAPI) UpdateFilters(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()

	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeValidation, "invalid request body")
		return
	}

	user, err := v.users.GetByID(ctx, viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if user == nil {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "account not found")
		return
	}

	if req.ContentFiltering != nil {
		user.ContentFiltering = *req.ContentFiltering
	}
	if req.ShowSensitiveContent != nil {
		user.ShowSensitiveContent = *req.ShowSensitiveContent
	}
	if err := v.users.Update(ctx, user); err != nil {
		HandleError(c, err)
		return
	}

	if req.Keywords != nil {
		if len(req.Keywords) > 100 {
			RespondError(c, http.StatusBadRequest, CodeValidation, "too many keyword filters")
			return
		}
		if err := v.users.ReplaceKeywordFilters(ctx, viewer.ID, req.Keywords); err != nil {
			HandleError(c, err)
			return
		}
	}
	RespondOK(c, http.StatusOK, nil, "filters updated")
}

// Blocks lists the IDs the viewer blocks.
// GET /api/v1/me/blocks
func (v *ViewerAPI) Blocks(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	ids, err := v.users.BlockedIDs(c.Request.Context(), viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	RespondOK(c, http.StatusOK, gin.H{"blocked_ids": ids}, "")
}

// AddBlock blocks a user. Blocking hides content in both directions.
// PUT /api/v1/me/blocks/:id
func (v *ViewerAPI) AddBlock(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if id == viewer.ID {
		RespondError(c, http.StatusBadRequest, CodeValidation, "cannot block yourself")
		return
	}

	target, err := v.users.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if target == nil {
		RespondError(c, http.StatusNotFound, CodeNotFound, "user not found")
		return
	}

	if err := v.users.AddBlock(c.Request.Context(), viewer.ID, id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, nil, "user blocked")
}

// RemoveBlock unblocks a user.
// DELETE /api/v1/me/blocks/:id
func (v *ViewerAPI) RemoveBlock(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := v.users.RemoveBlock(c.Request.Context(), viewer.ID, id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, nil, "user unblocked")
}

// NotificationView is the wire representation of a notification
type NotificationView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	SrcID     *int64    `json:"src_id,omitempty"`
	PostID    *int64    `json:"post_id,omitempty"`
	Read      bool      `json:"read"`
}

// Notifications lists the viewer's notifications, newest first. The before
// query parameter pages backwards by notification ID.
// GET /api/v1/me/notifications
func (v *ViewerAPI) Notifications(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	beforeID, _ := strconv.ParseInt(c.Query("before"), 10, 64)

	rows, err := v.notifs.ListForUser(ctx, viewer.ID, beforeID, limit+1)
	if err != nil {
		HandleError(c, err)
		return
	}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	unread, err := v.notifs.UnreadCount(ctx, viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}

	views := make([]NotificationView, len(rows))
	for i, n := range rows {
		view := NotificationView{
			ID:        n.ID,
			Type:      models.NotifyTypeName(n.Type),
			CreatedAt: n.CreatedAt,
			Read:      n.ReadAt.Valid,
		}
		if n.SrcID.Valid {
			src := n.SrcID.Int64
			view.SrcID = &src
		}
		if n.PostID.Valid {
			post := n.PostID.Int64
			view.PostID = &post
		}
		views[i] = view
	}

	RespondOK(c, http.StatusOK, gin.H{
		"notifications": views,
		"unread_count":  unread,
		"has_more":      hasMore,
	}, "")
}

type markReadRequest struct {
	LastID int64 `json:"last_id" binding:"required"`
}

// MarkNotificationsRead marks notifications up to last_id as read.
// POST /api/v1/me/notifications/read
func (v *ViewerAPI) MarkNotificationsRead(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LastID <= 0 {
		RespondError(c, http.StatusBadRequest, CodeValidation, "last_id is required")
		return
	}
	if err := v.notifs.MarkRead(c.Request.Context(), viewer.ID, req.LastID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, nil, "notifications marked read")
}

// Deactivate flags the viewer's account as deactivated. Content stays; the
// flag only ends the account's ability to act.
// DELETE /api/v1/me
func (v *ViewerAPI) Deactivate(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	ctx := c.Request.Context()

	user, err := v.users.GetByID(ctx, viewer.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if user == nil {
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "account not found")
		return
	}

	user.IsDeactivated = true
	if err := v.users.Update(ctx, user); err != nil {
		HandleError(c, err)
		return
	}
	v.logger.Info("account deactivated", zap.Int64("user_id", user.ID))
	RespondOK(c, http.StatusOK, nil, "account deactivated")
}
