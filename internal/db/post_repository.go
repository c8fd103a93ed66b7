package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/murmurapp/murmur/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a post together with its derived hashtag rows
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, tag := range models.ExtractHashtags(post.Body) {
			if err := tx.Create(&models.PostHashtag{PostID: post.ID, Hashtag: tag}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateBody replaces a post's body and recomputes its hashtag rows
func (r *PostRepository) UpdateBody(ctx context.Context, post *models.Post, body string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post.Body = body
		post.UpdatedAt = time.Now().UTC()
		if err := tx.Model(post).
			Select("body", "updated_at").
			Updates(post).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostHashtag{}).Error; err != nil {
			return err
		}
		for _, tag := range models.ExtractHashtags(body) {
			if err := tx.Create(&models.PostHashtag{PostID: post.ID, Hashtag: tag}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetVisibility transitions a post's visibility state
func (r *PostRepository) SetVisibility(ctx context.Context, id int64, visibility, reason string) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"visibility":        visibility,
			"moderation_reason": reason,
			"updated_at":        time.Now().UTC(),
		}).Error
}

// IncrementCounter atomically adjusts one of the post counters by delta.
// Allowed columns are fixed; callers pass one of the Counter* constants.
func (r *PostRepository) IncrementCounter(ctx context.Context, id int64, column string, delta int64) error {
	switch column {
	case CounterComments, CounterImpressions, CounterShares, CounterSaves:
	default:
		return errors.New("unknown counter column: " + column)
	}
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// Post counter columns
const (
	CounterComments    = "comment_count"
	CounterImpressions = "impression_count"
	CounterShares      = "share_count"
	CounterSaves       = "save_count"
)

// UpdateScore persists a recomputed engagement score
func (r *PostRepository) UpdateScore(ctx context.Context, id int64, score float64) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("score", score).Error
}

// LoadReactionTotals fills ReactionTotal on each post from the per-kind
// count rows in one grouped query
func (r *PostRepository) LoadReactionTotals(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var rows []struct {
		PostID int64 `gorm:"column:post_id"`
		Total  int64 `gorm:"column:total"`
	}
	if err := r.db.WithContext(ctx).Model(&models.ReactionCount{}).
		Select("post_id, SUM(count) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	totals := make(map[int64]int64, len(rows))
	for _, row := range rows {
		totals[row.PostID] = row.Total
	}
	for _, p := range posts {
		p.ReactionTotal = totals[p.ID]
	}
	return nil
}

// SavedRepository provides saved-post database operations
type SavedRepository struct {
	*Repository
}

// NewSavedRepository creates a new saved-post repository
func NewSavedRepository(repo *Repository) *SavedRepository {
	return &SavedRepository{Repository: repo}
}

// Save bookmarks a post for a user. Returns true when a new bookmark row
// was created (repeat saves are no-ops and do not bump the counter).
func (r *SavedRepository) Save(ctx context.Context, userID, postID int64) (bool, error) {
	var existing models.SavedPost
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	saved := &models.SavedPost{UserID: userID, PostID: postID, CreatedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Create(saved).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Unsave removes a bookmark; returns true when a row was deleted
func (r *SavedRepository) Unsave(ctx context.Context, userID, postID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HashtagRepository provides hashtag aggregation queries
type HashtagRepository struct {
	*Repository
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(repo *Repository) *HashtagRepository {
	return &HashtagRepository{Repository: repo}
}

// HashtagCount is one row of the trending-hashtags aggregation
type HashtagCount struct {
	Hashtag string `gorm:"column:hashtag" json:"hashtag"`
	Count   int64  `gorm:"column:count" json:"count"`
}

// Trending returns the most-used hashtags across public posts created in
// the given window, grouped and ordered by use count
func (r *HashtagRepository) Trending(ctx context.Context, since time.Time, limit int) ([]HashtagCount, error) {
	var rows []HashtagCount
	if err := r.db.WithContext(ctx).Model(&models.PostHashtag{}).
		Select("hashtag, COUNT(*) AS count").
		Joins("INNER JOIN murmur_posts ON murmur_posts.id = murmur_post_hashtags.post_id").
		Where("murmur_posts.visibility = ? AND murmur_posts.created_at >= ?", models.VisibilityPublic, since).
		Group("hashtag").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
