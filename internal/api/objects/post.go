package objects

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/murmurapp/murmur/internal/feed"
	"github.com/murmurapp/murmur/internal/models"
)

// PostView is the wire representation of a post or comment
type PostView struct {
	ID              int64            `json:"id"`
	ParentID        *int64           `json:"parent_id,omitempty"`
	AuthorID        int64            `json:"author_id"`
	AuthorName      string           `json:"author_name"`
	Body            string           `json:"body"`
	Category        string           `json:"category,omitempty"`
	ContentWarning  string           `json:"content_warning,omitempty"`
	Visibility      string           `json:"visibility"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	CommentCount    int64            `json:"comment_count"`
	ImpressionCount int64            `json:"impression_count"`
	ShareCount      int64            `json:"share_count"`
	SaveCount       int64            `json:"save_count"`
	Score           float64          `json:"score"`
	ReactionTotal   int64            `json:"reaction_total"`
	Reactions       map[string]int64 `json:"reactions"`
	Hashtags        []string         `json:"hashtags"`
	ViewerReactions []string         `json:"viewer_reactions,omitempty"`
}

// PostLoader assembles complete post views from database rows
type PostLoader struct {
	db *gorm.DB
}

// NewPostLoader creates a new post loader
func NewPostLoader(database *gorm.DB) *PostLoader {
	return &PostLoader{db: database}
}

// Views builds wire views for a page of posts in three batched queries:
// per-kind reaction counts, hashtags, and the viewer's own reactions
func (l *PostLoader) Views(ctx context.Context, posts []*models.Post, viewer *feed.Viewer) ([]PostView, error) {
	if len(posts) == 0 {
		return []PostView{}, nil
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var counts []models.ReactionCount
	if err := l.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to load reaction counts: %w", err)
	}
	countsByPost := make(map[int64]map[string]int64, len(posts))
	for _, row := range counts {
		if countsByPost[row.PostID] == nil {
			countsByPost[row.PostID] = make(map[string]int64)
		}
		countsByPost[row.PostID][row.Kind] = row.Count
	}

	var hashtags []models.PostHashtag
	if err := l.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Find(&hashtags).Error; err != nil {
		return nil, fmt.Errorf("failed to load hashtags: %w", err)
	}
	tagsByPost := make(map[int64][]string, len(posts))
	for _, row := range hashtags {
		tagsByPost[row.PostID] = append(tagsByPost[row.PostID], row.Hashtag)
	}

	viewerKinds := make(map[int64][]string)
	if viewer != nil {
		var reactions []models.Reaction
		if err := l.db.WithContext(ctx).
			Where("post_id IN ? AND user_id = ?", ids, viewer.ID).
			Find(&reactions).Error; err != nil {
			return nil, fmt.Errorf("failed to load viewer reactions: %w", err)
		}
		for _, row := range reactions {
			viewerKinds[row.PostID] = append(viewerKinds[row.PostID], row.Kind)
		}
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		view := PostView{
			ID:              p.ID,
			AuthorID:        p.AuthorID,
			AuthorName:      p.AuthorName,
			Body:            p.Body,
			Category:        p.Category,
			ContentWarning:  p.ContentWarning,
			Visibility:      p.Visibility,
			CreatedAt:       p.CreatedAt,
			UpdatedAt:       p.UpdatedAt,
			CommentCount:    p.CommentCount,
			ImpressionCount: p.ImpressionCount,
			ShareCount:      p.ShareCount,
			SaveCount:       p.SaveCount,
			Score:           p.Score,
			ReactionTotal:   p.ReactionTotal,
			Reactions:       countsByPost[p.ID],
			Hashtags:        tagsByPost[p.ID],
			ViewerReactions: viewerKinds[p.ID],
		}
		if view.Reactions == nil {
			view.Reactions = map[string]int64{}
		}
		if view.Hashtags == nil {
			view.Hashtags = []string{}
		}
		if p.ParentID.Valid {
			parentID := p.ParentID.Int64
			view.ParentID = &parentID
		}
		views[i] = view
	}
	return views, nil
}

// View builds the wire view of a single post
func (l *PostLoader) View(ctx context.Context, post *models.Post, viewer *feed.Viewer) (*PostView, error) {
	views, err := l.Views(ctx, []*models.Post{post}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
