package models

import (
	"database/sql"
	"regexp"
	"strings"
	"time"
)

// Post represents a post or comment (comments carry a parent_id)
type Post struct {
	ID               int64         `gorm:"primaryKey;autoIncrement;column:id"`
	ParentID         sql.NullInt64 `gorm:"column:parent_id;index"`
	AuthorID         int64         `gorm:"not null;column:author_id;index"`
	AuthorName       string        `gorm:"type:varchar(32);not null;column:author_name"`
	Body             string        `gorm:"type:varchar(2000);not null;column:body"`
	Category         string        `gorm:"type:varchar(32);not null;default:'';column:category;index"`
	ContentWarning   string        `gorm:"type:varchar(120);not null;default:'';column:content_warning"`
	Visibility       string        `gorm:"type:varchar(12);not null;default:'public';column:visibility;index"`
	ModerationReason string        `gorm:"type:varchar(255);not null;default:'';column:moderation_reason"`
	CreatedAt        time.Time     `gorm:"not null;column:created_at"`
	UpdatedAt        time.Time     `gorm:"not null;column:updated_at"`
	CommentCount     int64         `gorm:"not null;default:0;column:comment_count"`
	ImpressionCount  int64         `gorm:"not null;default:0;column:impression_count"`
	ShareCount       int64         `gorm:"not null;default:0;column:share_count"`
	SaveCount        int64         `gorm:"not null;default:0;column:save_count"`
	Score            float64       `gorm:"not null;default:0;column:score;index"`

	// Loaded from murmur_reaction_counts, never persisted with the post
	ReactionTotal int64 `gorm:"-" json:"reaction_total"`

	// Relationships
	Parent   *Post  `gorm:"foreignKey:ParentID;references:ID"`
	Children []Post `gorm:"foreignKey:ParentID;references:ID"`
	Author   *User  `gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "murmur_posts"
}

// IsComment reports whether the post is a reply to another post
func (p *Post) IsComment() bool {
	return p.ParentID.Valid
}

// Visibility state constants
const (
	VisibilityPublic    = "public"
	VisibilityModerated = "moderated"
	VisibilityDeleted   = "deleted"
)

// ValidVisibility reports whether v is a recognized visibility state
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityModerated, VisibilityDeleted:
		return true
	}
	return false
}

// PostHashtag represents a post-to-hashtag mapping
type PostHashtag struct {
	PostID  int64  `gorm:"primaryKey;column:post_id"`
	Hashtag string `gorm:"type:varchar(64);primaryKey;column:hashtag"`
}

// TableName specifies the table name for PostHashtag
func (PostHashtag) TableName() string {
	return "murmur_post_hashtags"
}

var hashtagPattern = regexp.MustCompile(`#([a-z0-9]+)`)

// ExtractHashtags derives the hashtag set of a body: lowercase alphanumeric
// runs following '#', deduplicated, in order of first appearance. Called every
// time a body is created or edited so stored hashtags stay derived state.
func ExtractHashtags(body string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(strings.ToLower(body), -1)
	seen := make(map[string]bool, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			tags = append(tags, m[1])
		}
	}
	return tags
}
