package models

import (
	"time"
)

// Reaction kind constants. The set is closed: mutations against any other
// kind are rejected before they reach the store.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionLaugh = "laugh"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// ReactionKinds lists every allowed reaction kind
var ReactionKinds = []string{
	ReactionLike,
	ReactionLove,
	ReactionLaugh,
	ReactionSad,
	ReactionAngry,
}

// ValidReactionKind reports whether kind belongs to the closed set
func ValidReactionKind(kind string) bool {
	for _, k := range ReactionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Reaction represents a single user's reaction of one kind to a post
type Reaction struct {
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	UserID    int64     `gorm:"primaryKey;column:user_id"`
	Kind      string    `gorm:"type:varchar(8);primaryKey;column:kind"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
	User *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Reaction
func (Reaction) TableName() string {
	return "murmur_reactions"
}

// ReactionCount caches the per-kind reactor count of a post. Rows are
// incremented/decremented in the same transaction as the Reaction row so
// count always equals the cardinality of the reactor set.
type ReactionCount struct {
	PostID int64  `gorm:"primaryKey;column:post_id"`
	Kind   string `gorm:"type:varchar(8);primaryKey;column:kind"`
	Count  int64  `gorm:"not null;default:0;column:count"`
}

// TableName specifies the table name for ReactionCount
func (ReactionCount) TableName() string {
	return "murmur_reaction_counts"
}
