package models

import (
	"time"
)

// Category represents a posting category. The set is seeded at startup and
// posts reference categories by name.
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `gorm:"type:varchar(32);not null;uniqueIndex:murmur_categories_ux1;column:name"`
	Title       string    `gorm:"type:varchar(64);not null;default:'';column:title"`
	Description string    `gorm:"type:varchar(255);not null;default:'';column:description"`
	IsSensitive bool      `gorm:"not null;default:false;column:is_sensitive"`
	PostCount   int64     `gorm:"not null;default:0;column:post_count"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "murmur_categories"
}

// SavedPost represents a user's bookmark of a post. The autoincrement ID is
// the sort key for the saved-posts listing, so pages follow save order.
type SavedPost struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `gorm:"not null;uniqueIndex:murmur_saved_ux1;column:user_id"`
	PostID    int64     `gorm:"not null;uniqueIndex:murmur_saved_ux1;column:post_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for SavedPost
func (SavedPost) TableName() string {
	return "murmur_saved_posts"
}
