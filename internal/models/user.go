package models

import (
	"time"
)

// User represents a pseudonymous account
type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Handle      string `gorm:"type:varchar(36);not null;uniqueIndex:murmur_users_ux1;column:handle"`
	DisplayName string `gorm:"type:varchar(32);not null;default:'';column:display_name"`
	IsAdmin     bool   `gorm:"not null;default:false;column:is_admin"`

	// Deactivation is a flag, never row deletion
	IsDeactivated bool `gorm:"not null;default:false;column:is_deactivated"`

	// Content filter preferences
	ContentFiltering     bool `gorm:"not null;default:true;column:content_filtering"`
	ShowSensitiveContent bool `gorm:"not null;default:false;column:show_sensitive_content"`

	CreatedAt    time.Time `gorm:"not null;column:created_at"`
	LastActiveAt time.Time `gorm:"not null;default:'1970-01-01 00:00:00';column:last_active_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "murmur_users"
}

// Block represents a block relationship. Visibility checks are symmetric:
// either direction hides content both ways.
type Block struct {
	BlockerID int64     `gorm:"primaryKey;column:blocker_id"`
	BlockedID int64     `gorm:"primaryKey;column:blocked_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Blocker *User `gorm:"foreignKey:BlockerID;references:ID"`
	Blocked *User `gorm:"foreignKey:BlockedID;references:ID"`
}

// TableName specifies the table name for Block
func (Block) TableName() string {
	return "murmur_blocks"
}

// KeywordFilter represents a single muted keyword of a user, stored lowercase
type KeywordFilter struct {
	UserID  int64  `gorm:"primaryKey;column:user_id"`
	Keyword string `gorm:"type:varchar(64);primaryKey;column:keyword"`
}

// TableName specifies the table name for KeywordFilter
func (KeywordFilter) TableName() string {
	return "murmur_keyword_filters"
}
