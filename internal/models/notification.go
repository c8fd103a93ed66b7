package models

import (
	"database/sql"
	"time"
)

// Notification represents a notification
type Notification struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	Type      int16         `gorm:"type:smallint;not null;column:type_id"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`
	SrcID     sql.NullInt64 `gorm:"column:src_id"`
	DstID     int64         `gorm:"not null;column:dst_id;index"`
	PostID    sql.NullInt64 `gorm:"column:post_id"`
	ReadAt    sql.NullTime  `gorm:"column:read_at"`

	// Relationships
	Src  *User `gorm:"foreignKey:SrcID;references:ID"`
	Dst  *User `gorm:"foreignKey:DstID;references:ID"`
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "murmur_notifications"
}

// Notification type constants
const (
	NotifyTypeReaction   int16 = 1
	NotifyTypeComment    int16 = 2
	NotifyTypeReply      int16 = 3
	NotifyTypeModeration int16 = 4
)

// NotifyTypeName returns the wire name of a notification type
func NotifyTypeName(typeID int16) string {
	switch typeID {
	case NotifyTypeReaction:
		return "reaction"
	case NotifyTypeComment:
		return "comment"
	case NotifyTypeReply:
		return "reply"
	case NotifyTypeModeration:
		return "moderation"
	default:
		return "unknown"
	}
}
