package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth     = "auth"
	EventCategoryPost     = "post"
	EventCategoryComment  = "comment"
	EventCategoryUser     = "user"
	EventCategorySettings = "settings"
	EventCategoryMedia    = "media"
	EventCategorySystem   = "system"
)

// Event represents an activity log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress string
	Metadata  string // JSON string
	CreatedAt time.Time
}
