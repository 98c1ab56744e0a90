package models

import (
	"time"

	"gorm.io/datatypes"
)

// Log roles written by the chatbot backend
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LogEntry is one chat interaction, appended by the chatbot backend and read
// only by the dashboard
type LogEntry struct {
	ID        string         `json:"id" gorm:"column:id;type:text;primaryKey"`
	Role      string         `json:"role" gorm:"column:role;type:text;index"`
	Content   string         `json:"content" gorm:"column:content;type:text"`
	SessionID string         `json:"sessionId" gorm:"column:session_id;type:text;index"`
	IP        string         `json:"ip" gorm:"column:ip;type:text"`
	Timestamp *time.Time     `json:"timestamp,omitempty" gorm:"column:timestamp;index"`
	Extra     datatypes.JSON `json:"extra,omitempty" gorm:"column:extra;type:jsonb"`
}

// TableName specifies the table name
func (LogEntry) TableName() string {
	return "rigbot_logs"
}

// HasTimestamp reports whether the backend recorded a timestamp
func (l LogEntry) HasTimestamp() bool {
	return l.Timestamp != nil && !l.Timestamp.IsZero()
}
