package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Actions recorded by the dashboard
const (
	ActionUpdate     = "update"
	ActionDisconnect = "disconnect"
)

// AuditLog represents a profile change audit entry
type AuditLog struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// Context
	ClientID string `json:"client_id" gorm:"type:text;not null;index"`
	ActorID  string `json:"actor_id" gorm:"type:text;index"`

	// Action details
	Action   string `json:"action" gorm:"type:text;not null;index"`
	Entity   string `json:"entity" gorm:"type:text;not null;index"` // page that performed the change
	EntityID string `json:"entity_id" gorm:"type:text;index"`

	// Change tracking
	OldValue datatypes.JSON `json:"old_value,omitempty" gorm:"type:jsonb"`
	NewValue datatypes.JSON `json:"new_value,omitempty" gorm:"type:jsonb"`

	// Request metadata
	IPAddress string `json:"ip_address,omitempty" gorm:"type:text"`
	UserAgent string `json:"user_agent,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "profile_audit_logs"
}

// Change is what callers hand to Store.LogChange
type Change struct {
	ClientID  string
	ActorID   string
	Action    string
	Entity    string
	OldValue  interface{}
	NewValue  interface{}
	IPAddress string
	UserAgent string
}
