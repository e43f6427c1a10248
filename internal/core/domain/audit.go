package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an admin action recorded by the backend.
type AuditLog struct {
	ID         string          `json:"id"`
	AdminID    string          `json:"admin_id"`
	AdminName  *string         `json:"admin_name"`
	ActionType string          `json:"action_type"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  *string         `json:"ip_address"`
	UserAgent  *string         `json:"user_agent"`
	CreatedAt  time.Time       `json:"created_at"`
}
