package models

import "time"

// AuditLog records a change made to a catalog table
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Action      string    `gorm:"not null;index" json:"action"`  // e.g., "create_role", "seed_component"
	Resource    string    `gorm:"not null" json:"resource"`      // e.g., "role:3"
	RemoteAddr  string    `json:"remote_addr,omitempty"`         // Client address, empty for CLI actions
	DetailsJSON string    `gorm:"type:text" json:"details_json"` // Additional context in JSON
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
