package models

import "time"

// ServerConfigKeyServerID holds the identifier generated on first start.
const ServerConfigKeyServerID = "server_id"

// ServerConfig is a key/value row describing this registrar instance.
type ServerConfig struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the server_configs table name.
func (ServerConfig) TableName() string { return "server_configs" }
