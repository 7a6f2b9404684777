package models

import "time"

// Server is an admin-managed game server entry, referenced by name
// from account settings.
type Server struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ServerName string `gorm:"type:text;not null;uniqueIndex" json:"serverName"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
