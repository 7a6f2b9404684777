package models

import (
	"time"

	"gorm.io/datatypes"
)

// ColorLocalize holds the localized display text of a color.
type ColorLocalize struct {
	En string `json:"en"`
	Fr string `json:"fr"`
}

// MountColor is an admin-managed catalog entry mapping a color to a
// mount type. Mounts reference it by id and copy its color text at
// creation time.
type MountColor struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Color     datatypes.JSONType[ColorLocalize] `gorm:"not null" json:"color"`
	MountType MountType                         `gorm:"type:text;not null;index" json:"mountType"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
