package models

import (
	"time"

	"gorm.io/datatypes"
)

// Coupling records one breeding event between two mounts. Father and
// Mother embed the full parent documents as they were at creation
// time; they are never re-fetched, so the record stays stable when a
// parent is later edited or deleted.
type Coupling struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Father datatypes.JSONType[Mount] `gorm:"not null" json:"father"`
	Mother datatypes.JSONType[Mount] `gorm:"not null" json:"mother"`

	ChildName string `gorm:"type:text;not null" json:"childName"`

	UserID uint64 `gorm:"not null;index" json:"userId"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
