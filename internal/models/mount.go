package models

import (
	"time"

	"gorm.io/datatypes"
)

// MountType identifies the species of a mount.
type MountType string

// Known mount types.
const (
	TypeDragodinde MountType = "Dragodinde"
	TypeMuldo      MountType = "Muldo"
	TypeVolkorne   MountType = "Volkorne"
)

// AllMountTypes lists every known mount type.
var AllMountTypes = []MountType{TypeDragodinde, TypeMuldo, TypeVolkorne}

// Valid reports whether the type is a known value.
func (t MountType) Valid() bool {
	for _, known := range AllMountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ValidMaxNumberOfChild reports whether the breeding-capacity cap is
// allowed for this mount type. Dragodindes always carry exactly 5,
// Muldos between 2 and 4, Volkornes exactly 2.
func (t MountType) ValidMaxNumberOfChild(max int) bool {
	switch t {
	case TypeDragodinde:
		return max == 5
	case TypeMuldo:
		return max >= 2 && max <= 4
	case TypeVolkorne:
		return max == 2
	}
	return false
}

// MountGender identifies the gender of a mount.
type MountGender string

// Mount genders.
const (
	GenderMale   MountGender = "Male"
	GenderFemale MountGender = "Female"
)

// Valid reports whether the gender is a known value.
func (g MountGender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Mount represents a user-owned creature record.
type Mount struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name   string      `gorm:"type:text;not null;index" json:"name"`
	Gender MountGender `gorm:"type:text;not null" json:"gender"`

	ColorID uint64                             `gorm:"not null;index" json:"colorId"` // Source catalog entry.
	Color   datatypes.JSONType[ColorLocalize]  `gorm:"not null" json:"color"`         // Localized color text, copied from the catalog.
	Type    MountType                          `gorm:"type:text;not null;index" json:"type"`

	UserID uint64 `gorm:"not null;index" json:"userId"` // Owner.

	MaxNumberOfChild int `gorm:"not null" json:"maxNumberOfChild"`
	NumberOfChild    int `gorm:"not null;default:0" json:"numberOfChild"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
