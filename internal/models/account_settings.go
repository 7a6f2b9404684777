package models

import (
	"time"

	"gorm.io/datatypes"
)

// AccountSettings holds the per-user configuration created at
// registration. MountTypes gatekeeps which mount types the user may
// create; exactly one row exists per user and UserID never changes.
type AccountSettings struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint64 `gorm:"not null;uniqueIndex" json:"userId"`

	MountTypes        datatypes.JSONSlice[MountType] `gorm:"not null" json:"mountTypes"`
	ServerName        string                         `gorm:"type:text" json:"serverName"`
	IGUsername        string                         `gorm:"type:text" json:"igUsername"` // In-game username.
	AutoFillChildName bool                           `gorm:"not null;default:false" json:"autoFillChildName"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// AllowsMountType reports whether the user opted into the given type.
func (s *AccountSettings) AllowsMountType(t MountType) bool {
	for _, allowed := range s.MountTypes {
		if allowed == t {
			return true
		}
	}
	return false
}
