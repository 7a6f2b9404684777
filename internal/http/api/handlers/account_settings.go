package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/models"
)

// AccountSettingsHandler handles the per-user settings row created at
// registration.
type AccountSettingsHandler struct {
	db *gorm.DB
}

// NewAccountSettingsHandler constructs an AccountSettingsHandler.
func NewAccountSettingsHandler(db *gorm.DB) *AccountSettingsHandler {
	return &AccountSettingsHandler{db: db}
}

// Get returns the caller's account settings.
func (h *AccountSettingsHandler) Get(c *gin.Context) {
	userID := getUserID(c)
	settings, ok := getAccountSettingsByUserID(h.db, c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateAccountSettingsRequest defines the partial-update body.
type updateAccountSettingsRequest struct {
	MountTypes        *[]models.MountType `json:"mountTypes"`
	ServerName        *string             `json:"serverName"`
	IGUsername        *string             `json:"igUsername"`
	AutoFillChildName *bool               `json:"autoFillChildName"`
}

// Update applies a partial update to an account settings row. The row
// must belong to the caller; UserID itself never changes.
func (h *AccountSettingsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body updateAccountSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}

	ctx := c.Request.Context()
	var settings models.AccountSettings
	if errFind := h.db.WithContext(ctx).First(&settings, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("Account Settings with id %d was not found", id))
			return
		}
		log.WithError(errFind).Error("account settings lookup failed")
		RespondError(c, KindUnexpected, "could not load the account settings")
		return
	}
	if settings.UserID != getUserID(c) {
		RespondError(c, KindForbidden, "You don't have access to this resource")
		return
	}

	if body.ServerName != nil && strings.TrimSpace(*body.ServerName) != "" {
		exists, errLookup := serverExistsByName(h.db, c, strings.TrimSpace(*body.ServerName))
		if errLookup != nil {
			log.WithError(errLookup).Error("account settings: server lookup failed")
			RespondError(c, KindUnexpected, "could not validate the server name")
			return
		}
		if !exists {
			RespondError(c, KindBadParameter, "serverName is invalid, the requested server doesn't exist")
			return
		}
		settings.ServerName = strings.TrimSpace(*body.ServerName)
	}
	if body.MountTypes != nil {
		for _, mountType := range *body.MountTypes {
			if !mountType.Valid() {
				RespondError(c, KindBadParameter, "unknown mountType: "+string(mountType))
				return
			}
		}
		settings.MountTypes = *body.MountTypes
	}
	if body.IGUsername != nil {
		settings.IGUsername = *body.IGUsername
	}
	if body.AutoFillChildName != nil {
		settings.AutoFillChildName = *body.AutoFillChildName
	}

	if errSave := h.db.WithContext(ctx).Save(&settings).Error; errSave != nil {
		log.WithError(errSave).Error("account settings update failed")
		RespondError(c, KindUnexpected, "could not update the account settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// getAccountSettingsByUserID loads the settings row owned by userID,
// responding NotFound when absent. Shared with the mounts handler for
// the mount-type gate.
func getAccountSettingsByUserID(db *gorm.DB, c *gin.Context, userID uint64) (*models.AccountSettings, bool) {
	var settings models.AccountSettings
	errFind := db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		First(&settings).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("Account Settings with userId %d was not found", userID))
			return nil, false
		}
		log.WithError(errFind).Error("account settings lookup failed")
		RespondError(c, KindUnexpected, "could not load the account settings")
		return nil, false
	}
	return &settings, true
}

// verifyMountType enforces the opt-in gate: a user may only create
// mounts of types present in their account settings.
func verifyMountType(c *gin.Context, settings *models.AccountSettings, mountType models.MountType) bool {
	if !settings.AllowsMountType(mountType) {
		RespondError(c, KindBadParameter,
			"mountType is invalid, the requested mountType isn't in the accountSettings of the user")
		return false
	}
	return true
}
