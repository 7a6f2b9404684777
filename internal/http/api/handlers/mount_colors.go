package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/cache"
	"github.com/mountbook/mountbook/internal/models"
)

// MountColorHandler handles the admin-managed color catalog.
type MountColorHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewMountColorHandler constructs a MountColorHandler.
func NewMountColorHandler(db *gorm.DB, c *cache.Cache) *MountColorHandler {
	return &MountColorHandler{db: db, cache: c}
}

type mountColorRequest struct {
	Color     models.ColorLocalize `json:"color"`
	MountType models.MountType     `json:"mountType"`
}

func (r *mountColorRequest) validate(c *gin.Context) bool {
	if r.Color.En == "" && r.Color.Fr == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: color")
		return false
	}
	if !r.MountType.Valid() {
		RespondError(c, KindBadParameter, "unknown mountType: "+string(r.MountType))
		return false
	}
	return true
}

// Create inserts a new catalog color. Admin only.
func (h *MountColorHandler) Create(c *gin.Context) {
	var body mountColorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	if !body.validate(c) {
		return
	}

	ctx := c.Request.Context()
	color := models.MountColor{
		Color:     datatypes.NewJSONType(body.Color),
		MountType: body.MountType,
	}
	if errCreate := h.db.WithContext(ctx).Create(&color).Error; errCreate != nil {
		log.WithError(errCreate).Error("mount color create failed")
		RespondError(c, KindUnexpected, "could not create the mount color")
		return
	}
	h.cache.Invalidate(ctx, cache.ColorsGroupedKey())
	c.JSON(http.StatusCreated, color)
}

// Update replaces an existing catalog entry. Admin only.
func (h *MountColorHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body mountColorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	if !body.validate(c) {
		return
	}

	ctx := c.Request.Context()
	var color models.MountColor
	if errFind := h.db.WithContext(ctx).First(&color, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("MountColor with id %d was not found", id))
			return
		}
		log.WithError(errFind).Error("mount color lookup failed")
		RespondError(c, KindUnexpected, "could not load the mount color")
		return
	}

	color.Color = datatypes.NewJSONType(body.Color)
	color.MountType = body.MountType
	if errSave := h.db.WithContext(ctx).Save(&color).Error; errSave != nil {
		log.WithError(errSave).Error("mount color update failed")
		RespondError(c, KindUnexpected, "could not update the mount color")
		return
	}
	h.cache.Invalidate(ctx, cache.ColorsGroupedKey())
	c.JSON(http.StatusOK, color)
}

// Delete removes a catalog entry. Admin only.
func (h *MountColorHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	result := h.db.WithContext(ctx).Delete(&models.MountColor{}, id)
	if result.Error != nil {
		log.WithError(result.Error).Error("mount color delete failed")
		RespondError(c, KindUnexpected, "could not delete the mount color")
		return
	}
	if result.RowsAffected == 0 {
		RespondError(c, KindNotFound, fmt.Sprintf("MountColor with id %d was not found", id))
		return
	}
	h.cache.Invalidate(ctx, cache.ColorsGroupedKey())
	c.Status(http.StatusNoContent)
}

// colorGroup is one entry of the grouped catalog response.
type colorGroup struct {
	Type   models.MountType    `json:"type"`
	Colors []models.MountColor `json:"colors"`
}

// ListGroupedByType returns the whole catalog grouped by mount type,
// served from cache when possible.
func (h *MountColorHandler) ListGroupedByType(c *gin.Context) {
	ctx := c.Request.Context()

	var groups []colorGroup
	if h.cache.GetJSON(ctx, cache.ColorsGroupedKey(), &groups) {
		c.JSON(http.StatusOK, groups)
		return
	}

	var colors []models.MountColor
	if errFind := h.db.WithContext(ctx).
		Order("mount_type ASC, id ASC").
		Find(&colors).Error; errFind != nil {
		log.WithError(errFind).Error("mount color list failed")
		RespondError(c, KindUnexpected, "could not list mount colors")
		return
	}

	groups = make([]colorGroup, 0)
	for _, color := range colors {
		if len(groups) == 0 || groups[len(groups)-1].Type != color.MountType {
			groups = append(groups, colorGroup{Type: color.MountType})
		}
		last := &groups[len(groups)-1]
		last.Colors = append(last.Colors, color)
	}

	h.cache.SetJSON(ctx, cache.ColorsGroupedKey(), groups)
	c.JSON(http.StatusOK, groups)
}

// getMountColorByID loads a catalog entry, responding NotFound when
// absent. Shared with the mounts handler for color resolution.
func getMountColorByID(db *gorm.DB, c *gin.Context, id uint64) (*models.MountColor, bool) {
	var color models.MountColor
	if errFind := db.WithContext(c.Request.Context()).First(&color, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("MountColor with id %d was not found", id))
			return nil, false
		}
		log.WithError(errFind).Error("mount color lookup failed")
		RespondError(c, KindUnexpected, "could not load the mount color")
		return nil, false
	}
	return &color, true
}
