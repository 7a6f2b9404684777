package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbpkg "github.com/mountbook/mountbook/internal/db"
	"github.com/mountbook/mountbook/internal/models"
)

// errMaxChildExceeded signals that a breeding increment would push a
// mount past its capacity cap.
var errMaxChildExceeded = errors.New("exceeding maxNumberOfChild")

// MountHandler handles the per-user mount registry.
type MountHandler struct {
	db *gorm.DB
}

// NewMountHandler constructs a MountHandler.
func NewMountHandler(db *gorm.DB) *MountHandler {
	return &MountHandler{db: db}
}

// createMountRequest defines the creation body for a mount.
type createMountRequest struct {
	Name             string             `json:"name"`
	ColorID          uint64             `json:"colorId"`
	Gender           models.MountGender `json:"gender"`
	MaxNumberOfChild int                `json:"maxNumberOfChild"`
}

// buildMount validates a creation request and assembles the mount
// model: the color resolves the type, the account settings gate the
// type, and the capacity cap must fit the type's bounds. Shared by
// Create and CreateBulk.
func (h *MountHandler) buildMount(c *gin.Context, dto createMountRequest, userID uint64) (*models.Mount, bool) {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: name")
		return nil, false
	}
	if len(dto.Name) > maxNameLength {
		RespondError(c, KindBadParameter, "name must be 16 characters or fewer")
		return nil, false
	}
	if !dto.Gender.Valid() {
		RespondError(c, KindBadParameter, "unknown gender: "+string(dto.Gender))
		return nil, false
	}
	if dto.ColorID == 0 {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: colorId")
		return nil, false
	}

	color, ok := getMountColorByID(h.db, c, dto.ColorID)
	if !ok {
		return nil, false
	}
	settings, ok := getAccountSettingsByUserID(h.db, c, userID)
	if !ok {
		return nil, false
	}
	if !verifyMountType(c, settings, color.MountType) {
		return nil, false
	}
	if !color.MountType.ValidMaxNumberOfChild(dto.MaxNumberOfChild) {
		RespondError(c, KindBadParameter, "maxNumberOfChild value is invalid")
		return nil, false
	}

	return &models.Mount{
		Name:             dto.Name,
		Gender:           dto.Gender,
		ColorID:          color.ID,
		Color:            color.Color,
		Type:             color.MountType,
		UserID:           userID,
		MaxNumberOfChild: dto.MaxNumberOfChild,
		NumberOfChild:    0,
	}, true
}

// Create inserts a new mount owned by the caller.
func (h *MountHandler) Create(c *gin.Context) {
	var body createMountRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	mount, ok := h.buildMount(c, body, getUserID(c))
	if !ok {
		return
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(mount).Error; errCreate != nil {
		log.WithError(errCreate).Error("mount create failed")
		RespondError(c, KindUnexpected, "could not create the mount")
		return
	}
	c.JSON(http.StatusCreated, mount)
}

// createMountsRequest defines the bulk creation body.
type createMountsRequest struct {
	Mounts []createMountRequest `json:"mounts"`
}

// CreateBulk validates and inserts several mounts in one call. Every
// entry must pass validation before anything is written.
func (h *MountHandler) CreateBulk(c *gin.Context) {
	var body createMountsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	if len(body.Mounts) == 0 {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: mounts")
		return
	}

	userID := getUserID(c)
	mounts := make([]models.Mount, 0, len(body.Mounts))
	for _, dto := range body.Mounts {
		mount, ok := h.buildMount(c, dto, userID)
		if !ok {
			return
		}
		mounts = append(mounts, *mount)
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&mounts).Error; errCreate != nil {
		log.WithError(errCreate).Error("bulk mount create failed")
		RespondError(c, KindUnexpected, "could not create the mounts")
		return
	}
	c.JSON(http.StatusCreated, mounts)
}

// updateMountRequest defines the partial-update body for a mount.
type updateMountRequest struct {
	Name             *string             `json:"name"`
	ColorID          *uint64             `json:"colorId"`
	Gender           *models.MountGender `json:"gender"`
	MaxNumberOfChild *int                `json:"maxNumberOfChild"`
}

// Update applies a partial update. A color change re-derives the type
// and re-checks the opt-in gate; a capacity change is validated
// against the (possibly new) type.
func (h *MountHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := getUserID(c)
	mount, ok := getMountForUser(h.db, c, id, userID)
	if !ok {
		return
	}

	var body updateMountRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}

	if body.ColorID != nil {
		color, okColor := getMountColorByID(h.db, c, *body.ColorID)
		if !okColor {
			return
		}
		settings, okSettings := getAccountSettingsByUserID(h.db, c, userID)
		if !okSettings {
			return
		}
		if !verifyMountType(c, settings, color.MountType) {
			return
		}
		mount.ColorID = color.ID
		mount.Color = color.Color
		mount.Type = color.MountType
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			RespondError(c, KindUndefinedParameter, "Undefined parameter: name")
			return
		}
		if len(name) > maxNameLength {
			RespondError(c, KindBadParameter, "name must be 16 characters or fewer")
			return
		}
		mount.Name = name
	}
	if body.Gender != nil {
		if !body.Gender.Valid() {
			RespondError(c, KindBadParameter, "unknown gender: "+string(*body.Gender))
			return
		}
		mount.Gender = *body.Gender
	}
	if body.MaxNumberOfChild != nil {
		if !mount.Type.ValidMaxNumberOfChild(*body.MaxNumberOfChild) {
			RespondError(c, KindBadParameter, "maxNumberOfChild value is invalid")
			return
		}
		mount.MaxNumberOfChild = *body.MaxNumberOfChild
	}

	if errSave := h.db.WithContext(c.Request.Context()).Save(mount).Error; errSave != nil {
		log.WithError(errSave).Error("mount update failed")
		RespondError(c, KindUnexpected, "could not update the mount")
		return
	}
	c.JSON(http.StatusOK, mount)
}

// Delete removes a mount owned by the caller.
func (h *MountHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	mount, ok := getMountForUser(h.db, c, id, getUserID(c))
	if !ok {
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Mount{}, mount.ID).Error; errDelete != nil {
		log.WithError(errDelete).Error("mount delete failed")
		RespondError(c, KindUnexpected, "could not delete the mount")
		return
	}
	c.Status(http.StatusNoContent)
}

// listMountsQuery defines the filter and sort query string.
type listMountsQuery struct {
	Name          string `form:"name"`
	Gender        string `form:"gender"`
	Type          string `form:"type"`
	ColorID       uint64 `form:"colorId"`
	HasMaxedChild bool   `form:"hasMaxedChild"`
	HasNoChild    bool   `form:"hasNoChild"`
	SortField     string `form:"sortField"`
	SortOrder     string `form:"sortOrder"`
}

// mountSortColumns whitelists sortable fields.
var mountSortColumns = map[string]string{
	"name":             "name",
	"gender":           "gender",
	"type":             "type",
	"numberOfChild":    "number_of_child",
	"maxNumberOfChild": "max_number_of_child",
}

// List returns the caller's mounts, filtered and sorted. Default sort
// is name ascending.
func (h *MountHandler) List(c *gin.Context) {
	var q listMountsQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		RespondError(c, KindBadParameter, "invalid query")
		return
	}

	conn := h.db.WithContext(c.Request.Context())
	query := conn.Model(&models.Mount{}).Where("user_id = ?", getUserID(c))

	if q.Name != "" {
		pattern := dbpkg.NormalizeLikePattern(conn, q.Name+"%")
		query = query.Where(dbpkg.CaseInsensitiveLikeExpr(conn, "name"), pattern)
	}
	if q.Gender != "" {
		gender := models.MountGender(q.Gender)
		if !gender.Valid() {
			RespondError(c, KindBadParameter, "unknown gender: "+q.Gender)
			return
		}
		query = query.Where("gender = ?", gender)
	}
	if q.Type != "" {
		mountType := models.MountType(q.Type)
		if !mountType.Valid() {
			RespondError(c, KindBadParameter, "unknown mountType: "+q.Type)
			return
		}
		query = query.Where("type = ?", mountType)
	}
	if q.ColorID != 0 {
		color, ok := getMountColorByID(h.db, c, q.ColorID)
		if !ok {
			return
		}
		query = query.Where("color_id = ?", color.ID)
	}
	if q.HasMaxedChild {
		query = query.Where("number_of_child = max_number_of_child")
	}
	if q.HasNoChild {
		query = query.Where("number_of_child = 0")
	}

	column := mountSortColumns["name"]
	if q.SortField != "" {
		mapped, ok := mountSortColumns[q.SortField]
		if !ok {
			RespondError(c, KindBadParameter, "unknown sortField: "+q.SortField)
			return
		}
		column = mapped
	}
	direction := "ASC"
	switch strings.ToLower(q.SortOrder) {
	case "", "asc":
	case "desc":
		direction = "DESC"
	default:
		RespondError(c, KindBadParameter, "sortOrder must be asc or desc")
		return
	}

	var mounts []models.Mount
	if errFind := query.Order(column + " " + direction).Find(&mounts).Error; errFind != nil {
		log.WithError(errFind).Error("mount list failed")
		RespondError(c, KindUnexpected, "could not list mounts")
		return
	}
	c.JSON(http.StatusOK, mounts)
}

// genderCountRow is one entry of the per-type gender count response.
type genderCountRow struct {
	Type   models.MountType `json:"type"`
	Male   int              `json:"male"`
	Female int              `json:"female"`
}

// GenderCounts returns, per mount type owned by the caller, how many
// mounts are male and how many are female, sorted by type.
func (h *MountHandler) GenderCounts(c *gin.Context) {
	var rows []genderCountRow
	errScan := h.db.WithContext(c.Request.Context()).
		Model(&models.Mount{}).
		Select("type, SUM(CASE WHEN gender = ? THEN 1 ELSE 0 END) AS male, SUM(CASE WHEN gender = ? THEN 1 ELSE 0 END) AS female",
			models.GenderMale, models.GenderFemale).
		Where("user_id = ?", getUserID(c)).
		Group("type").
		Order("type ASC").
		Scan(&rows).Error
	if errScan != nil {
		log.WithError(errScan).Error("gender count failed")
		RespondError(c, KindUnexpected, "could not count mounts")
		return
	}
	if rows == nil {
		rows = []genderCountRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// getMountForUser loads a mount and enforces ownership: NotFound when
// the mount does not exist, Forbidden when it belongs to someone else.
// Shared with the couplings handler.
func getMountForUser(db *gorm.DB, c *gin.Context, id, userID uint64) (*models.Mount, bool) {
	var mount models.Mount
	if errFind := db.WithContext(c.Request.Context()).First(&mount, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("Mount with id %d was not found", id))
			return nil, false
		}
		log.WithError(errFind).Error("mount lookup failed")
		RespondError(c, KindUnexpected, "could not load the mount")
		return nil, false
	}
	if mount.UserID != userID {
		RespondError(c, KindForbidden, "You don't have access to this resource")
		return nil, false
	}
	return &mount, true
}

// incrementNumberOfChild bumps a mount's child counter inside tx,
// failing with errMaxChildExceeded when the cap would be passed.
func incrementNumberOfChild(tx *gorm.DB, mount *models.Mount) error {
	mount.NumberOfChild++
	if mount.NumberOfChild > mount.MaxNumberOfChild {
		return fmt.Errorf("%w for mountId: %d", errMaxChildExceeded, mount.ID)
	}
	return tx.Model(&models.Mount{}).
		Where("id = ?", mount.ID).
		Update("number_of_child", mount.NumberOfChild).Error
}
