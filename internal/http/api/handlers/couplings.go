package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbpkg "github.com/mountbook/mountbook/internal/db"
	"github.com/mountbook/mountbook/internal/models"
)

// defaultCouplingLimit caps list responses.
const defaultCouplingLimit = 50

// CouplingHandler handles breeding records.
type CouplingHandler struct {
	db *gorm.DB
}

// NewCouplingHandler constructs a CouplingHandler.
func NewCouplingHandler(db *gorm.DB) *CouplingHandler {
	return &CouplingHandler{db: db}
}

// createCouplingRequest defines the creation body for a coupling.
type createCouplingRequest struct {
	ChildName string `json:"childName"`
	FatherID  uint64 `json:"fatherId"`
	MotherID  uint64 `json:"motherId"`
}

// Create records a breeding event. Both parents must belong to the
// caller, the father must be male, the mother female, and both must
// share a type. The parent counter increments and the coupling insert
// run in one transaction, so a capacity overflow on either parent
// leaves every counter untouched.
func (h *CouplingHandler) Create(c *gin.Context) {
	var body createCouplingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	body.ChildName = strings.TrimSpace(body.ChildName)
	if body.ChildName == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: childName")
		return
	}
	if len(body.ChildName) > maxNameLength {
		RespondError(c, KindBadParameter, "childName must be 16 characters or fewer")
		return
	}
	if body.FatherID == 0 {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: fatherId")
		return
	}
	if body.MotherID == 0 {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: motherId")
		return
	}

	userID := getUserID(c)
	father, ok := getMountForUser(h.db, c, body.FatherID, userID)
	if !ok {
		return
	}
	mother, ok := getMountForUser(h.db, c, body.MotherID, userID)
	if !ok {
		return
	}

	if father.Gender != models.GenderMale {
		RespondError(c, KindBadParameter, "the father mount must be Male")
		return
	}
	if mother.Gender != models.GenderFemale {
		RespondError(c, KindBadParameter, "the mother mount must be Female")
		return
	}
	if father.Type != mother.Type {
		RespondError(c, KindBadParameter, "the father and mother mounts must share the same type")
		return
	}

	coupling := models.Coupling{
		ChildName: body.ChildName,
		UserID:    userID,
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errFather := incrementNumberOfChild(tx, father); errFather != nil {
			return errFather
		}
		if errMother := incrementNumberOfChild(tx, mother); errMother != nil {
			return errMother
		}
		// Snapshots carry the post-increment parents, frozen at the
		// moment of breeding.
		coupling.Father = datatypes.NewJSONType(*father)
		coupling.Mother = datatypes.NewJSONType(*mother)
		return tx.Create(&coupling).Error
	})
	if errTx != nil {
		if errors.Is(errTx, errMaxChildExceeded) {
			RespondError(c, KindCannotInsert, errTx.Error())
			return
		}
		log.WithError(errTx).Error("coupling create failed")
		RespondError(c, KindUnexpected, "could not create the coupling")
		return
	}

	c.JSON(http.StatusCreated, coupling)
}

// Delete removes a coupling owned by the caller. Parent child
// counters are deliberately not decremented.
func (h *CouplingHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var coupling models.Coupling
	if errFind := h.db.WithContext(ctx).First(&coupling, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("Coupling with id %d was not found", id))
			return
		}
		log.WithError(errFind).Error("coupling lookup failed")
		RespondError(c, KindUnexpected, "could not load the coupling")
		return
	}
	if coupling.UserID != getUserID(c) {
		RespondError(c, KindForbidden, "You don't have access to this resource")
		return
	}

	if errDelete := h.db.WithContext(ctx).Delete(&models.Coupling{}, coupling.ID).Error; errDelete != nil {
		log.WithError(errDelete).Error("coupling delete failed")
		RespondError(c, KindUnexpected, "could not delete the coupling")
		return
	}
	c.Status(http.StatusNoContent)
}

// listCouplingsQuery defines the filter query string.
type listCouplingsQuery struct {
	ChildName  string `form:"childName"`
	FatherName string `form:"fatherName"`
	MotherName string `form:"motherName"`
	Limit      int    `form:"limit,default=50"`
}

// List returns the caller's couplings, optionally filtered by
// case-insensitive prefix on the child name or on the embedded parent
// names.
func (h *CouplingHandler) List(c *gin.Context) {
	var q listCouplingsQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		RespondError(c, KindBadParameter, "invalid query")
		return
	}
	if q.Limit < 1 || q.Limit > defaultCouplingLimit {
		q.Limit = defaultCouplingLimit
	}

	conn := h.db.WithContext(c.Request.Context())
	query := conn.Model(&models.Coupling{}).Where("user_id = ?", getUserID(c))

	if q.ChildName != "" {
		pattern := dbpkg.NormalizeLikePattern(conn, q.ChildName+"%")
		query = query.Where(dbpkg.CaseInsensitiveLikeExpr(conn, "child_name"), pattern)
	}
	if q.FatherName != "" {
		pattern := dbpkg.NormalizeLikePattern(conn, q.FatherName+"%")
		query = query.Where(dbpkg.JSONFieldCaseInsensitiveLikeExpr(conn, "father", "name"), pattern)
	}
	if q.MotherName != "" {
		pattern := dbpkg.NormalizeLikePattern(conn, q.MotherName+"%")
		query = query.Where(dbpkg.JSONFieldCaseInsensitiveLikeExpr(conn, "mother", "name"), pattern)
	}

	var couplings []models.Coupling
	if errFind := query.Order("created_at DESC").Limit(q.Limit).Find(&couplings).Error; errFind != nil {
		log.WithError(errFind).Error("coupling list failed")
		RespondError(c, KindUnexpected, "could not list couplings")
		return
	}
	c.JSON(http.StatusOK, couplings)
}
