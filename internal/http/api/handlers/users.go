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
	"github.com/mountbook/mountbook/internal/security"
)

// UserHandler handles user account endpoints behind authentication.
type UserHandler struct {
	db         *gorm.DB
	bcryptCost int
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, bcryptCost int) *UserHandler {
	return &UserHandler{db: db, bcryptCost: bcryptCost}
}

// loadUser fetches the target user and enforces the self-or-admin
// rule shared by get, update and delete.
func (h *UserHandler) loadUser(c *gin.Context, id uint64) (*models.User, bool) {
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("User with id %d was not found", id))
			return nil, false
		}
		log.WithError(errFind).Error("user lookup failed")
		RespondError(c, KindUnexpected, "could not load the user")
		return nil, false
	}
	if user.ID != getUserID(c) && !isAdmin(c) {
		RespondError(c, KindForbidden, "You don't have access to this resource")
		return nil, false
	}
	return &user, true
}

// Get returns a user's public profile.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, ok := h.loadUser(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// List returns all users. Admin only (enforced by routing).
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("username ASC").
		Find(&users).Error; errFind != nil {
		log.WithError(errFind).Error("user list failed")
		RespondError(c, KindUnexpected, "could not list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// updateUserRequest defines the partial-update body for a user.
type updateUserRequest struct {
	Username *string          `json:"username"`
	Email    *string          `json:"email"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role"`
}

// Update applies a partial update to a user. Only the user itself or
// an admin may update, and only an admin may change the role.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, ok := h.loadUser(c, id)
	if !ok {
		return
	}

	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}

	ctx := c.Request.Context()
	if body.Username != nil {
		username := strings.TrimSpace(*body.Username)
		if username == "" {
			RespondError(c, KindUndefinedParameter, "Undefined parameter: username")
			return
		}
		user.Username = username
	}
	if body.Email != nil {
		email := strings.TrimSpace(*body.Email)
		if email == "" {
			RespondError(c, KindUndefinedParameter, "Undefined parameter: email")
			return
		}
		user.Email = email
	}
	if body.Username != nil || body.Email != nil {
		var count int64
		if errCount := h.db.WithContext(ctx).Model(&models.User{}).
			Where("(username = ? OR email = ?) AND id <> ?", user.Username, user.Email, user.ID).
			Count(&count).Error; errCount != nil {
			log.WithError(errCount).Error("user update: uniqueness check failed")
			RespondError(c, KindUnexpected, "could not verify user uniqueness")
			return
		}
		if count > 0 {
			RespondError(c, KindCannotInsert, "Cannot Insert the requested user, verify your information")
			return
		}
	}
	if body.Password != nil && *body.Password != "" {
		hash, errHash := security.HashPassword(*body.Password, h.bcryptCost)
		if errHash != nil {
			log.WithError(errHash).Error("user update: password hash failed")
			RespondError(c, KindUnexpected, "could not process the password")
			return
		}
		user.Password = hash
	}
	// Role changes from non-admins are dropped silently.
	if body.Role != nil && isAdmin(c) {
		if !body.Role.Valid() {
			RespondError(c, KindBadParameter, "unknown role: "+string(*body.Role))
			return
		}
		user.Role = *body.Role
	}

	if errSave := h.db.WithContext(ctx).Save(user).Error; errSave != nil {
		log.WithError(errSave).Error("user update failed")
		RespondError(c, KindUnexpected, "could not update the user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// Delete removes a user. The owned account settings, mounts and
// couplings are cleaned up best-effort: a failed cascade step is
// logged but never surfaced, only the primary row matters to the
// caller.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, ok := h.loadUser(c, id)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if errDelete := h.db.WithContext(ctx).Delete(&models.User{}, user.ID).Error; errDelete != nil {
		log.WithError(errDelete).Error("user delete failed")
		RespondError(c, KindUnexpected, "could not delete the user")
		return
	}

	cascade := []struct {
		name  string
		model any
	}{
		{"account settings", &models.AccountSettings{}},
		{"mounts", &models.Mount{}},
		{"couplings", &models.Coupling{}},
	}
	for _, step := range cascade {
		if errCascade := h.db.WithContext(ctx).
			Where("user_id = ?", user.ID).
			Delete(step.model).Error; errCascade != nil {
			log.WithError(errCascade).
				WithField("userId", user.ID).
				Warnf("cascade delete of %s failed", step.name)
		}
	}

	c.Status(http.StatusNoContent)
}
