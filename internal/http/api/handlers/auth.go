package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/config"
	"github.com/mountbook/mountbook/internal/models"
	"github.com/mountbook/mountbook/internal/security"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	db         *gorm.DB
	jwtCfg     config.JWTConfig
	bcryptCost int
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, bcryptCost int) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, bcryptCost: bcryptCost}
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	Password   string             `json:"password"`
	MountTypes []models.MountType `json:"mountTypes"`
	Role       models.UserRole    `json:"role"`
}

// Register creates a new user together with its account settings and
// returns a logged-in response.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(body.Email)
	if body.Username == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: username")
		return
	}
	if body.Email == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: email")
		return
	}
	if body.Password == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: password")
		return
	}
	for _, mountType := range body.MountTypes {
		if !mountType.Valid() {
			RespondError(c, KindBadParameter, "unknown mountType: "+string(mountType))
			return
		}
	}
	role := body.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		RespondError(c, KindBadParameter, "unknown role: "+string(role))
		return
	}

	ctx := c.Request.Context()
	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", body.Username, body.Email).
		Count(&count).Error; errCount != nil {
		log.WithError(errCount).Error("register: uniqueness check failed")
		RespondError(c, KindUnexpected, "could not verify user uniqueness")
		return
	}
	if count > 0 {
		RespondError(c, KindCannotInsert, "Cannot Insert the requested user, verify your information")
		return
	}

	hash, errHash := security.HashPassword(body.Password, h.bcryptCost)
	if errHash != nil {
		log.WithError(errHash).Error("register: password hash failed")
		RespondError(c, KindUnexpected, "could not process the password")
		return
	}

	user := models.User{
		Username: body.Username,
		Email:    body.Email,
		Password: hash,
		Role:     role,
	}
	mountTypes := body.MountTypes
	if mountTypes == nil {
		mountTypes = []models.MountType{}
	}

	// The user row and its settings row appear together or not at all.
	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&user).Error; errCreate != nil {
			return errCreate
		}
		settings := models.AccountSettings{
			UserID:     user.ID,
			MountTypes: mountTypes,
		}
		return tx.Create(&settings).Error
	})
	if errTx != nil {
		log.WithError(errTx).Error("register: create failed")
		RespondError(c, KindCannotInsert, "Cannot Insert the requested user, verify your information")
		return
	}

	h.respondLoggedIn(c, &user, http.StatusCreated)
}

// loginRequest defines the request body for login. Username may also
// carry the email address.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates credentials and issues a bearer token. A missing
// user and a wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	if body.Username == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: username")
		return
	}
	if body.Password == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: password")
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("username = ? OR email = ?", body.Username, body.Username).
		First(&user).Error
	if errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Error("login: lookup failed")
			RespondError(c, KindUnexpected, "could not look up the user")
			return
		}
		RespondError(c, KindNotFound, "No user was found for the given credentials")
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		RespondError(c, KindNotFound, "No user was found for the given credentials")
		return
	}

	h.respondLoggedIn(c, &user, http.StatusOK)
}

// validateQuery defines the query string for property validation.
type validateQuery struct {
	Property string `form:"property"`
	Value    string `form:"value"`
}

// Validate reports whether a username or email is already taken.
func (h *AuthHandler) Validate(c *gin.Context) {
	var q validateQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		RespondError(c, KindBadParameter, "invalid query")
		return
	}
	if q.Value == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: value")
		return
	}

	var column string
	switch q.Property {
	case "username":
		column = "username"
	case "email":
		column = "email"
	default:
		RespondError(c, KindBadParameter, "property must be username or email")
		return
	}

	var count int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where(column+" = ?", q.Value).
		Count(&count).Error; errCount != nil {
		log.WithError(errCount).Error("validate: count failed")
		RespondError(c, KindUnexpected, "could not validate the property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exist": count > 0})
}

func (h *AuthHandler) respondLoggedIn(c *gin.Context, user *models.User, status int) {
	token, errToken := security.GenerateToken(h.jwtCfg.Secret, h.jwtCfg.Issuer, user)
	if errToken != nil {
		log.WithError(errToken).Error("token signing failed")
		RespondError(c, KindUnexpected, "could not sign the token")
		return
	}
	c.JSON(status, gin.H{
		"username": user.Username,
		"token":    token,
	})
}
