package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/cache"
	"github.com/mountbook/mountbook/internal/models"
)

// ServerHandler handles the admin-managed server registry.
type ServerHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewServerHandler constructs a ServerHandler.
func NewServerHandler(db *gorm.DB, c *cache.Cache) *ServerHandler {
	return &ServerHandler{db: db, cache: c}
}

type serverRequest struct {
	ServerName string `json:"serverName"`
}

// Create inserts a new server. Admin only.
func (h *ServerHandler) Create(c *gin.Context) {
	var body serverRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	name := strings.TrimSpace(body.ServerName)
	if name == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: serverName")
		return
	}

	ctx := c.Request.Context()
	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.Server{}).
		Where("server_name = ?", name).
		Count(&count).Error; errCount != nil {
		log.WithError(errCount).Error("server create: uniqueness check failed")
		RespondError(c, KindUnexpected, "could not verify server uniqueness")
		return
	}
	if count > 0 {
		RespondError(c, KindCannotInsert, "Cannot Insert the requested server, the serverName already exists")
		return
	}

	server := models.Server{ServerName: name}
	if errCreate := h.db.WithContext(ctx).Create(&server).Error; errCreate != nil {
		log.WithError(errCreate).Error("server create failed")
		RespondError(c, KindCannotInsert, "Cannot Insert the requested server, the serverName already exists")
		return
	}
	h.cache.Invalidate(ctx, cache.ServersKey())
	c.JSON(http.StatusCreated, server)
}

// Update renames an existing server. Admin only.
func (h *ServerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body serverRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		RespondError(c, KindBadParameter, "invalid json body")
		return
	}
	name := strings.TrimSpace(body.ServerName)
	if name == "" {
		RespondError(c, KindUndefinedParameter, "Undefined parameter: serverName")
		return
	}

	ctx := c.Request.Context()
	var server models.Server
	if errFind := h.db.WithContext(ctx).First(&server, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			RespondError(c, KindNotFound, fmt.Sprintf("Server with id %d was not found", id))
			return
		}
		log.WithError(errFind).Error("server lookup failed")
		RespondError(c, KindUnexpected, "could not load the server")
		return
	}

	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.Server{}).
		Where("server_name = ? AND id <> ?", name, id).
		Count(&count).Error; errCount != nil {
		log.WithError(errCount).Error("server update: uniqueness check failed")
		RespondError(c, KindUnexpected, "could not verify server uniqueness")
		return
	}
	if count > 0 {
		RespondError(c, KindCannotInsert, "Cannot Insert the requested server, the serverName already exists")
		return
	}

	server.ServerName = name
	if errSave := h.db.WithContext(ctx).Save(&server).Error; errSave != nil {
		log.WithError(errSave).Error("server update failed")
		RespondError(c, KindUnexpected, "could not update the server")
		return
	}
	h.cache.Invalidate(ctx, cache.ServersKey())
	c.JSON(http.StatusOK, server)
}

// Delete removes a server. Admin only.
func (h *ServerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	result := h.db.WithContext(ctx).Delete(&models.Server{}, id)
	if result.Error != nil {
		log.WithError(result.Error).Error("server delete failed")
		RespondError(c, KindUnexpected, "could not delete the server")
		return
	}
	if result.RowsAffected == 0 {
		RespondError(c, KindNotFound, fmt.Sprintf("Server with id %d was not found", id))
		return
	}
	h.cache.Invalidate(ctx, cache.ServersKey())
	c.Status(http.StatusNoContent)
}

// List returns all servers, served from cache when possible.
func (h *ServerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var servers []models.Server
	if h.cache.GetJSON(ctx, cache.ServersKey(), &servers) {
		c.JSON(http.StatusOK, servers)
		return
	}

	if errFind := h.db.WithContext(ctx).
		Order("server_name ASC").
		Find(&servers).Error; errFind != nil {
		log.WithError(errFind).Error("server list failed")
		RespondError(c, KindUnexpected, "could not list servers")
		return
	}
	h.cache.SetJSON(ctx, cache.ServersKey(), servers)
	c.JSON(http.StatusOK, servers)
}

// serverExistsByName reports whether a server with the given name
// exists. Shared with the account-settings handler for serverName
// validation.
func serverExistsByName(db *gorm.DB, c *gin.Context, name string) (bool, error) {
	var count int64
	err := db.WithContext(c.Request.Context()).Model(&models.Server{}).
		Where("server_name = ?", name).
		Count(&count).Error
	return count > 0, err
}
