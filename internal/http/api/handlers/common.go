package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mountbook/mountbook/internal/models"
)

// maxNameLength caps every user-supplied name-like field.
const maxNameLength = 16

// ErrorKind classifies request failures for the structured error body.
type ErrorKind string

// Error kinds, mirrored in the errorType response field.
const (
	KindBadParameter       ErrorKind = "BadParameter"
	KindUndefinedParameter ErrorKind = "UndefinedParameter"
	KindNotFound           ErrorKind = "NotFound"
	KindCannotInsert       ErrorKind = "CannotInsert"
	KindForbidden          ErrorKind = "Forbidden"
	KindUnauthorized       ErrorKind = "Unauthorized"
	KindUnexpected         ErrorKind = "UnexpectedError"
)

func (k ErrorKind) status() int {
	switch k {
	case KindBadParameter, KindUndefinedParameter, KindCannotInsert:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(c *gin.Context, kind ErrorKind, message string) gin.H {
	route := c.FullPath()
	if route == "" && c.Request != nil && c.Request.URL != nil {
		route = c.Request.URL.Path
	}
	if c.Request != nil {
		route = c.Request.Method + ":" + route
	}
	return gin.H{
		"statusCode": kind.status(),
		"errorType":  string(kind),
		"message":    message,
		"route":      route,
	}
}

// RespondError writes the structured error body for the given kind.
func RespondError(c *gin.Context, kind ErrorKind, message string) {
	c.JSON(kind.status(), errorBody(c, kind, message))
}

// AbortWithError writes the structured error body and aborts the
// handler chain. Used by middleware.
func AbortWithError(c *gin.Context, kind ErrorKind, message string) {
	c.AbortWithStatusJSON(kind.status(), errorBody(c, kind, message))
}

// ContextUserIDKey and ContextUserRoleKey are the gin context keys set
// by the auth middleware.
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

func getUserID(c *gin.Context) uint64 {
	val, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0
	}
	id, ok := val.(uint64)
	if !ok {
		return 0
	}
	return id
}

func getUserRole(c *gin.Context) models.UserRole {
	val, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return ""
	}
	role, ok := val.(models.UserRole)
	if !ok {
		return ""
	}
	return role
}

func isAdmin(c *gin.Context) bool {
	return getUserRole(c) == models.RoleAdmin
}

// parseIDParam parses the :id path parameter. On failure it responds
// BadParameter and reports false.
func parseIDParam(c *gin.Context) (uint64, bool) {
	raw := c.Param("id")
	id, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil || id == 0 {
		RespondError(c, KindBadParameter, "the given id is not a valid identifier: "+raw)
		return 0, false
	}
	return id, true
}
