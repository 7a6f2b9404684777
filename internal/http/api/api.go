// Package api wires the tracker's REST routes: one resource family
// per entity, JWT bearer authentication on everything except
// registration, login and the public reference-data reads, and an
// admin gate on reference-data mutation.
package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/cache"
	"github.com/mountbook/mountbook/internal/config"
	"github.com/mountbook/mountbook/internal/http/api/handlers"
)

// RegisterRoutes registers every route on the engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, refCache *cache.Cache, cfg *config.Config) {
	if r == nil || db == nil {
		return
	}

	authed := userAuthMiddleware(db, cfg.JWT)
	admin := adminRequired()

	authHandler := handlers.NewAuthHandler(db, cfg.JWT, cfg.BcryptCost)
	userHandler := handlers.NewUserHandler(db, cfg.BcryptCost)
	users := r.Group("/users")
	users.POST("", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/validate", authHandler.Validate)
	users.GET("", authed, admin, userHandler.List)
	users.GET("/:id", authed, userHandler.Get)
	users.PUT("/:id", authed, userHandler.Update)
	users.DELETE("/:id", authed, userHandler.Delete)

	serverHandler := handlers.NewServerHandler(db, refCache)
	servers := r.Group("/servers")
	servers.GET("", serverHandler.List)
	servers.POST("", authed, admin, serverHandler.Create)
	servers.PUT("/:id", authed, admin, serverHandler.Update)
	servers.DELETE("/:id", authed, admin, serverHandler.Delete)

	colorHandler := handlers.NewMountColorHandler(db, refCache)
	colors := r.Group("/mounts/colors")
	colors.GET("", colorHandler.ListGroupedByType)
	colors.POST("", authed, admin, colorHandler.Create)
	colors.PUT("/:id", authed, admin, colorHandler.Update)
	colors.DELETE("/:id", authed, admin, colorHandler.Delete)

	couplingHandler := handlers.NewCouplingHandler(db)
	couplings := r.Group("/mounts/couplings", authed)
	couplings.GET("", couplingHandler.List)
	couplings.POST("", couplingHandler.Create)
	couplings.DELETE("/:id", couplingHandler.Delete)

	mountHandler := handlers.NewMountHandler(db)
	mounts := r.Group("/mounts", authed)
	mounts.GET("", mountHandler.List)
	mounts.POST("", mountHandler.Create)
	mounts.POST("/bulk", mountHandler.CreateBulk)
	mounts.GET("/genders", mountHandler.GenderCounts)
	mounts.PUT("/:id", mountHandler.Update)
	mounts.DELETE("/:id", mountHandler.Delete)

	settingsHandler := handlers.NewAccountSettingsHandler(db)
	settings := r.Group("/account-settings", authed)
	settings.GET("", settingsHandler.Get)
	settings.PUT("/:id", settingsHandler.Update)
}
