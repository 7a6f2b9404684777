// Package app boots the tracker: configuration, logging, database,
// cache and the HTTP server.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mountbook/mountbook/internal/cache"
	"github.com/mountbook/mountbook/internal/config"
	"github.com/mountbook/mountbook/internal/db"
	"github.com/mountbook/mountbook/internal/http/api"
	"github.com/mountbook/mountbook/internal/logging"
)

// Migrate opens the database and applies the schema.
func Migrate(ctx context.Context, cfg *config.Config) error {
	logging.Setup(cfg.Log)
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the REST API and blocks until ctx is cancelled or
// the server fails.
func RunServer(ctx context.Context, cfg *config.Config) error {
	logging.Setup(cfg.Log)

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	refCache := cache.New(cfg.Redis)
	if refCache != nil {
		defer func() {
			if errClose := refCache.Close(); errClose != nil {
				log.WithError(errClose).Warn("cache close failed")
			}
		}()
		log.WithField("addr", cfg.Redis.Addr).Info("reference-data cache enabled")
	}

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	api.RegisterRoutes(engine, conn, refCache, cfg)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("listen", cfg.Listen).Info("starting API server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}
