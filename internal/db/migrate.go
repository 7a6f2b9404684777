package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mountbook/mountbook/internal/models"
)

// Migrate applies the schema for every tracker model.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.User{},
		&models.AccountSettings{},
		&models.Server{},
		&models.MountColor{},
		&models.Mount{},
		&models.Coupling{},
	)
}
