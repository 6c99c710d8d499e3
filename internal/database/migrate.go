package database

import (
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every model of the application
func Migrate(db *gorm.DB) error {
	log.Info("Migrating database schema")
	return db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Category{},
		&models.Dish{},
		&models.Table{},
		&models.Order{},
		&models.OrderLine{},
		&models.OAuthClient{},
		&models.OAuthCode{},
		&models.OAuthToken{},
	)
}
