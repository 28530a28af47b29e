package database

import (
	"fmt"

	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns and then its extra indexes.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Owner{},
		&models.Carer{},
		&models.Service{},
		&models.Reservation{},
		&models.ReservationService{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := EnsureIndexes(db); err != nil {
		return err
	}

	utils.InfoLogger.Printf("Database migration completed (%s)", db.Dialector.Name())
	return nil
}
