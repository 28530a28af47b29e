package database

import (
	"fmt"

	"github.com/yeremiapane/petcare-reservation/utils"
	"gorm.io/gorm"
)

type indexStatement struct {
	Name string
	SQL  string
}

// partialIndexes need WHERE support on the index, which MySQL lacks.
var partialIndexes = []indexStatement{
	{
		Name: "uq_reservation_services_active_pair",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_reservation_services_active_pair
			ON reservation_services (reservation_id, service_id) WHERE active`,
	},
}

// EnsureIndexes creates the indexes AutoMigrate cannot express. On MySQL the duplicate
// link check in the service layer is the only guard.
func EnsureIndexes(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	if dialect != "postgres" && dialect != "sqlite" {
		utils.InfoLogger.Printf("Skipping partial indexes on %s", dialect)
		return nil
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt.SQL).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", stmt.Name, err)
		}
		utils.InfoLogger.Printf("Index ensured: %s", stmt.Name)
	}
	return nil
}
