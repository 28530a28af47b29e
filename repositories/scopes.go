package repositories

import "gorm.io/gorm"

func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func withID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}
