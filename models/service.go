package models

import "time"

// Service is a care offering published by a carer.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CarerID   uint      `gorm:"not null;index" json:"carerId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
