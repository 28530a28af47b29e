package models

import "time"

// ReservationService links a reservation with one of the services offered by its carer.
type ReservationService struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"not null;index" json:"reservationId"`
	ServiceID     uint      `gorm:"not null;index" json:"serviceId"`
	Active        bool      `gorm:"not null" json:"active"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" json:"updatedAt"`
}

func (ReservationService) TableName() string {
	return "reservation_services"
}
