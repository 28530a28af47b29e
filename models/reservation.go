package models

import (
	"fmt"
	"strings"
	"time"
)

type ReservationState string

const (
	ReservationPending   ReservationState = "PENDING"
	ReservationAccepted  ReservationState = "ACCEPTED"
	ReservationRejected  ReservationState = "REJECTED"
	ReservationCancelled ReservationState = "CANCELLED"
	ReservationFinished  ReservationState = "FINISHED"
	ReservationPaid      ReservationState = "PAID"
)

var reservationStates = []ReservationState{
	ReservationPending,
	ReservationAccepted,
	ReservationRejected,
	ReservationCancelled,
	ReservationFinished,
	ReservationPaid,
}

// Valid reports whether s is one of the known reservation states.
func (s ReservationState) Valid() bool {
	for _, known := range reservationStates {
		if s == known {
			return true
		}
	}
	return false
}

// ParseReservationState accepts a state name in any letter case.
func ParseReservationState(v string) (ReservationState, error) {
	s := ReservationState(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown reservation state %q", v)
	}
	return s, nil
}

// Reservation books a carer for an owner at ServiceDate. Rows are soft deleted through Active.
type Reservation struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	OwnerID     uint             `gorm:"not null;index" json:"ownerId"`
	CarerID     uint             `gorm:"not null;index:idx_reservations_carer_date,priority:1" json:"carerId"`
	ServiceDate time.Time        `gorm:"not null;index:idx_reservations_carer_date,priority:2" json:"serviceDate"`
	State       ReservationState `gorm:"type:varchar(20);not null" json:"reservationState"`
	Active      bool             `gorm:"not null;index" json:"active"`
	CreatedAt   time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"not null" json:"updatedAt"`
}
