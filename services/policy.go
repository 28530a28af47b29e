package services

import (
	"time"

	"github.com/yeremiapane/petcare-reservation/models"
)

// LifecyclePolicy holds the state guards applied to reservations.
type LifecyclePolicy struct {
	// Immutable states reject any update.
	Immutable []models.ReservationState
	// Undeletable states reject soft delete.
	Undeletable []models.ReservationState
	// Blocking states occupy the carer for the availability check.
	Blocking []models.ReservationState
	// Window is the distance on each side of a service date that counts as a collision.
	Window time.Duration
}

func DefaultLifecyclePolicy() LifecyclePolicy {
	return LifecyclePolicy{
		Immutable:   []models.ReservationState{models.ReservationFinished, models.ReservationPaid},
		Undeletable: []models.ReservationState{models.ReservationAccepted},
		Blocking:    []models.ReservationState{models.ReservationPending, models.ReservationAccepted},
		Window:      2 * time.Hour,
	}
}

func (p LifecyclePolicy) IsImmutable(s models.ReservationState) bool {
	return containsState(p.Immutable, s)
}

func (p LifecyclePolicy) IsUndeletable(s models.ReservationState) bool {
	return containsState(p.Undeletable, s)
}

func (p LifecyclePolicy) IsBlocking(s models.ReservationState) bool {
	return containsState(p.Blocking, s)
}

func containsState(states []models.ReservationState, s models.ReservationState) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
