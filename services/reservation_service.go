package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/events"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
)

// CreateReservationInput mirrors the create request. Every field is required.
type CreateReservationInput struct {
	OwnerID     *uint
	CarerID     *uint
	ServiceDate *time.Time
	State       *models.ReservationState
}

// UpdateReservationInput is a patch: nil fields keep their current value.
type UpdateReservationInput struct {
	OwnerID     *uint
	CarerID     *uint
	ServiceDate *time.Time
	State       *models.ReservationState
}

// ReservationService owns the reservation lifecycle and the carer availability check.
type ReservationService struct {
	store  repositories.Store
	cache  cache.Cache
	ttls   cache.TTLs
	policy LifecyclePolicy
	events events.Publisher
	now    func() time.Time
}

func NewReservationService(store repositories.Store, c cache.Cache, policy LifecyclePolicy, ttls cache.TTLs) *ReservationService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &ReservationService{
		store:  store,
		cache:  c,
		ttls:   ttls,
		policy: policy,
		events: events.Discard{},
		now:    time.Now,
	}
}

// WithClock replaces the time source used for past-date checks and timestamps.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

// WithPublisher sends lifecycle events to p after each committed change.
func (s *ReservationService) WithPublisher(p events.Publisher) *ReservationService {
	if p != nil {
		s.events = p
	}
	return s
}

func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	const op = "reservation.create"

	if in.OwnerID == nil || in.CarerID == nil || in.ServiceDate == nil || in.State == nil {
		return nil, validationError(op, "ownerId, carerId, serviceDate and reservationState are required")
	}
	if !in.State.Valid() {
		return nil, validationError(op, "unknown reservation state %q", *in.State)
	}
	now := s.now().UTC()
	serviceDate := in.ServiceDate.UTC()
	if serviceDate.Before(now) {
		return nil, validationError(op, "service date %s is in the past", serviceDate.Format(time.RFC3339))
	}

	reservation := &models.Reservation{
		OwnerID:     *in.OwnerID,
		CarerID:     *in.CarerID,
		ServiceDate: serviceDate,
		State:       *in.State,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Identities().FindActiveOwner(ctx, reservation.OwnerID); err != nil {
			return lookupError(op, err, "owner %d not found", reservation.OwnerID)
		}
		if _, err := tx.Identities().FindActiveCarer(ctx, reservation.CarerID); err != nil {
			return lookupError(op, err, "carer %d not found", reservation.CarerID)
		}
		if s.policy.IsBlocking(reservation.State) {
			if err := s.checkAvailability(ctx, tx, op, reservation.CarerID, serviceDate, 0); err != nil {
				return err
			}
		}
		return tx.Reservations().Create(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	writeThrough(ctx, s.cache, cache.Key(cache.ClassReservations, reservation.ID), reservation, s.ttls.For(cache.ClassReservations))
	logOp(op, logrus.Fields{
		"reservation_id": reservation.ID,
		"carer_id":       reservation.CarerID,
		"service_date":   reservation.ServiceDate,
	}).Info("reservation created")
	s.events.Publish(events.Message{Event: events.EventReservationCreated, Data: reservation})
	return reservation, nil
}

func (s *ReservationService) Update(ctx context.Context, id uint, in UpdateReservationInput) (*models.Reservation, error) {
	const op = "reservation.update"

	if in.State != nil && !in.State.Valid() {
		return nil, validationError(op, "unknown reservation state %q", *in.State)
	}
	now := s.now().UTC()

	var updated *models.Reservation
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		reservation, err := loadActive(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if s.policy.IsImmutable(reservation.State) {
			return validationError(op, "reservation %d is %s and can no longer be updated", id, reservation.State)
		}

		if in.OwnerID != nil && *in.OwnerID != reservation.OwnerID {
			if _, err := tx.Identities().FindActiveOwner(ctx, *in.OwnerID); err != nil {
				return lookupError(op, err, "owner %d not found", *in.OwnerID)
			}
			reservation.OwnerID = *in.OwnerID
		}

		recheck := false
		if in.CarerID != nil && *in.CarerID != reservation.CarerID {
			if _, err := tx.Identities().FindActiveCarer(ctx, *in.CarerID); err != nil {
				return lookupError(op, err, "carer %d not found", *in.CarerID)
			}
			reservation.CarerID = *in.CarerID
			recheck = true
		}
		if in.ServiceDate != nil && !in.ServiceDate.Equal(reservation.ServiceDate) {
			serviceDate := in.ServiceDate.UTC()
			if serviceDate.Before(now) {
				return validationError(op, "service date %s is in the past", serviceDate.Format(time.RFC3339))
			}
			reservation.ServiceDate = serviceDate
			recheck = true
		}
		if in.State != nil {
			// leaving a non-blocking state claims the carer again
			if !s.policy.IsBlocking(reservation.State) && s.policy.IsBlocking(*in.State) {
				recheck = true
			}
			reservation.State = *in.State
		}

		if recheck && s.policy.IsBlocking(reservation.State) {
			if err := s.checkAvailability(ctx, tx, op, reservation.CarerID, reservation.ServiceDate, reservation.ID); err != nil {
				return err
			}
		}

		reservation.UpdatedAt = now
		if err := tx.Reservations().Save(ctx, reservation); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	evict(ctx, s.cache, cache.Key(cache.ClassReservations, id))
	logOp(op, logrus.Fields{"reservation_id": id, "state": updated.State}).Info("reservation updated")
	s.events.Publish(events.Message{Event: events.EventReservationUpdated, Data: updated})
	return updated, nil
}

// FindByID serves from cache when possible and only ever returns active reservations.
func (s *ReservationService) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	const op = "reservation.find"

	key := cache.Key(cache.ClassReservations, id)
	var cached models.Reservation
	if readThrough(ctx, s.cache, key, &cached) && cached.Active {
		return &cached, nil
	}

	reservation, err := s.store.Reservations().FindActiveByID(ctx, id)
	if err != nil {
		return nil, lookupError(op, err, "reservation %d not found", id)
	}
	writeThrough(ctx, s.cache, key, reservation, s.ttls.For(cache.ClassReservations))
	return reservation, nil
}

func (s *ReservationService) FindAll(ctx context.Context, page repositories.PageRequest) (repositories.Page[models.Reservation], error) {
	result, err := s.store.Reservations().FindAllActive(ctx, page)
	if err != nil {
		return result, pageError("reservation.list", err)
	}
	return result, nil
}

func (s *ReservationService) FindByFilters(ctx context.Context, filter repositories.ReservationFilter, page repositories.PageRequest) (repositories.Page[models.Reservation], error) {
	const op = "reservation.search"

	if filter.State != nil && !filter.State.Valid() {
		return repositories.Page[models.Reservation]{}, validationError(op, "unknown reservation state %q", *filter.State)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return repositories.Page[models.Reservation]{}, validationError(op, "startDate must not be after endDate")
	}

	result, err := s.store.Reservations().FindByFilters(ctx, filter, page)
	if err != nil {
		return result, pageError(op, err)
	}
	return result, nil
}

// Delete soft deletes a reservation unless its state forbids it.
func (s *ReservationService) Delete(ctx context.Context, id uint) error {
	const op = "reservation.delete"

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		reservation, err := loadActive(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if s.policy.IsUndeletable(reservation.State) {
			return validationError(op, "reservation %d is %s, reject it before deleting", id, reservation.State)
		}
		reservation.Active = false
		reservation.UpdatedAt = s.now().UTC()
		return tx.Reservations().Save(ctx, reservation)
	})
	if err != nil {
		return err
	}

	evict(ctx, s.cache, cache.Key(cache.ClassReservations, id))
	logOp(op, logrus.Fields{"reservation_id": id}).Info("reservation deleted")
	s.events.Publish(events.Message{Event: events.EventReservationDeleted, Data: map[string]uint{"id": id}})
	return nil
}

// loadActive tells a soft deleted reservation apart from one that never existed. Both are NotFound.
func loadActive(ctx context.Context, tx repositories.Store, op string, id uint) (*models.Reservation, error) {
	reservation, err := tx.Reservations().FindActiveByID(ctx, id)
	if err == nil {
		return reservation, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.Reservations().FindByID(ctx, id); err == nil {
		return nil, notFound(op, "reservation %d has been deleted", id)
	}
	return nil, notFound(op, "reservation %d not found", id)
}

// checkAvailability locks the carer row first so concurrent checks for one carer run one after another.
func (s *ReservationService) checkAvailability(ctx context.Context, tx repositories.Store, op string, carerID uint, at time.Time, excludeID uint) error {
	if _, err := tx.Identities().LockActiveCarer(ctx, carerID); err != nil {
		return lookupError(op, err, "carer %d not found", carerID)
	}
	busy, err := tx.Reservations().ExistsConflict(ctx, repositories.ConflictQuery{
		CarerID:   carerID,
		Start:     at.Add(-s.policy.Window),
		End:       at.Add(s.policy.Window),
		States:    s.policy.Blocking,
		ExcludeID: excludeID,
	})
	if err != nil {
		return err
	}
	if busy {
		return conflictError(op, "carer %d already has a reservation within %s of %s", carerID, s.policy.Window, at.Format(time.RFC3339))
	}
	return nil
}
