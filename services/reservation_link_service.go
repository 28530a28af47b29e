package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/events"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
)

// LinkInput names the reservation and catalog service joined by a link.
// Create requires both ids; Update treats nil as unchanged.
type LinkInput struct {
	ReservationID *uint
	ServiceID     *uint
}

// ReservationLinkService manages the services attached to a reservation.
type ReservationLinkService struct {
	store             repositories.Store
	cache             cache.Cache
	ttls              cache.TTLs
	enforceCarerMatch bool
	events            events.Publisher
	now               func() time.Time
}

// NewReservationLinkService builds the service. With enforceCarerMatch a link is only accepted
// when the catalog service belongs to the reservation's carer.
func NewReservationLinkService(store repositories.Store, c cache.Cache, ttls cache.TTLs, enforceCarerMatch bool) *ReservationLinkService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &ReservationLinkService{
		store:             store,
		cache:             c,
		ttls:              ttls,
		enforceCarerMatch: enforceCarerMatch,
		events:            events.Discard{},
		now:               time.Now,
	}
}

func (s *ReservationLinkService) WithClock(now func() time.Time) *ReservationLinkService {
	s.now = now
	return s
}

func (s *ReservationLinkService) WithPublisher(p events.Publisher) *ReservationLinkService {
	if p != nil {
		s.events = p
	}
	return s
}

func (s *ReservationLinkService) Create(ctx context.Context, in LinkInput) (*models.ReservationService, error) {
	const op = "reservation_service.create"

	if in.ReservationID == nil || *in.ReservationID == 0 || in.ServiceID == nil || *in.ServiceID == 0 {
		return nil, validationError(op, "reservationId and serviceId are required")
	}
	now := s.now().UTC()
	link := &models.ReservationService{
		ReservationID: *in.ReservationID,
		ServiceID:     *in.ServiceID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := s.validateLink(ctx, tx, op, link.ReservationID, link.ServiceID, 0); err != nil {
			return err
		}
		return tx.Links().Create(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	writeThrough(ctx, s.cache, cache.Key(cache.ClassReservationServices, link.ID), link, s.ttls.For(cache.ClassReservationServices))
	logOp(op, logrus.Fields{
		"link_id":        link.ID,
		"reservation_id": link.ReservationID,
		"service_id":     link.ServiceID,
	}).Info("reservation service created")
	s.events.Publish(events.Message{Event: events.EventReservationServiceCreated, Data: link})
	return link, nil
}

// Update re-points an active link at another reservation or catalog service.
func (s *ReservationLinkService) Update(ctx context.Context, id uint, in LinkInput) (*models.ReservationService, error) {
	const op = "reservation_service.update"

	if (in.ReservationID != nil && *in.ReservationID == 0) || (in.ServiceID != nil && *in.ServiceID == 0) {
		return nil, validationError(op, "reservationId and serviceId must be positive")
	}

	var updated *models.ReservationService
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		link, err := tx.Links().FindActiveByID(ctx, id)
		if err != nil {
			return lookupError(op, err, "reservation service %d not found", id)
		}

		reservationID, serviceID := link.ReservationID, link.ServiceID
		if in.ReservationID != nil {
			reservationID = *in.ReservationID
		}
		if in.ServiceID != nil {
			serviceID = *in.ServiceID
		}
		if reservationID != link.ReservationID || serviceID != link.ServiceID {
			if err := s.validateLink(ctx, tx, op, reservationID, serviceID, link.ID); err != nil {
				return err
			}
			link.ReservationID = reservationID
			link.ServiceID = serviceID
		}

		link.UpdatedAt = s.now().UTC()
		if err := tx.Links().Save(ctx, link); err != nil {
			return err
		}
		updated = link
		return nil
	})
	if err != nil {
		return nil, err
	}

	evict(ctx, s.cache, cache.Key(cache.ClassReservationServices, id))
	logOp(op, logrus.Fields{"link_id": id}).Info("reservation service updated")
	s.events.Publish(events.Message{Event: events.EventReservationServiceUpdated, Data: updated})
	return updated, nil
}

func (s *ReservationLinkService) FindByID(ctx context.Context, id uint) (*models.ReservationService, error) {
	const op = "reservation_service.find"

	key := cache.Key(cache.ClassReservationServices, id)
	var cached models.ReservationService
	if readThrough(ctx, s.cache, key, &cached) && cached.Active {
		return &cached, nil
	}

	link, err := s.store.Links().FindActiveByID(ctx, id)
	if err != nil {
		return nil, lookupError(op, err, "reservation service %d not found", id)
	}
	writeThrough(ctx, s.cache, key, link, s.ttls.For(cache.ClassReservationServices))
	return link, nil
}

func (s *ReservationLinkService) FindAll(ctx context.Context, page repositories.PageRequest) (repositories.Page[models.ReservationService], error) {
	result, err := s.store.Links().FindAllActive(ctx, page)
	if err != nil {
		return result, pageError("reservation_service.list", err)
	}
	return result, nil
}

func (s *ReservationLinkService) FindByFilters(ctx context.Context, filter repositories.LinkFilter, page repositories.PageRequest) (repositories.Page[models.ReservationService], error) {
	result, err := s.store.Links().FindByFilters(ctx, filter, page)
	if err != nil {
		return result, pageError("reservation_service.search", err)
	}
	return result, nil
}

func (s *ReservationLinkService) FindByReservationID(ctx context.Context, reservationID uint) ([]models.ReservationService, error) {
	const op = "reservation_service.by_reservation"

	if _, err := s.store.Reservations().FindActiveByID(ctx, reservationID); err != nil {
		return nil, lookupError(op, err, "reservation %d not found", reservationID)
	}
	links, err := s.store.Links().FindActiveByReservationID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []models.ReservationService{}
	}
	return links, nil
}

func (s *ReservationLinkService) FindByServiceID(ctx context.Context, serviceID uint) ([]models.ReservationService, error) {
	const op = "reservation_service.by_service"

	if _, err := s.store.Identities().FindActiveService(ctx, serviceID); err != nil {
		return nil, lookupError(op, err, "service %d not found", serviceID)
	}
	links, err := s.store.Links().FindActiveByServiceID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []models.ReservationService{}
	}
	return links, nil
}

func (s *ReservationLinkService) Delete(ctx context.Context, id uint) error {
	const op = "reservation_service.delete"

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		link, err := tx.Links().FindActiveByID(ctx, id)
		if err != nil {
			return lookupError(op, err, "reservation service %d not found", id)
		}
		link.Active = false
		link.UpdatedAt = s.now().UTC()
		return tx.Links().Save(ctx, link)
	})
	if err != nil {
		return err
	}

	evict(ctx, s.cache, cache.Key(cache.ClassReservationServices, id))
	logOp(op, logrus.Fields{"link_id": id}).Info("reservation service deleted")
	s.events.Publish(events.Message{Event: events.EventReservationServiceDeleted, Data: map[string]uint{"id": id}})
	return nil
}

// DeleteAllByReservationID soft deletes every active link of the reservation and returns how many were affected.
func (s *ReservationLinkService) DeleteAllByReservationID(ctx context.Context, reservationID uint) (int64, error) {
	const op = "reservation_service.delete_by_reservation"

	var (
		keys     []string
		affected int64
	)
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		links, err := tx.Links().FindActiveByReservationID(ctx, reservationID)
		if err != nil {
			return err
		}
		for _, link := range links {
			keys = append(keys, cache.Key(cache.ClassReservationServices, link.ID))
		}
		affected, err = tx.Links().DeactivateByReservationID(ctx, reservationID, s.now().UTC())
		return err
	})
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		evict(ctx, s.cache, keys...)
	}
	logOp(op, logrus.Fields{"reservation_id": reservationID, "affected": affected}).Info("reservation services deleted")
	if affected > 0 {
		s.events.Publish(events.Message{
			Event: events.EventReservationServiceDeleted,
			Data:  map[string]interface{}{"reservationId": reservationID, "deleted": affected},
		})
	}
	return affected, nil
}

// validateLink checks the pair is free, both sides exist and, when enforced, the carers match.
func (s *ReservationLinkService) validateLink(ctx context.Context, tx repositories.Store, op string, reservationID, serviceID, excludeID uint) error {
	taken, err := tx.Links().ExistsActive(ctx, reservationID, serviceID, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return conflictError(op, "service %d is already attached to reservation %d", serviceID, reservationID)
	}

	reservation, err := tx.Reservations().FindActiveByID(ctx, reservationID)
	if err != nil {
		return lookupError(op, err, "reservation %d not found", reservationID)
	}
	service, err := tx.Identities().FindActiveService(ctx, serviceID)
	if err != nil {
		return lookupError(op, err, "service %d not found", serviceID)
	}
	if s.enforceCarerMatch && service.CarerID != reservation.CarerID {
		return validationError(op, "service %d belongs to carer %d, not to carer %d of reservation %d",
			serviceID, service.CarerID, reservation.CarerID, reservationID)
	}
	return nil
}
