package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/petcare-reservation/models"
	"gorm.io/gorm"
)

var reservationSortColumns = map[string]string{
	"id":          "id",
	"ownerId":     "owner_id",
	"carerId":     "carer_id",
	"serviceDate": "service_date",
	"state":       "state",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// ReservationFilter narrows a search. Nil fields leave the column unconstrained.
type ReservationFilter struct {
	OwnerID   *uint
	CarerID   *uint
	State     *models.ReservationState
	StartDate *time.Time
	EndDate   *time.Time
}

// ConflictQuery describes the window checked for a carer before booking.
// ExcludeID skips one reservation, used when an existing booking is moved.
type ConflictQuery struct {
	CarerID   uint
	Start     time.Time
	End       time.Time
	States    []models.ReservationState
	ExcludeID uint
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	Save(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindActiveByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindAllActive(ctx context.Context, page PageRequest) (Page[models.Reservation], error)
	FindByFilters(ctx context.Context, filter ReservationFilter, page PageRequest) (Page[models.Reservation], error)
	ExistsConflict(ctx context.Context, q ConflictQuery) (bool, error)
}

type ReservationRepositoryImpl struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepositoryImpl {
	return &ReservationRepositoryImpl{db: db}
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, reservation *models.Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepositoryImpl) Save(ctx context.Context, reservation *models.Reservation) error {
	if err := r.db.WithContext(ctx).Save(reservation).Error; err != nil {
		return fmt.Errorf("failed to save reservation %d: %w", reservation.ID, err)
	}
	return nil
}

func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).Scopes(withID(id)).First(&reservation).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservation %d: %w", id, translate(err))
	}
	return &reservation, nil
}

func (r *ReservationRepositoryImpl) FindActiveByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).Scopes(withID(id), activeOnly).First(&reservation).Error; err != nil {
		return nil, fmt.Errorf("failed to find active reservation %d: %w", id, translate(err))
	}
	return &reservation, nil
}

func (r *ReservationRepositoryImpl) FindAllActive(ctx context.Context, page PageRequest) (Page[models.Reservation], error) {
	page = page.normalized()
	order, err := page.orderBy(reservationSortColumns, "id")
	if err != nil {
		return Page[models.Reservation]{}, err
	}

	base := r.db.WithContext(ctx).Model(&models.Reservation{}).Scopes(activeOnly)
	return paginate[models.Reservation](base, page, order)
}

// FindByFilters lists active reservations, newest service date first unless the page says otherwise.
func (r *ReservationRepositoryImpl) FindByFilters(ctx context.Context, filter ReservationFilter, page PageRequest) (Page[models.Reservation], error) {
	page = page.normalized()
	order, err := page.orderBy(reservationSortColumns, "serviceDate")
	if err != nil {
		return Page[models.Reservation]{}, err
	}

	q := r.db.WithContext(ctx).Model(&models.Reservation{}).Scopes(activeOnly)
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.CarerID != nil {
		q = q.Where("carer_id = ?", *filter.CarerID)
	}
	if filter.State != nil {
		q = q.Where("state = ?", string(*filter.State))
	}
	if filter.StartDate != nil {
		q = q.Where("service_date >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		q = q.Where("service_date <= ?", filter.EndDate.UTC())
	}

	return paginate[models.Reservation](q, page, order)
}

// ExistsConflict reports whether the carer already holds an active reservation in one of
// the given states with a service date inside [Start, End].
func (r *ReservationRepositoryImpl) ExistsConflict(ctx context.Context, q ConflictQuery) (bool, error) {
	if len(q.States) == 0 {
		return false, nil
	}
	states := make([]string, len(q.States))
	for i, s := range q.States {
		states[i] = string(s)
	}

	query := `SELECT EXISTS (SELECT 1 FROM reservations WHERE carer_id = ? AND active = ? AND state IN ? AND service_date BETWEEN ? AND ? AND id <> ?)`

	var exists bool
	err := r.db.WithContext(ctx).
		Raw(query, q.CarerID, true, states, q.Start.UTC(), q.End.UTC(), q.ExcludeID).
		Row().
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check carer availability: %w", err)
	}
	return exists, nil
}
