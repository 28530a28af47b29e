package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/petcare-reservation/models"
	"gorm.io/gorm"
)

var linkSortColumns = map[string]string{
	"id":            "id",
	"reservationId": "reservation_id",
	"serviceId":     "service_id",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

type LinkFilter struct {
	ReservationID *uint
	ServiceID     *uint
}

type ReservationLinkRepository interface {
	Create(ctx context.Context, link *models.ReservationService) error
	Save(ctx context.Context, link *models.ReservationService) error
	FindActiveByID(ctx context.Context, id uint) (*models.ReservationService, error)
	FindAllActive(ctx context.Context, page PageRequest) (Page[models.ReservationService], error)
	FindByFilters(ctx context.Context, filter LinkFilter, page PageRequest) (Page[models.ReservationService], error)
	FindActiveByReservationID(ctx context.Context, reservationID uint) ([]models.ReservationService, error)
	FindActiveByServiceID(ctx context.Context, serviceID uint) ([]models.ReservationService, error)
	ExistsActive(ctx context.Context, reservationID, serviceID, excludeID uint) (bool, error)
	DeactivateByReservationID(ctx context.Context, reservationID uint, at time.Time) (int64, error)
}

type ReservationLinkRepositoryImpl struct {
	db *gorm.DB
}

func NewReservationLinkRepository(db *gorm.DB) *ReservationLinkRepositoryImpl {
	return &ReservationLinkRepositoryImpl{db: db}
}

func (r *ReservationLinkRepositoryImpl) Create(ctx context.Context, link *models.ReservationService) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to create reservation service: %w", err)
	}
	return nil
}

func (r *ReservationLinkRepositoryImpl) Save(ctx context.Context, link *models.ReservationService) error {
	if err := r.db.WithContext(ctx).Save(link).Error; err != nil {
		return fmt.Errorf("failed to save reservation service %d: %w", link.ID, err)
	}
	return nil
}

func (r *ReservationLinkRepositoryImpl) FindActiveByID(ctx context.Context, id uint) (*models.ReservationService, error) {
	var link models.ReservationService
	if err := r.db.WithContext(ctx).Scopes(withID(id), activeOnly).First(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservation service %d: %w", id, translate(err))
	}
	return &link, nil
}

func (r *ReservationLinkRepositoryImpl) FindAllActive(ctx context.Context, page PageRequest) (Page[models.ReservationService], error) {
	page = page.normalized()
	order, err := page.orderBy(linkSortColumns, "id")
	if err != nil {
		return Page[models.ReservationService]{}, err
	}

	base := r.db.WithContext(ctx).Model(&models.ReservationService{}).Scopes(activeOnly)
	return paginate[models.ReservationService](base, page, order)
}

func (r *ReservationLinkRepositoryImpl) FindByFilters(ctx context.Context, filter LinkFilter, page PageRequest) (Page[models.ReservationService], error) {
	page = page.normalized()
	order, err := page.orderBy(linkSortColumns, "createdAt")
	if err != nil {
		return Page[models.ReservationService]{}, err
	}

	q := r.db.WithContext(ctx).Model(&models.ReservationService{}).Scopes(activeOnly)
	if filter.ReservationID != nil {
		q = q.Where("reservation_id = ?", *filter.ReservationID)
	}
	if filter.ServiceID != nil {
		q = q.Where("service_id = ?", *filter.ServiceID)
	}

	return paginate[models.ReservationService](q, page, order)
}

func (r *ReservationLinkRepositoryImpl) FindActiveByReservationID(ctx context.Context, reservationID uint) ([]models.ReservationService, error) {
	var links []models.ReservationService
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Where("reservation_id = ?", reservationID).
		Order("id ASC").
		Find(&links).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list services of reservation %d: %w", reservationID, err)
	}
	return links, nil
}

func (r *ReservationLinkRepositoryImpl) FindActiveByServiceID(ctx context.Context, serviceID uint) ([]models.ReservationService, error) {
	var links []models.ReservationService
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Where("service_id = ?", serviceID).
		Order("id ASC").
		Find(&links).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations of service %d: %w", serviceID, err)
	}
	return links, nil
}

// ExistsActive reports whether an active link already joins the pair, ignoring excludeID.
func (r *ReservationLinkRepositoryImpl) ExistsActive(ctx context.Context, reservationID, serviceID, excludeID uint) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reservation_services WHERE reservation_id = ? AND service_id = ? AND active = ? AND id <> ?)`

	var exists bool
	err := r.db.WithContext(ctx).
		Raw(query, reservationID, serviceID, true, excludeID).
		Row().
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing reservation service: %w", err)
	}
	return exists, nil
}

func (r *ReservationLinkRepositoryImpl) DeactivateByReservationID(ctx context.Context, reservationID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReservationService{}).
		Scopes(activeOnly).
		Where("reservation_id = ?", reservationID).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate services of reservation %d: %w", reservationID, result.Error)
	}
	return result.RowsAffected, nil
}
