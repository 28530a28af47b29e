package repositories

import (
	"context"
	"fmt"

	"github.com/yeremiapane/petcare-reservation/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityRepository resolves the records a reservation points at. Inactive rows count as missing.
type IdentityRepository interface {
	FindActiveOwner(ctx context.Context, id uint) (*models.Owner, error)
	FindActiveCarer(ctx context.Context, id uint) (*models.Carer, error)
	LockActiveCarer(ctx context.Context, id uint) (*models.Carer, error)
	FindActiveService(ctx context.Context, id uint) (*models.Service, error)
	FindActiveUser(ctx context.Context, id uint) (*models.User, error)
}

type IdentityRepositoryImpl struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepositoryImpl {
	return &IdentityRepositoryImpl{db: db}
}

func findActive[T any](ctx context.Context, db *gorm.DB, id uint, entity string) (*T, error) {
	var record T
	if err := db.WithContext(ctx).Scopes(withID(id), activeOnly).First(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s %d: %w", entity, id, translate(err))
	}
	return &record, nil
}

func (r *IdentityRepositoryImpl) FindActiveOwner(ctx context.Context, id uint) (*models.Owner, error) {
	return findActive[models.Owner](ctx, r.db, id, "owner")
}

func (r *IdentityRepositoryImpl) FindActiveCarer(ctx context.Context, id uint) (*models.Carer, error) {
	return findActive[models.Carer](ctx, r.db, id, "carer")
}

// LockActiveCarer loads the carer with SELECT ... FOR UPDATE, held until the transaction ends.
// SQLite has no row locks; the driver drops the clause and its single writer serializes instead.
func (r *IdentityRepositoryImpl) LockActiveCarer(ctx context.Context, id uint) (*models.Carer, error) {
	var carer models.Carer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(withID(id), activeOnly).
		First(&carer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock carer %d: %w", id, translate(err))
	}
	return &carer, nil
}

func (r *IdentityRepositoryImpl) FindActiveService(ctx context.Context, id uint) (*models.Service, error) {
	return findActive[models.Service](ctx, r.db, id, "service")
}

func (r *IdentityRepositoryImpl) FindActiveUser(ctx context.Context, id uint) (*models.User, error) {
	return findActive[models.User](ctx, r.db, id, "user")
}
