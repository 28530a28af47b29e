package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/petcare-reservation/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestIdentityLookupsIgnoreInactiveRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepository(db)
	ctx := context.Background()

	activeOwner := models.Owner{UserID: 1, Active: true}
	inactiveOwner := models.Owner{UserID: 2, Active: false}
	carer := models.Carer{UserID: 3, Active: true}
	service := models.Service{CarerID: 1, Name: "Dog walking", Active: true}
	user := models.User{Name: "Ana", Email: "ana@example.com", Role: "owner", Active: true}
	require.NoError(t, db.Create(&activeOwner).Error)
	require.NoError(t, db.Create(&inactiveOwner).Error)
	require.NoError(t, db.Create(&carer).Error)
	require.NoError(t, db.Create(&service).Error)
	require.NoError(t, db.Create(&user).Error)

	owner, err := repo.FindActiveOwner(ctx, activeOwner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, owner.UserID)

	_, err = repo.FindActiveOwner(ctx, inactiveOwner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	gotCarer, err := repo.FindActiveCarer(ctx, carer.ID)
	require.NoError(t, err)
	assert.Equal(t, carer.ID, gotCarer.ID)

	gotService, err := repo.FindActiveService(ctx, service.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dog walking", gotService.Name)

	gotUser, err := repo.FindActiveUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", gotUser.Email)

	_, err = repo.FindActiveCarer(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLockActiveCarerOnSQLite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepository(db)
	ctx := context.Background()

	carer := models.Carer{UserID: 3, Active: true}
	retired := models.Carer{UserID: 4, Active: false}
	require.NoError(t, db.Create(&carer).Error)
	require.NoError(t, db.Create(&retired).Error)

	got, err := repo.LockActiveCarer(ctx, carer.ID)
	require.NoError(t, err)
	assert.Equal(t, carer.ID, got.ID)

	_, err = repo.LockActiveCarer(ctx, retired.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLockActiveCarerSelectsForUpdate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "carers" WHERE id = \$1 AND active = \$2 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "active"}).AddRow(9, 2, true))

	carer, err := NewIdentityRepository(db).LockActiveCarer(context.Background(), 9)
	require.NoError(t, err)
	assert.EqualValues(t, 9, carer.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
