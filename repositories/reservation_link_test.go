package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/petcare-reservation/models"
	"gorm.io/gorm"
)

func seedLink(t *testing.T, db *gorm.DB, reservationID, serviceID uint, active bool, createdAt time.Time) models.ReservationService {
	t.Helper()
	link := models.ReservationService{
		ReservationID: reservationID,
		ServiceID:     serviceID,
		Active:        active,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&link).Error)
	return link
}

func TestLinkExistsActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationLinkRepository(db)
	ctx := context.Background()

	link := seedLink(t, db, 1, 2, true, baseTime)
	seedLink(t, db, 1, 3, false, baseTime)

	exists, err := repo.ExistsActive(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsActive(ctx, 1, 2, link.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsActive(ctx, 1, 3, 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLinkListsByParent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationLinkRepository(db)
	ctx := context.Background()

	seedLink(t, db, 1, 2, true, baseTime)
	seedLink(t, db, 1, 3, true, baseTime)
	seedLink(t, db, 1, 4, false, baseTime)
	seedLink(t, db, 5, 2, true, baseTime)

	byReservation, err := repo.FindActiveByReservationID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byReservation, 2)

	byService, err := repo.FindActiveByServiceID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, byService, 2)

	none, err := repo.FindActiveByServiceID(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLinkFindByFiltersOrdersByCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationLinkRepository(db)

	older := seedLink(t, db, 1, 2, true, baseTime)
	newer := seedLink(t, db, 1, 3, true, baseTime.Add(time.Hour))
	seedLink(t, db, 2, 3, true, baseTime)

	reservationID := uint(1)
	page, err := repo.FindByFilters(context.Background(), LinkFilter{ReservationID: &reservationID}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, newer.ID, page.Content[0].ID)
	assert.Equal(t, older.ID, page.Content[1].ID)

	serviceID := uint(3)
	page, err = repo.FindByFilters(context.Background(), LinkFilter{ReservationID: &reservationID, ServiceID: &serviceID}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, newer.ID, page.Content[0].ID)

	all, err := repo.FindAllActive(context.Background(), PageRequest{SortBy: "serviceId", SortDir: SortAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalElements)
	assert.EqualValues(t, 2, all.Content[0].ServiceID)
}

func TestLinkDeactivateByReservationID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationLinkRepository(db)
	ctx := context.Background()

	first := seedLink(t, db, 1, 2, true, baseTime)
	seedLink(t, db, 1, 3, true, baseTime)
	seedLink(t, db, 1, 4, false, baseTime)
	other := seedLink(t, db, 2, 2, true, baseTime)

	at := baseTime.Add(time.Hour)
	affected, err := repo.DeactivateByReservationID(ctx, 1, at)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	_, err = repo.FindActiveByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var reloaded models.ReservationService
	require.NoError(t, db.First(&reloaded, first.ID).Error)
	assert.False(t, reloaded.Active)
	assert.True(t, reloaded.UpdatedAt.Equal(at))

	stillActive, err := repo.FindActiveByID(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, stillActive.Active)

	affected, err = repo.DeactivateByReservationID(ctx, 1, at)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
