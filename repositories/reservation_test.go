package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/petcare-reservation/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReservationFindActiveByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	active := seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 2, ServiceDate: baseTime, State: models.ReservationPending, Active: true})
	inactive := seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 2, ServiceDate: baseTime, State: models.ReservationPending, Active: false})

	got, err := repo.FindActiveByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
	assert.True(t, got.ServiceDate.Equal(baseTime))

	_, err = repo.FindActiveByID(ctx, inactive.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = repo.FindByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationFindAllActivePaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)

	for i := 0; i < 5; i++ {
		seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 2, ServiceDate: baseTime.Add(time.Duration(i) * 24 * time.Hour), State: models.ReservationPending, Active: true})
	}
	seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 2, ServiceDate: baseTime, State: models.ReservationPending, Active: false})

	page, err := repo.FindAllActive(context.Background(), PageRequest{Page: 1, Size: 2, SortBy: "id", SortDir: SortAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 2)
	assert.EqualValues(t, 3, page.Content[0].ID)
	assert.EqualValues(t, 4, page.Content[1].ID)

	_, err = repo.FindAllActive(context.Background(), PageRequest{SortBy: "nope"})
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestReservationFindByFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)

	early := seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 10, ServiceDate: baseTime, State: models.ReservationPending, Active: true})
	late := seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 10, ServiceDate: baseTime.Add(48 * time.Hour), State: models.ReservationAccepted, Active: true})
	seedReservation(t, db, models.Reservation{OwnerID: 2, CarerID: 11, ServiceDate: baseTime.Add(24 * time.Hour), State: models.ReservationPending, Active: true})
	seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 10, ServiceDate: baseTime.Add(24 * time.Hour), State: models.ReservationPending, Active: false})

	owner := uint(1)
	page, err := repo.FindByFilters(context.Background(), ReservationFilter{OwnerID: &owner}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	// default ordering is service date, newest first
	assert.Equal(t, late.ID, page.Content[0].ID)
	assert.Equal(t, early.ID, page.Content[1].ID)

	state := models.ReservationAccepted
	page, err = repo.FindByFilters(context.Background(), ReservationFilter{State: &state}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, late.ID, page.Content[0].ID)

	start := baseTime.Add(time.Hour)
	end := baseTime.Add(30 * time.Hour)
	page, err = repo.FindByFilters(context.Background(), ReservationFilter{StartDate: &start, EndDate: &end}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.EqualValues(t, 11, page.Content[0].CarerID)

	page, err = repo.FindByFilters(context.Background(), ReservationFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalElements)
}

func TestReservationExistsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	blocking := []models.ReservationState{models.ReservationPending, models.ReservationAccepted}

	existing := seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 5, ServiceDate: baseTime, State: models.ReservationPending, Active: true})
	seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 6, ServiceDate: baseTime, State: models.ReservationRejected, Active: true})
	seedReservation(t, db, models.Reservation{OwnerID: 1, CarerID: 7, ServiceDate: baseTime, State: models.ReservationPending, Active: false})

	window := func(carer uint, at time.Time, exclude uint) ConflictQuery {
		return ConflictQuery{CarerID: carer, Start: at.Add(-2 * time.Hour), End: at.Add(2 * time.Hour), States: blocking, ExcludeID: exclude}
	}

	busy, err := repo.ExistsConflict(ctx, window(5, baseTime.Add(90*time.Minute), 0))
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = repo.ExistsConflict(ctx, window(5, baseTime.Add(2*time.Hour), 0))
	require.NoError(t, err)
	assert.True(t, busy, "window bounds are inclusive")

	busy, err = repo.ExistsConflict(ctx, window(5, baseTime.Add(3*time.Hour+time.Minute), 0))
	require.NoError(t, err)
	assert.False(t, busy)

	busy, err = repo.ExistsConflict(ctx, window(5, baseTime, existing.ID))
	require.NoError(t, err)
	assert.False(t, busy, "a reservation never collides with itself")

	busy, err = repo.ExistsConflict(ctx, window(6, baseTime, 0))
	require.NoError(t, err)
	assert.False(t, busy, "rejected reservations do not block")

	busy, err = repo.ExistsConflict(ctx, window(7, baseTime, 0))
	require.NoError(t, err)
	assert.False(t, busy, "inactive reservations do not block")

	busy, err = repo.ExistsConflict(ctx, ConflictQuery{CarerID: 5, Start: baseTime, End: baseTime})
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestReservationExistsConflictQuery(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	start := baseTime.Add(-2 * time.Hour)
	end := baseTime.Add(2 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE carer_id = $1 AND active = $2 AND state IN ($3,$4) AND service_date BETWEEN $5 AND $6 AND id <> $7)`)).
		WithArgs(9, true, "PENDING", "ACCEPTED", start, end, 3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	busy, err := NewReservationRepository(db).ExistsConflict(context.Background(), ConflictQuery{
		CarerID:   9,
		Start:     start,
		End:       end,
		States:    []models.ReservationState{models.ReservationPending, models.ReservationAccepted},
		ExcludeID: 3,
	})
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
