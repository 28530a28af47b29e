package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// memoryCache records what the services store so tests can assert on cache traffic.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return false, errors.New("cache down")
	}
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("cache down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("cache down")
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

type fixture struct {
	db    *gorm.DB
	store *repositories.GormStore
	cache *memoryCache

	owner        models.Owner
	carer        models.Carer
	otherCarer   models.Carer
	service      models.Service
	otherService models.Service
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Owner{}, &models.Carer{}, &models.Service{},
		&models.Reservation{}, &models.ReservationService{},
	))

	f := &fixture{db: db, store: repositories.NewGormStore(db), cache: newMemoryCache()}
	f.owner = models.Owner{UserID: 1, Active: true}
	f.carer = models.Carer{UserID: 2, Active: true}
	f.otherCarer = models.Carer{UserID: 3, Active: true}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.carer).Error)
	require.NoError(t, db.Create(&f.otherCarer).Error)

	f.service = models.Service{CarerID: f.carer.ID, Name: "Dog walking", Active: true}
	f.otherService = models.Service{CarerID: f.otherCarer.ID, Name: "Cat sitting", Active: true}
	require.NoError(t, db.Create(&f.service).Error)
	require.NoError(t, db.Create(&f.otherService).Error)
	return f
}

func (f *fixture) reservations() *ReservationService {
	return NewReservationService(f.store, f.cache, DefaultLifecyclePolicy(), cache.DefaultTTLs()).WithClock(clock)
}

func (f *fixture) links(enforceCarerMatch bool) *ReservationLinkService {
	return NewReservationLinkService(f.store, f.cache, cache.DefaultTTLs(), enforceCarerMatch).WithClock(clock)
}

// seed inserts a reservation directly, bypassing the service rules.
func (f *fixture) seed(t *testing.T, carerID uint, at time.Time, state models.ReservationState) models.Reservation {
	t.Helper()
	r := models.Reservation{
		OwnerID:     f.owner.ID,
		CarerID:     carerID,
		ServiceDate: at,
		State:       state,
		Active:      true,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	require.NoError(t, f.db.Create(&r).Error)
	return r
}

func ptr[T any](v T) *T { return &v }

func createInput(ownerID, carerID uint, at time.Time, state models.ReservationState) CreateReservationInput {
	return CreateReservationInput{
		OwnerID:     ptr(ownerID),
		CarerID:     ptr(carerID),
		ServiceDate: ptr(at),
		State:       ptr(state),
	}
}
