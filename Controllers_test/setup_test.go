package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/controllers"
	"github.com/yeremiapane/petcare-reservation/database"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
	"github.com/yeremiapane/petcare-reservation/services"
)

// futureDate keeps request dates clear of the notpast rule regardless of when tests run.
func futureDate(hour, minute int) time.Time {
	return time.Date(2099, 3, 14, hour, minute, 0, 0, time.UTC)
}

type testEnv struct {
	db           *gorm.DB
	router       *gin.Engine
	owner        models.Owner
	carer        models.Carer
	service      models.Service
	otherService models.Service
}

// setupTestEnv menggunakan SQLite in-memory dan controller asli di atas service asli
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	env := &testEnv{db: db}
	env.owner = models.Owner{UserID: 1, Active: true}
	env.carer = models.Carer{UserID: 2, Active: true}
	otherCarer := models.Carer{UserID: 3, Active: true}
	require.NoError(t, db.Create(&env.owner).Error)
	require.NoError(t, db.Create(&env.carer).Error)
	require.NoError(t, db.Create(&otherCarer).Error)
	env.service = models.Service{CarerID: env.carer.ID, Name: "Dog walking", Active: true}
	env.otherService = models.Service{CarerID: otherCarer.ID, Name: "Cat sitting", Active: true}
	require.NoError(t, db.Create(&env.service).Error)
	require.NoError(t, db.Create(&env.otherService).Error)

	require.NoError(t, controllers.RegisterValidators())
	store := repositories.NewGormStore(db)
	reservationCtrl := controllers.NewReservationController(
		services.NewReservationService(store, cache.NoopCache{}, services.DefaultLifecyclePolicy(), cache.DefaultTTLs()))
	linkCtrl := controllers.NewReservationServiceController(
		services.NewReservationLinkService(store, cache.NoopCache{}, cache.DefaultTTLs(), true))

	r := gin.New()
	r.POST("/reservations", reservationCtrl.CreateReservation)
	r.GET("/reservations", reservationCtrl.GetAllReservations)
	r.GET("/reservations/search", reservationCtrl.SearchReservations)
	r.GET("/reservations/:id", reservationCtrl.GetReservation)
	r.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
	r.DELETE("/reservations/:id", reservationCtrl.DeleteReservation)

	r.POST("/reservation-services", linkCtrl.CreateReservationService)
	r.GET("/reservation-services", linkCtrl.GetAllReservationServices)
	r.GET("/reservation-services/search", linkCtrl.SearchReservationServices)
	r.GET("/reservation-services/by-reservation/:id", linkCtrl.GetByReservation)
	r.GET("/reservation-services/by-service/:id", linkCtrl.GetByService)
	r.DELETE("/reservation-services/by-reservation/:id", linkCtrl.DeleteByReservation)
	r.GET("/reservation-services/:id", linkCtrl.GetReservationService)
	r.PUT("/reservation-services/:id", linkCtrl.UpdateReservationService)
	r.DELETE("/reservation-services/:id", linkCtrl.DeleteReservationService)
	env.router = r
	return env
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (e *testEnv) createReservation(t *testing.T, at time.Time, state string) models.Reservation {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/reservations", map[string]interface{}{
		"ownerId":          e.owner.ID,
		"carerId":          e.carer.ID,
		"serviceDate":      at.Format(time.RFC3339),
		"reservationState": state,
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	return decode[models.Reservation](t, resp.Data)
}
