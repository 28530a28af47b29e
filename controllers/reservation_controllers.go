package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
	"github.com/yeremiapane/petcare-reservation/services"
	"github.com/yeremiapane/petcare-reservation/utils"
)

// ReservationManager is the part of services.ReservationService the handlers use.
type ReservationManager interface {
	Create(ctx context.Context, in services.CreateReservationInput) (*models.Reservation, error)
	Update(ctx context.Context, id uint, in services.UpdateReservationInput) (*models.Reservation, error)
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindAll(ctx context.Context, page repositories.PageRequest) (repositories.Page[models.Reservation], error)
	FindByFilters(ctx context.Context, filter repositories.ReservationFilter, page repositories.PageRequest) (repositories.Page[models.Reservation], error)
	Delete(ctx context.Context, id uint) error
}

type ReservationController struct {
	reservations ReservationManager
}

func NewReservationController(reservations ReservationManager) *ReservationController {
	return &ReservationController{reservations: reservations}
}

// CreateReservation -> POST /reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	state, err := models.ParseReservationState(req.State)
	if err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := rc.reservations.Create(c.Request.Context(), services.CreateReservationInput{
		OwnerID:     req.OwnerID,
		CarerID:     req.CarerID,
		ServiceDate: req.ServiceDate,
		State:       &state,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

// UpdateReservation -> PUT /reservations/:id
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := services.UpdateReservationInput{
		OwnerID:     req.OwnerID,
		CarerID:     req.CarerID,
		ServiceDate: req.ServiceDate,
	}
	if req.State != nil {
		state, err := models.ParseReservationState(*req.State)
		if err != nil {
			badRequest(c, err)
			return
		}
		in.State = &state
	}

	reservation, err := rc.reservations.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated successfully", reservation)
}

// GetReservation -> GET /reservations/:id
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	reservation, err := rc.reservations.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// GetAllReservations -> GET /reservations
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := rc.reservations.FindAll(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", result)
}

// SearchReservations -> GET /reservations/search
func (rc *ReservationController) SearchReservations(c *gin.Context) {
	filter, err := parseReservationFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, err := parsePageRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := rc.reservations.FindByFilters(c.Request.Context(), filter, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", result)
}

// DeleteReservation -> DELETE /reservations/:id
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := rc.reservations.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
