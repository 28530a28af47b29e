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

// LinkManager is the part of services.ReservationLinkService the handlers use.
type LinkManager interface {
	Create(ctx context.Context, in services.LinkInput) (*models.ReservationService, error)
	Update(ctx context.Context, id uint, in services.LinkInput) (*models.ReservationService, error)
	FindByID(ctx context.Context, id uint) (*models.ReservationService, error)
	FindAll(ctx context.Context, page repositories.PageRequest) (repositories.Page[models.ReservationService], error)
	FindByFilters(ctx context.Context, filter repositories.LinkFilter, page repositories.PageRequest) (repositories.Page[models.ReservationService], error)
	FindByReservationID(ctx context.Context, reservationID uint) ([]models.ReservationService, error)
	FindByServiceID(ctx context.Context, serviceID uint) ([]models.ReservationService, error)
	Delete(ctx context.Context, id uint) error
	DeleteAllByReservationID(ctx context.Context, reservationID uint) (int64, error)
}

type ReservationServiceController struct {
	links LinkManager
}

func NewReservationServiceController(links LinkManager) *ReservationServiceController {
	return &ReservationServiceController{links: links}
}

// CreateReservationService -> POST /reservation-services
func (lc *ReservationServiceController) CreateReservationService(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	link, err := lc.links.Create(c.Request.Context(), services.LinkInput{
		ReservationID: req.ReservationID,
		ServiceID:     req.ServiceID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation service created successfully", link)
}

// UpdateReservationService -> PUT /reservation-services/:id
func (lc *ReservationServiceController) UpdateReservationService(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	link, err := lc.links.Update(c.Request.Context(), id, services.LinkInput{
		ReservationID: req.ReservationID,
		ServiceID:     req.ServiceID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation service updated successfully", link)
}

// GetReservationService -> GET /reservation-services/:id
func (lc *ReservationServiceController) GetReservationService(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	link, err := lc.links.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation service detail", link)
}

// GetAllReservationServices -> GET /reservation-services
func (lc *ReservationServiceController) GetAllReservationServices(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := lc.links.FindAll(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservation services", result)
}

// SearchReservationServices -> GET /reservation-services/search
func (lc *ReservationServiceController) SearchReservationServices(c *gin.Context) {
	filter, err := parseLinkFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, err := parsePageRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := lc.links.FindByFilters(c.Request.Context(), filter, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservation services", result)
}

// GetByReservation -> GET /reservation-services/by-reservation/:id
func (lc *ReservationServiceController) GetByReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	links, err := lc.links.FindByReservationID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Services of reservation", links)
}

// GetByService -> GET /reservation-services/by-service/:id
func (lc *ReservationServiceController) GetByService(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	links, err := lc.links.FindByServiceID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations of service", links)
}

// DeleteReservationService -> DELETE /reservation-services/:id
func (lc *ReservationServiceController) DeleteReservationService(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := lc.links.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteByReservation -> DELETE /reservation-services/by-reservation/:id
func (lc *ReservationServiceController) DeleteByReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	affected, err := lc.links.DeleteAllByReservationID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation services deleted", gin.H{
		"reservationId": id,
		"deleted":       affected,
	})
}
