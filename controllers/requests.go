package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
)

type CreateReservationRequest struct {
	OwnerID     *uint      `json:"ownerId" binding:"required,gt=0"`
	CarerID     *uint      `json:"carerId" binding:"required,gt=0"`
	ServiceDate *time.Time `json:"serviceDate" binding:"required,notpast"`
	State       string     `json:"reservationState" binding:"required"`
}

type UpdateReservationRequest struct {
	OwnerID     *uint      `json:"ownerId" binding:"omitempty,gt=0"`
	CarerID     *uint      `json:"carerId" binding:"omitempty,gt=0"`
	ServiceDate *time.Time `json:"serviceDate"`
	State       *string    `json:"reservationState"`
}

type CreateLinkRequest struct {
	ReservationID *uint `json:"reservationId" binding:"required,gt=0"`
	ServiceID     *uint `json:"serviceId" binding:"required,gt=0"`
}

type UpdateLinkRequest struct {
	ReservationID *uint `json:"reservationId" binding:"omitempty,gt=0"`
	ServiceID     *uint `json:"serviceId" binding:"omitempty,gt=0"`
}

var errInvalidID = errors.New("id must be a positive integer")

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func parseOptionalUint(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, errors.New(name + " must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}

func parseOptionalTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New(name + " must be an RFC3339 timestamp")
	}
	return &t, nil
}

// parsePageRequest reads page, size, sortBy and sortDir. Sizes above the maximum are capped by the repository.
func parsePageRequest(c *gin.Context) (repositories.PageRequest, error) {
	page := repositories.PageRequest{
		Size:    repositories.DefaultPageSize,
		SortBy:  strings.TrimSpace(c.Query("sortBy")),
		SortDir: repositories.SortDesc,
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, errors.New("page must be a non-negative integer")
		}
		page.Page = n
	}
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, errors.New("size must be a positive integer")
		}
		page.Size = n
	}
	if raw := strings.TrimSpace(c.Query("sortDir")); raw != "" {
		switch strings.ToUpper(raw) {
		case "ASC", "DESC":
			page.SortDir = repositories.ParseSortDirection(raw)
		default:
			return page, errors.New("sortDir must be ASC or DESC")
		}
	}
	return page, nil
}

func parseReservationFilter(c *gin.Context) (repositories.ReservationFilter, error) {
	var (
		filter repositories.ReservationFilter
		err    error
	)
	if filter.OwnerID, err = parseOptionalUint(c, "ownerId"); err != nil {
		return filter, err
	}
	if filter.CarerID, err = parseOptionalUint(c, "carerId"); err != nil {
		return filter, err
	}
	if raw := strings.TrimSpace(c.Query("state")); raw != "" {
		state, err := models.ParseReservationState(raw)
		if err != nil {
			return filter, err
		}
		filter.State = &state
	}
	if filter.StartDate, err = parseOptionalTime(c, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseOptionalTime(c, "endDate"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseLinkFilter(c *gin.Context) (repositories.LinkFilter, error) {
	var (
		filter repositories.LinkFilter
		err    error
	)
	if filter.ReservationID, err = parseOptionalUint(c, "reservationId"); err != nil {
		return filter, err
	}
	if filter.ServiceID, err = parseOptionalUint(c, "serviceId"); err != nil {
		return filter, err
	}
	return filter, nil
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, err.Error())
}
