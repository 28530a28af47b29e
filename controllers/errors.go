package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/petcare-reservation/services"
	"github.com/yeremiapane/petcare-reservation/utils"
)

func respondError(c *gin.Context, code int, message string) {
	utils.RespondError(c, code, errors.New(message))
}

// respondServiceError maps domain error kinds to HTTP statuses. Unclassified errors are logged and hidden.
func respondServiceError(c *gin.Context, err error) {
	var de *services.DomainError
	if errors.As(err, &de) {
		switch de.Kind {
		case services.KindNotFound:
			respondError(c, http.StatusNotFound, de.Message)
			return
		case services.KindBusinessValidation:
			respondError(c, http.StatusBadRequest, de.Message)
			return
		case services.KindConflict:
			respondError(c, http.StatusConflict, de.Message)
			return
		}
	}

	utils.ErrorLogger.WithError(err).WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"request_id": c.GetString("requestID"),
	}).Error("request failed")
	respondError(c, http.StatusInternalServerError, "internal server error")
}
