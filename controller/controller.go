// Package controller exposes the service layer over HTTP.
package controller

import (
	"errors"
	"net/http"

	"github.com/eventsoc/soc-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// WriteError maps the service error taxonomy onto HTTP statuses. The
// taxonomy is sufficient on its own; no error text is inspected.
func WriteError(ctx *gin.Context, err error) {
	var partial *service.PartialFailureError
	if errors.As(err, &partial) {
		log.Error().Err(err).Str("op", partial.Op).Msg("partial failure, state needs reconciliation")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrApplicationNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken),
		errors.Is(err, service.ErrRevokedToken),
		errors.Is(err, service.ErrUnknownSubject),
		errors.Is(err, service.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrInsufficientPrivilege):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyApplied):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
