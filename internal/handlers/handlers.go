package handlers

import (
	"errors"
	"net/http"

	"trokazz-server/internal/api"
	"trokazz-server/internal/realtime"
	"trokazz-server/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the marketplace service over HTTP.
type Handler struct {
	service *api.Service
	hub     *realtime.Hub
}

func NewHandler(service *api.Service, hub *realtime.Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// respondError maps service errors onto HTTP statuses. Unrecognized errors
// become opaque 500s; the detail goes to the log only.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, store.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
	case errors.Is(err, store.ErrInvalidAmount),
		errors.Is(err, store.ErrEmptyReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrAlreadyBoosted),
		errors.Is(err, store.ErrRenewalNotDue),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrConcurrentModification),
		errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, api.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, api.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		zap.L().Error("Request handler failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
