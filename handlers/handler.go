package handlers

import (
	"errors"
	"net/http"

	"food-storefront/lifecycle"
	"food-storefront/middleware"
	"food-storefront/statemachine"
	"food-storefront/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the storefront API over one store session.
type Handler struct {
	store  *store.Store
	auth   *middleware.Auth
	driver *lifecycle.Driver
	log    *zap.Logger
}

func New(s *store.Store, auth *middleware.Auth, driver *lifecycle.Driver, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: s, auth: auth, driver: driver, log: log}
}

// respondError maps store and state machine errors to HTTP responses
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrEmailTaken), errors.Is(err, store.ErrAdminExists):
		status = http.StatusConflict
	case errors.Is(err, store.ErrAdminLimitReached):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrFoodNotFound), errors.Is(err, store.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrFoodUnavailable), errors.Is(err, store.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, statemachine.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
