package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/pkg/errors"
)

// respondError maps a service error onto an HTTP status and body
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation   *errors.ErrValidation
		unauthorized *errors.ErrUnauthorized
		remote       *errors.ErrRemoteCall
		stock        *errors.ErrStockExceeded
		quantity     *errors.ErrInvalidQuantity
		notFound     *errors.ErrNotFound
		emptyCart    *errors.ErrEmptyCart
		transition   *errors.ErrInvalidStateTransition
	)

	switch {
	case stderrors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation failed",
			"details": validation.Fields,
		})
	case stderrors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	case stderrors.As(err, &remote):
		logger.Warn("Backend call failed",
			zap.String("operation", remote.Operation),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": remote.Message})
	case stderrors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"available": stock.Available,
		})
	case stderrors.As(err, &quantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Resource + " not found"})
	case stderrors.As(err, &emptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case stderrors.As(err, &transition):
		logger.Error("Placement state machine violated", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func callerOrAbort(c *gin.Context) (service.Caller, bool) {
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
	return caller, ok
}

func natParam(c *gin.Context, name, label string) (domain.Nat, bool) {
	id, err := domain.ParseNat(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label})
		return domain.Nat{}, false
	}
	return id, true
}
