package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
)

const (
	// DeviceHeader carries the client's stable device id
	DeviceHeader = "X-Device-ID"

	callerContextKey = "caller"
)

// IdentifyCaller reads the device id and bearer credential from the request.
// A request without Authorization is anonymous; a present but malformed
// device id is rejected.
func IdentifyCaller(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := service.Caller{Principal: domain.None[domain.Principal]()}

		if raw := strings.TrimSpace(c.GetHeader(DeviceHeader)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + DeviceHeader + " header"})
				return
			}
			caller.DeviceID = id.String()
		}

		if auth := c.GetHeader("Authorization"); auth != "" {
			token, ok := strings.CutPrefix(auth, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
				return
			}
			principal := domain.Principal(token)
			caller.Principal = domain.Some(principal)
			c.Request = c.Request.WithContext(domain.ContextWithPrincipal(c.Request.Context(), principal))
			logger.Debug("Caller identified", zap.String("caller", principal.Fingerprint()))
		}

		c.Set(callerContextKey, caller)
		c.Next()
	}
}

// RequireDevice rejects requests without a device id
func RequireDevice() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCallerFromContext(c)
		if !ok || caller.DeviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": DeviceHeader + " header is required"})
			return
		}
		c.Next()
	}
}

// GetCallerFromContext retrieves the caller set by IdentifyCaller
func GetCallerFromContext(c *gin.Context) (service.Caller, bool) {
	v, ok := c.Get(callerContextKey)
	if !ok {
		return service.Caller{}, false
	}
	caller, ok := v.(service.Caller)
	return caller, ok
}
