package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "storefront"

// HealthCheck reports the storefront and the services it depends on
func (h *StorefrontHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := gin.H{}
	status := "healthy"

	if err := h.products.Ping(ctx); err != nil {
		services["product-service"] = "unhealthy"
		status = "degraded"
	} else {
		services["product-service"] = "healthy"
	}

	if err := h.sessions.Ping(ctx); err != nil {
		services["session-store"] = "unhealthy"
		status = "degraded"
	} else {
		services["session-store"] = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"service":  serviceName,
		"services": services,
	})
}
