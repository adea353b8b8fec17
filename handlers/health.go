package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck is the unauthenticated probe for the load balancer.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "ilkevim-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
