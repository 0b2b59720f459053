package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carebook/utils"
)

// HealthCheck reports the latest stored health snapshot.
func HealthCheck(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
