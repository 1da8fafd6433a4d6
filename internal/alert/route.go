package alert

import (
	"github.com/gin-gonic/gin"

	"incident-service/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, handler *Handler, jwtSecret string) {
	alertGroup := r.Group("api/v1/alerts", middleware.Secured(jwtSecret))
	{
		alertGroup.POST("", handler.Send)
	}
}
