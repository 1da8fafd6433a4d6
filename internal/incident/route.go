package incident

import (
	"github.com/gin-gonic/gin"

	"incident-service/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, handler *Handler, jwtSecret string) {
	incidentGroup := r.Group("api/v1/incidents", middleware.Secured(jwtSecret))
	{
		incidentGroup.POST("", handler.Create)
		incidentGroup.GET("", handler.List)
		incidentGroup.GET("/:id", handler.Get)
		incidentGroup.PUT("/:id", handler.Update)
		incidentGroup.POST("/:id/close", handler.Close)
		incidentGroup.POST("/:id/acknowledge", handler.Acknowledge)
		incidentGroup.GET("/:id/acknowledgements", handler.ListAcknowledgements)
	}
}
