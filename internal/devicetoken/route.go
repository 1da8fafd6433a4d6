package devicetoken

import (
	"github.com/gin-gonic/gin"

	"incident-service/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, handler *Handler, jwtSecret string) {
	tokenGroup := r.Group("api/v1/device-tokens", middleware.Secured(jwtSecret))
	{
		tokenGroup.POST("", handler.Register)
		tokenGroup.GET("", handler.List)
		tokenGroup.POST("/deactivate", handler.Deactivate)
		tokenGroup.DELETE("/:id", handler.Delete)
	}
}
