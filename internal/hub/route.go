package hub

import (
	"github.com/gin-gonic/gin"

	"incident-service/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, handler *Handler, jwtSecret string) {
	r.GET("/ws", middleware.Secured(jwtSecret), handler.Connect)
}
