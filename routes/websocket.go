package routes

import (
	"notelock/middleware"
	"notelock/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes sets up the live update endpoint with authentication
func RegisterWebSocketRoutes(router *gin.Engine, authService services.AuthServiceInterface, wsService services.WebSocketServiceInterface) {
	wsGroup := router.Group("/api/v1/ws")
	wsGroup.Use(middleware.AuthMiddleware(authService))
	{
		wsGroup.GET("", func(c *gin.Context) {
			wsService.HandleConnection(c)
		})
	}
}
