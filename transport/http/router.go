package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sattisvar/live-bootcamp-project/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	router.POST("/signup", handlers.Signup)
	router.POST("/login", handlers.Login)
	router.POST("/verify-2fa", handlers.VerifyTwoFA)
	router.POST("/verify-token", handlers.VerifyToken)
	router.POST("/logout", handlers.Logout)

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
		api.GET("/authorize", handlers.Authorize)
	}

	return router
}
