package router

import (
	"github.com/SimpnicServerTeam/instaclone-auth/internal/handlers"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/middleware"

	"github.com/labstack/echo/v4"
)

// SetupAccountRoutes registers the account API. Paths match the existing web client.
func SetupAccountRoutes(e *echo.Echo, accountHandler *handlers.AccountHandler, verifier middleware.TokenVerifier) {
	e.POST("/users", accountHandler.Register)   // Sign up
	e.POST("/user/login", accountHandler.Login) // Password login, returns token

	user := e.Group("/user", middleware.RequireAuth(verifier))
	user.GET("", accountHandler.Current)                 // Current profile
	user.PUT("", accountHandler.Update)                  // Profile update, re-issues token
	user.PUT("/password", accountHandler.ChangePassword) // New password, re-issues token
	user.DELETE("", accountHandler.Delete)               // Delete account
}
