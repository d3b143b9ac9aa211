package routes

import (
	"github.com/HSouheill/salon_backend/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterAuthRoutes registers the public operator login route.
// It sits outside the /api group so the JWT middleware does not apply.
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/login", authController.Login)
}
