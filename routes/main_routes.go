package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/salon_backend/controllers"
	"github.com/HSouheill/salon_backend/middleware"
	"github.com/HSouheill/salon_backend/websocket"
)

// Controllers bundles every HTTP controller the server exposes
type Controllers struct {
	Auth     *controllers.AuthController
	Webhook  *controllers.WebhookController
	Payment  *controllers.PaymentController
	Earnings *controllers.EarningsController
	Payroll  *controllers.PayrollController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, jwtSecret string, hub *websocket.Hub, ctl Controllers) {
	RegisterWebhookRoutes(e, ctl.Webhook)
	if ctl.Auth != nil {
		RegisterAuthRoutes(e, ctl.Auth)
	}

	api := e.Group("/api")
	api.Use(middleware.JWTMiddlewareWithSecret(jwtSecret))
	api.Use(middleware.RequireOperator())

	RegisterPaymentRoutes(api, ctl.Payment)
	RegisterStaffRoutes(api, ctl.Earnings, ctl.Payroll)

	if hub != nil {
		api.GET("/ws", func(c echo.Context) error {
			return websocket.HandleWebSocket(c, hub, middleware.GetUserIDFromToken(c))
		})
	}
}
