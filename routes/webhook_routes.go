package routes

import (
	"github.com/HSouheill/salon_backend/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterWebhookRoutes registers the public terminal provider webhook.
// /webhook/helcim is kept for provider configurations registered before the plural path.
func RegisterWebhookRoutes(e *echo.Echo, webhookController *controllers.WebhookController) {
	for _, path := range []string{"/webhooks/helcim", "/webhook/helcim"} {
		e.POST(path, webhookController.HandleHelcimWebhook)
		e.GET(path, webhookController.ValidateHelcimWebhook)
	}
}
