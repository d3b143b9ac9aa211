package routes

import (
	"github.com/HSouheill/salon_backend/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterPaymentRoutes registers operator payment routes on an authenticated group
func RegisterPaymentRoutes(api *echo.Group, paymentController *controllers.PaymentController) {
	payments := api.Group("/payments")
	payments.POST("/terminal/initiate", paymentController.InitiateTerminalPayment)
	payments.POST("/terminal/sync/:transactionId", paymentController.SyncTerminalTransaction)
	payments.GET("/terminal/health", paymentController.TerminalHealth)
	payments.POST("/instant", paymentController.RecordInstantPayment)

	api.POST("/appointments/:id/confirm-payment", paymentController.ConfirmPayment)
}
