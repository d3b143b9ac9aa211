package routes

import (
	"github.com/HSouheill/salon_backend/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterStaffRoutes registers earnings listing and payroll routes on an authenticated group
func RegisterStaffRoutes(api *echo.Group, earningsController *controllers.EarningsController, payrollController *controllers.PayrollController) {
	api.GET("/staff/:staffId/earnings", earningsController.GetStaffEarnings)
	api.POST("/payroll/sync", payrollController.SyncPayroll)
}
