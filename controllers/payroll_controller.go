package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/utils"
	"github.com/labstack/echo/v4"
)

// PayrollSyncer forwards payroll aggregates
type PayrollSyncer interface {
	SyncStaffPayroll(ctx context.Context, staffID int64, periodStart, periodEnd time.Time) (*models.PayrollSyncResult, error)
}

// PayrollController lets operators push a payroll window on demand
type PayrollController struct {
	payroll PayrollSyncer
}

// NewPayrollController creates a new payroll controller
func NewPayrollController(payroll PayrollSyncer) *PayrollController {
	return &PayrollController{payroll: payroll}
}

// SyncPayroll aggregates one staff member's window and delivers it.
// Delivery failure is reported in the body, not as an HTTP error.
func (pc *PayrollController) SyncPayroll(c echo.Context) error {
	// retries with delays across several URLs can take a while
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	var req models.PayrollSyncRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	start, err := utils.ParseDate(req.PeriodStart)
	if err != nil || start == nil {
		return badRequest(c, "Invalid periodStart, expected YYYY-MM-DD")
	}
	end, err := utils.ParseDate(req.PeriodEnd)
	if err != nil || end == nil {
		return badRequest(c, "Invalid periodEnd, expected YYYY-MM-DD")
	}
	periodEnd := utils.EndOfDay(*end)
	if periodEnd.Before(*start) {
		return badRequest(c, "periodEnd must not be before periodStart")
	}

	result, err := pc.payroll.SyncStaffPayroll(ctx, req.StaffID, *start, periodEnd)
	if err != nil {
		log.Printf("❌ payroll sync failed staffId=%d err=%v", req.StaffID, err)
		return paymentError(c, err)
	}

	message := "Payroll delivered"
	if !result.Delivered {
		message = "Payroll could not be delivered to any endpoint"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    result,
	})
}
