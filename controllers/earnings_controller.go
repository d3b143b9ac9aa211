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

// EarningsReader lists persisted staff earnings
type EarningsReader interface {
	GetStaffEarnings(ctx context.Context, staffID int64, periodStart, periodEnd *time.Time) ([]models.StaffEarnings, error)
}

// EarningsController exposes staff earnings to operators
type EarningsController struct {
	earnings EarningsReader
}

// NewEarningsController creates a new earnings controller
func NewEarningsController(earnings EarningsReader) *EarningsController {
	return &EarningsController{earnings: earnings}
}

// GetStaffEarnings lists earnings for a staff member, optionally within ?from=&to= (YYYY-MM-DD, inclusive)
func (ec *EarningsController) GetStaffEarnings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	staffID, err := utils.ParseInt64(c.Param("staffId"))
	if err != nil {
		return badRequest(c, "Invalid staff ID")
	}
	from, err := utils.ParseDate(c.QueryParam("from"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	to, err := utils.ParseDate(c.QueryParam("to"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if to != nil {
		end := utils.EndOfDay(*to)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return badRequest(c, "to must not be before from")
	}

	earnings, err := ec.earnings.GetStaffEarnings(ctx, staffID, from, to)
	if err != nil {
		log.Printf("❌ earnings listing failed staffId=%d err=%v", staffID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load earnings",
		})
	}

	summary := models.StaffEarningsSummary{
		StaffID:  staffID,
		From:     from,
		To:       to,
		Count:    len(earnings),
		Earnings: earnings,
	}
	for _, e := range earnings {
		summary.TotalEarnings += e.EarningsAmount
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Staff earnings retrieved",
		Data:    summary,
	})
}
