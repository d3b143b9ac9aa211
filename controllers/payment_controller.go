package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/HSouheill/salon_backend/middleware"
	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/repositories"
	"github.com/HSouheill/salon_backend/services"
	"github.com/HSouheill/salon_backend/utils"
	"github.com/labstack/echo/v4"
)

// TerminalPayments is the terminal side of payment handling
type TerminalPayments interface {
	InitiateCharge(ctx context.Context, req models.InitiateTerminalPaymentRequest) (*models.Payment, error)
	ConfirmManually(ctx context.Context, appointmentID int64, amount *float64) (*services.SettlementResult, error)
	SyncTransaction(ctx context.Context, transactionID string) (*services.TransactionOutcome, error)
	TerminalHealth(ctx context.Context) error
}

// Settler settles desk payments that need no provider round-trip
type Settler interface {
	Settle(ctx context.Context, req services.SettleRequest) (*services.SettlementResult, error)
}

// PaymentController handles operator payment actions
type PaymentController struct {
	terminal TerminalPayments
	settler  Settler
}

// NewPaymentController creates a new payment controller
func NewPaymentController(terminal TerminalPayments, settler Settler) *PaymentController {
	return &PaymentController{
		terminal: terminal,
		settler:  settler,
	}
}

// InitiateTerminalPayment starts a card charge on a terminal device
func (pc *PaymentController) InitiateTerminalPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.InitiateTerminalPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	payment, err := pc.terminal.InitiateCharge(ctx, req)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Terminal payment started",
		Data:    payment,
	})
}

// ConfirmPayment settles an appointment on the operator's confirmation
func (pc *PaymentController) ConfirmPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	appointmentID, err := utils.ParseInt64(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid appointment ID")
	}

	var req models.ConfirmPaymentRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result, err := pc.terminal.ConfirmManually(ctx, appointmentID, req.Amount)
	if err != nil {
		return paymentError(c, err)
	}

	log.Printf("manual confirmation appointmentId=%d amount=%.2f operator=%s alreadySettled=%v",
		appointmentID, result.Amount, middleware.GetUserIDFromToken(c), result.AlreadySettled)

	message := "Payment confirmed"
	if result.AlreadySettled {
		message = "Appointment was already paid"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data: map[string]interface{}{
			"appointmentId":  result.AppointmentID,
			"amount":         result.Amount,
			"alreadySettled": result.AlreadySettled,
			"earnings":       result.Earnings,
		},
	})
}

// SyncTerminalTransaction pulls one transaction from the provider and applies it
func (pc *PaymentController) SyncTerminalTransaction(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	transactionID := strings.TrimSpace(c.Param("transactionId"))
	if transactionID == "" {
		return badRequest(c, "Missing transaction ID")
	}

	outcome, err := pc.terminal.SyncTransaction(ctx, transactionID)
	if err != nil {
		return paymentError(c, err)
	}

	message := "Transaction synced"
	switch {
	case outcome.Settlement != nil && outcome.Settlement.AlreadySettled:
		message = "Appointment was already paid"
	case outcome.Settlement != nil:
		message = "Payment settled from terminal transaction"
	case outcome.Failed:
		message = "Pending payment marked failed"
	case !outcome.Approved:
		message = fmt.Sprintf("Transaction status %s is not approved, nothing settled", outcome.Status)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    outcome,
	})
}

// RecordInstantPayment settles a cash or gift card payment taken at the desk
func (pc *PaymentController) RecordInstantPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.InstantPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result, err := pc.settler.Settle(ctx, services.SettleRequest{
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Method:        req.Method,
		Source:        services.SourceInstant,
		Description:   req.Description,
	})
	if err != nil {
		return paymentError(c, err)
	}

	message := "Payment recorded"
	if result.AlreadySettled {
		message = "Appointment was already paid"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    result,
	})
}

// TerminalHealth reports whether the terminal provider is reachable
func (pc *PaymentController) TerminalHealth(c echo.Context) error {
	if err := pc.terminal.TerminalHealth(c.Request().Context()); err != nil {
		return paymentError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Terminal provider reachable",
	})
}

// paymentError maps service errors to response envelopes
func paymentError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Failed to process payment"

	switch {
	case errors.Is(err, services.ErrAmountRequired), errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrNoInvoiceMatch), errors.Is(err, services.ErrNotApproved):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrAppointmentNotFound), errors.Is(err, repositories.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrAlreadySettled), errors.Is(err, services.ErrPaymentInProgress):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrLockTimeout):
		status, message = http.StatusConflict, "Another payment action is in progress for this appointment, try again"
	case errors.Is(err, services.ErrTerminalUnavailable):
		status, message = http.StatusBadGateway, "Terminal provider unreachable"
	case errors.Is(err, services.ErrTerminalNotConfigured):
		status, message = http.StatusServiceUnavailable, err.Error()
	default:
		log.Printf("❌ payment request failed path=%s err=%v", c.Path(), err)
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}
