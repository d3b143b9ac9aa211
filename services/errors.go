package services

import (
	"errors"
)

var (
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrAmountRequired        = errors.New("a positive amount is required")
	ErrInvalidAmount         = errors.New("amount must not be negative")
	ErrAlreadySettled        = errors.New("appointment is already paid")
	ErrPaymentInProgress     = errors.New("a terminal payment is already pending for this appointment")
	ErrNotApproved           = errors.New("transaction is not approved")
	ErrNoInvoiceMatch        = errors.New("invoice number does not reference an appointment")
	ErrTerminalUnavailable   = errors.New("terminal provider unavailable")
	ErrTerminalNotConfigured = errors.New("terminal provider is not configured")
	ErrLockTimeout           = errors.New("timed out waiting for appointment lock")
)
