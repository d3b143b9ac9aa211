package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods
const (
	PaymentMethodTerminal = "terminal"
	PaymentMethodCash     = "cash"
	PaymentMethodGiftCard = "gift_card"
)

// Payment status values
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment is one attempted or completed transfer, tied to at most one appointment
type Payment struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AppointmentID *int64             `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	ClientID      int64              `json:"clientId" bson:"clientId"`
	Amount        float64            `json:"amount" bson:"amount"`
	TotalAmount   float64            `json:"totalAmount" bson:"totalAmount"`
	Method        string             `json:"method" bson:"method"` // "terminal", "cash", "gift_card"
	Status        string             `json:"status" bson:"status"` // "pending", "completed", "failed"
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	TransactionID string             `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	InvoiceNumber string             `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`
	DeviceCode    string             `json:"deviceCode,omitempty" bson:"deviceCode,omitempty"`
	FailureReason string             `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
	CompletedAt   *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// PaymentUpdate is a partial update; nil fields are left untouched
type PaymentUpdate struct {
	Amount        *float64
	TotalAmount   *float64
	Description   *string
	TransactionID *string
}

// InitiateTerminalPaymentRequest starts a card charge on a terminal device
type InitiateTerminalPaymentRequest struct {
	AppointmentID int64   `json:"appointmentId" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	DeviceCode    string  `json:"deviceCode" validate:"required"`
	Currency      string  `json:"currency,omitempty"`
}

// ConfirmPaymentRequest is the operator's manual confirmation body
type ConfirmPaymentRequest struct {
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// InstantPaymentRequest records a cash or gift card payment taken at the desk
type InstantPaymentRequest struct {
	AppointmentID int64   `json:"appointmentId" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method" validate:"required,oneof=cash gift_card"`
	Description   string  `json:"description,omitempty"`
}
