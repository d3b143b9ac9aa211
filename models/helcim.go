package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString accepts either a JSON string or a JSON number.
// The terminal provider sends transaction ids both ways.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the raw value
func (f FlexString) String() string { return string(f) }

// FlexFloat accepts a JSON number or a numeric string
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// HelcimWebhookEvent is the body of an inbound terminal webhook delivery
type HelcimWebhookEvent struct {
	ID                FlexString `json:"id"`
	TransactionID     FlexString `json:"transactionId"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	TransactionAmount *FlexFloat `json:"transactionAmount"`
	InvoiceNumber     string     `json:"invoiceNumber"`
}

// TxID returns id, falling back to transactionId
func (e HelcimWebhookEvent) TxID() string {
	if e.ID != "" {
		return e.ID.String()
	}
	return e.TransactionID.String()
}

// HelcimCardTransaction is the provider's view of one card transaction
type HelcimCardTransaction struct {
	TransactionID FlexString `json:"transactionId"`
	DateCreated   string     `json:"dateCreated"`
	Status        string     `json:"status"`
	Type          string     `json:"type"`
	Amount        *FlexFloat `json:"amount"`
	Currency      string     `json:"currency"`
	InvoiceNumber string     `json:"invoiceNumber"`
	ApprovalCode  string     `json:"approvalCode,omitempty"`
	CardNumber    string     `json:"cardNumber,omitempty"`
}

// HelcimPurchaseRequest starts a purchase on a smart terminal device
type HelcimPurchaseRequest struct {
	Currency          string  `json:"currency"`
	TransactionAmount float64 `json:"transactionAmount"`
	InvoiceNumber     string  `json:"invoiceNumber"`
}

// HelcimErrorResponse is the provider's error envelope
type HelcimErrorResponse struct {
	Errors interface{} `json:"errors"`
}

// WebhookAck is the body every webhook POST answers with
type WebhookAck struct {
	Received      bool   `json:"received"`
	TransactionID string `json:"transactionId,omitempty"`
	AppointmentID int64  `json:"appointmentId,omitempty"`
	Note          string `json:"note,omitempty"`
	Error         string `json:"error,omitempty"`
}
