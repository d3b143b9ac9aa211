package utils

import (
	"strconv"
	"strings"
)

// DefaultInvoicePrefix links a terminal transaction back to an appointment
const DefaultInvoicePrefix = "APT-"

// FormatInvoice embeds an appointment id in a provider-visible invoice number
func FormatInvoice(prefix string, appointmentID int64) string {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return prefix + strconv.FormatInt(appointmentID, 10)
}

// ParseAppointmentID recovers the appointment id from an invoice number.
// The prefix must match exactly and the remainder must be a positive decimal integer.
func ParseAppointmentID(prefix, invoice string) (int64, bool) {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	invoice = strings.TrimSpace(invoice)
	if !strings.HasPrefix(invoice, prefix) {
		return 0, false
	}
	digits := invoice[len(prefix):]
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
