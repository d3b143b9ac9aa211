package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/HSouheill/salon_backend/models"
)

// EmailSender delivers plain-text email
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMSSender delivers a text message
type SMSSender interface {
	SendMessage(phoneNumber, message string) error
}

// PushSender delivers a mobile push notification
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// Broadcaster pushes live events to connected front-desk sessions
type Broadcaster interface {
	BroadcastPaymentSettled(data interface{})
}

// Notifier fans settlement events out to email, SMS, push and websocket.
// Every send is best-effort: failures are logged and never returned.
type Notifier struct {
	catalog     CatalogStore
	email       EmailSender
	sms         SMSSender
	push        PushSender
	hub         Broadcaster
	automations AutomationStore
	rules       []models.AutomationRule
	adminEmail  string
}

// NotifierDeps wires a Notifier; any field may be nil
type NotifierDeps struct {
	Catalog     CatalogStore
	Email       EmailSender
	SMS         SMSSender
	Push        PushSender
	Hub         Broadcaster
	Automations AutomationStore
	Rules       []models.AutomationRule
	AdminEmail  string
}

// NewNotifier creates a notifier
func NewNotifier(deps NotifierDeps) *Notifier {
	return &Notifier{
		catalog:     deps.Catalog,
		email:       deps.Email,
		sms:         deps.SMS,
		push:        deps.Push,
		hub:         deps.Hub,
		automations: deps.Automations,
		rules:       deps.Rules,
		adminEmail:  deps.AdminEmail,
	}
}

// PaymentSettled broadcasts the settlement and sends the client's receipt
func (n *Notifier) PaymentSettled(ctx context.Context, result *SettlementResult) {
	if result == nil || result.AlreadySettled {
		return
	}

	if n.hub != nil {
		n.hub.BroadcastPaymentSettled(map[string]interface{}{
			"appointmentId": result.AppointmentID,
			"paymentId":     result.PaymentID.Hex(),
			"amount":        result.Amount,
			"method":        result.Method,
			"source":        result.Source,
		})
	}

	if n.catalog == nil || result.Appointment == nil {
		return
	}
	client, err := n.catalog.GetClient(ctx, result.Appointment.ClientID)
	if err != nil {
		log.Printf("receipt skipped appointmentId=%d clientId=%d reason=client_unresolved err=%v",
			result.AppointmentID, result.Appointment.ClientID, err)
		return
	}

	data := map[string]string{
		"ClientName":    client.FirstName,
		"AppointmentID": strconv.FormatInt(result.AppointmentID, 10),
		"Amount":        fmt.Sprintf("%.2f", result.Amount),
		"Method":        result.Method,
	}
	to := Recipient{Name: client.FirstName, Email: client.Email, Phone: client.Phone}

	if len(n.rules) > 0 {
		TriggerAutomations(ctx, models.AutomationEventPaymentSettled, data, to, n.rules, AutomationDeps{
			Email: n.email,
			SMS:   n.sms,
			Store: n.automations,
		})
		return
	}

	if n.email != nil && client.Email != "" {
		subject := "Your payment receipt"
		body := fmt.Sprintf("Hi %s,\n\nWe received your payment of $%.2f for appointment #%d. Thank you!\n\nSee you soon.",
			client.FirstName, result.Amount, result.AppointmentID)
		if err := n.email.Send(client.Email, subject, body); err != nil {
			log.Printf("Failed to send receipt email appointmentId=%d err=%v", result.AppointmentID, err)
		}
	}
}

// EarningsRecorded pushes the new earnings amount to the staff member's device
func (n *Notifier) EarningsRecorded(ctx context.Context, staff *models.Staff, earnings *models.StaffEarnings) {
	if n.push == nil || staff == nil || staff.FCMToken == "" || earnings == nil {
		return
	}
	title := "New earnings"
	body := fmt.Sprintf("You earned $%.2f for appointment #%d", earnings.EarningsAmount, earnings.AppointmentID)
	data := map[string]string{
		"type":          "earnings_recorded",
		"appointmentId": strconv.FormatInt(earnings.AppointmentID, 10),
		"amount":        fmt.Sprintf("%.2f", earnings.EarningsAmount),
	}
	if err := n.push.Send(ctx, staff.FCMToken, title, body, data); err != nil {
		log.Printf("Failed to push earnings notification staffId=%d err=%v", staff.ID, err)
	}
}

// PayrollSyncFailed emails the payroll admin
func (n *Notifier) PayrollSyncFailed(ctx context.Context, payload *models.PayrollSyncPayload, result *models.PayrollSyncResult) {
	if n.email == nil || n.adminEmail == "" || payload == nil || result == nil {
		return
	}
	subject := fmt.Sprintf("Payroll sync failed for %s", payload.Staff.Name)
	body := fmt.Sprintf("Payroll sync %s for %s (%s to %s) could not be delivered after %d attempts.\n\nTotal earnings: $%.2f\nTotal hours: %.2f\nLast error: %s",
		payload.SyncID, payload.Staff.Name,
		payload.PeriodStart.Format("2006-01-02"), payload.PeriodEnd.Format("2006-01-02"),
		result.Attempts, payload.TotalEarnings, payload.TotalHours, result.LastError)
	if err := n.email.Send(n.adminEmail, subject, body); err != nil {
		log.Printf("Failed to send payroll failure email: %v", err)
	}
}
