package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/security"
	"github.com/HSouheill/salon_backend/utils"
)

// CardTransactionEventType is the only webhook type that can settle a payment
const CardTransactionEventType = "cardTransaction"

// IsApprovedStatus reports whether a provider status means the charge went through.
// The allow-list is deliberately narrow: anything containing APPROVED, or exactly
// SUCCESS or COMPLETED, compared case-insensitively.
func IsApprovedStatus(status string) bool {
	s := strings.ToUpper(strings.TrimSpace(status))
	return strings.Contains(s, "APPROVED") || s == "SUCCESS" || s == "COMPLETED"
}

// IsDeclinedStatus reports whether a provider status is a definitive failure
func IsDeclinedStatus(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "DECLINED", "FAILED", "CANCELLED":
		return true
	}
	return false
}

// ReconcilerConfig configures the terminal reconciler
type ReconcilerConfig struct {
	WebhookSecret      string
	TrustedEnvironment bool
	InvoicePrefix      string
	Currency           string
}

// WebhookDelivery is one raw inbound webhook call
type WebhookDelivery struct {
	DeliveryID string
	Timestamp  string
	Signature  string
	Body       []byte
}

// TransactionOutcome is what applying one provider transaction did
type TransactionOutcome struct {
	TransactionID string            `json:"transactionId"`
	Status        string            `json:"status"`
	AppointmentID int64             `json:"appointmentId"`
	Approved      bool              `json:"approved"`
	Failed        bool              `json:"failed,omitempty"`
	Settlement    *SettlementResult `json:"settlement,omitempty"`
}

// TerminalReconciler brings local payments in line with the terminal provider.
// The webhook, manual confirmation and sync paths all end in SettlementService.Settle,
// which is idempotent per appointment.
type TerminalReconciler struct {
	settlement    *SettlementService
	terminal      TerminalClient
	verifier      *security.WebhookVerifier
	verifierErr   error
	trusted       bool
	invoicePrefix string
	currency      string
}

// NewTerminalReconciler creates a reconciler. terminal may be nil when the
// provider is not configured; the webhook and manual paths still work.
func NewTerminalReconciler(settlement *SettlementService, terminal TerminalClient, cfg ReconcilerConfig) *TerminalReconciler {
	verifier, err := security.NewWebhookVerifier(cfg.WebhookSecret)
	if err != nil && !cfg.TrustedEnvironment {
		log.Printf("WARNING: webhook verification unavailable: %v. Webhooks will be acknowledged and ignored", err)
	}
	prefix := cfg.InvoicePrefix
	if prefix == "" {
		prefix = utils.DefaultInvoicePrefix
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "CAD"
	}
	return &TerminalReconciler{
		settlement:    settlement,
		terminal:      terminal,
		verifier:      verifier,
		verifierErr:   err,
		trusted:       cfg.TrustedEnvironment,
		invoicePrefix: prefix,
		currency:      currency,
	}
}

// InvoiceFor returns the invoice number used for an appointment's terminal charge
func (r *TerminalReconciler) InvoiceFor(appointmentID int64) string {
	return utils.FormatInvoice(r.invoicePrefix, appointmentID)
}

// HandleWebhook processes one delivery. It never fails: the provider must always
// get an acknowledgement, so every rejection is logged and reported in the ack only.
func (r *TerminalReconciler) HandleWebhook(ctx context.Context, d WebhookDelivery) (ack models.WebhookAck) {
	ack.Received = true
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ webhook panic deliveryId=%s transactionId=%s err=%v\n%s",
				d.DeliveryID, ack.TransactionID, rec, debug.Stack())
			ack = models.WebhookAck{Received: true, TransactionID: ack.TransactionID, Error: "internal error"}
		}
	}()

	if !r.trusted {
		if r.verifier == nil {
			log.Printf("webhook ignored deliveryId=%s reason=secret_unavailable err=%v", d.DeliveryID, r.verifierErr)
			ack.Note = "signature not verified"
			return ack
		}
		if err := r.verifier.Verify(d.DeliveryID, d.Timestamp, d.Body, d.Signature); err != nil {
			log.Printf("webhook ignored deliveryId=%s reason=signature_rejected err=%v", d.DeliveryID, err)
			ack.Note = "invalid signature"
			return ack
		}
	}

	var event models.HelcimWebhookEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("webhook ignored deliveryId=%s reason=malformed_body err=%v", d.DeliveryID, err)
		ack.Note = "malformed body"
		return ack
	}
	ack.TransactionID = event.TxID()

	if !strings.EqualFold(strings.TrimSpace(event.Type), CardTransactionEventType) {
		log.Printf("webhook ignored deliveryId=%s transactionId=%s type=%q reason=unsupported_type",
			d.DeliveryID, ack.TransactionID, event.Type)
		ack.Note = "event type ignored"
		return ack
	}
	if event.TransactionAmount == nil || strings.TrimSpace(event.Status) == "" || strings.TrimSpace(event.InvoiceNumber) == "" {
		log.Printf("webhook ignored deliveryId=%s transactionId=%s reason=missing_fields", d.DeliveryID, ack.TransactionID)
		ack.Note = "missing amount, status or invoice number"
		return ack
	}

	outcome, err := r.applyTransaction(ctx, ack.TransactionID, event.Status, float64(*event.TransactionAmount), event.InvoiceNumber, SourceWebhook)
	if outcome != nil {
		ack.AppointmentID = outcome.AppointmentID
	}
	if err != nil {
		if errors.Is(err, ErrNoInvoiceMatch) {
			log.Printf("webhook ignored deliveryId=%s transactionId=%s invoice=%q reason=no_appointment",
				d.DeliveryID, ack.TransactionID, event.InvoiceNumber)
			ack.Note = "invoice does not match an appointment"
			return ack
		}
		log.Printf("❌ webhook settlement failed deliveryId=%s transactionId=%s appointmentId=%d err=%v",
			d.DeliveryID, ack.TransactionID, ack.AppointmentID, err)
		ack.Error = err.Error()
		return ack
	}

	switch {
	case outcome.Settlement != nil && outcome.Settlement.AlreadySettled:
		ack.Note = "already settled"
	case outcome.Settlement != nil:
		ack.Note = "settled"
	case outcome.Failed:
		ack.Note = "payment marked failed"
	default:
		log.Printf("webhook ignored deliveryId=%s transactionId=%s status=%q reason=not_approved",
			d.DeliveryID, ack.TransactionID, event.Status)
		ack.Note = "not approved"
	}
	return ack
}

// ConfirmManually settles an appointment on an operator's word. Without an
// explicit amount the appointment's totalAmount is used.
func (r *TerminalReconciler) ConfirmManually(ctx context.Context, appointmentID int64, amount *float64) (*SettlementResult, error) {
	var settleAmount float64
	if amount != nil {
		settleAmount = *amount
	} else {
		appointment, err := r.settlement.getAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		settleAmount = deref(appointment.TotalAmount)
	}
	if settleAmount <= 0 {
		return nil, ErrAmountRequired
	}

	return r.settlement.Settle(ctx, SettleRequest{
		AppointmentID: appointmentID,
		Amount:        settleAmount,
		Method:        models.PaymentMethodTerminal,
		Source:        SourceManual,
		Description:   "Terminal payment confirmed manually",
	})
}

// SyncTransaction pulls one transaction from the provider and applies it
func (r *TerminalReconciler) SyncTransaction(ctx context.Context, transactionID string) (*TransactionOutcome, error) {
	if r.terminal == nil {
		return nil, ErrTerminalNotConfigured
	}
	tx, err := r.terminal.GetCardTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", transactionID, err)
	}
	if tx.Amount == nil || strings.TrimSpace(tx.InvoiceNumber) == "" || strings.TrimSpace(tx.Status) == "" {
		return &TransactionOutcome{TransactionID: transactionID, Status: tx.Status},
			fmt.Errorf("%w: transaction %s has no amount, status or invoice number", ErrNoInvoiceMatch, transactionID)
	}
	id := tx.TransactionID.String()
	if id == "" {
		id = transactionID
	}
	return r.applyTransaction(ctx, id, tx.Status, float64(*tx.Amount), tx.InvoiceNumber, SourceSync)
}

// InitiateCharge opens the pending terminal payment and pushes the purchase to the device
func (r *TerminalReconciler) InitiateCharge(ctx context.Context, req models.InitiateTerminalPaymentRequest) (*models.Payment, error) {
	if r.terminal == nil {
		return nil, ErrTerminalNotConfigured
	}
	invoice := r.InvoiceFor(req.AppointmentID)
	payment, err := r.settlement.OpenTerminalPayment(ctx, req.AppointmentID, req.Amount, req.DeviceCode, invoice)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = r.currency
	}
	err = r.terminal.StartPurchase(ctx, req.DeviceCode, models.HelcimPurchaseRequest{
		Currency:          currency,
		TransactionAmount: req.Amount,
		InvoiceNumber:     invoice,
	})
	if err != nil {
		if _, failErr := r.settlement.Fail(ctx, req.AppointmentID, models.PaymentMethodTerminal, "terminal start failed: "+err.Error()); failErr != nil {
			log.Printf("❌ could not release pending payment appointmentId=%d err=%v", req.AppointmentID, failErr)
		}
		return nil, fmt.Errorf("start terminal purchase: %w", err)
	}

	log.Printf("terminal charge started appointmentId=%d paymentId=%s device=%s invoice=%s amount=%.2f",
		req.AppointmentID, payment.ID.Hex(), req.DeviceCode, invoice, req.Amount)
	return payment, nil
}

// TerminalHealth pings the provider. Failures are logged as unreachable.
func (r *TerminalReconciler) TerminalHealth(ctx context.Context) error {
	if r.terminal == nil {
		return ErrTerminalNotConfigured
	}
	pingCtx, cancel := context.WithTimeout(ctx, DefaultTerminalTimeout)
	defer cancel()
	if err := r.terminal.Ping(pingCtx); err != nil {
		log.Printf("terminal provider unreachable err=%v", err)
		return err
	}
	return nil
}

func (r *TerminalReconciler) applyTransaction(ctx context.Context, transactionID, status string, amount float64, invoice, source string) (*TransactionOutcome, error) {
	outcome := &TransactionOutcome{TransactionID: transactionID, Status: status}

	appointmentID, ok := utils.ParseAppointmentID(r.invoicePrefix, invoice)
	if !ok {
		return outcome, ErrNoInvoiceMatch
	}
	outcome.AppointmentID = appointmentID

	if IsApprovedStatus(status) {
		outcome.Approved = true
		result, err := r.settlement.Settle(ctx, SettleRequest{
			AppointmentID: appointmentID,
			Amount:        amount,
			Method:        models.PaymentMethodTerminal,
			TransactionID: transactionID,
			Source:        source,
			Description:   fmt.Sprintf("Card transaction %s", transactionID),
		})
		if err != nil {
			return outcome, err
		}
		outcome.Settlement = result
		return outcome, nil
	}

	if IsDeclinedStatus(status) {
		failed, err := r.settlement.Fail(ctx, appointmentID, models.PaymentMethodTerminal, "terminal status "+status)
		if err != nil {
			return outcome, err
		}
		outcome.Failed = failed
	}
	return outcome, nil
}
