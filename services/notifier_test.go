package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sentMessage struct {
	to, subject, body string
}

type fakeEmail struct {
	sent []sentMessage
	err  error
}

func (f *fakeEmail) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to, subject, body})
	return nil
}

type fakeSMS struct {
	sent []sentMessage
}

func (f *fakeSMS) SendMessage(phone, message string) error {
	f.sent = append(f.sent, sentMessage{to: phone, body: message})
	return nil
}

type fakePush struct {
	tokens []string
	data   []map[string]string
}

func (f *fakePush) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	f.tokens = append(f.tokens, token)
	f.data = append(f.data, data)
	return nil
}

type fakeHub struct {
	events []interface{}
}

func (f *fakeHub) BroadcastPaymentSettled(data interface{}) {
	f.events = append(f.events, data)
}

func settledResult(store *memStore) *SettlementResult {
	appt := store.appointment(42)
	return &SettlementResult{
		AppointmentID: 42, PaymentID: primitive.NewObjectID(), Amount: 100,
		Method: models.PaymentMethodTerminal, Source: SourceWebhook, Appointment: &appt,
	}
}

func TestTriggerAutomations(t *testing.T) {
	store := newMemStore()
	email, sms := &fakeEmail{}, &fakeSMS{}
	emailRule := primitive.NewObjectID()
	rules := []models.AutomationRule{
		{ID: emailRule, Name: "receipt", Event: models.AutomationEventPaymentSettled, Channel: models.AutomationChannelEmail,
			Subject: "Receipt #{{.AppointmentID}}", Template: "Thanks {{.ClientName}}, you paid ${{.Amount}}", IsActive: true},
		{Name: "text", Event: models.AutomationEventPaymentSettled, Channel: models.AutomationChannelSMS,
			Template: "Paid {{.Amount}} {{.Missing}}", IsActive: true},
		{Name: "off", Event: models.AutomationEventPaymentSettled, Channel: models.AutomationChannelEmail, Template: "x"},
		{Name: "other event", Event: models.AutomationEventEarningsRecorded, Channel: models.AutomationChannelEmail, Template: "x", IsActive: true},
		{Name: "broken", Event: models.AutomationEventPaymentSettled, Channel: models.AutomationChannelEmail, Template: "{{.Amount", IsActive: true},
		{Name: "fax", Event: models.AutomationEventPaymentSettled, Channel: "fax", Template: "x", IsActive: true},
	}
	data := map[string]string{"ClientName": "Sam", "Amount": "100.00", "AppointmentID": "42"}
	to := Recipient{Name: "Sam", Email: "sam@example.com", Phone: "+15550001111"}

	n := TriggerAutomations(context.Background(), models.AutomationEventPaymentSettled, data, to, rules,
		AutomationDeps{Email: email, SMS: sms, Store: store})
	if n != 2 {
		t.Fatalf("sent = %d, want 2", n)
	}
	if len(email.sent) != 1 || email.sent[0].subject != "Receipt #42" || email.sent[0].body != "Thanks Sam, you paid $100.00" {
		t.Errorf("email = %+v", email.sent)
	}
	if len(sms.sent) != 1 || strings.TrimSpace(sms.sent[0].body) != "Paid 100.00" {
		t.Errorf("sms = %+v", sms.sent)
	}
	if store.activations[emailRule] != 1 {
		t.Errorf("activation count = %d, want 1", store.activations[emailRule])
	}
}

func TestTriggerAutomationsSkipsFailedSends(t *testing.T) {
	store := newMemStore()
	id := primitive.NewObjectID()
	rules := []models.AutomationRule{{ID: id, Name: "receipt", Event: "e", Channel: models.AutomationChannelEmail, Template: "hi", IsActive: true}}

	n := TriggerAutomations(context.Background(), "e", nil, Recipient{Email: "a@b.c"}, rules,
		AutomationDeps{Email: &fakeEmail{err: errBoom}, Store: store})
	if n != 0 || store.activations[id] != 0 {
		t.Errorf("sent = %d activations = %d, want 0 and 0", n, store.activations[id])
	}

	n = TriggerAutomations(context.Background(), "e", nil, Recipient{}, rules, AutomationDeps{Email: &fakeEmail{}})
	if n != 0 {
		t.Errorf("recipient without email: sent = %d", n)
	}
}

func TestNotifierPaymentSettledDefaultReceipt(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	email, hub := &fakeEmail{}, &fakeHub{}
	n := NewNotifier(NotifierDeps{Catalog: store, Email: email, Hub: hub})

	n.PaymentSettled(context.Background(), settledResult(store))

	if len(hub.events) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(hub.events))
	}
	if len(email.sent) != 1 || email.sent[0].to != "sam@example.com" || !strings.Contains(email.sent[0].body, "$100.00") {
		t.Errorf("receipt = %+v", email.sent)
	}
}

func TestNotifierPaymentSettledUsesRules(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	email, sms := &fakeEmail{}, &fakeSMS{}
	rules := []models.AutomationRule{{Name: "text", Event: models.AutomationEventPaymentSettled,
		Channel: models.AutomationChannelSMS, Template: "Paid #{{.AppointmentID}}", IsActive: true}}
	n := NewNotifier(NotifierDeps{Catalog: store, Email: email, SMS: sms, Rules: rules, Automations: store})

	n.PaymentSettled(context.Background(), settledResult(store))

	if len(sms.sent) != 1 || sms.sent[0].body != "Paid #42" {
		t.Errorf("sms = %+v", sms.sent)
	}
	if len(email.sent) != 0 {
		t.Error("rules replace the default receipt")
	}
}

func TestNotifierSkipsAlreadySettled(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	email, hub := &fakeEmail{}, &fakeHub{}
	n := NewNotifier(NotifierDeps{Catalog: store, Email: email, Hub: hub})

	res := settledResult(store)
	res.AlreadySettled = true
	n.PaymentSettled(context.Background(), res)
	if len(hub.events) != 0 || len(email.sent) != 0 {
		t.Error("already settled results must not notify")
	}
}

func TestNotifierEarningsRecorded(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	push := &fakePush{}
	n := NewNotifier(NotifierDeps{Push: push})

	n.EarningsRecorded(context.Background(), store.staff[7], &models.StaffEarnings{AppointmentID: 42, EarningsAmount: 40})
	if len(push.tokens) != 1 || push.tokens[0] != "tok-7" || push.data[0]["amount"] != "40.00" {
		t.Errorf("push = %v %v", push.tokens, push.data)
	}

	n.EarningsRecorded(context.Background(), &models.Staff{ID: 8}, &models.StaffEarnings{EarningsAmount: 1})
	if len(push.tokens) != 1 {
		t.Error("staff without a device token should be skipped")
	}
}

func TestNotifierPayrollSyncFailed(t *testing.T) {
	email := &fakeEmail{}
	n := NewNotifier(NotifierDeps{Email: email, AdminEmail: "payroll@salon.test"})
	payload := &models.PayrollSyncPayload{
		SyncID: "s1", Staff: models.PayrollStaff{Name: "Dana"},
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	n.PayrollSyncFailed(context.Background(), payload, &models.PayrollSyncResult{Attempts: 6, LastError: "status 500"})

	if len(email.sent) != 1 || email.sent[0].to != "payroll@salon.test" || !strings.Contains(email.sent[0].body, "status 500") {
		t.Errorf("email = %+v", email.sent)
	}
}

func TestNotifierEmailFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	n := NewNotifier(NotifierDeps{Catalog: store, Email: &fakeEmail{err: errors.New("smtp down")}})
	n.PaymentSettled(context.Background(), settledResult(store))
}
