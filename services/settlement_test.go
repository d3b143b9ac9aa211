package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/HSouheill/salon_backend/models"
)

func newTestSettlement(store *memStore, obs *recordingObserver) *SettlementService {
	var observer SettlementObserver
	if obs != nil {
		observer = obs
	}
	recorder := NewEarningsRecorder(store, observer)
	return NewSettlementService(store, recorder, NewLocalLocker(), observer)
}

func TestSettleMarksAppointmentPaidAndRecordsEarnings(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	obs := &recordingObserver{}
	svc := newTestSettlement(store, obs)

	res, err := svc.Settle(context.Background(), SettleRequest{
		AppointmentID: 42, Amount: 100, Method: models.PaymentMethodTerminal,
		TransactionID: "T1", Source: SourceWebhook,
	})
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if res.AlreadySettled {
		t.Fatal("first settle should not report AlreadySettled")
	}

	appt := store.appointment(42)
	if appt.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("PaymentStatus = %q, want paid", appt.PaymentStatus)
	}
	if appt.Status != models.AppointmentStatusConfirmed {
		t.Errorf("Status = %q, want pending promoted to confirmed", appt.Status)
	}
	if appt.TotalAmount == nil || *appt.TotalAmount != 100 {
		t.Errorf("TotalAmount = %v, want 100", appt.TotalAmount)
	}

	payments := store.paymentsFor(42)
	if len(payments) != 1 || payments[0].Status != models.PaymentCompleted || payments[0].TransactionID != "T1" {
		t.Fatalf("payments = %+v", payments)
	}
	if res.Earnings == nil || !approxEqual(res.Earnings.EarningsAmount, 40) {
		t.Errorf("earnings = %+v, want 40", res.Earnings)
	}
	if len(obs.settled) != 1 || len(obs.earnings) != 1 {
		t.Errorf("observer calls settled=%d earnings=%d, want 1 and 1", len(obs.settled), len(obs.earnings))
	}
}

func TestSettleKeepsNonPendingStatus(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	store.appointments[42].Status = models.AppointmentStatusCompleted
	svc := newTestSettlement(store, nil)

	if _, err := svc.Settle(context.Background(), SettleRequest{AppointmentID: 42, Amount: 100, Source: SourceManual}); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if got := store.appointment(42).Status; got != models.AppointmentStatusCompleted {
		t.Errorf("Status = %q, want unchanged", got)
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	obs := &recordingObserver{}
	svc := newTestSettlement(store, obs)
	req := SettleRequest{AppointmentID: 42, Amount: 100, TransactionID: "T1", Source: SourceWebhook}

	first, err := svc.Settle(context.Background(), req)
	if err != nil {
		t.Fatalf("first Settle: %v", err)
	}
	second, err := svc.Settle(context.Background(), req)
	if err != nil {
		t.Fatalf("second Settle: %v", err)
	}
	if !second.AlreadySettled || second.PaymentID != first.PaymentID {
		t.Errorf("second = %+v, want AlreadySettled with the same payment", second)
	}
	if n := len(store.paymentsFor(42)); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}
	if n := len(store.earningsFor(42)); n != 1 {
		t.Errorf("earnings = %d, want 1", n)
	}
	if len(obs.settled) != 1 {
		t.Errorf("PaymentSettled called %d times, want 1", len(obs.settled))
	}
}

func TestSettleConcurrentCallersSettleOnce(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	svc := newTestSettlement(store, nil)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*SettlementResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			source := SourceWebhook
			if i%2 == 1 {
				source = SourceManual
			}
			results[i], errs[i] = svc.Settle(context.Background(), SettleRequest{AppointmentID: 42, Amount: 100, Source: source})
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if !results[i].AlreadySettled {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("%d callers settled, want exactly 1", fresh)
	}
	if n := len(store.paymentsFor(42)); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}
	if n := len(store.earningsFor(42)); n != 1 {
		t.Errorf("earnings = %d, want 1", n)
	}
}

func TestSettlePromotesPendingTerminalPayment(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	svc := newTestSettlement(store, nil)
	ctx := context.Background()

	pending, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42")
	if err != nil {
		t.Fatalf("OpenTerminalPayment: %v", err)
	}
	res, err := svc.Settle(ctx, SettleRequest{AppointmentID: 42, Amount: 95, TransactionID: "T9", Source: SourceWebhook})
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if res.PaymentID != pending.ID {
		t.Errorf("settled payment %s, want the pending one %s", res.PaymentID.Hex(), pending.ID.Hex())
	}
	payments := store.paymentsFor(42)
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments))
	}
	if p := payments[0]; p.Status != models.PaymentCompleted || p.Amount != 95 || p.TransactionID != "T9" {
		t.Errorf("payment = %+v", p)
	}
}

func TestSettleAbortsWhenAppointmentUpdateFails(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	obs := &recordingObserver{}
	svc := newTestSettlement(store, obs)
	store.failUpdateAppointment = errBoom

	_, err := svc.Settle(context.Background(), SettleRequest{AppointmentID: 42, Amount: 100, Source: SourceWebhook})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if n := len(store.earningsFor(42)); n != 0 {
		t.Errorf("earnings = %d, want none after an aborted settlement", n)
	}
	if len(obs.settled) != 0 {
		t.Error("observer should not hear about an aborted settlement")
	}

	// the completed payment stays; a retry resumes from it
	store.failUpdateAppointment = nil
	res, err := svc.Settle(context.Background(), SettleRequest{AppointmentID: 42, Amount: 100, Source: SourceSync})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.AlreadySettled {
		t.Error("resume should finish the settlement, not report it as already done")
	}
	if n := len(store.paymentsFor(42)); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}
	if store.appointment(42).PaymentStatus != models.PaymentStatusPaid {
		t.Error("appointment should be paid after resume")
	}
	if n := len(store.earningsFor(42)); n != 1 {
		t.Errorf("earnings = %d, want 1", n)
	}
}

func TestSettlePaidAppointmentWithoutPaymentIsNoop(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	store.appointments[42].PaymentStatus = models.PaymentStatusPaid
	svc := newTestSettlement(store, nil)

	res, err := svc.Settle(context.Background(), SettleRequest{AppointmentID: 42, Amount: 100, Source: SourceManual})
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if !res.AlreadySettled {
		t.Error("want AlreadySettled")
	}
	if n := len(store.paymentsFor(42)); n != 0 {
		t.Errorf("payments = %d, want 0", n)
	}
}

func TestSettleErrors(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	svc := newTestSettlement(store, nil)
	ctx := context.Background()

	if _, err := svc.Settle(ctx, SettleRequest{AppointmentID: 404, Amount: 10}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("missing appointment err = %v, want ErrAppointmentNotFound", err)
	}
	if _, err := svc.Settle(ctx, SettleRequest{AppointmentID: 42, Amount: -1}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount err = %v, want ErrInvalidAmount", err)
	}
}

func TestSettleLockTimeout(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	locker := NewLocalLocker()
	svc := NewSettlementService(store, nil, locker, nil)

	unlock, err := locker.Lock(context.Background(), appointmentLockKey(42))
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Settle(ctx, SettleRequest{AppointmentID: 42, Amount: 100}); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("err = %v, want ErrLockTimeout", err)
	}
}

func TestOpenTerminalPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("second open conflicts", func(t *testing.T) {
		store := newMemStore()
		seedSalon(store)
		svc := newTestSettlement(store, nil)
		if _, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42"); err != nil {
			t.Fatalf("first open: %v", err)
		}
		if _, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42"); !errors.Is(err, ErrPaymentInProgress) {
			t.Errorf("err = %v, want ErrPaymentInProgress", err)
		}
	})

	t.Run("paid appointment conflicts", func(t *testing.T) {
		store := newMemStore()
		seedSalon(store)
		svc := newTestSettlement(store, nil)
		if _, err := svc.Settle(ctx, SettleRequest{AppointmentID: 42, Amount: 100}); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42"); !errors.Is(err, ErrAlreadySettled) {
			t.Errorf("err = %v, want ErrAlreadySettled", err)
		}
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		store := newMemStore()
		seedSalon(store)
		svc := newTestSettlement(store, nil)
		if _, err := svc.OpenTerminalPayment(ctx, 42, 0, "DEV1", "APT-42"); !errors.Is(err, ErrAmountRequired) {
			t.Errorf("err = %v, want ErrAmountRequired", err)
		}
	})

	t.Run("records invoice and device", func(t *testing.T) {
		store := newMemStore()
		seedSalon(store)
		svc := newTestSettlement(store, nil)
		p, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42")
		if err != nil {
			t.Fatal(err)
		}
		if p.Status != models.PaymentPending || p.InvoiceNumber != "APT-42" || p.DeviceCode != "DEV1" || p.ClientID != 9 {
			t.Errorf("payment = %+v", p)
		}
	})
}

func TestFail(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	svc := newTestSettlement(store, nil)
	ctx := context.Background()

	failed, err := svc.Fail(ctx, 42, models.PaymentMethodTerminal, "declined")
	if err != nil || failed {
		t.Fatalf("Fail without pending = %v, %v; want false, nil", failed, err)
	}

	if _, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42"); err != nil {
		t.Fatal(err)
	}
	failed, err = svc.Fail(ctx, 42, "", "declined")
	if err != nil || !failed {
		t.Fatalf("Fail = %v, %v; want true, nil", failed, err)
	}
	payments := store.paymentsFor(42)
	if len(payments) != 1 || payments[0].Status != models.PaymentFailed || payments[0].FailureReason != "declined" {
		t.Errorf("payments = %+v", payments)
	}
	if apt := store.appointment(42); apt.IsPaid() {
		t.Error("a failed payment must not mark the appointment paid")
	}

	// a new charge can be opened after a failure
	if _, err := svc.OpenTerminalPayment(ctx, 42, 100, "DEV1", "APT-42"); err != nil {
		t.Errorf("reopen after failure: %v", err)
	}
}
