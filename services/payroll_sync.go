package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/google/uuid"
)

// PayrollStore is what the aggregator reads
type PayrollStore interface {
	CatalogStore
	EarningsStore
	TimeClockStore
}

// PayrollObserver is told when every payroll URL failed
type PayrollObserver interface {
	PayrollSyncFailed(ctx context.Context, payload *models.PayrollSyncPayload, result *models.PayrollSyncResult)
}

// PayrollConfig configures delivery of payroll aggregates
type PayrollConfig struct {
	URLs    []string
	Retries int
	Delay   time.Duration
	Timeout time.Duration
}

// PayrollAggregator sums a staff member's earnings and hours for a window and
// forwards the aggregate to the payroll endpoints. It never mutates settlement data.
type PayrollAggregator struct {
	store    PayrollStore
	client   *http.Client
	urls     []string
	retries  int
	delay    time.Duration
	observer PayrollObserver
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// NewPayrollAggregator creates an aggregator. observer may be nil.
func NewPayrollAggregator(store PayrollStore, cfg PayrollConfig, observer PayrollObserver) *PayrollAggregator {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &PayrollAggregator{
		store:    store,
		client:   &http.Client{Timeout: cfg.Timeout},
		urls:     cfg.URLs,
		retries:  cfg.Retries,
		delay:    cfg.Delay,
		observer: observer,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// BuildPayload reads earnings and time entries for [periodStart, periodEnd]
func (a *PayrollAggregator) BuildPayload(ctx context.Context, staffID int64, periodStart, periodEnd time.Time) (*models.PayrollSyncPayload, error) {
	if periodEnd.Before(periodStart) {
		return nil, fmt.Errorf("period end %s is before start %s", periodEnd.Format(time.RFC3339), periodStart.Format(time.RFC3339))
	}

	staff, err := a.store.GetStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff %d: %w", staffID, err)
	}
	earnings, err := a.store.GetStaffEarnings(ctx, staffID, &periodStart, &periodEnd)
	if err != nil {
		return nil, fmt.Errorf("get staff earnings %d: %w", staffID, err)
	}
	entries, err := a.store.GetTimeClockEntriesByStaffID(ctx, staffID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("get time clock entries %d: %w", staffID, err)
	}

	payload := &models.PayrollSyncPayload{
		SyncID: uuid.NewString(),
		Staff: models.PayrollStaff{
			ID:             staff.ID,
			Name:           staff.FullName(),
			Email:          staff.Email,
			CommissionType: staff.CommissionType,
		},
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Earnings:    make([]models.PayrollEarningsItem, 0, len(earnings)),
		TimeEntries: make([]models.PayrollTimeEntry, 0, len(entries)),
		GeneratedAt: a.now().UTC(),
	}

	appointments := make(map[int64]struct{})
	for _, e := range earnings {
		payload.TotalEarnings += e.EarningsAmount
		appointments[e.AppointmentID] = struct{}{}
		payload.Earnings = append(payload.Earnings, models.PayrollEarningsItem{
			AppointmentID:  e.AppointmentID,
			ServiceID:      e.ServiceID,
			PaymentID:      e.PaymentID.Hex(),
			EarningsAmount: e.EarningsAmount,
			RateType:       e.RateType,
			RateUsed:       e.RateUsed,
			ServicePrice:   e.ServicePrice,
			EarningsDate:   e.EarningsDate,
		})
	}
	payload.AppointmentCount = len(appointments)

	for _, entry := range entries {
		hours := entry.Hours()
		payload.TotalHours += hours
		payload.TimeEntries = append(payload.TimeEntries, models.PayrollTimeEntry{
			ID:       entry.ID,
			ClockIn:  entry.ClockIn,
			ClockOut: entry.ClockOut,
			Hours:    hours,
		})
	}
	return payload, nil
}

// SyncStaffPayroll builds the aggregate and delivers it to the first URL that
// accepts it. A delivery failure is reported in the result, not as an error;
// the error return covers only failures to read the aggregate.
func (a *PayrollAggregator) SyncStaffPayroll(ctx context.Context, staffID int64, periodStart, periodEnd time.Time) (*models.PayrollSyncResult, error) {
	payload, err := a.BuildPayload(ctx, staffID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	result := &models.PayrollSyncResult{
		SyncID:        payload.SyncID,
		StaffID:       staffID,
		TotalEarnings: payload.TotalEarnings,
		TotalHours:    payload.TotalHours,
	}

	if len(a.urls) == 0 {
		result.LastError = "no payroll sync URLs configured"
		log.Printf("payroll sync skipped staffId=%d syncId=%s reason=no_urls", staffID, payload.SyncID)
		return result, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payroll payload: %w", err)
	}

	for _, url := range a.urls {
		for attempt := 1; attempt <= a.retries; attempt++ {
			result.Attempts++
			err := a.deliver(ctx, url, payload.SyncID, body)
			if err == nil {
				result.Delivered = true
				result.DeliveredTo = url
				result.LastError = ""
				log.Printf("✅ payroll synced staffId=%d syncId=%s url=%s attempt=%d earnings=%.2f hours=%.2f",
					staffID, payload.SyncID, url, attempt, payload.TotalEarnings, payload.TotalHours)
				return result, nil
			}
			result.LastError = err.Error()
			log.Printf("payroll sync attempt failed staffId=%d syncId=%s url=%s attempt=%d/%d err=%v",
				staffID, payload.SyncID, url, attempt, a.retries, err)

			if ctx.Err() != nil {
				return a.failed(ctx, payload, result), nil
			}
			if attempt < a.retries {
				if err := a.sleep(ctx, a.delay); err != nil {
					return a.failed(ctx, payload, result), nil
				}
			}
		}
	}
	return a.failed(ctx, payload, result), nil
}

// SyncAllStaff syncs every active staff member for the window
func (a *PayrollAggregator) SyncAllStaff(ctx context.Context, periodStart, periodEnd time.Time) []models.PayrollSyncResult {
	staff, err := a.store.ListActiveStaff(ctx)
	if err != nil {
		log.Printf("❌ payroll batch aborted: list staff: %v", err)
		return nil
	}
	results := make([]models.PayrollSyncResult, 0, len(staff))
	for _, s := range staff {
		result, err := a.SyncStaffPayroll(ctx, s.ID, periodStart, periodEnd)
		if err != nil {
			log.Printf("❌ payroll sync failed staffId=%d err=%v", s.ID, err)
			continue
		}
		results = append(results, *result)
	}
	return results
}

// Run syncs the trailing period for all staff every interval until ctx is done
func (a *PayrollAggregator) Run(ctx context.Context, interval time.Duration, periodDays int) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if periodDays <= 0 {
		periodDays = 14
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			end := a.now().UTC()
			start := end.AddDate(0, 0, -periodDays)
			results := a.SyncAllStaff(ctx, start, end)
			delivered := 0
			for _, r := range results {
				if r.Delivered {
					delivered++
				}
			}
			log.Printf("payroll batch complete staff=%d delivered=%d", len(results), delivered)
		}
	}
}

func (a *PayrollAggregator) deliver(ctx context.Context, url, syncID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sync-ID", syncID)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func (a *PayrollAggregator) failed(ctx context.Context, payload *models.PayrollSyncPayload, result *models.PayrollSyncResult) *models.PayrollSyncResult {
	log.Printf("❌ payroll sync failed staffId=%d syncId=%s attempts=%d lastError=%q",
		result.StaffID, result.SyncID, result.Attempts, result.LastError)
	if a.observer != nil {
		a.observer.PayrollSyncFailed(ctx, payload, result)
	}
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
