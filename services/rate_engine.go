package services

import (
	"strings"

	"github.com/HSouheill/salon_backend/models"
)

// DefaultServiceDurationMinutes is used when a service has no duration set
const DefaultServiceDurationMinutes = 60

// CompensationModel selects how a staff member is paid for a service
type CompensationModel int

const (
	ModelUnknown CompensationModel = iota
	ModelCommission
	ModelHourly
	ModelFixed
	ModelHourlyPlusCommission
)

// ParseCompensationModel maps the stored commissionType onto a model.
// Unrecognised values map to ModelUnknown.
func ParseCompensationModel(s string) CompensationModel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.CommissionTypeCommission:
		return ModelCommission
	case models.CommissionTypeHourly:
		return ModelHourly
	case models.CommissionTypeFixed:
		return ModelFixed
	case models.CommissionTypeHourlyPlusCommission:
		return ModelHourlyPlusCommission
	default:
		return ModelUnknown
	}
}

// String returns the rateType recorded on earnings
func (m CompensationModel) String() string {
	switch m {
	case ModelCommission:
		return models.CommissionTypeCommission
	case ModelHourly:
		return models.CommissionTypeHourly
	case ModelFixed:
		return models.CommissionTypeFixed
	case ModelHourlyPlusCommission:
		return models.CommissionTypeHourlyPlusCommission
	default:
		return "unknown"
	}
}

// RateParams are the effective rates for one calculation
type RateParams struct {
	CommissionRate float64
	HourlyRate     float64
	FixedRate      float64
}

// EarningsResult is the output of ComputeEarnings
type EarningsResult struct {
	Amount    float64
	RateType  string
	RateUsed  float64
	Breakdown models.EarningsBreakdown
}

// ComputeEarnings calculates what a staff member earns for one service.
// It is pure: no rounding, no I/O, never fails.
func ComputeEarnings(model CompensationModel, servicePrice float64, durationMinutes int, p RateParams) EarningsResult {
	servicePrice = nonNegative(servicePrice)
	if durationMinutes <= 0 {
		durationMinutes = DefaultServiceDurationMinutes
	}
	p = RateParams{
		CommissionRate: nonNegative(p.CommissionRate),
		HourlyRate:     nonNegative(p.HourlyRate),
		FixedRate:      nonNegative(p.FixedRate),
	}
	hours := float64(durationMinutes) / 60

	res := EarningsResult{
		RateType: model.String(),
		Breakdown: models.EarningsBreakdown{
			ServicePrice:    servicePrice,
			DurationMinutes: durationMinutes,
		},
	}
	b := &res.Breakdown

	switch model {
	case ModelCommission:
		b.CommissionRate = p.CommissionRate
		b.CommissionAmount = servicePrice * p.CommissionRate
		res.Amount = b.CommissionAmount
		res.RateUsed = p.CommissionRate
	case ModelHourly:
		b.Hours = hours
		b.HourlyRate = p.HourlyRate
		b.HourlyAmount = p.HourlyRate * hours
		res.Amount = b.HourlyAmount
		res.RateUsed = p.HourlyRate
	case ModelFixed:
		b.FixedRate = p.FixedRate
		b.FixedAmount = p.FixedRate
		res.Amount = b.FixedAmount
		res.RateUsed = p.FixedRate
	case ModelHourlyPlusCommission:
		b.Hours = hours
		b.HourlyRate = p.HourlyRate
		b.CommissionRate = p.CommissionRate
		b.HourlyAmount = p.HourlyRate * hours
		b.CommissionAmount = servicePrice * p.CommissionRate
		res.Amount = b.HourlyAmount + b.CommissionAmount
		res.RateUsed = p.HourlyRate
	default:
		res.Amount = 0
	}

	b.Total = res.Amount
	return res
}

// ResolveRateParams applies the per-service override over the staff defaults.
// The second return value is true when an override supplied a rate the model uses.
func ResolveRateParams(model CompensationModel, staff *models.Staff, override *models.StaffServiceRate) (RateParams, bool) {
	var p RateParams
	if staff != nil {
		p.CommissionRate = deref(staff.CommissionRate)
		p.HourlyRate = deref(staff.HourlyRate)
		p.FixedRate = deref(staff.FixedRate)
	}
	if override == nil {
		return p, false
	}

	custom := false
	if override.CustomCommissionRate != nil && (model == ModelCommission || model == ModelHourlyPlusCommission) {
		p.CommissionRate = *override.CustomCommissionRate
		custom = true
	}
	if override.CustomRate != nil {
		switch model {
		case ModelHourly, ModelHourlyPlusCommission:
			p.HourlyRate = *override.CustomRate
			custom = true
		case ModelFixed:
			p.FixedRate = *override.CustomRate
			custom = true
		case ModelCommission:
			// customRate doubles as the commission override when no explicit one is set
			if override.CustomCommissionRate == nil {
				p.CommissionRate = *override.CustomRate
				custom = true
			}
		}
	}
	return p, custom
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
