package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaffEarnings is the immutable record of compensation owed for one paid service
type StaffEarnings struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StaffID        int64              `json:"staffId" bson:"staffId"`
	AppointmentID  int64              `json:"appointmentId" bson:"appointmentId"`
	ServiceID      int64              `json:"serviceId" bson:"serviceId"`
	PaymentID      primitive.ObjectID `json:"paymentId" bson:"paymentId"`
	EarningsAmount float64            `json:"earningsAmount" bson:"earningsAmount"`
	RateType       string             `json:"rateType" bson:"rateType"`
	RateUsed       float64            `json:"rateUsed" bson:"rateUsed"`
	IsCustomRate   bool               `json:"isCustomRate" bson:"isCustomRate"`
	ServicePrice   float64            `json:"servicePrice" bson:"servicePrice"`
	Breakdown      EarningsBreakdown  `json:"calculation" bson:"calculation"`
	EarningsDate   time.Time          `json:"earningsDate" bson:"earningsDate"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// EarningsBreakdown records every input and partial result of one calculation
type EarningsBreakdown struct {
	ServicePrice     float64 `json:"servicePrice" bson:"servicePrice"`
	DurationMinutes  int     `json:"durationMinutes" bson:"durationMinutes"`
	Hours            float64 `json:"hours,omitempty" bson:"hours,omitempty"`
	CommissionRate   float64 `json:"commissionRate,omitempty" bson:"commissionRate,omitempty"`
	HourlyRate       float64 `json:"hourlyRate,omitempty" bson:"hourlyRate,omitempty"`
	FixedRate        float64 `json:"fixedRate,omitempty" bson:"fixedRate,omitempty"`
	CommissionAmount float64 `json:"commissionAmount,omitempty" bson:"commissionAmount,omitempty"`
	HourlyAmount     float64 `json:"hourlyAmount,omitempty" bson:"hourlyAmount,omitempty"`
	FixedAmount      float64 `json:"fixedAmount,omitempty" bson:"fixedAmount,omitempty"`
	Total            float64 `json:"total" bson:"total"`
}

// StaffEarningsSummary is returned by the earnings listing endpoint
type StaffEarningsSummary struct {
	StaffID       int64           `json:"staffId"`
	From          *time.Time      `json:"from,omitempty"`
	To            *time.Time      `json:"to,omitempty"`
	TotalEarnings float64         `json:"totalEarnings"`
	Count         int             `json:"count"`
	Earnings      []StaffEarnings `json:"earnings"`
}
