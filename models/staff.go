package models

import (
	"time"
)

// Staff compensation model names as stored on the staff profile
const (
	CommissionTypeCommission           = "commission"
	CommissionTypeHourly               = "hourly"
	CommissionTypeFixed                = "fixed"
	CommissionTypeHourlyPlusCommission = "hourly_plus_commission"
)

// Staff holds the compensation profile read by the rate engine.
// Rates are pointers so that "not configured" is distinguishable from zero.
type Staff struct {
	ID             int64     `json:"id" bson:"_id"`
	FirstName      string    `json:"firstName" bson:"firstName"`
	LastName       string    `json:"lastName" bson:"lastName"`
	Email          string    `json:"email" bson:"email"`
	Phone          string    `json:"phone,omitempty" bson:"phone,omitempty"`
	FCMToken       string    `json:"-" bson:"fcmToken,omitempty"`
	CommissionType string    `json:"commissionType" bson:"commissionType"`
	CommissionRate *float64  `json:"commissionRate,omitempty" bson:"commissionRate,omitempty"`
	HourlyRate     *float64  `json:"hourlyRate,omitempty" bson:"hourlyRate,omitempty"`
	FixedRate      *float64  `json:"fixedRate,omitempty" bson:"fixedRate,omitempty"`
	IsActive       bool      `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FullName returns first and last name joined
func (s *Staff) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// StaffServiceRate overrides a staff member's default rates for one service
type StaffServiceRate struct {
	StaffID              int64    `json:"staffId" bson:"staffId"`
	ServiceID            int64    `json:"serviceId" bson:"serviceId"`
	CustomRate           *float64 `json:"customRate,omitempty" bson:"customRate,omitempty"`
	CustomCommissionRate *float64 `json:"customCommissionRate,omitempty" bson:"customCommissionRate,omitempty"`
}

// Service is a bookable salon service
type Service struct {
	ID       int64   `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Duration *int    `json:"duration,omitempty" bson:"duration,omitempty"` // minutes
	Category string  `json:"category,omitempty" bson:"category,omitempty"`
}

// Client is the customer on an appointment
type Client struct {
	ID        int64  `json:"id" bson:"_id"`
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email,omitempty" bson:"email,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// TimeClockEntry is one clock-in/clock-out shift
type TimeClockEntry struct {
	ID         int64      `json:"id" bson:"_id"`
	StaffID    int64      `json:"staffId" bson:"staffId"`
	ClockIn    time.Time  `json:"clockIn" bson:"clockIn"`
	ClockOut   *time.Time `json:"clockOut,omitempty" bson:"clockOut,omitempty"`
	TotalHours *float64   `json:"totalHours,omitempty" bson:"totalHours,omitempty"`
}

// Hours returns the recorded hours, deriving them from the clock times when not stored.
// Open shifts count as zero.
func (e TimeClockEntry) Hours() float64 {
	if e.TotalHours != nil {
		return *e.TotalHours
	}
	if e.ClockOut == nil || e.ClockOut.Before(e.ClockIn) {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn).Hours()
}
