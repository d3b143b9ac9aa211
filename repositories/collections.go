package repositories

import "time"

// Collection names
const (
	AppointmentsCollection      = "appointments"
	PaymentsCollection          = "payments"
	StaffCollection             = "staff"
	ServicesCollection          = "services"
	StaffServiceRatesCollection = "staff_service_rates"
	ClientsCollection           = "clients"
	StaffEarningsCollection     = "staff_earnings"
	TimeClockCollection         = "time_clock_entries"
	AutomationRulesCollection   = "automation_rules"
	OperatorsCollection         = "operators"
)

const queryTimeout = 10 * time.Second
