package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Automation events
const (
	AutomationEventPaymentSettled   = "payment_settled"
	AutomationEventEarningsRecorded = "earnings_recorded"
)

// Automation channels
const (
	AutomationChannelEmail = "email"
	AutomationChannelSMS   = "sms"
)

// AutomationRule sends a templated message when an event fires
type AutomationRule struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Event           string             `json:"event" bson:"event"`
	Channel         string             `json:"channel" bson:"channel"`
	Subject         string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Template        string             `json:"template" bson:"template"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	ActivationCount int64              `json:"activationCount" bson:"activationCount"`
}
